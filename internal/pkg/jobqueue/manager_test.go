package jobqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func resetManager() {
	globalManager = nil
	managerOnce = sync.Once{}
}

func offlineQueue(workers int) *Queue {
	return NewQueueWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), workers)
}

func TestNewManager(t *testing.T) {
	manager := NewManager(offlineQueue(2))

	assert.NotNil(t, manager.queue)
	assert.NotNil(t, manager.stopCh)
	assert.False(t, manager.running)
	assert.Equal(t, defaultRolloverInterval, manager.rolloverInterval)
	assert.Same(t, manager.queue, manager.GetQueue())
}

func TestGetManagerSingleton(t *testing.T) {
	resetManager()
	t.Cleanup(resetManager)

	manager1 := GetManager()
	manager2 := GetManager()
	assert.Same(t, manager1, manager2, "GetManager should return the same instance")

	resetManager()
	assert.NotSame(t, manager1, GetManager())
}

func TestManager_IsRunning(t *testing.T) {
	manager := NewManager(offlineQueue(1))
	assert.False(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = true
	manager.mu.Unlock()
	assert.True(t, manager.IsRunning())
}

func TestManager_StopWithoutStart(t *testing.T) {
	manager := NewManager(offlineQueue(1))
	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManager_SetPeriodRollover(t *testing.T) {
	manager := NewManager(offlineQueue(1))

	var calls atomic.Int32
	manager.SetPeriodRollover(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, 0)
	assert.Equal(t, defaultRolloverInterval, manager.rolloverInterval)

	manager.SetPeriodRollover(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Minute)
	assert.Equal(t, 10*time.Minute, manager.rolloverInterval)

	manager.RunRolloverOnce()
	assert.Equal(t, int32(1), calls.Load())
}

func TestManager_RolloverWorkerRunsOnStartAndTick(t *testing.T) {
	manager := NewManager(offlineQueue(1))

	var calls atomic.Int32
	manager.rollover = func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}

	stop := make(chan struct{})
	tick := make(chan time.Time)
	manager.wg.Add(1)
	go manager.rolloverWorker(stop, tick)

	tick <- time.Now()
	tick <- time.Now()
	close(stop)
	manager.wg.Wait()

	assert.Equal(t, int32(3), calls.Load())
}
