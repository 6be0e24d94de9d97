package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/dealerseo/seodash/internal/pkg/env"
)

const defaultRolloverInterval = time.Hour

// PeriodicTask is run by the manager on a ticker.
type PeriodicTask func(ctx context.Context) error

// Manager manages the global job queue and background tasks
type Manager struct {
	queue            *Queue
	rollover         PeriodicTask
	rolloverInterval time.Duration
	rolloverTicker   *time.Ticker
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetEnvInt("JOBQUEUE_WORKERS", 5)
		globalManager = NewManager(NewQueue(workerCount))
	})
	return globalManager
}

// NewManager wraps an existing queue
func NewManager(q *Queue) *Manager {
	return &Manager{
		queue:            q,
		rolloverInterval: defaultRolloverInterval,
		stopCh:           make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// SetPeriodRollover registers the billing-period rollover. A non-positive
// interval keeps the default of one hour.
func (m *Manager) SetPeriodRollover(task PeriodicTask, interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover = task
	if interval > 0 {
		m.rolloverInterval = interval
	}
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	if m.rollover != nil {
		m.rolloverTicker = time.NewTicker(m.rolloverInterval)
		m.wg.Add(1)
		go m.rolloverWorker(m.stopCh, m.rolloverTicker.C)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.rolloverTicker != nil {
		m.rolloverTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// rolloverWorker runs the rollover once at start and then on every tick
func (m *Manager) rolloverWorker(stopCh <-chan struct{}, tick <-chan time.Time) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started billing period worker (interval: %s)", m.rolloverInterval)

	m.runRolloverOnce()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Billing period worker stopping")
			return
		case <-tick:
			m.runRolloverOnce()
		}
	}
}

func (m *Manager) runRolloverOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := m.rollover(ctx); err != nil {
		log.Errorf("[JobQueue Manager] Billing period rollover error: %v", err)
	}
}

// RunRolloverOnce exposes a manual trigger for a single rollover pass (admin use).
func (m *Manager) RunRolloverOnce() {
	if m.rollover == nil {
		return
	}
	m.runRolloverOnce()
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
