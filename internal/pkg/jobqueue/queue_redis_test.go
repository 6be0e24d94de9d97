package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestQueue_ProcessesRegisteredHandler(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	queue := NewQueueWithClient(client, 2)

	received := make(chan *StatusNotificationJobPayload, 1)
	queue.RegisterHandler(JobTypeStatusNotification, func(ctx context.Context, job *Job) error {
		p, err := StatusNotificationJobPayloadFromMap(job.Payload)
		if err != nil {
			return err
		}
		received <- p
		return nil
	})

	queue.Start()
	defer queue.Stop()

	job, err := queue.EnqueueJob(JobTypeStatusNotification, StatusNotificationJobPayload{
		RequestID: "req-1",
		NewStatus: "COMPLETED",
	}.ToMap())
	require.NoError(t, err)

	select {
	case p := <-received:
		assert.Equal(t, "req-1", p.RequestID)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	// completed jobs are removed from redis
	assert.True(t, waitFor(func() bool {
		_, err := queue.GetJob(context.Background(), job.ID)
		return err != nil
	}, 2*time.Second))
}

func TestQueue_FailedJobIsRetried(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	queue := NewQueueWithClient(client, 1)
	queue.retryBackoff = 10 * time.Millisecond

	var attempts atomic.Int32
	queue.RegisterHandler(JobTypeWebhookArchive, func(ctx context.Context, job *Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("bucket unavailable")
		}
		return nil
	})

	queue.Start()
	defer queue.Stop()

	_, err := queue.EnqueueJob(JobTypeWebhookArchive, WebhookArchiveJobPayload{DeliveryID: "d-1"}.ToMap())
	require.NoError(t, err)

	assert.True(t, waitFor(func() bool { return attempts.Load() >= 2 }, 5*time.Second))
}

func TestQueue_UnknownJobTypeFails(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	queue := NewQueueWithClient(client, 1)

	job := &Job{ID: "job-x", Type: JobType("unknown"), MaxRetries: 0}
	queue.processJob(context.Background(), job)

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMsg, "unknown job type")
}

func TestQueue_HandlerPanicIsRecordedAsFailure(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	queue := NewQueueWithClient(client, 1)
	queue.RegisterHandler(JobTypeWebhookArchive, func(ctx context.Context, job *Job) error {
		panic("nil bucket")
	})

	job := &Job{ID: "job-panic", Type: JobTypeWebhookArchive, MaxRetries: 0}
	queue.processJob(context.Background(), job)

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMsg, "handler panic: nil bucket")

	stored, err := queue.GetJob(context.Background(), "job-panic")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
}

func TestQueue_RequeueStuckMovesStalledJobsBack(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	queue := NewQueueWithClient(client, 1)
	ctx := context.Background()
	now := time.Now()

	stalledAt := now.Add(-time.Hour)
	recentAt := now.Add(-time.Minute)
	put := func(job *Job) {
		data, err := json.Marshal(job)
		require.NoError(t, err)
		require.NoError(t, client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err())
		require.NoError(t, client.LPush(ctx, JobProcessingKey, job.ID).Err())
	}
	put(&Job{ID: "stalled", Type: JobTypeWebhookArchive, Status: JobStatusProcessing, ProcessedAt: &stalledAt})
	put(&Job{ID: "recent", Type: JobTypeWebhookArchive, Status: JobStatusProcessing, ProcessedAt: &recentAt})
	put(&Job{ID: "settled", Type: JobTypeWebhookArchive, Status: JobStatusFailed, ProcessedAt: &stalledAt})
	require.NoError(t, client.LPush(ctx, JobProcessingKey, "orphan").Err())

	n, err := queue.requeueStuck(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"stalled"}, pending)

	processing, err := client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"recent"}, processing)

	job, err := queue.GetJob(ctx, "stalled")
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, job.Status)
}
