package archive

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/dealerseo/seodash/internal/pkg/jobqueue"
)

// NewJobHandler returns the job-queue handler for webhook archive jobs.
func NewJobHandler(cfg *Config, up Uploader) jobqueue.Handler {
	return func(ctx context.Context, job *jobqueue.Job) error {
		payload, err := jobqueue.WebhookArchiveJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid archive payload: %w", err)
		}
		if payload.DeliveryID == "" {
			return fmt.Errorf("archive job %s has no delivery id", job.ID)
		}
		key := cfg.ObjectKey(payload.DeliveryID, payload.ReceivedAt)
		return up.Put(ctx, key, []byte(payload.Body), "application/json")
	}
}

// QueueArchiver hands raw deliveries to the job queue.
type QueueArchiver struct {
	queue jobqueue.Enqueuer
}

func NewQueueArchiver(q jobqueue.Enqueuer) *QueueArchiver {
	return &QueueArchiver{queue: q}
}

// Archive enqueues the payload. Failures are logged and dropped.
func (a *QueueArchiver) Archive(_ context.Context, p jobqueue.WebhookArchiveJobPayload) {
	if _, err := a.queue.EnqueueJob(jobqueue.JobTypeWebhookArchive, p.ToMap()); err != nil {
		log.Warnf("[Archive] failed to enqueue delivery %s: %v", p.DeliveryID, err)
	}
}
