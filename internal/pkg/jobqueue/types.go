package jobqueue

import (
	"context"
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeStatusNotification JobType = "status_notification"
	JobTypeWebhookArchive     JobType = "webhook_archive"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Handler executes one job. Returning an error schedules a retry.
type Handler func(ctx context.Context, job *Job) error

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// StatusNotificationJobPayload announces a request status change to its owner
type StatusNotificationJobPayload struct {
	RequestID    string `json:"request_id"`
	UserID       string `json:"user_id"`
	DealershipID string `json:"dealership_id"`
	Title        string `json:"title"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
	Source       string `json:"source"` // webhook, sync or dashboard
}

// ToMap converts the payload to a map for storage
func (p StatusNotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"request_id":    p.RequestID,
		"user_id":       p.UserID,
		"dealership_id": p.DealershipID,
		"title":         p.Title,
		"old_status":    p.OldStatus,
		"new_status":    p.NewStatus,
		"source":        p.Source,
	}
}

// StatusNotificationJobPayloadFromMap creates a payload from a map
func StatusNotificationJobPayloadFromMap(data map[string]interface{}) (*StatusNotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload StatusNotificationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// WebhookArchiveJobPayload carries a raw vendor delivery to object storage
type WebhookArchiveJobPayload struct {
	DeliveryID string    `json:"delivery_id"`
	EventType  string    `json:"event_type"`
	ExternalID string    `json:"external_id"`
	ReceivedAt time.Time `json:"received_at"`
	Body       string    `json:"body"`
}

// ToMap converts the payload to a map for storage
func (p WebhookArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"delivery_id": p.DeliveryID,
		"event_type":  p.EventType,
		"external_id": p.ExternalID,
		"received_at": p.ReceivedAt.Format(time.RFC3339Nano),
		"body":        p.Body,
	}
}

// WebhookArchiveJobPayloadFromMap creates a payload from a map
func WebhookArchiveJobPayloadFromMap(data map[string]interface{}) (*WebhookArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload WebhookArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// Enqueuer is the producer side of the queue
type Enqueuer interface {
	EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error)
}
