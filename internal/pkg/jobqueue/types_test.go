package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Status Notification", JobTypeStatusNotification, "status_notification"},
		{"Webhook Archive", JobTypeWebhookArchive, "webhook_archive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name:      "Failed job with retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3},
			retryable: true,
		},
		{
			name:      "Failed job with no retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "Completed job",
			job:       &Job{Status: JobStatusCompleted, RetryCount: 1, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "Pending job",
			job:       &Job{Status: JobStatusPending, MaxRetries: 3},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, ErrorMsg: "old"}

	before := time.Now()
	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)
	assert.False(t, job.ProcessedAt.Before(before))

	job.MarkAsFailed("smtp timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "smtp timeout", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestStatusNotificationJobPayloadRoundTrip(t *testing.T) {
	payload := StatusNotificationJobPayload{
		RequestID:    "req-1",
		UserID:       "user-1",
		DealershipID: "dealer-1",
		Title:        "New Models Page",
		OldStatus:    "IN_PROGRESS",
		NewStatus:    "COMPLETED",
		Source:       "webhook",
	}

	m := payload.ToMap()
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "COMPLETED", m["new_status"])

	got, err := StatusNotificationJobPayloadFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, &payload, got)
}

func TestWebhookArchiveJobPayloadFromMap(t *testing.T) {
	received := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	payload := WebhookArchiveJobPayload{
		DeliveryID: "hash:abc",
		EventType:  "task.completed",
		ExternalID: "task-p-1",
		ReceivedAt: received,
		Body:       `{"eventType":"task.completed"}`,
	}

	got, err := WebhookArchiveJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.True(t, got.ReceivedAt.Equal(received))
	assert.Equal(t, payload.Body, got.Body)
}

func TestPayloadFromMap_InvalidData(t *testing.T) {
	data := map[string]interface{}{
		"request_id": make(chan int), // channels can't be marshaled to JSON
	}

	payload, err := StatusNotificationJobPayloadFromMap(data)
	assert.Error(t, err)
	assert.Nil(t, payload)
}
