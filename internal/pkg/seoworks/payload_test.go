package seoworks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerseo/seodash/internal/pkg/apperror"
)

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"eventType": "task.completed",
		"timestamp": "2026-10-16T09:00:00Z",
		"data": {
			"externalId": " task-p-123 ",
			"taskType": "page",
			"status": "completed",
			"completionDate": "2026-10-15",
			"deliverables": [{"type": "page", "title": "X", "url": "example.com/x", "publishedDate": "2026-10-14T08:00:00.000Z"}]
		}
	}`)

	ev, err := ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventTaskCompleted, ev.EventType)
	assert.Equal(t, "task-p-123", ev.Data.ExternalID)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), *ev.Data.CompletionDate.Ptr())
	require.NotNil(t, ev.Data.FirstDeliverable())
	assert.Equal(t, time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC), *ev.Data.FirstDeliverable().PublishedDate.Ptr())
}

func TestParseEventValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"eventType":`},
		{"unknown event", `{"eventType":"task.deleted","timestamp":"2026-10-16T09:00:00Z","data":{"externalId":"t","taskType":"page","status":"x"}}`},
		{"missing external id", `{"eventType":"task.updated","timestamp":"2026-10-16T09:00:00Z","data":{"externalId":"  ","taskType":"page","status":"x"}}`},
		{"missing task type", `{"eventType":"task.updated","timestamp":"2026-10-16T09:00:00Z","data":{"externalId":"t","status":"x"}}`},
		{"missing timestamp", `{"eventType":"task.updated","data":{"externalId":"t","taskType":"page","status":"x"}}`},
		{"bad timestamp", `{"eventType":"task.updated","timestamp":"yesterday","data":{"externalId":"t","taskType":"page","status":"x"}}`},
		{"bad client email", `{"eventType":"task.updated","timestamp":"2026-10-16T09:00:00Z","data":{"externalId":"t","taskType":"page","status":"x","clientEmail":"nope"}}`},
		{"deliverable without title", `{"eventType":"task.completed","timestamp":"2026-10-16T09:00:00Z","data":{"externalId":"t","taskType":"page","status":"x","deliverables":[{"type":"page"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent([]byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/x", NormalizeURL("example.com/x"))
	assert.Equal(t, "https://example.com/x", NormalizeURL("  //example.com/x "))
	assert.Equal(t, "http://example.com", NormalizeURL("http://example.com"))
	assert.Equal(t, "HTTPS://example.com", NormalizeURL("HTTPS://example.com"))
	assert.Equal(t, "", NormalizeURL("   "))
}

func TestVerifySecret(t *testing.T) {
	assert.True(t, VerifySecret("s3cret", "s3cret"))
	assert.False(t, VerifySecret("s3cret", "s3cre"))
	assert.False(t, VerifySecret("s3cret", ""))
	assert.False(t, VerifySecret("", ""))
}

func TestDeliveryID(t *testing.T) {
	assert.Equal(t, "evt-1", DeliveryID(" evt-1 ", []byte("{}")))

	a := DeliveryID("", []byte(`{"a":1}`))
	b := DeliveryID("", []byte(`{"a":1}`))
	c := DeliveryID("", []byte(`{"a":2}`))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "hash:")
}
