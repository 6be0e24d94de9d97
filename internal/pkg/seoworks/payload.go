package seoworks

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dealerseo/seodash/internal/pkg/apperror"
)

const (
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskCompleted = "task.completed"
	EventTaskCancelled = "task.cancelled"
)

// Time accepts RFC 3339 timestamps and plain dates.
type Time struct {
	time.Time
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	var err error
	for _, layout := range timeLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return err
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// Ptr returns nil for the zero time.
func (t *Time) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type Deliverable struct {
	Type          string `json:"type" validate:"required"`
	Title         string `json:"title" validate:"required"`
	URL           string `json:"url,omitempty"`
	PublishedDate *Time  `json:"publishedDate,omitempty"`
}

type EventData struct {
	ExternalID     string        `json:"externalId" validate:"required"`
	ClientID       string        `json:"clientId,omitempty"`
	ClientEmail    string        `json:"clientEmail,omitempty" validate:"omitempty,email"`
	TaskType       string        `json:"taskType" validate:"required"`
	Status         string        `json:"status" validate:"required"`
	CompletionDate *Time         `json:"completionDate,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Deliverables   []Deliverable `json:"deliverables,omitempty" validate:"omitempty,dive"`
}

// Event is the envelope SEOWorks posts for every task lifecycle change.
type Event struct {
	EventType string    `json:"eventType" validate:"required,oneof=task.created task.updated task.completed task.cancelled"`
	Timestamp Time      `json:"timestamp"`
	Data      EventData `json:"data"`
}

var validate = validator.New()

// ParseEvent decodes and validates a delivery body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&ev); err != nil {
		return nil, apperror.Validation("Invalid webhook payload", map[string]string{"body": err.Error()})
	}
	ev.Data.ExternalID = strings.TrimSpace(ev.Data.ExternalID)
	if err := validate.Struct(&ev); err != nil {
		return nil, apperror.FromValidator("Invalid webhook payload", err)
	}
	if ev.Timestamp.IsZero() {
		return nil, apperror.Validation("Invalid webhook payload", map[string]string{"Event.Timestamp": "required"})
	}
	return &ev, nil
}

// FirstDeliverable returns nil when none were reported.
func (d *EventData) FirstDeliverable() *Deliverable {
	if len(d.Deliverables) == 0 {
		return nil
	}
	return &d.Deliverables[0]
}

// NormalizeURL prefixes https:// when the vendor omitted the scheme.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + strings.TrimPrefix(u, "//")
}
