package seoworks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
)

// Task is the vendor's view of one task.
type Task struct {
	ExternalID     string        `json:"externalId"`
	ClientID       string        `json:"clientId,omitempty"`
	TaskType       string        `json:"taskType"`
	Status         string        `json:"status"`
	CompletionDate *Time         `json:"completionDate,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Deliverables   []Deliverable `json:"deliverables,omitempty"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client polls the SEOWorks API for task status.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient returns nil when no API base URL is configured.
func NewClient(cfg *Config) *Client {
	if cfg.APIBaseURL == "" {
		return nil
	}
	c := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2)
	if cfg.APIKey != "" {
		c.SetHeader("X-API-Key", cfg.APIKey)
	}
	return &Client{client: c, baseURL: cfg.APIBaseURL}
}

// GetTask fetches the current state of a vendor task.
func (c *Client) GetTask(ctx context.Context, externalID string) (*Task, error) {
	var task Task
	var e apiError
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&task).
		SetError(&e).
		Execute(http.MethodGet, "/tasks/"+url.PathEscape(externalID))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnavailable, "SEOWorks API unreachable", err)
	}
	switch {
	case res.StatusCode() == http.StatusNotFound:
		return nil, apperror.NotFound(fmt.Sprintf("SEOWorks task %s not found", externalID))
	case res.IsError():
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			msg = e.Error
		}
		return nil, apperror.Wrap(apperror.KindUnavailable, "SEOWorks API error",
			fmt.Errorf("status %d: %s", res.StatusCode(), msg))
	}
	if task.ExternalID == "" {
		task.ExternalID = externalID
	}
	return &task, nil
}

// EventFromTask turns a polled task into the equivalent lifecycle event.
func EventFromTask(t *Task, at Time) *Event {
	eventType := EventTaskUpdated
	if status, err := models.ParseRequestStatus(t.Status); err == nil {
		switch status {
		case models.RequestStatusCompleted:
			eventType = EventTaskCompleted
		case models.RequestStatusCancelled:
			eventType = EventTaskCancelled
		}
	}
	return &Event{
		EventType: eventType,
		Timestamp: at,
		Data: EventData{
			ExternalID:     t.ExternalID,
			ClientID:       t.ClientID,
			TaskType:       t.TaskType,
			Status:         t.Status,
			CompletionDate: t.CompletionDate,
			Notes:          t.Notes,
			Deliverables:   t.Deliverables,
		},
	}
}
