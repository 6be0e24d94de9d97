// Package notification fans request status changes out to the owning user,
// as an in-app notification row and an email, through the job queue.
package notification

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/jobqueue"
)

// StatusChange describes one request moving between statuses.
type StatusChange struct {
	RequestID    string
	UserID       string
	DealershipID string
	Title        string
	OldStatus    models.RequestStatus
	NewStatus    models.RequestStatus
	Source       string
}

// Notifier never reports failure to the caller.
type Notifier interface {
	StatusChanged(ctx context.Context, change StatusChange)
}

// Noop discards notifications.
type Noop struct{}

func (Noop) StatusChanged(context.Context, StatusChange) {}

// QueueNotifier enqueues a status notification job per change.
type QueueNotifier struct {
	queue jobqueue.Enqueuer
}

func NewQueueNotifier(q jobqueue.Enqueuer) *QueueNotifier {
	return &QueueNotifier{queue: q}
}

func (n *QueueNotifier) StatusChanged(_ context.Context, c StatusChange) {
	if c.UserID == "" || c.OldStatus == c.NewStatus {
		return
	}
	payload := jobqueue.StatusNotificationJobPayload{
		RequestID:    c.RequestID,
		UserID:       c.UserID,
		DealershipID: c.DealershipID,
		Title:        c.Title,
		OldStatus:    string(c.OldStatus),
		NewStatus:    string(c.NewStatus),
		Source:       c.Source,
	}
	if _, err := n.queue.EnqueueJob(jobqueue.JobTypeStatusNotification, payload.ToMap()); err != nil {
		log.Warnf("[Notification] failed to enqueue status change for request %s: %v", c.RequestID, err)
	}
}

// MailFunc sends one email.
type MailFunc func(to, subject, body string) error

// Processor executes status notification jobs.
type Processor struct {
	db   *gorm.DB
	send MailFunc
}

// NewProcessor creates a processor. A nil send disables email.
func NewProcessor(db *gorm.DB, send MailFunc) *Processor {
	return &Processor{db: db, send: send}
}

// Handle writes the in-app row once and then sends the email. A retried job
// does not duplicate the row.
func (p *Processor) Handle(ctx context.Context, job *jobqueue.Job) error {
	payload, err := jobqueue.StatusNotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	var user models.User
	if err := p.db.WithContext(ctx).Where("id = ?", payload.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Notification] user %s for request %s no longer exists", payload.UserID, payload.RequestID)
			return nil
		}
		return err
	}

	content := Message(payload.Title, payload.NewStatus)

	var existing int64
	err = p.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND reference_id = ? AND content = ?", user.ID, payload.RequestID, content).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing == 0 {
		if err := models.CreateNotification(p.db.WithContext(ctx), user.ID, models.NOTIFICATION_REQUEST_STATUS, content, payload.RequestID); err != nil {
			return err
		}
	}

	if p.send == nil || user.Email == "" {
		return nil
	}
	subject := fmt.Sprintf("Request update: %s", payload.Title)
	body := fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", html.EscapeString(user.Name), html.EscapeString(content))
	return p.send(user.Email, subject, body)
}

// Message is the human-readable status line.
func Message(title, status string) string {
	switch models.RequestStatus(status) {
	case models.RequestStatusInProgress:
		return fmt.Sprintf("Work has started on %q.", title)
	case models.RequestStatusCompleted:
		return fmt.Sprintf("%q has been completed.", title)
	case models.RequestStatusCancelled:
		return fmt.Sprintf("%q has been cancelled.", title)
	default:
		return fmt.Sprintf("%q is now %s.", title, status)
	}
}
