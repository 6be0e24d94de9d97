package seoworks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/database"
	"github.com/dealerseo/seodash/internal/pkg/jobqueue"
	"github.com/dealerseo/seodash/internal/pkg/notification"
	"github.com/dealerseo/seodash/internal/pkg/packages"
	"github.com/dealerseo/seodash/internal/pkg/quota"
	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

// inFlightWindow is how long an unprocessed delivery row is treated as owned
// by the request that inserted it. Older rows are assumed abandoned and are
// applied again.
const inFlightWindow = 2 * time.Minute

// errLostCreateRace marks a concurrent auto-create of the same task id.
var errLostCreateRace = errors.New("request for task id created concurrently")

// Archiver receives raw deliveries after they were recorded.
type Archiver interface {
	Archive(ctx context.Context, p jobqueue.WebhookArchiveJobPayload)
}

// ProgressInvalidator drops cached dealership progress.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, dealershipID string)
}

// Result is what the webhook endpoint echoes back.
type Result struct {
	RequestID string               `json:"requestId"`
	Status    models.RequestStatus `json:"status"`
	Created   bool                 `json:"created,omitempty"`
	Duplicate bool                 `json:"duplicate,omitempty"`
	changed   *notification.StatusChange
	dealer    string
}

// Service reconciles SEOWorks task events with stored requests.
type Service struct {
	repos    *repository.Repositories
	cfg      *Config
	notifier notification.Notifier
	archiver Archiver
	progress ProgressInvalidator
	now      func() time.Time
}

func NewService(repos *repository.Repositories, cfg *Config) *Service {
	return &Service{
		repos:    repos,
		cfg:      cfg,
		notifier: notification.Noop{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithNotifier(n notification.Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithArchiver(a Archiver) *Service {
	s.archiver = a
	return s
}

func (s *Service) WithProgressInvalidator(p ProgressInvalidator) *Service {
	s.progress = p
	return s
}

// Authenticate checks the shared secret. It touches no storage.
func (s *Service) Authenticate(provided string) error {
	if s.cfg.Secret == "" {
		log.Error("[Webhook] SEOWORKS_WEBHOOK_SECRET is not configured, rejecting delivery")
	}
	if !VerifySecret(s.cfg.Secret, provided) {
		return apperror.Unauthenticated("Invalid webhook secret")
	}
	return nil
}

// HandleDelivery records, deduplicates and applies one authenticated delivery.
func (s *Service) HandleDelivery(ctx context.Context, deliveryHeader string, body []byte) (*Result, error) {
	ev, err := ParseEvent(body)
	if err != nil {
		return nil, err
	}

	deliveryID := DeliveryID(deliveryHeader, body)
	record := &models.SeoworksWebhookEvent{
		DeliveryID:  deliveryID,
		EventType:   ev.EventType,
		ExternalID:  ev.Data.ExternalID,
		PayloadJSON: string(body),
	}
	created, stored, err := s.repos.WebhookEvent.CreateIfNotExists(record)
	if err != nil {
		return nil, apperror.Internal("record webhook delivery", err)
	}

	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		log.Infof("[Webhook] duplicate delivery %s for task %s", deliveryID, ev.Data.ExternalID)
		return s.duplicateResult(stored)
	}
	if !created && stored.ProcessedAt == nil && s.now().Sub(stored.CreatedAt) < inFlightWindow {
		log.Infof("[Webhook] delivery %s for task %s is still being processed", deliveryID, ev.Data.ExternalID)
		return s.inFlightResult(ev.Data.ExternalID)
	}

	if created && s.archiver != nil {
		s.archiver.Archive(ctx, jobqueue.WebhookArchiveJobPayload{
			DeliveryID: deliveryID,
			EventType:  ev.EventType,
			ExternalID: ev.Data.ExternalID,
			ReceivedAt: s.now(),
			Body:       string(body),
		})
	}

	res, applyErr := s.Apply(ctx, ev, "webhook")

	processingError, requestID := "", ""
	if applyErr != nil {
		processingError = applyErr.Error()
	} else {
		requestID = res.RequestID
	}
	if err := s.repos.WebhookEvent.MarkProcessed(stored.ID, requestID, processingError); err != nil {
		log.Warnf("[Webhook] failed to mark delivery %s processed: %v", deliveryID, err)
	}
	return res, applyErr
}

func (s *Service) duplicateResult(stored *models.SeoworksWebhookEvent) (*Result, error) {
	res := &Result{RequestID: stored.RequestID, Duplicate: true}
	if stored.RequestID == "" {
		return res, nil
	}
	req, err := s.repos.Request.GetByID(stored.RequestID)
	if err != nil {
		return nil, apperror.Internal("load request for duplicate delivery", err)
	}
	res.Status = req.Status
	return res, nil
}

// inFlightResult reports the current state without applying the event again.
func (s *Service) inFlightResult(externalID string) (*Result, error) {
	res := &Result{Duplicate: true}
	req, err := s.repos.Request.GetBySeoworksTaskID(externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, nil
	}
	if err != nil {
		return nil, apperror.Internal("load request for in-flight delivery", err)
	}
	res.RequestID = req.ID
	res.Status = req.Status
	return res, nil
}

// Apply reconciles one event inside a transaction and runs side effects
// after commit. A lost auto-create race is retried once against the row the
// other delivery created.
func (s *Service) Apply(ctx context.Context, ev *Event, source string) (*Result, error) {
	var res *Result
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.repos.Transaction(func(tx *repository.Repositories) error {
			var txErr error
			res, txErr = s.applyInTx(tx, ev)
			return txErr
		})
		if !errors.Is(err, errLostCreateRace) {
			break
		}
		log.Infof("[Webhook] task %s was created concurrently, re-reading", ev.Data.ExternalID)
	}
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.Internal("reconcile webhook event", err)
	}

	if res.changed != nil {
		res.changed.Source = source
		s.notifier.StatusChanged(ctx, *res.changed)
		if s.progress != nil {
			s.progress.Invalidate(ctx, res.dealer)
		}
	}
	return res, nil
}

func (s *Service) applyInTx(tx *repository.Repositories, ev *Event) (*Result, error) {
	externalID := ev.Data.ExternalID
	created := false

	req, err := tx.Request.GetBySeoworksTaskIDForUpdate(externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !s.cfg.Permissive() {
			return nil, apperror.NotFound(fmt.Sprintf("No request linked to SEOWorks task %s", externalID))
		}
		req, err = s.autoCreate(tx, ev)
		created = true
	}
	if err != nil {
		return nil, err
	}

	res := &Result{RequestID: req.ID, Status: req.Status, Created: created, dealer: req.DealershipID}
	old := req.Status
	if old.IsTerminal() {
		log.Infof("[Webhook] request %s already %s, ignoring %s", req.ID, old, ev.EventType)
		return res, nil
	}

	completed, err := s.applyEvent(req, ev)
	if err != nil {
		return nil, err
	}
	if notes := strings.TrimSpace(ev.Data.Notes); notes != "" {
		req.Notes = notes
	}
	if err := tx.Request.Update(req); err != nil {
		return nil, err
	}
	if completed {
		if err := quota.RecordCompletion(tx, req.DealershipID, req.TaskType()); err != nil {
			return nil, err
		}
	}

	res.Status = req.Status
	if req.Status != old || created {
		res.changed = &notification.StatusChange{
			RequestID:    req.ID,
			UserID:       req.UserID,
			DealershipID: req.DealershipID,
			Title:        req.Title,
			OldStatus:    old,
			NewStatus:    req.Status,
		}
	}
	return res, nil
}

// applyEvent mutates req and reports whether it was completed.
func (s *Service) applyEvent(req *models.Request, ev *Event) (bool, error) {
	switch ev.EventType {
	case EventTaskCompleted:
		return true, s.complete(req, ev)
	case EventTaskCancelled:
		return false, req.TransitionTo(models.RequestStatusCancelled, s.now())
	case EventTaskCreated:
		if req.Status == models.RequestStatusPending {
			return false, req.TransitionTo(models.RequestStatusInProgress, s.now())
		}
		return false, nil
	case EventTaskUpdated:
		target, err := models.ParseRequestStatus(ev.Data.Status)
		if err != nil {
			return false, apperror.Validation("Invalid webhook payload", map[string]string{"Event.Data.Status": "unknown"})
		}
		if target == req.Status {
			return false, nil
		}
		if target == models.RequestStatusCompleted {
			return true, s.complete(req, ev)
		}
		if err := req.TransitionTo(target, s.now()); err != nil {
			// out-of-order vendor updates never move a request backwards
			if errors.Is(err, models.ErrInvalidTransition) {
				log.Infof("[Webhook] ignoring %s -> %s for request %s", req.Status, target, req.ID)
				return false, nil
			}
			return false, err
		}
		return false, nil
	default:
		return false, apperror.Validation("Invalid webhook payload", map[string]string{"Event.EventType": "oneof"})
	}
}

func (s *Service) complete(req *models.Request, ev *Event) error {
	at := s.now()
	if t := ev.Data.CompletionDate.Ptr(); t != nil {
		at = t.UTC()
	}
	return req.MarkCompleted(at, s.completedTask(req, ev, at))
}

func (s *Service) completedTask(req *models.Request, ev *Event, at time.Time) *models.CompletedTask {
	task := &models.CompletedTask{
		Type:        req.Type,
		Title:       "Completed " + req.Type,
		CompletedAt: at,
	}
	d := ev.Data.FirstDeliverable()
	if d == nil {
		return task
	}
	if t, err := tasktype.Parse(d.Type); err == nil {
		task.Type = string(t)
	}
	if title := strings.TrimSpace(d.Title); title != "" {
		task.Title = title
	}
	task.URL = NormalizeURL(d.URL)
	task.PublishedDate = d.PublishedDate.Ptr()
	return task
}

// autoCreate builds a minimal request for an unknown task id.
func (s *Service) autoCreate(tx *repository.Repositories, ev *Event) (*models.Request, error) {
	user, err := s.fallbackUser(tx, ev.Data.ClientEmail)
	if err != nil {
		return nil, err
	}
	dealership, err := s.fallbackDealership(tx, user, ev.Data.ClientID)
	if err != nil {
		return nil, err
	}

	candidates := []string{}
	if d := ev.Data.FirstDeliverable(); d != nil {
		candidates = append(candidates, d.Type)
	}
	candidates = append(candidates, ev.Data.TaskType)
	t, ok := tasktype.Infer(ev.Data.ExternalID, candidates...)
	if !ok {
		t = tasktype.Maintenance
	}

	title := fmt.Sprintf("SEOWorks %s %s", strings.ReplaceAll(string(t), "_", " "), ev.Data.ExternalID)
	if d := ev.Data.FirstDeliverable(); d != nil && strings.TrimSpace(d.Title) != "" {
		title = strings.TrimSpace(d.Title)
	}

	externalID := ev.Data.ExternalID
	agencyID := dealership.AgencyID
	req := &models.Request{
		SeoworksTaskID: &externalID,
		UserID:         user.ID,
		DealershipID:   dealership.ID,
		AgencyID:       &agencyID,
		Title:          title,
		Type:           string(t),
		Status:         models.RequestStatusPending,
		Priority:       models.PRIORITY_MEDIUM,
		PackageType:    string(packages.ParseOrDefault(dealership.PackageType)),
	}
	if err := tx.Request.Create(req); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errLostCreateRace
		}
		return nil, err
	}
	log.Infof("[Webhook] auto-created request %s for task %s", req.ID, externalID)
	return req, nil
}

// fallbackUser prefers the user matching clientEmail, then the configured
// fallback email, then the oldest super admin.
func (s *Service) fallbackUser(tx *repository.Repositories, clientEmail string) (*models.User, error) {
	for _, email := range []string{clientEmail, s.cfg.FallbackUserEmail} {
		if strings.TrimSpace(email) == "" {
			continue
		}
		u, err := tx.User.GetByEmail(email)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	u, err := tx.User.GetFirstByRole(models.ROLE_SUPER_ADMIN)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("auto-create request", errors.New("no fallback user available"))
	}
	return u, err
}

// fallbackDealership uses clientId when it names a dealership, else the
// user's current dealership.
func (s *Service) fallbackDealership(tx *repository.Repositories, user *models.User, clientID string) (*models.Dealership, error) {
	if id := strings.TrimSpace(clientID); id != "" {
		d, err := tx.Dealership.GetByID(id)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if user.DealershipID == nil || *user.DealershipID == "" {
		return nil, apperror.Internal("auto-create request", fmt.Errorf("fallback user %s has no dealership", user.ID))
	}
	return tx.Dealership.GetByID(*user.DealershipID)
}
