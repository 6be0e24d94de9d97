// Package requests implements the request store operations behind the
// dashboard API: filing work, reading it back and moving it through its
// status lifecycle.
package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/access"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/database"
	"github.com/dealerseo/seodash/internal/pkg/notification"
	"github.com/dealerseo/seodash/internal/pkg/quota"
	"github.com/dealerseo/seodash/internal/pkg/seoworks"
	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

var validate = validator.New()

// CreateInput is the body of POST /requests.
type CreateInput struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  string   `json:"description" validate:"max=5000"`
	Type         string   `json:"type" validate:"required"`
	Priority     string   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH low medium high"`
	DealershipID string   `json:"dealershipId"`
	TargetCities []string `json:"targetCities" validate:"max=50"`
	TargetModels []string `json:"targetModels" validate:"max=50"`
	Keywords     []string `json:"keywords" validate:"max=100"`
}

// ListFilter is the caller-facing filter. Scoping by role is applied on top.
type ListFilter struct {
	DealershipID string
	Status       string
	Type         string
	Offset       int
	Limit        int
}

// VendorClient fetches a task from SEOWorks.
type VendorClient interface {
	GetTask(ctx context.Context, externalID string) (*seoworks.Task, error)
}

// Reconciler applies a vendor event through the webhook reconciliation path.
type Reconciler interface {
	Apply(ctx context.Context, ev *seoworks.Event, source string) (*seoworks.Result, error)
}

// ProgressInvalidator drops cached dealership progress.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, dealershipID string)
}

type Service struct {
	repos      *repository.Repositories
	notifier   notification.Notifier
	progress   ProgressInvalidator
	vendor     VendorClient
	reconciler Reconciler
	now        func() time.Time
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{
		repos:    repos,
		notifier: notification.Noop{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithNotifier(n notification.Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithProgressInvalidator(p ProgressInvalidator) *Service {
	s.progress = p
	return s
}

// WithVendorSync enables SyncFromVendor.
func (s *Service) WithVendorSync(client VendorClient, r Reconciler) *Service {
	s.vendor = client
	s.reconciler = r
	return s
}

// Create files a new PENDING request against the actor's current dealership
// or an explicit one the actor may access.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (*models.Request, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(&in); err != nil {
		return nil, apperror.FromValidator("Invalid request", err)
	}
	t, err := tasktype.Parse(in.Type)
	if err != nil {
		return nil, apperror.Validation("Invalid request", map[string]string{"CreateInput.Type": "oneof"})
	}

	dealershipID := strings.TrimSpace(in.DealershipID)
	if dealershipID == "" {
		dealershipID = actor.DealershipID
	}
	if dealershipID == "" {
		return nil, apperror.Validation("No dealership selected", map[string]string{"CreateInput.DealershipID": "required"})
	}
	d, err := s.loadDealership(dealershipID)
	if err != nil {
		return nil, err
	}
	if err := access.CanCreateRequest(actor, d); err != nil {
		return nil, err
	}

	priority := strings.ToUpper(in.Priority)
	if priority == "" {
		priority = models.PRIORITY_MEDIUM
	}
	agencyID := d.AgencyID
	req := &models.Request{
		UserID:       actor.UserID,
		DealershipID: d.ID,
		AgencyID:     &agencyID,
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Type:         string(t),
		Status:       models.RequestStatusPending,
		Priority:     priority,
		PackageType:  string(d.Package()),
		TargetCities: in.TargetCities,
		TargetModels: in.TargetModels,
		Keywords:     in.Keywords,
	}
	if err := s.repos.Request.Create(req); err != nil {
		return nil, apperror.Internal("create request", err)
	}
	log.Infof("[Requests] user %s created %s request %s", actor.UserID, req.Type, req.ID)
	s.invalidate(ctx, d.ID)
	return req, nil
}

// Get returns one request the actor may read.
func (s *Service) Get(_ context.Context, actor access.Actor, id string) (*models.Request, error) {
	req, d, err := s.load(s.repos, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadRequest(actor, req, d); err != nil {
		return nil, err
	}
	return req, nil
}

// List returns requests visible to the actor, newest first.
func (s *Service) List(_ context.Context, actor access.Actor, f ListFilter) ([]models.Request, error) {
	rf := repository.RequestFilter{
		DealershipID: strings.TrimSpace(f.DealershipID),
		Offset:       f.Offset,
		Limit:        f.Limit,
	}
	if f.Status != "" {
		st, err := models.ParseRequestStatus(f.Status)
		if err != nil {
			return nil, apperror.Validation("Invalid filter", map[string]string{"status": "oneof"})
		}
		rf.Status = st
	}
	if f.Type != "" {
		t, err := tasktype.Parse(f.Type)
		if err != nil {
			return nil, apperror.Validation("Invalid filter", map[string]string{"type": "oneof"})
		}
		rf.Type = string(t)
	}

	if rf.DealershipID != "" {
		d, err := s.loadDealership(rf.DealershipID)
		if err != nil {
			return nil, err
		}
		if err := access.CanReadDealership(actor, d); err != nil {
			return nil, err
		}
	} else {
		switch {
		case actor.IsSuperAdmin():
		case actor.IsAgencyAdmin():
			if actor.AgencyID == "" {
				return nil, apperror.Forbidden("Access denied")
			}
			rf.AgencyID = actor.AgencyID
		default:
			if actor.DealershipID == "" {
				rf.UserID = actor.UserID
			} else {
				rf.DealershipID = actor.DealershipID
			}
		}
	}

	list, err := s.repos.Request.List(rf)
	if err != nil {
		return nil, apperror.Internal("list requests", err)
	}
	return list, nil
}

// UpdateStatus moves a request forward. Terminal requests are rejected and
// left untouched. Completion bumps the dealership usage in the same
// transaction.
func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id, status string) (*models.Request, error) {
	to, err := models.ParseRequestStatus(status)
	if err != nil {
		return nil, apperror.Validation("Invalid status", map[string]string{"status": "oneof"})
	}

	var req *models.Request
	var old models.RequestStatus
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		r, d, err := s.loadWith(tx, tx.Request.GetByIDForUpdate, id)
		if err != nil {
			return err
		}
		if err := access.CanUpdateRequestStatus(actor, r, d, to); err != nil {
			return err
		}
		old = r.Status

		now := s.now()
		if to == models.RequestStatusCompleted {
			err = r.MarkCompleted(now, &models.CompletedTask{Title: r.Title, Type: r.Type, CompletedAt: now})
		} else {
			err = r.TransitionTo(to, now)
		}
		if err != nil {
			return transitionError(err, r.Status, to)
		}
		if err := tx.Request.Update(r); err != nil {
			return err
		}
		if to == models.RequestStatusCompleted {
			if err := quota.RecordCompletion(tx, r.DealershipID, r.TaskType()); err != nil {
				return err
			}
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, wrapInternal("update request status", err)
	}

	log.Infof("[Requests] %s moved request %s %s -> %s", actor.UserID, req.ID, old, req.Status)
	s.notifier.StatusChanged(ctx, notification.StatusChange{
		RequestID:    req.ID,
		UserID:       req.UserID,
		DealershipID: req.DealershipID,
		Title:        req.Title,
		OldStatus:    old,
		NewStatus:    req.Status,
		Source:       "dashboard",
	})
	s.invalidate(ctx, req.DealershipID)
	return req, nil
}

// LinkExternalTask attaches a SEOWorks task id to a request.
func (s *Service) LinkExternalTask(_ context.Context, actor access.Actor, id, externalID string) (*models.Request, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" || len(externalID) > 191 {
		return nil, apperror.Validation("Invalid external task id", map[string]string{"externalId": "required"})
	}
	req, d, err := s.load(s.repos, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanLinkExternalTask(actor, d); err != nil {
		return nil, err
	}
	if req.ExternalID() == externalID {
		return req, nil
	}
	if req.ExternalID() != "" {
		return nil, apperror.Conflict(fmt.Sprintf("Request is already linked to SEOWorks task %s", req.ExternalID()))
	}

	req.SeoworksTaskID = &externalID
	if err := s.repos.Request.Update(req); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperror.Conflict(fmt.Sprintf("SEOWorks task %s is already linked to another request", externalID))
		}
		return nil, apperror.Internal("link external task", err)
	}
	log.Infof("[Requests] linked request %s to SEOWorks task %s", req.ID, externalID)
	return req, nil
}

// SyncFromVendor polls SEOWorks for the linked task and reconciles the
// result exactly like a webhook delivery.
func (s *Service) SyncFromVendor(ctx context.Context, actor access.Actor, id string) (*models.Request, error) {
	if s.vendor == nil || s.reconciler == nil {
		return nil, apperror.Unavailable("SEOWorks API is not configured")
	}
	req, d, err := s.load(s.repos, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadRequest(actor, req, d); err != nil {
		return nil, err
	}
	externalID := req.ExternalID()
	if externalID == "" {
		return nil, apperror.Validation("Request is not linked to a SEOWorks task", nil)
	}

	task, err := s.vendor.GetTask(ctx, externalID)
	if err != nil {
		return nil, err
	}
	task.ExternalID = externalID
	if _, err := s.reconciler.Apply(ctx, seoworks.EventFromTask(task, seoworks.Time{Time: s.now()}), "sync"); err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

func (s *Service) load(repos *repository.Repositories, id string) (*models.Request, *models.Dealership, error) {
	return s.loadWith(repos, repos.Request.GetByID, id)
}

// loadWith lets UpdateStatus read the request under a row lock.
func (s *Service) loadWith(repos *repository.Repositories, get func(string) (*models.Request, error), id string) (*models.Request, *models.Dealership, error) {
	req, err := get(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.NotFound("Request not found")
	}
	if err != nil {
		return nil, nil, apperror.Internal("load request", err)
	}
	d, err := repos.Dealership.GetByID(req.DealershipID)
	if err != nil {
		return nil, nil, apperror.Internal("load request dealership", err)
	}
	return req, d, nil
}

func (s *Service) loadDealership(id string) (*models.Dealership, error) {
	d, err := s.repos.Dealership.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Dealership not found")
	}
	if err != nil {
		return nil, apperror.Internal("load dealership", err)
	}
	return d, nil
}

func (s *Service) invalidate(ctx context.Context, dealershipID string) {
	if s.progress != nil {
		s.progress.Invalidate(ctx, dealershipID)
	}
}

func transitionError(err error, from, to models.RequestStatus) error {
	switch {
	case errors.Is(err, models.ErrTerminalStatus):
		return apperror.Conflict(fmt.Sprintf("Request is already %s", strings.ToLower(string(from))))
	case errors.Is(err, models.ErrInvalidTransition):
		return apperror.Conflict(fmt.Sprintf("Cannot move request from %s to %s", from, to))
	}
	return err
}

func wrapInternal(op string, err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal(op, err)
}
