package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

const (
	PRIORITY_LOW    = "LOW"
	PRIORITY_MEDIUM = "MEDIUM"
	PRIORITY_HIGH   = "HIGH"
)

var (
	ErrTerminalStatus    = errors.New("request is already completed or cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown request status")
)

// ParseRequestStatus normalizes casing and the vendor's spellings.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "PENDING", "NEW", "QUEUED":
		return RequestStatusPending, nil
	case "IN_PROGRESS", "ACTIVE", "STARTED", "PROCESSING":
		return RequestStatusInProgress, nil
	case "COMPLETED", "COMPLETE", "DONE", "PUBLISHED":
		return RequestStatusCompleted, nil
	case "CANCELLED", "CANCELED":
		return RequestStatusCancelled, nil
	default:
		return "", ErrUnknownStatus
	}
}

// IsTerminal reports whether no further status change is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

func (s RequestStatus) rank() int {
	switch s {
	case RequestStatusPending:
		return 0
	case RequestStatusInProgress:
		return 1
	case RequestStatusCompleted:
		return 2
	default:
		return -1
	}
}

// CanTransition enforces PENDING -> IN_PROGRESS -> COMPLETED, with
// CANCELLED reachable from any non-terminal status.
func (s RequestStatus) CanTransition(to RequestStatus) error {
	if s.IsTerminal() {
		return ErrTerminalStatus
	}
	if to == RequestStatusCancelled {
		return nil
	}
	if to.rank() < 0 || to.rank() <= s.rank() {
		return ErrInvalidTransition
	}
	return nil
}

// RequestSummary is the type/status projection used for quota progress.
type RequestSummary struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// CompletedTask is a deliverable reported as finished.
type CompletedTask struct {
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	URL           string     `json:"url"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	CompletedAt   time.Time  `json:"completedAt"`
}

// Request is one SEO deliverable tracked through its status lifecycle.
type Request struct {
	ID                    string                             `gorm:"type:varchar(36);primaryKey" json:"id"`
	SeoworksTaskID        *string                            `gorm:"type:varchar(191);uniqueIndex" json:"seoworksTaskId,omitempty"`
	UserID                string                             `gorm:"type:varchar(36);not null;index" json:"userId"`
	DealershipID          string                             `gorm:"type:varchar(36);not null;index:idx_requests_dealership_status,priority:1" json:"dealershipId"`
	AgencyID              *string                            `gorm:"type:varchar(36);index" json:"agencyId,omitempty"`
	Title                 string                             `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Description           string                             `gorm:"type:text" json:"description"`
	Type                  string                             `gorm:"type:varchar(20);not null;index" json:"type" validate:"oneof=page blog gbp_post improvement maintenance"`
	Status                RequestStatus                      `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_requests_dealership_status,priority:2" json:"status"`
	Priority              string                             `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority" validate:"oneof=LOW MEDIUM HIGH"`
	PackageType           string                             `gorm:"type:varchar(20)" json:"packageType"`
	TargetCities          datatypes.JSONSlice[string]        `json:"targetCities"`
	TargetModels          datatypes.JSONSlice[string]        `json:"targetModels"`
	Keywords              datatypes.JSONSlice[string]        `json:"keywords"`
	PagesCompleted        int                                `gorm:"not null;default:0" json:"pagesCompleted"`
	BlogsCompleted        int                                `gorm:"not null;default:0" json:"blogsCompleted"`
	GBPPostsCompleted     int                                `gorm:"column:gbp_posts_completed;not null;default:0" json:"gbpPostsCompleted"`
	ImprovementsCompleted int                                `gorm:"not null;default:0" json:"improvementsCompleted"`
	CompletedTasks        datatypes.JSONSlice[CompletedTask] `json:"completedTasks"`
	Notes                 string                             `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt             time.Time                          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time                          `gorm:"autoUpdateTime" json:"updatedAt"`
	CompletedAt           *time.Time                         `gorm:"type:timestamp;default:null;index" json:"completedAt,omitempty"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = RequestStatusPending
	}
	if r.Priority == "" {
		r.Priority = PRIORITY_MEDIUM
	}
	return nil
}

// TaskType returns the parsed deliverable type.
func (r *Request) TaskType() tasktype.Type {
	t, err := tasktype.Parse(r.Type)
	if err != nil {
		return ""
	}
	return t
}

// ExternalID returns the linked vendor task id or "".
func (r *Request) ExternalID() string {
	if r.SeoworksTaskID == nil {
		return ""
	}
	return *r.SeoworksTaskID
}

// MarkCompleted moves the request to COMPLETED, bumps the per-type counter
// and appends the deliverable record.
func (r *Request) MarkCompleted(at time.Time, task *CompletedTask) error {
	if err := r.Status.CanTransition(RequestStatusCompleted); err != nil {
		return err
	}
	r.Status = RequestStatusCompleted
	r.CompletedAt = &at
	r.incrementCounter()
	if task != nil {
		r.CompletedTasks = append(r.CompletedTasks, *task)
	}
	return nil
}

// TransitionTo applies a non-completing status change.
func (r *Request) TransitionTo(to RequestStatus, at time.Time) error {
	if to == RequestStatusCompleted {
		return r.MarkCompleted(at, nil)
	}
	if err := r.Status.CanTransition(to); err != nil {
		return err
	}
	r.Status = to
	return nil
}

func (r *Request) incrementCounter() {
	switch r.TaskType().Counter() {
	case tasktype.CounterPages:
		r.PagesCompleted++
	case tasktype.CounterBlogs:
		r.BlogsCompleted++
	case tasktype.CounterGBPPosts:
		r.GBPPostsCompleted++
	case tasktype.CounterImprovements:
		r.ImprovementsCompleted++
	}
}
