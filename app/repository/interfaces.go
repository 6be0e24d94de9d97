package repository

import (
	"time"

	"github.com/dealerseo/seodash/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetFirstByRole(role string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// AgencyRepository defines the interface for agency-related database operations
type AgencyRepository interface {
	Create(agency *models.Agency) error
	GetByID(id string) (*models.Agency, error)
	GetBySlug(slug string) (*models.Agency, error)
	List() ([]models.Agency, error)
}

// DealershipRepository defines the interface for dealership-related database operations
type DealershipRepository interface {
	Create(dealership *models.Dealership) error
	GetByID(id string) (*models.Dealership, error)
	GetByIDForUpdate(id string) (*models.Dealership, error)
	ListByAgency(agencyID string) ([]models.Dealership, error)
	ListPeriodEndedBefore(t time.Time) ([]models.Dealership, error)
	Update(dealership *models.Dealership) error
	IncrementUsage(id, column string, delta int) error
}

// RequestFilter narrows List results. Empty fields are ignored.
type RequestFilter struct {
	UserID       string
	DealershipID string
	AgencyID     string
	Status       models.RequestStatus
	Type         string
	Offset       int
	Limit        int
}

// RequestRepository defines the interface for request-related database operations
type RequestRepository interface {
	Create(request *models.Request) error
	GetByID(id string) (*models.Request, error)
	GetBySeoworksTaskID(externalID string) (*models.Request, error)
	GetByIDForUpdate(id string) (*models.Request, error)
	GetBySeoworksTaskIDForUpdate(externalID string) (*models.Request, error)
	Update(request *models.Request) error
	List(filter RequestFilter) ([]models.Request, error)
	Count() (int64, error)
	ListSummariesForPeriod(dealershipID string, start, end time.Time) ([]models.RequestSummary, error)
}

// WebhookEventRepository persists inbound vendor deliveries.
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.SeoworksWebhookEvent) (bool, *models.SeoworksWebhookEvent, error)
	MarkProcessed(id uint, requestID, processingError string) error
	Count() (int64, error)
}

// ChatRepository stores assistant conversation turns.
type ChatRepository interface {
	Create(msgs ...*models.ChatMessage) error
	ListRecentByUser(userID string, limit int) ([]models.ChatMessage, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	db           *gorm.DB
	User         UserRepository
	Agency       AgencyRepository
	Dealership   DealershipRepository
	Request      RequestRepository
	WebhookEvent WebhookEventRepository
	Chat         ChatRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		User:         NewUserRepository(db),
		Agency:       NewAgencyRepository(db),
		Dealership:   NewDealershipRepository(db),
		Request:      NewRequestRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		Chat:         NewChatRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database
// transaction. Returning an error rolls back.
func (r *Repositories) Transaction(fn func(tx *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
