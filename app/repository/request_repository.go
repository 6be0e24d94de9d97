package repository

import (
	"time"

	"github.com/dealerseo/seodash/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultRequestPageSize = 50

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository instance
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(request *models.Request) error {
	return r.db.Create(request).Error
}

func (r *requestRepository) GetByID(id string) (*models.Request, error) {
	var req models.Request
	if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetBySeoworksTaskID(externalID string) (*models.Request, error) {
	var req models.Request
	if err := r.db.Where("seoworks_task_id = ?", externalID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByIDForUpdate and GetBySeoworksTaskIDForUpdate lock the row until the
// surrounding transaction ends, so status changes are applied one at a time.
func (r *requestRepository) GetByIDForUpdate(id string) (*models.Request, error) {
	return r.firstLocked("id = ?", id)
}

func (r *requestRepository) GetBySeoworksTaskIDForUpdate(externalID string) (*models.Request, error) {
	return r.firstLocked("seoworks_task_id = ?", externalID)
}

func (r *requestRepository) firstLocked(query string, arg string) (*models.Request, error) {
	var req models.Request
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where(query, arg).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Update(request *models.Request) error {
	return r.db.Save(request).Error
}

// List returns requests newest first.
func (r *requestRepository) List(filter RequestFilter) ([]models.Request, error) {
	q := r.db.Model(&models.Request{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.DealershipID != "" {
		q = q.Where("dealership_id = ?", filter.DealershipID)
	}
	if filter.AgencyID != "" {
		q = q.Where("agency_id = ?", filter.AgencyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultRequestPageSize
	}

	var list []models.Request
	err := q.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *requestRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Request{}).Count(&count).Error
	return count, err
}

// ListSummariesForPeriod returns type/status pairs of the dealership's
// requests that were created or completed inside [start, end).
func (r *requestRepository) ListSummariesForPeriod(dealershipID string, start, end time.Time) ([]models.RequestSummary, error) {
	var rows []models.RequestSummary
	err := r.db.Model(&models.Request{}).
		Select("type, status").
		Where("dealership_id = ?", dealershipID).
		Where("(created_at >= ? AND created_at < ?) OR (completed_at >= ? AND completed_at < ?)", start, end, start, end).
		Scan(&rows).Error
	return rows, err
}
