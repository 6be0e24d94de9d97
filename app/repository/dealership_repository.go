package repository

import (
	"fmt"
	"time"

	"github.com/dealerseo/seodash/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dealershipRepository struct {
	db *gorm.DB
}

// NewDealershipRepository creates a new dealership repository instance
func NewDealershipRepository(db *gorm.DB) DealershipRepository {
	return &dealershipRepository{db: db}
}

func (r *dealershipRepository) Create(dealership *models.Dealership) error {
	return r.db.Create(dealership).Error
}

func (r *dealershipRepository) GetByID(id string) (*models.Dealership, error) {
	var d models.Dealership
	if err := r.db.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByIDForUpdate locks the row for the surrounding transaction. Drivers
// without row locks (sqlite) ignore the clause.
func (r *dealershipRepository) GetByIDForUpdate(id string) (*models.Dealership, error) {
	var d models.Dealership
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dealershipRepository) ListByAgency(agencyID string) ([]models.Dealership, error) {
	var list []models.Dealership
	err := r.db.Where("agency_id = ?", agencyID).Order("name ASC").Find(&list).Error
	return list, err
}

// ListPeriodEndedBefore returns dealerships whose billing period is over or
// was never assigned.
func (r *dealershipRepository) ListPeriodEndedBefore(t time.Time) ([]models.Dealership, error) {
	var list []models.Dealership
	err := r.db.Where("current_billing_period_end IS NULL OR current_billing_period_end <= ?", t).
		Find(&list).Error
	return list, err
}

func (r *dealershipRepository) Update(dealership *models.Dealership) error {
	return r.db.Save(dealership).Error
}

// IncrementUsage adds delta to one of the *_used_this_period columns.
func (r *dealershipRepository) IncrementUsage(id, column string, delta int) error {
	switch column {
	case "pages_used_this_period", "blogs_used_this_period",
		"gbp_posts_used_this_period", "improvements_used_this_period":
	default:
		return fmt.Errorf("unknown usage column %q", column)
	}
	res := r.db.Model(&models.Dealership{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
