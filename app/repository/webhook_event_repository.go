package repository

import (
	"time"

	"github.com/dealerseo/seodash/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a repository for vendor delivery records.
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless its delivery id was seen
// before. The stored row is returned either way.
func (r *webhookEventRepository) CreateIfNotExists(event *models.SeoworksWebhookEvent) (bool, *models.SeoworksWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "delivery_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.SeoworksWebhookEvent
	if err := r.db.Where("delivery_id = ?", event.DeliveryID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *webhookEventRepository) MarkProcessed(id uint, requestID, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"request_id":       requestID,
		"processing_error": processingError,
	}
	return r.db.Model(&models.SeoworksWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *webhookEventRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.SeoworksWebhookEvent{}).Count(&count).Error
	return count, err
}
