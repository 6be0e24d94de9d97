package repository

import (
	"github.com/dealerseo/seodash/app/models"
	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a repository for assistant conversation turns.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// Create inserts the messages in one statement, in the order given.
func (r *chatRepository) Create(msgs ...*models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return r.db.Create(msgs).Error
}

// ListRecentByUser returns the newest messages in chronological order.
func (r *chatRepository) ListRecentByUser(userID string, limit int) ([]models.ChatMessage, error) {
	var list []models.ChatMessage
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}
