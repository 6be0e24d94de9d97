package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NOTIFICATION_REQUEST_STATUS = "request_status"
	NOTIFICATION_SYSTEM         = "system"
)

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);index" json:"user_id"`
	Type        string    `gorm:"type:varchar(50)" json:"type" validate:"oneof=request_status system"`
	Content     string    `gorm:"type:text" json:"content"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
	ReferenceID string    `gorm:"type:varchar(36)" json:"reference_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MarkAsRead flags the notification as read.
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}

// CreateNotification stores an unread in-app notification.
func CreateNotification(db *gorm.DB, userID, notificationType, content, referenceID string) error {
	notification := Notification{
		UserID:      userID,
		Type:        notificationType,
		Content:     content,
		ReferenceID: referenceID,
		IsRead:      false,
	}

	return db.Create(&notification).Error
}
