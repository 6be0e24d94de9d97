package models

import "time"

// SeoworksWebhookEvent stores inbound vendor deliveries with deduplication
// metadata so a redelivered event is recognised before it is applied again.
type SeoworksWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	DeliveryID      string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"delivery_id"`
	EventType       string     `gorm:"type:varchar(50);not null;index" json:"event_type"`
	ExternalID      string     `gorm:"type:varchar(191);not null;default:'';index" json:"external_id"`
	PayloadJSON     string     `gorm:"type:text;not null" json:"payload_json"`
	RequestID       string     `gorm:"type:varchar(36);default:'';index" json:"request_id"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
