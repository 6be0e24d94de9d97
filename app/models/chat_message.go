package models

import "time"

const (
	CHAT_ROLE_USER      = "user"
	CHAT_ROLE_ASSISTANT = "assistant"
)

// ChatMessage is one turn of a user's conversation with the SEO assistant.
type ChatMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	DealershipID string    `gorm:"type:varchar(36);index" json:"dealership_id,omitempty"`
	Role         string    `gorm:"type:varchar(20);not null" json:"role"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
