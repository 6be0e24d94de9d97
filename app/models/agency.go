package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Agency groups dealerships and the users that manage them.
type Agency struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Slug        string       `gorm:"type:varchar(100);uniqueIndex" json:"slug" validate:"required,max=100"`
	Dealerships []Dealership `gorm:"foreignKey:AgencyID" json:"dealerships,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Agency) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
