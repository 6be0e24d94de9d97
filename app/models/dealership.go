package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/internal/pkg/packages"
	"github.com/dealerseo/seodash/internal/pkg/tasktype"
)

// Dealership is the tenant that owns a package subscription and the
// per-period usage counters.
type Dealership struct {
	ID                         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name                       string     `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	AgencyID                   string     `gorm:"type:varchar(36);not null;index" json:"agency_id" validate:"required"`
	PackageType                string     `gorm:"type:varchar(20);not null;default:'SILVER'" json:"package_type" validate:"oneof=SILVER GOLD PLATINUM"`
	CurrentBillingPeriodStart  *time.Time `gorm:"type:timestamp;default:null" json:"current_billing_period_start,omitempty"`
	CurrentBillingPeriodEnd    *time.Time `gorm:"type:timestamp;default:null;index" json:"current_billing_period_end,omitempty"`
	PagesUsedThisPeriod        int        `gorm:"not null;default:0" json:"pages_used_this_period"`
	BlogsUsedThisPeriod        int        `gorm:"not null;default:0" json:"blogs_used_this_period"`
	GBPPostsUsedThisPeriod     int        `gorm:"column:gbp_posts_used_this_period;not null;default:0" json:"gbp_posts_used_this_period"`
	ImprovementsUsedThisPeriod int        `gorm:"not null;default:0" json:"improvements_used_this_period"`
	CreatedAt                  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Dealership) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.PackageType == "" {
		d.PackageType = string(packages.Default)
	}
	return nil
}

// Package resolves the stored tier, falling back to the default tier.
func (d *Dealership) Package() packages.Type {
	return packages.ParseOrDefault(d.PackageType)
}

// UsageColumn maps a quota counter to its usage column.
func UsageColumn(c tasktype.Counter) string {
	switch c {
	case tasktype.CounterPages:
		return "pages_used_this_period"
	case tasktype.CounterBlogs:
		return "blogs_used_this_period"
	case tasktype.CounterGBPPosts:
		return "gbp_posts_used_this_period"
	case tasktype.CounterImprovements:
		return "improvements_used_this_period"
	default:
		return ""
	}
}

// ResetUsage zeroes the four per-period counters.
func (d *Dealership) ResetUsage() {
	d.PagesUsedThisPeriod = 0
	d.BlogsUsedThisPeriod = 0
	d.GBPPostsUsedThisPeriod = 0
	d.ImprovementsUsedThisPeriod = 0
}

// Period returns the current billing window. A dealership that never had one
// assigned is treated as being in the calendar month containing now.
func (d *Dealership) Period(now time.Time) (time.Time, time.Time) {
	if d.CurrentBillingPeriodStart != nil && d.CurrentBillingPeriodEnd != nil {
		return *d.CurrentBillingPeriodStart, *d.CurrentBillingPeriodEnd
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
