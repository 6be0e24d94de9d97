// Package testutil provides in-memory fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/database"
)

var dbSeq atomic.Int64

// NewTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	cfg := database.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Tenant is a seeded agency with one dealership and one user of each role.
type Tenant struct {
	Agency      *models.Agency
	Dealership  *models.Dealership
	User        *models.User
	AgencyAdmin *models.User
	SuperAdmin  *models.User
}

// SeedTenant creates an agency, a dealership on pkg with a billing period
// around now, and three users.
func SeedTenant(t *testing.T, db *gorm.DB, pkg string) *Tenant {
	t.Helper()

	seq := dbSeq.Add(1)
	agency := &models.Agency{Name: "Agency", Slug: fmt.Sprintf("agency-%d", seq)}
	mustCreate(t, db, agency)

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	dealership := &models.Dealership{
		Name:                      "Dealer",
		AgencyID:                  agency.ID,
		PackageType:               pkg,
		CurrentBillingPeriodStart: &start,
		CurrentBillingPeriodEnd:   &end,
	}
	mustCreate(t, db, dealership)

	user := &models.User{
		Name:         "Dealer User",
		Email:        fmt.Sprintf("user-%d@example.com", seq),
		Role:         models.ROLE_USER,
		AgencyID:     &agency.ID,
		DealershipID: &dealership.ID,
	}
	mustCreate(t, db, user)

	admin := &models.User{
		Name:         "Agency Admin",
		Email:        fmt.Sprintf("admin-%d@example.com", seq),
		Role:         models.ROLE_AGENCY_ADMIN,
		AgencyID:     &agency.ID,
		DealershipID: &dealership.ID,
	}
	mustCreate(t, db, admin)

	super := &models.User{
		Name:  "Super Admin",
		Email: fmt.Sprintf("super-%d@example.com", seq),
		Role:  models.ROLE_SUPER_ADMIN,
	}
	mustCreate(t, db, super)

	return &Tenant{Agency: agency, Dealership: dealership, User: user, AgencyAdmin: admin, SuperAdmin: super}
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

// CountRows returns the number of rows in model's table.
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
