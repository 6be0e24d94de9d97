package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

// GetDB returns the process-wide handle set by SetupDatabase.
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the process-wide handle (tests, CLI tools).
func SetDB(db *gorm.DB) {
	DB = db
}

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.Agency{},
		&models.Dealership{},
		&models.User{},
		&models.Request{},
		&models.SeoworksWebhookEvent{},
		&models.Notification{},
		&models.ChatMessage{},
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Config returns the GORM options shared by the server and tests.
func Config() *gorm.Config {
	level := logger.Warn
	if env.IsDev() {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func dialector() (gorm.Dialector, string) {
	driver := strings.ToLower(env.GetEnv("DB_DRIVER", "mysql"))
	switch driver {
	case "postgres", "postgresql":
		dsn := env.GetEnv("DATABASE_URL", "")
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				env.GetEnv("DB_HOST", "127.0.0.1"),
				env.GetEnv("DB_USER", ""),
				env.GetEnv("DB_PASSWORD", ""),
				env.GetEnv("DB_NAME", ""),
				env.GetEnv("DB_PORT", "5432"),
			)
		}
		return postgres.Open(dsn), "postgres"
	case "sqlite":
		return sqlite.Open(env.GetEnv("DB_PATH", "seodash.db")), "sqlite"
	default:
		// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", ""),
		)
		return mysql.New(mysql.Config{
			DSN:                       dsn,   // data source name
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), "mysql"
	}
}

func SetupDatabase() {
	var err error
	d, name := dialector()

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(d, Config())
		if err == nil {
			if env.GetEnvBool("DB_AUTO_MIGRATE", true) {
				if err = AutoMigrate(DB); err != nil {
					log.Errorf("[Database] auto migrate failed: %v", err)
					panic(err)
				}
			}
			log.Infof("[Database] connected (%s)", name)
			return
		}

		log.Warnf("[Database] failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// IsDuplicateKey reports unique-constraint violations across the supported
// drivers. TranslateError covers most cases; the message checks catch
// drivers that do not translate inside transactions.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
