package seoworks

import (
	"strings"
	"time"

	"github.com/dealerseo/seodash/internal/pkg/env"
)

// Mode decides what happens to events for unknown vendor task ids.
type Mode string

const (
	// ModeStrict answers 404 for unmatched task ids.
	ModeStrict Mode = "strict"
	// ModePermissive auto-creates a request for unmatched task ids.
	ModePermissive Mode = "permissive"
)

type Config struct {
	Secret            string
	Mode              Mode
	FallbackUserEmail string
	APIBaseURL        string
	APIKey            string
	Timeout           time.Duration
}

// LoadConfig reads the SEOWORKS_* variables.
func LoadConfig() *Config {
	mode := ModeStrict
	if strings.EqualFold(env.GetEnv("SEOWORKS_WEBHOOK_MODE", ""), string(ModePermissive)) {
		mode = ModePermissive
	}
	return &Config{
		Secret:            env.GetEnv("SEOWORKS_WEBHOOK_SECRET", ""),
		Mode:              mode,
		FallbackUserEmail: env.GetEnv("SEOWORKS_FALLBACK_USER_EMAIL", ""),
		APIBaseURL:        strings.TrimRight(env.GetEnv("SEOWORKS_API_URL", ""), "/"),
		APIKey:            env.GetEnv("SEOWORKS_API_KEY", ""),
		Timeout:           time.Duration(env.GetEnvInt("SEOWORKS_API_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func (c *Config) Permissive() bool {
	return c.Mode == ModePermissive
}
