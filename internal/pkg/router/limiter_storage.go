package router

import (
	"github.com/gofiber/storage/redis"

	"github.com/dealerseo/seodash/internal/pkg/cache"
	"github.com/dealerseo/seodash/internal/pkg/env"
)

// NewLimiterStorage keeps rate-limit counters in Redis so they are shared
// across instances. It reuses the cache connection settings on a separate
// database.
func NewLimiterStorage() *redis.Storage {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnvInt("CACHE_PORT", 6379)
	password := env.GetEnv("CACHE_PASSWORD", "")
	if c := cache.GetClient(); c != nil {
		// Prefer password from the underlying client if present
		if p := c.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: env.GetEnvInt("LIMITER_CACHE_DB", 1),
		Reset:    false,
	})
}
