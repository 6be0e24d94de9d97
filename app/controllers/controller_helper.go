package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dealerseo/seodash/internal/pkg/apperror"
)

// bindJSON decodes the request body or answers 400.
func bindJSON(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return apperror.Validation("Invalid JSON body", nil)
	}
	return nil
}

// GetClientIP returns the original client address, preferring the
// Cloudflare header, then the first X-Forwarded-For hop.
func GetClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
