package seoworks

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	SecretHeader      = "X-SEOWorks-Secret"
	SecretHeaderAlias = "X-Webhook-Secret"
	DeliveryHeader    = "X-SEOWorks-Delivery"
)

// VerifySecret compares in constant time. An unconfigured secret rejects
// every delivery.
func VerifySecret(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

// SecretFromRequest reads the primary header, then the alias.
func SecretFromRequest(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Get(SecretHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Get(SecretHeaderAlias))
}

// DeliveryID returns the vendor's delivery header, or a hash of the body.
func DeliveryID(header string, body []byte) string {
	if h := strings.TrimSpace(header); h != "" {
		return h
	}
	sum := sha256.Sum256(body)
	return "hash:" + hex.EncodeToString(sum[:])
}
