package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/security"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

// JWTAuth authenticates bearer tokens. The user is re-read on every request
// so role and dealership changes apply without waiting for token expiry.
func JWTAuth(cfg security.TokenConfig, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return apperror.Unauthenticated("Missing bearer token")
		}

		claims, err := security.VerifyToken(cfg, token)
		if err != nil {
			return apperror.Unauthenticated("Invalid or expired token")
		}

		user, err := users.GetByID(claims.Subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Unauthenticated("Unknown user")
			}
			log.Errorf("[Auth] user lookup failed for %s: %v", claims.Subject, err)
			return apperror.Internal("verify token", err)
		}

		uc := usercontext.UserContext{
			UserID:     user.ID,
			Email:      user.Email,
			Role:       user.Role,
			IsLoggedIn: true,
		}
		if user.AgencyID != nil {
			uc.AgencyID = *user.AgencyID
		}
		if user.DealershipID != nil {
			uc.DealershipID = *user.DealershipID
		}
		usercontext.Set(c, uc)
		return c.Next()
	}
}

// RequireAdmin ensures an agency or super admin.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return apperror.Unauthenticated("Login required")
	}
	if !usercontext.IsAdmin(c) {
		return apperror.Forbidden("Access denied")
	}
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
