package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/security"
)

// AuthController issues API bearer tokens.
type AuthController struct {
	users repository.UserRepository
	cfg   security.TokenConfig
}

func NewAuthController(users repository.UserRepository, cfg security.TokenConfig) *AuthController {
	return &AuthController{users: users, cfg: cfg}
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleToken exchanges email and password for a JWT.
func (a *AuthController) HandleToken(c *fiber.Ctx) error {
	var body tokenRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		return apperror.Validation("Email and password are required", nil)
	}

	// notice: one message for unknown user and wrong password
	user, err := a.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Unauthenticated("Invalid credentials")
		}
		return apperror.Internal("load user", err)
	}
	if !user.CheckPassword(body.Password) {
		log.Infof("[Auth] failed login for %s from %s", email, GetClientIP(c))
		return apperror.Unauthenticated("Invalid credentials")
	}

	token, expires, err := security.GenerateToken(a.cfg, user, time.Now())
	if err != nil {
		return apperror.Internal("issue token", err)
	}
	return c.JSON(fiber.Map{
		"token":     token,
		"tokenType": "Bearer",
		"expiresAt": expires.UTC(),
	})
}
