package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/internal/pkg/access"
)

// UserContext represents the authenticated caller for a request
type UserContext struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AgencyID     string `json:"agency_id,omitempty"`
	DealershipID string `json:"dealership_id,omitempty"`
	IsLoggedIn   bool   `json:"is_logged_in"`
}

// Set stores the context and the legacy user id local.
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
	c.Locals(KeyUserID, uc.UserID)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if uc, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return uc
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin is true for agency and super admins.
func IsAdmin(c *fiber.Ctx) bool {
	role := GetUserContext(c).Role
	return role == models.ROLE_AGENCY_ADMIN || role == models.ROLE_SUPER_ADMIN
}

// GetUserID returns the current user's ID, or "" if not logged in
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}

// Actor converts the context into the shape the access rules expect.
func (u UserContext) Actor() access.Actor {
	return access.Actor{
		UserID:       u.UserID,
		Role:         u.Role,
		AgencyID:     u.AgencyID,
		DealershipID: u.DealershipID,
	}
}

// GetActor is GetUserContext(c).Actor().
func GetActor(c *fiber.Ctx) access.Actor {
	return GetUserContext(c).Actor()
}
