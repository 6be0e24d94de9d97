package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/security"
	"github.com/dealerseo/seodash/internal/pkg/testutil"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

func TestJWTAuth(t *testing.T) {
	db := testutil.NewTestDB(t)
	tenant := testutil.SeedTenant(t, db, "SILVER")
	repos := repository.NewRepositories(db)
	cfg := security.TokenConfig{Secret: "secret", TTL: time.Hour, Issuer: "seodash"}

	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler(false, usercontext.GetUserID)})
	app.Get("/me", JWTAuth(cfg, repos.User), func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		return c.JSON(fiber.Map{"id": uc.UserID, "dealership": uc.DealershipID})
	})
	app.Get("/admin", JWTAuth(cfg, repos.User), RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	call := func(path, auth string) int {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		if auth != "" {
			req.Header.Set(fiber.HeaderAuthorization, auth)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		return res.StatusCode
	}

	userToken, _, err := security.GenerateToken(cfg, tenant.User, time.Now())
	require.NoError(t, err)
	adminToken, _, err := security.GenerateToken(cfg, tenant.AgencyAdmin, time.Now())
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, call("/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call("/me", "Bearer garbage"))
	assert.Equal(t, fiber.StatusOK, call("/me", "Bearer "+userToken))
	assert.Equal(t, fiber.StatusOK, call("/me", "bearer "+userToken))
	assert.Equal(t, fiber.StatusForbidden, call("/admin", "Bearer "+userToken))
	assert.Equal(t, fiber.StatusNoContent, call("/admin", "Bearer "+adminToken))

	require.NoError(t, db.Delete(tenant.User).Error)
	assert.Equal(t, fiber.StatusUnauthorized, call("/me", "Bearer "+userToken))
}
