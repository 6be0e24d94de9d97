package router

import (
	"time"

	apiv1 "github.com/dealerseo/seodash/internal/api/v1"
	"github.com/dealerseo/seodash/app/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// LimiterConfig bounds requests per client on /api.
type LimiterConfig struct {
	Max        int
	Expiration time.Duration
	Storage    fiber.Storage
}

type ApiRouter struct {
	server  apiv1.ServerInterface
	auth    fiber.Handler
	limiter LimiterConfig
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:          h.limiter.Max,
		Expiration:   h.limiter.Expiration,
		Storage:      h.limiter.Storage,
		KeyGenerator: controllers.GetClientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, h.server, h.auth)
}

func NewApiRouter(server apiv1.ServerInterface, auth fiber.Handler, lc LimiterConfig) *ApiRouter {
	if lc.Max <= 0 {
		lc.Max = 120
	}
	if lc.Expiration <= 0 {
		lc.Expiration = time.Minute
	}
	return &ApiRouter{server: server, auth: auth, limiter: lc}
}
