package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong is the response of GET /ping.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists every v1 operation documented in
// public/docs/v1/openapi.yml.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	PostAuthToken(c *fiber.Ctx) error
	PostSeoworksWebhook(c *fiber.Ctx) error

	GetPackages(c *fiber.Ctx) error
	GetUserAccount(c *fiber.Ctx) error
	GetMyProgress(c *fiber.Ctx) error
	GetDealership(c *fiber.Ctx, id string) error
	GetDealershipProgress(c *fiber.Ctx, id string) error
	GetAgencyDealerships(c *fiber.Ctx, id string) error

	PostRequest(c *fiber.Ctx) error
	ListRequests(c *fiber.Ctx) error
	GetRequest(c *fiber.Ctx, id string) error
	PatchRequestStatus(c *fiber.Ctx, id string) error
	PutRequestExternalTask(c *fiber.Ctx, id string) error
	PostRequestSync(c *fiber.Ctx, id string) error

	PostAssistantChat(c *fiber.Ctx) error
	GetAssistantHistory(c *fiber.Ctx) error
}

// ServerInterfaceWrapper extracts path parameters before delegating.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) withID(fn func(c *fiber.Ctx, id string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing id path parameter")
		}
		return fn(c, id)
	}
}

// RegisterHandlers mounts the public operations directly and the rest
// behind auth.
func RegisterHandlers(router fiber.Router, si ServerInterface, auth fiber.Handler) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.Get("/ping", si.GetPing)
	router.Post("/auth/token", si.PostAuthToken)
	router.Post("/webhooks/seoworks", si.PostSeoworksWebhook)

	secured := router.Group("", auth)
	secured.Get("/packages", si.GetPackages)
	secured.Get("/user/account", si.GetUserAccount)
	secured.Get("/progress", si.GetMyProgress)
	secured.Get("/dealerships/:id", w.withID(si.GetDealership))
	secured.Get("/dealerships/:id/progress", w.withID(si.GetDealershipProgress))
	secured.Get("/agencies/:id/dealerships", w.withID(si.GetAgencyDealerships))

	secured.Post("/requests", si.PostRequest)
	secured.Get("/requests", si.ListRequests)
	secured.Get("/requests/:id", w.withID(si.GetRequest))
	secured.Patch("/requests/:id/status", w.withID(si.PatchRequestStatus))
	secured.Put("/requests/:id/external-task", w.withID(si.PutRequestExternalTask))
	secured.Post("/requests/:id/sync", w.withID(si.PostRequestSync))

	secured.Post("/assistant/chat", si.PostAssistantChat)
	secured.Get("/assistant/history", si.GetAssistantHistory)
}
