package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/dealerseo/seodash/app/controllers"
)

// Controllers bundles the controllers the API server delegates to.
type Controllers struct {
	Auth       *controllers.AuthController
	Webhook    *controllers.WebhookController
	User       *controllers.UserController
	Dealership *controllers.DealershipController
	Request    *controllers.RequestController
	Chat       *controllers.ChatController
}

// APIServer implements the ServerInterface
type APIServer struct {
	c Controllers
}

// NewAPIServer creates a new API server instance
func NewAPIServer(c Controllers) *APIServer {
	return &APIServer{c: c}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func (s *APIServer) PostAuthToken(c *fiber.Ctx) error {
	return s.c.Auth.HandleToken(c)
}

// PostSeoworksWebhook is authenticated by the shared secret, not a token.
func (s *APIServer) PostSeoworksWebhook(c *fiber.Ctx) error {
	return s.c.Webhook.HandleSEOWorks(c)
}

func (s *APIServer) GetPackages(c *fiber.Ctx) error {
	return s.c.Dealership.HandlePackages(c)
}

func (s *APIServer) GetUserAccount(c *fiber.Ctx) error {
	return s.c.User.HandleGetUserAccount(c)
}

func (s *APIServer) GetMyProgress(c *fiber.Ctx) error {
	return s.c.Dealership.HandleMyProgress(c)
}

// Controllers read the id from route params; the wrapper already checked it.
func (s *APIServer) GetDealership(c *fiber.Ctx, id string) error {
	return s.c.Dealership.HandleGet(c)
}

func (s *APIServer) GetDealershipProgress(c *fiber.Ctx, id string) error {
	return s.c.Dealership.HandleProgress(c)
}

func (s *APIServer) GetAgencyDealerships(c *fiber.Ctx, id string) error {
	return s.c.Dealership.HandleListByAgency(c)
}

func (s *APIServer) PostRequest(c *fiber.Ctx) error {
	return s.c.Request.HandleCreate(c)
}

func (s *APIServer) ListRequests(c *fiber.Ctx) error {
	return s.c.Request.HandleList(c)
}

func (s *APIServer) GetRequest(c *fiber.Ctx, id string) error {
	return s.c.Request.HandleGet(c)
}

func (s *APIServer) PatchRequestStatus(c *fiber.Ctx, id string) error {
	return s.c.Request.HandleUpdateStatus(c)
}

func (s *APIServer) PutRequestExternalTask(c *fiber.Ctx, id string) error {
	return s.c.Request.HandleLinkExternalTask(c)
}

func (s *APIServer) PostRequestSync(c *fiber.Ctx, id string) error {
	return s.c.Request.HandleSync(c)
}

func (s *APIServer) PostAssistantChat(c *fiber.Ctx) error {
	return s.c.Chat.HandleChat(c)
}

func (s *APIServer) GetAssistantHistory(c *fiber.Ctx) error {
	return s.c.Chat.HandleHistory(c)
}
