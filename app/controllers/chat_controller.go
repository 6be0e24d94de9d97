package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dealerseo/seodash/internal/pkg/assistant"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

// ChatController fronts the SEO assistant.
type ChatController struct {
	svc *assistant.Service
}

func NewChatController(svc *assistant.Service) *ChatController {
	return &ChatController{svc: svc}
}

type chatBody struct {
	Message string `json:"message"`
}

func (cc *ChatController) HandleChat(c *fiber.Ctx) error {
	var body chatBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	reply, err := cc.svc.Chat(c.UserContext(), usercontext.GetActor(c), body.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reply": reply})
}

func (cc *ChatController) HandleHistory(c *fiber.Ctx) error {
	list, err := cc.svc.History(c.UserContext(), usercontext.GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": list})
}
