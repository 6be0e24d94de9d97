package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/dealerseo/seodash/internal/pkg/seoworks"
)

// WebhookController receives SEOWorks task events.
type WebhookController struct {
	svc *seoworks.Service
}

func NewWebhookController(svc *seoworks.Service) *WebhookController {
	return &WebhookController{svc: svc}
}

// HandleSEOWorks authenticates before anything touches storage, then
// reconciles the delivery.
func (w *WebhookController) HandleSEOWorks(c *fiber.Ctx) error {
	if err := w.svc.Authenticate(seoworks.SecretFromRequest(c)); err != nil {
		log.Warnf("[Webhook] rejected delivery from %s: bad secret", GetClientIP(c))
		return err
	}

	body := append([]byte(nil), c.Body()...)
	res, err := w.svc.HandleDelivery(c.UserContext(), c.Get(seoworks.DeliveryHeader), body)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"success":   true,
		"requestId": res.RequestID,
		"status":    res.Status,
	}
	if res.Created {
		resp["created"] = true
	}
	if res.Duplicate {
		resp["duplicate"] = true
	}
	return c.JSON(resp)
}
