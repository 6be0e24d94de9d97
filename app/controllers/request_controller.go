package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dealerseo/seodash/internal/pkg/requests"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

// RequestController exposes the request store.
type RequestController struct {
	svc *requests.Service
}

func NewRequestController(svc *requests.Service) *RequestController {
	return &RequestController{svc: svc}
}

func (rc *RequestController) HandleCreate(c *fiber.Ctx) error {
	var in requests.CreateInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	req, err := rc.svc.Create(c.UserContext(), usercontext.GetActor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (rc *RequestController) HandleList(c *fiber.Ctx) error {
	f := requests.ListFilter{
		DealershipID: c.Query("dealershipId"),
		Status:       c.Query("status"),
		Type:         c.Query("type"),
		Offset:       c.QueryInt("offset", 0),
		Limit:        c.QueryInt("limit", 50),
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	list, err := rc.svc.List(c.UserContext(), usercontext.GetActor(c), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"requests": list, "count": len(list)})
}

func (rc *RequestController) HandleGet(c *fiber.Ctx) error {
	req, err := rc.svc.Get(c.UserContext(), usercontext.GetActor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(req)
}

type statusBody struct {
	Status string `json:"status"`
}

func (rc *RequestController) HandleUpdateStatus(c *fiber.Ctx) error {
	var body statusBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	req, err := rc.svc.UpdateStatus(c.UserContext(), usercontext.GetActor(c), c.Params("id"), body.Status)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

type externalTaskBody struct {
	ExternalID string `json:"externalId"`
}

func (rc *RequestController) HandleLinkExternalTask(c *fiber.Ctx) error {
	var body externalTaskBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	req, err := rc.svc.LinkExternalTask(c.UserContext(), usercontext.GetActor(c), c.Params("id"), body.ExternalID)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func (rc *RequestController) HandleSync(c *fiber.Ctx) error {
	req, err := rc.svc.SyncFromVendor(c.UserContext(), usercontext.GetActor(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(req)
}
