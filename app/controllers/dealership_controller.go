package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/access"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/packages"
	"github.com/dealerseo/seodash/internal/pkg/quota"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

// DealershipController serves the directory and quota progress.
type DealershipController struct {
	repos    *repository.Repositories
	progress *quota.Service
}

func NewDealershipController(repos *repository.Repositories, progress *quota.Service) *DealershipController {
	return &DealershipController{repos: repos, progress: progress}
}

func (dc *DealershipController) load(c *fiber.Ctx, id string) (*models.Dealership, error) {
	d, err := dc.repos.Dealership.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Dealership not found")
	}
	if err != nil {
		return nil, apperror.Internal("load dealership", err)
	}
	if err := access.CanReadDealership(usercontext.GetActor(c), d); err != nil {
		return nil, err
	}
	return d, nil
}

func (dc *DealershipController) HandleGet(c *fiber.Ctx) error {
	d, err := dc.load(c, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (dc *DealershipController) HandleListByAgency(c *fiber.Ctx) error {
	agencyID := c.Params("id")
	if err := access.CanListAgency(usercontext.GetActor(c), agencyID); err != nil {
		return err
	}
	if _, err := dc.repos.Agency.GetByID(agencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Agency not found")
		}
		return apperror.Internal("load agency", err)
	}
	list, err := dc.repos.Dealership.ListByAgency(agencyID)
	if err != nil {
		return apperror.Internal("list dealerships", err)
	}
	return c.JSON(fiber.Map{"dealerships": list})
}

func (dc *DealershipController) HandleProgress(c *fiber.Ctx) error {
	d, err := dc.load(c, c.Params("id"))
	if err != nil {
		return err
	}
	p, err := dc.progress.DealershipProgress(c.UserContext(), d.ID)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// HandleMyProgress answers for the caller's current dealership.
func (dc *DealershipController) HandleMyProgress(c *fiber.Ctx) error {
	id := usercontext.GetUserContext(c).DealershipID
	if id == "" {
		return apperror.NotFound("No dealership selected")
	}
	d, err := dc.load(c, id)
	if err != nil {
		return err
	}
	p, err := dc.progress.DealershipProgress(c.UserContext(), d.ID)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// HandlePackages lists the static package catalog.
func (dc *DealershipController) HandlePackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"packages": packages.All()})
}
