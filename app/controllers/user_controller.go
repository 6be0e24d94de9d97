package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/usercontext"
)

// UserController serves the caller's own account.
type UserController struct {
	repos *repository.Repositories
}

func NewUserController(repos *repository.Repositories) *UserController {
	return &UserController{repos: repos}
}

// HandleGetUserAccount returns the authenticated user with their agency and
// current dealership.
func (uc *UserController) HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return apperror.Unauthenticated("Missing or invalid authentication")
	}

	account, err := uc.repos.User.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("load user", err)
	}

	response := fiber.Map{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
		"role":  account.Role,
	}
	if account.AgencyID != nil {
		if agency, err := uc.repos.Agency.GetByID(*account.AgencyID); err == nil {
			response["agency"] = fiber.Map{"id": agency.ID, "name": agency.Name, "slug": agency.Slug}
		}
	}
	if account.DealershipID != nil {
		if d, err := uc.repos.Dealership.GetByID(*account.DealershipID); err == nil {
			response["dealership"] = fiber.Map{"id": d.ID, "name": d.Name, "packageType": d.Package()}
		}
	}
	return c.JSON(response)
}
