package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, fiber.StatusBadRequest, KindConflict.Status())
	assert.Equal(t, fiber.StatusUnauthorized, KindUnauthenticated.Status())
	assert.Equal(t, fiber.StatusForbidden, KindForbidden.Status())
	assert.Equal(t, fiber.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, fiber.StatusServiceUnavailable, KindUnavailable.Status())
	assert.Equal(t, fiber.StatusInternalServerError, KindInternal.Status())
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("update: %w", NotFound("Request not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestBodyHidesInternalDetail(t *testing.T) {
	status, body := Body(Internal("db write", errors.New("connection refused")), true)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, genericMessage, body["error"])
}

func TestBodyFieldsOnlyWhenExposed(t *testing.T) {
	type input struct {
		Title string `validate:"required"`
	}
	verr := validator.New().Struct(input{})
	require.Error(t, verr)

	e := FromValidator("Invalid payload", verr)
	_, body := Body(e, false)
	assert.NotContains(t, body, "fields")

	status, body := Body(e, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, body, "fields")
	assert.Equal(t, "required", body["fields"].(map[string]string)["input.Title"])
}
