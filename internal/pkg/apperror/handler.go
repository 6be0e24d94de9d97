package apperror

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const genericMessage = "Internal server error"

// FieldErrors flattens validator errors into field -> tag.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return fields
}

// FromValidator converts a validator failure into a Validation error.
func FromValidator(msg string, err error) *Error {
	e := Validation(msg, FieldErrors(err))
	e.Err = err
	return e
}

// Body builds the JSON error body. Field detail is included only when
// exposeFields is set.
func Body(err error, exposeFields bool) (int, fiber.Map) {
	e, ok := As(err)
	if !ok {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code, fiber.Map{"error": fe.Message}
		}
		return fiber.StatusInternalServerError, fiber.Map{"error": genericMessage}
	}
	if e.Kind == KindInternal {
		return e.Kind.Status(), fiber.Map{"error": genericMessage}
	}
	body := fiber.Map{"error": e.Message}
	if exposeFields && len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	return e.Kind.Status(), body
}

// ErrorHandler returns a fiber.ErrorHandler rendering the taxonomy.
func ErrorHandler(exposeFields bool, userID func(c *fiber.Ctx) string) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := Body(err, exposeFields)
		if status >= fiber.StatusInternalServerError {
			uid := ""
			if userID != nil {
				uid = userID(c)
			}
			log.Errorf("[HTTP] %s %s failed (user=%s request=%v): %v",
				c.Method(), c.Path(), uid, c.Locals("requestid"), err)
		}
		return c.Status(status).JSON(body)
	}
}
