package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AppError is a service-level error carrying the HTTP status it should map to.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON error envelope: {"error": "..."}.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return c.Status(appErr.Code).JSON(fiber.Map{"error": appErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

var validate = validator.New()

// ValidateRequest runs struct-tag validation and maps failures to a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return NewAppError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
