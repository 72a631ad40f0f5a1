package helper

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"eca_backend/internals/apperr"
)

// ✅ Success response without custom code (default 200)
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

// ✅ Success response with custom code (201 for created, ...)
func SuccessWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// ✅ Plain error response
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
	})
}

// ✅ Error response with field / detail payload
func ErrorWithDetails(c *fiber.Ctx, code int, message string, details interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
		"errors":  details,
	})
}

// ✅ validator.v10 errors → field-keyed map
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Error(c, fiber.StatusBadRequest, "invalid input")
	}

	errorsMap := make(map[string]string, len(ve))
	for _, fieldErr := range ve {
		errorsMap[fieldErr.Field()] = fieldErr.Tag()
	}
	return ErrorWithDetails(c, fiber.StatusBadRequest, "validation failed", errorsMap)
}

// FromError recovers errors bubbled out of a service call or a db.Transaction
// into the JSON envelope. *apperr.Error keeps its kind; *fiber.Error keeps its
// code; anything else is a 500.
func FromError(c *fiber.Ctx, err error) error {
	if ae, ok := apperr.As(err); ok {
		switch ae.Kind {
		case apperr.KindValidation, apperr.KindReference:
			if ae.Fields != nil {
				return ErrorWithDetails(c, fiber.StatusBadRequest, ae.Message, ae.Fields)
			}
			return Error(c, fiber.StatusBadRequest, ae.Message)
		case apperr.KindNotFound:
			return Error(c, fiber.StatusNotFound, ae.Message)
		case apperr.KindConflict:
			if ae.Details != nil {
				return ErrorWithDetails(c, fiber.StatusConflict, ae.Message, ae.Details)
			}
			return Error(c, fiber.StatusConflict, ae.Message)
		case apperr.KindTransaction:
			log.Printf("[TX] rolled back: %s %s: %v", c.Method(), c.OriginalURL(), ae.Message)
			return Error(c, fiber.StatusInternalServerError, ae.Message)
		}
	}
	if fe, ok := err.(*fiber.Error); ok {
		return Error(c, fe.Code, fe.Message)
	}
	log.Printf("[ERR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return Error(c, fiber.StatusInternalServerError, "internal error")
}
