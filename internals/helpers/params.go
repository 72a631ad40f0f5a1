package helper

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"eca_backend/internals/apperr"
)

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id", map[string]string{name: "must be a positive integer"})
	}
	return uint(id), nil
}
