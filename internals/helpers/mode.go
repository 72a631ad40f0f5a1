package helper

import (
	"github.com/gofiber/fiber/v2"

	"eca_backend/internals/apperr"
)

// ViewMode selects the field-selection depth of read endpoints so list rows
// don't drag every relation along.
type ViewMode string

const (
	ModeBasic    ViewMode = "basic"
	ModeDetailed ViewMode = "detailed"
	ModeFull     ViewMode = "full"
)

func ParseMode(c *fiber.Ctx) (ViewMode, error) {
	switch m := c.Query("mode", string(ModeBasic)); ViewMode(m) {
	case ModeBasic, ModeDetailed, ModeFull:
		return ViewMode(m), nil
	default:
		return "", apperr.Validation("invalid mode", map[string]string{"mode": "must be basic, detailed or full"})
	}
}
