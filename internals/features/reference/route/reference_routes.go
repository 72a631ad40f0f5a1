package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/features/reference/controller"
)

// ReferenceRoutes mounts the read-only vocabulary endpoints.
func ReferenceRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewReferenceHandler(db)

	r.Get("/statuses", h.ListStatuses)
	r.Get("/media-formats", h.ListMediaFormats)
	r.Get("/bill-states", h.ListBillStates)
}
