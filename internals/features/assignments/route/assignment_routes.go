package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/features/assignments/controller"
)

// AssignmentRoutes mounts the recording work-unit endpoints.
func AssignmentRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewAssignmentHandler(db)

	assignments := r.Group("/assignments")
	assignments.Get("/", h.List)
	assignments.Post("/", h.Create)
	assignments.Get("/:id", h.GetByID)
	assignments.Patch("/:id", h.Patch)
	assignments.Delete("/:id", h.Delete)

	// reader ledger
	assignments.Post("/:id/reader", h.AssignReader)
	assignments.Get("/:id/readers", h.Readers)
}
