package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/features/catalogue/controller"
)

// OuvrageRoutes mounts the catalogue endpoints.
func OuvrageRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewOuvrageHandler(db)

	ouvrages := r.Group("/ouvrages")
	ouvrages.Get("/", h.List)
	ouvrages.Post("/", h.Create)
	ouvrages.Get("/:id", h.GetByID)
	ouvrages.Patch("/:id", h.Patch)
	ouvrages.Delete("/:id", h.Delete)
}
