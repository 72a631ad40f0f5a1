package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/features/users/controller"
)

// UserRoutes mounts the actor registry endpoints.
func UserRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewUserHandler(db)

	users := r.Group("/users")
	users.Get("/", h.List)
	users.Post("/", h.Create)
	users.Get("/:id", h.GetByID)
	users.Patch("/:id", h.Patch)
	users.Delete("/:id", h.Delete)
}
