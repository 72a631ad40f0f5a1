package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/features/orders/controller"
)

// OrderRoutes mounts the order lifecycle endpoints on the staff-guarded group.
func OrderRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewOrderHandler(db)

	orders := r.Group("/orders")
	orders.Get("/", h.List)
	orders.Post("/", h.Create)
	orders.Get("/:id", h.GetByID)
	orders.Put("/:id", h.Replace)
	orders.Patch("/:id", h.Patch)
	orders.Delete("/:id", h.Delete)
}
