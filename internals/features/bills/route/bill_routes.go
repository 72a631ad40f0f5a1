package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/features/bills/controller"
)

// BillRoutes mounts the invoicing endpoints.
func BillRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewBillHandler(db)

	bills := r.Group("/bills")
	bills.Get("/", h.List)
	bills.Post("/", h.Create)
	bills.Get("/:id", h.GetByID)
	bills.Patch("/:id", h.Patch)
	bills.Delete("/:id", h.Delete)

	bills.Post("/:id/orders", h.AttachOrders)
	bills.Post("/:id/pay", h.MarkPaid)
}
