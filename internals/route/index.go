package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/constants"
	assignmentroute "eca_backend/internals/features/assignments/route"
	billroute "eca_backend/internals/features/bills/route"
	catalogueroute "eca_backend/internals/features/catalogue/route"
	orderroute "eca_backend/internals/features/orders/route"
	refroute "eca_backend/internals/features/reference/route"
	userroute "eca_backend/internals/features/users/route"
	authmw "eca_backend/internals/middlewares/auth"
)

// SetupRoutes wires the API surface. Every lifecycle mutation sits behind the
// staff group; reference vocabularies are readable by any authenticated actor.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	jwt := authmw.AuthJWT(authmw.AuthJWTOpts{
		Secret:              os.Getenv("JWT_SECRET"),
		AllowCookieFallback: true,
	})

	// ===================== AUTHENTICATED (any role) =====================
	log.Println("[INFO] setting up authenticated group...")
	authed := app.Group("/api/u", jwt)
	refroute.ReferenceRoutes(authed, db)

	// ===================== STAFF =====================
	log.Println("[INFO] setting up staff group (auth + role check)...")
	staff := app.Group("/api/a",
		jwt,
		authmw.OnlyRoles("staff only", constants.StaffRoles...),
	)
	userroute.UserRoutes(staff, db)
	catalogueroute.OuvrageRoutes(staff, db)
	orderroute.OrderRoutes(staff, db)
	assignmentroute.AssignmentRoutes(staff, db)
	billroute.BillRoutes(staff, db)
}
