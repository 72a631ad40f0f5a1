package middlewares

import "github.com/gofiber/fiber/v2"

// SetupMiddlewares installs the base chain: recovery first so everything below
// is covered, then CORS, access log and the global limiter.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
