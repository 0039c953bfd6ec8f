package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/controllers"
	"github.com/meinhoongagan/findam/metrics"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
)

// Handlers bundles every controller the HTTP surface needs.
type Handlers struct {
	Sessions  *services.JWTSessions
	Auth      *controllers.AuthController
	Password  *controllers.PasswordController
	Providers *controllers.ProviderController
	Register  *controllers.RegisterController
	Upload    *controllers.UploadController

	// AuthLimiter throttles credential endpoints; nil disables throttling.
	AuthLimiter *middleware.RateLimiter
}

// Setup mounts all routes on app.
func Setup(app *fiber.App, h Handlers) {
	app.Get("/healthz", controllers.Healthz)
	app.Get("/metrics", metrics.Handler())

	SetupAuthRoutes(app, h.Auth, h.Password, h.Sessions, h.AuthLimiter)
	SetupProviderRoutes(app, h.Providers, h.Register, h.Sessions)
	SetupUploadRoutes(app, h.Upload, h.Sessions)
}
