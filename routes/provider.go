package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/controllers"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/services"
)

// SetupProviderRoutes configures the provider directory and business registration
func SetupProviderRoutes(app *fiber.App, h *controllers.ProviderController, reg *controllers.RegisterController, sessions *services.JWTSessions) {
	providers := app.Group("/providers")
	providers.Get("/", h.GetProviders)
	// registered before /:id so "check" is not taken for an id
	providers.Get("/check", middleware.OptionalSession(sessions), h.CheckProvider)
	providers.Get("/by-user/:userId", h.GetProviderByUser)
	providers.Get("/:id", h.GetProvider)

	// the role gate lives in the registration workflow so it can answer role_not_eligible itself
	app.Post("/register", middleware.Protected(sessions), reg.RegisterProvider)
}

// SetupUploadRoutes configures image uploads for the registration form
func SetupUploadRoutes(app *fiber.App, h *controllers.UploadController, sessions *services.JWTSessions) {
	app.Post("/upload", middleware.Protected(sessions), middleware.RequireRole(string(models.RoleProvider)), h.Upload)
}
