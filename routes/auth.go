package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/controllers"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h *controllers.AuthController, pw *controllers.PasswordController, sessions *services.JWTSessions, limiter *middleware.RateLimiter) {
	auth := app.Group("/auth")
	throttle := limiter.Handler()

	// Public routes
	auth.Post("/register", throttle, h.Register)
	auth.Post("/login", throttle, h.Login)
	auth.Post("/forgot-password", throttle, pw.ForgotPassword)
	auth.Get("/validate-reset-token", pw.ValidateResetToken)
	auth.Post("/reset-password", throttle, pw.ResetPassword)

	// Protected routes
	auth.Get("/me", middleware.Protected(sessions), h.Me)
	auth.Post("/logout", middleware.Protected(sessions), h.Logout)
}
