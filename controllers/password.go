package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/metrics"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
)

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

// PasswordController serves the forgot/validate/reset password flow.
type PasswordController struct {
	reset *services.PasswordReset
}

func NewPasswordController(reset *services.PasswordReset) *PasswordController {
	return &PasswordController{reset: reset}
}

// ForgotPassword always answers with the same message so it cannot be used
// to discover which emails have accounts.
func (h *PasswordController) ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.Abort(c, errCannotParse)
	}

	if err := h.reset.Request(c.UserContext(), input.Email); err != nil {
		metrics.RecordPasswordReset("request", outcome(err))
		return middleware.Abort(c, err)
	}
	metrics.RecordPasswordReset("request", "accepted")

	return c.JSON(fiber.Map{
		"success": true,
		"message": forgotPasswordMessage,
	})
}

func (h *PasswordController) ValidateResetToken(c *fiber.Ctx) error {
	err := h.reset.Validate(c.UserContext(), c.Query("token"))
	if err == nil {
		return c.JSON(fiber.Map{"valid": true})
	}

	se, ok := services.AsError(err)
	if !ok || se.Kind == services.KindInfrastructure {
		return middleware.Abort(c, err)
	}
	return c.JSON(fiber.Map{
		"valid": false,
		"error": se.Message,
	})
}

func (h *PasswordController) ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.Abort(c, errCannotParse)
	}

	if err := h.reset.Reset(c.UserContext(), input.Token, input.Password); err != nil {
		metrics.RecordPasswordReset("redeem", outcome(err))
		return middleware.Abort(c, err)
	}
	metrics.RecordPasswordReset("redeem", "success")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password has been reset successfully",
	})
}
