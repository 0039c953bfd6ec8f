package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/metrics"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
)

// RegisterController serves business registration for provider accounts.
type RegisterController struct {
	registration *services.Registration
}

func NewRegisterController(registration *services.Registration) *RegisterController {
	return &RegisterController{registration: registration}
}

func (h *RegisterController) RegisterProvider(c *fiber.Ctx) error {
	var input services.RegisterProviderInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.Abort(c, errCannotParse)
	}

	provider, err := h.registration.Register(c.UserContext(), middleware.SessionFrom(c), input)
	if err != nil {
		metrics.RecordRegistration(outcome(err))
		return middleware.Abort(c, err)
	}
	metrics.RecordRegistration("created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Business registered successfully",
		"data":    provider,
	})
}
