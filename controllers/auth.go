package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/metrics"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
)

// AuthController serves signup, login, logout and the current account.
type AuthController struct {
	auth         *services.AuthService
	secureCookie bool
}

func NewAuthController(auth *services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, secureCookie: secureCookie}
}

// Register handles account signup
func (h *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.Abort(c, errCannotParse)
	}

	account, err := h.auth.Register(c.UserContext(), input)
	if err != nil {
		return middleware.Abort(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created",
		"account": account.View(),
	})
}

// Login handles user authentication
func (h *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return middleware.Abort(c, errCannotParse)
	}

	res, err := h.auth.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		metrics.RecordLogin(outcome(err))
		return middleware.Abort(c, err)
	}
	metrics.RecordLogin("success")

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"token":   res.Token,
		"account": res.Account,
	})
}

// Logout revokes the caller's token and clears the session cookie.
func (h *AuthController) Logout(c *fiber.Ctx) error {
	s := middleware.SessionFrom(c)
	if s == nil {
		return middleware.Abort(c, services.ErrAuthenticationRequired())
	}
	if err := h.auth.Logout(c.UserContext(), *s); err != nil {
		return middleware.Abort(c, err)
	}
	c.ClearCookie(middleware.SessionCookie)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// Me returns the current user's account
func (h *AuthController) Me(c *fiber.Ctx) error {
	s := middleware.SessionFrom(c)
	if s == nil {
		return middleware.Abort(c, services.ErrAuthenticationRequired())
	}
	account, err := h.auth.Me(c.UserContext(), *s)
	if err != nil {
		return middleware.Abort(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"account": account,
	})
}
