package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"

	"github.com/meinhoongagan/findam/services"
	"github.com/meinhoongagan/findam/utils"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "findam_session"

const localSession = "session"

// Protected rejects requests without a valid, unrevoked session token taken
// from the Authorization header or the session cookie.
func Protected(sessions *services.JWTSessions) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   sessions.Key(),
		TokenLookup:  "header:" + fiber.HeaderAuthorization + ",cookie:" + SessionCookie,
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return Abort(c, services.ErrAuthenticationRequired())
			}
			s, err := sessions.FromToken(c.UserContext(), token)
			if err != nil {
				return Abort(c, err)
			}
			setSession(c, s)
			return c.Next()
		},
	})
}

// OptionalSession attaches the session when a valid token is present and lets
// anonymous requests through unchanged.
func OptionalSession(sessions services.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return c.Next()
		}
		s, err := sessions.Verify(c.UserContext(), raw)
		if err == nil {
			setSession(c, s)
		}
		return c.Next()
	}
}

// RequireRole must run after Protected.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := SessionFrom(c)
		if s == nil {
			return Abort(c, services.ErrAuthenticationRequired())
		}
		if string(s.Role) != role {
			return Abort(c, services.ErrRoleNotEligible())
		}
		return c.Next()
	}
}

// SessionFrom returns the session attached by Protected or OptionalSession, or nil.
func SessionFrom(c *fiber.Ctx) *services.Session {
	s, ok := c.Locals(localSession).(services.Session)
	if !ok {
		return nil
	}
	return &s
}

// Abort answers err as a JSON error body with the status of its kind.
// Errors that are not *services.Error are treated as internal.
func Abort(c *fiber.Ctx, err error) error {
	se, ok := services.AsError(err)
	if !ok {
		se = services.ErrInternal(err)
	}
	if se.Kind == services.KindInfrastructure {
		log.Error().Err(se.Cause).Str("path", c.Path()).Str("code", se.Code).Msg("request failed")
	}
	body := utils.ErrorResponse{
		Success: false,
		Message: se.Message,
		Error:   se.Message,
		Code:    se.Code,
		Fields:  se.Fields,
	}
	if se.Provider != nil {
		body.Data = se.Provider
	}
	return c.Status(se.Kind.HTTPStatus()).JSON(body)
}

func setSession(c *fiber.Ctx, s services.Session) {
	c.Locals(localSession, s)
	c.Locals("userID", s.AccountID)
	c.Locals("role", string(s.Role))
}

func tokenFromRequest(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return c.Cookies(SessionCookie)
}

func jwtError(c *fiber.Ctx, err error) error {
	log.Debug().Err(err).Str("path", c.Path()).Msg("rejected session token")
	return Abort(c, services.ErrAuthenticationRequired())
}
