package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/services"
	"github.com/meinhoongagan/findam/utils"
)

func newSessions() *services.JWTSessions {
	return services.NewJWTSessions("middleware-secret", time.Hour, nil)
}

func issue(t *testing.T, m *services.JWTSessions, id uint, role models.Role) (string, services.Session) {
	t.Helper()
	tok, s, err := m.Issue(&models.Account{ID: id, Email: "a@x.com", Role: role})
	require.NoError(t, err)
	return tok, s
}

func protectedApp(m *services.JWTSessions, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{Protected(m)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		s := SessionFrom(c)
		return c.JSON(fiber.Map{"id": s.AccountID, "role": s.Role, "userID": c.Locals("userID")})
	})
	app.Get("/me", handlers...)
	return app
}

func decodeError(t *testing.T, resp *http.Response) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &body))
	return body
}

func TestProtected_BearerHeader(t *testing.T) {
	m := newSessions()
	tok, _ := issue(t, m, 7, models.RoleProvider)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := protectedApp(m).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "provider", body["role"])
	assert.Equal(t, float64(7), body["userID"])
}

func TestProtected_Cookie(t *testing.T) {
	m := newSessions()
	tok, _ := issue(t, m, 3, models.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	resp, err := protectedApp(m).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtected_Rejects(t *testing.T) {
	m := newSessions()
	other := services.NewJWTSessions("someone-elses-secret", time.Hour, nil)
	foreign, _ := issue(t, other, 1, models.RoleProvider)

	revokedTok, revoked := issue(t, m, 2, models.RoleProvider)
	require.NoError(t, m.Revoke(context.Background(), revoked))

	cases := map[string]string{
		"missing":  "",
		"garbage":  "Bearer not.a.jwt",
		"foreign":  "Bearer " + foreign,
		"revoked":  "Bearer " + revokedTok,
		"noScheme": revokedTok,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := protectedApp(m).Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body := decodeError(t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, services.CodeAuthenticationRequired, body.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := newSessions()
	app := protectedApp(m, RequireRole(string(models.RoleProvider)))

	customer, _ := issue(t, m, 4, models.RoleCustomer)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, services.CodeRoleNotEligible, decodeError(t, resp).Code)

	provider, _ := issue(t, m, 5, models.RoleProvider)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+provider)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalSession(t *testing.T) {
	m := newSessions()
	app := fiber.New()
	app.Get("/check", OptionalSession(m), func(c *fiber.Ctx) error {
		s := SessionFrom(c)
		if s == nil {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"id": s.AccountID})
	})

	read := func(req *http.Request) map[string]any {
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	assert.Equal(t, true, read(httptest.NewRequest(http.MethodGet, "/check", nil))["anonymous"])

	bad := httptest.NewRequest(http.MethodGet, "/check", nil)
	bad.Header.Set("Authorization", "Bearer junk")
	assert.Equal(t, true, read(bad)["anonymous"])

	tok, _ := issue(t, m, 9, models.RoleProvider)
	good := httptest.NewRequest(http.MethodGet, "/check", nil)
	good.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	assert.Equal(t, float64(9), read(good)["id"])
}
