package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/middleware"
	"github.com/amirphl/masuk10/app/services"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authEnv struct {
	app      *fiber.App
	fixtures *testingutil.TestFixtures
}

func newAuthEnv(t *testing.T) authEnv {
	t.Helper()
	testDB := testingutil.MustSetupTestDB(t)
	tokens, err := services.NewTokenService(15*time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	flow := businessflow.NewAdminAuthFlow(repository.NewUserRepository(testDB.DB), tokens, nil, false, zap.NewNop())
	h := NewAuthAdminHandler(flow, zap.NewNop())
	auth := middleware.NewAuthMiddleware(tokens)

	app := fiber.New()
	g := app.Group("/auth/admin")
	g.Post("/captcha/init", h.InitCaptcha)
	g.Post("/login", h.Login)
	g.Post("/refresh", h.Refresh)
	g.Post("/logout", auth.AdminAuthenticate(), h.Logout)
	g.Get("/me", auth.AdminAuthenticate(), h.Me)
	return authEnv{app: app, fixtures: testingutil.NewTestFixtures(testDB)}
}

func (e authEnv) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthAdminHandler_LoginMeLogout(t *testing.T) {
	env := newAuthEnv(t)
	user, err := env.fixtures.CreateTestUser(utils.RoleAdmin)
	require.NoError(t, err)

	resp := doRequest(t, env.app, http.MethodPost, "/auth/admin/login", map[string]any{
		"email":    user.Email,
		"password": testingutil.DefaultTestPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	login := decodeData[dto.AdminLoginResponse](t, decodeEnvelope(t, resp))
	assert.Equal(t, user.Email, login.User.Email)
	assert.Equal(t, "Bearer", login.Session.TokenType)
	assert.Equal(t, 900, login.Session.ExpiresIn)

	resp = env.get(t, "/auth/admin/me", login.Session.AccessToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, user.ID, decodeData[dto.UserDTO](t, decodeEnvelope(t, resp)).ID)

	req := httptest.NewRequest(http.MethodPost, "/auth/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Session.AccessToken)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.get(t, "/auth/admin/me", login.Session.AccessToken)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_REVOKED", decodeEnvelope(t, resp).Error.Code)
}

func TestAuthAdminHandler_LoginErrors(t *testing.T) {
	env := newAuthEnv(t)
	user, err := env.fixtures.CreateTestUser(utils.RoleEditor)
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"missing password", map[string]any{"email": user.Email}, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad email", map[string]any{"email": "nope", "password": "x"}, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrong password", map[string]any{"email": user.Email, "password": "WrongPass1!"}, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown email", map[string]any{"email": "ghost@example.com", "password": "WrongPass1!"}, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, env.app, http.MethodPost, "/auth/admin/login", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeEnvelope(t, resp).Error.Code)
		})
	}
}

func TestAuthAdminHandler_Refresh(t *testing.T) {
	env := newAuthEnv(t)
	user, err := env.fixtures.CreateTestUser(utils.RoleAdmin)
	require.NoError(t, err)

	resp := doRequest(t, env.app, http.MethodPost, "/auth/admin/login", map[string]any{
		"email":    user.Email,
		"password": testingutil.DefaultTestPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	login := decodeData[dto.AdminLoginResponse](t, decodeEnvelope(t, resp))

	resp = doRequest(t, env.app, http.MethodPost, "/auth/admin/refresh", map[string]any{"refresh_token": login.Session.RefreshToken})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	session := decodeData[dto.SessionDTO](t, decodeEnvelope(t, resp))
	assert.NotEmpty(t, session.AccessToken)

	resp = doRequest(t, env.app, http.MethodPost, "/auth/admin/refresh", map[string]any{"refresh_token": login.Session.RefreshToken})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", decodeEnvelope(t, resp).Error.Code)
}

func TestAuthAdminHandler_CaptchaUnavailable(t *testing.T) {
	env := newAuthEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/auth/admin/captcha/init", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "CAPTCHA_NOT_AVAILABLE", decodeEnvelope(t, resp).Error.Code)
}
