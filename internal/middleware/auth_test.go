package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findtrainer/auth-api/internal/auth"
	"github.com/findtrainer/auth-api/internal/config"
	"github.com/findtrainer/auth-api/internal/models"
)

func testAuthApp(t *testing.T, cfg *config.JWTConfig) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m, err := NewAuthMiddleware(cfg, logger)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Authenticate(nil))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": GetUserID(c)})
	})

	return app
}

func authTestConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:   "middleware-test-secret",
		Issuer:   "findtrainer-auth",
		Audience: "findtrainer-api",
		TokenTTL: 24 * time.Hour,
	}
}

func TestAuthenticate_ValidSelfIssuedToken(t *testing.T) {
	cfg := authTestConfig()
	app := testAuthApp(t, cfg)

	token, _, err := auth.NewIssuer(cfg).Issue(&models.User{UserID: "user-1", Username: "alice"}, []string{models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	app := testAuthApp(t, authTestConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	app := testAuthApp(t, authTestConfig())

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	cfg := authTestConfig()
	app := testAuthApp(t, cfg)

	expiredCfg := *cfg
	expiredCfg.TokenTTL = -time.Hour
	token, _, err := auth.NewIssuer(&expiredCfg).Issue(&models.User{UserID: "user-1", Username: "alice"}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	app := testAuthApp(t, authTestConfig())

	otherCfg := authTestConfig()
	otherCfg.Secret = "a-different-secret"
	token, _, err := auth.NewIssuer(otherCfg).Issue(&models.User{UserID: "user-1", Username: "alice"}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_WrongIssuer(t *testing.T) {
	cfg := authTestConfig()
	app := testAuthApp(t, cfg)

	otherCfg := *cfg
	otherCfg.Issuer = "someone-else"
	token, _, err := auth.NewIssuer(&otherCfg).Issue(&models.User{UserID: "user-1", Username: "alice"}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_ExemptPath(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m, err := NewAuthMiddleware(authTestConfig(), logger)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Authenticate([]string{"/healthz"}))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
