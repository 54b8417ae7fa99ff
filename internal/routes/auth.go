package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/findtrainer/auth-api/internal/auth"
	"github.com/findtrainer/auth-api/internal/models"
	apperrors "github.com/findtrainer/auth-api/pkg/errors"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	service *auth.Service
	logger  *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *auth.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Register handles user registration
// @Summary User registration
// @Description Register a new account with profile attributes
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 200 "Registered"
// @Failure 400 {object} errors.ErrorResponse "Invalid account data"
// @Failure 409 {object} errors.ErrorResponse "Username already exists"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errorResponse(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	if req.Username == "" || req.Password == "" {
		return h.errorResponse(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Username and password are required", nil))
	}

	if err := h.service.Register(c.Context(), req); err != nil {
		return h.errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// Login handles user login
// @Summary User login
// @Description Verify credentials and return a signed token valid for 24 hours
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 401 {object} errors.ErrorResponse "Invalid credentials"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errorResponse(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	result, err := h.service.Login(c.Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(result)
}

// errorResponse renders an AppError with the standard envelope. Internal
// causes are logged, never sent to the client.
func (h *AuthHandler) errorResponse(c *fiber.Ctx, err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewAppError(apperrors.CodeInternalError, "Internal server error", err)
	}

	if appErr.HTTPStatus() >= fiber.StatusInternalServerError {
		h.logger.WithError(appErr).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("Auth request failed")
	}

	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(c.Get("X-Request-ID")))
}
