package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/findtrainer/auth-api/internal/models"
)

// CounterReader exposes the daily counters to the admin endpoints
type CounterReader interface {
	Get(ctx context.Context, kind string, day time.Time) (*models.DailyCounter, error)
}

// AdminHandler serves usage statistics for operators
type AdminHandler struct {
	counters CounterReader
	logger   *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(counters CounterReader, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		counters: counters,
		logger:   logger,
	}
}

// GetStats returns today's signup/signin counters
// @Summary Daily usage statistics
// @Description Today's signup and signin counts
// @Tags Admin
// @Produce json
// @Security Bearer
// @Success 200 {object} models.DailyStats
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	now := time.Now()

	signups, err := h.counters.Get(c.Context(), models.CounterSignup, now)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read signup counter")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to read counters",
			},
		})
	}

	signins, err := h.counters.Get(c.Context(), models.CounterSignin, now)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read signin counter")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to read counters",
			},
		})
	}

	return c.JSON(models.DailyStats{
		Date:    signups.Date,
		Signups: signups.EventCount,
		Signins: signins.EventCount,
	})
}
