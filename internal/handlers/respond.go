package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"availability-service/internal/models"
	"availability-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// handleServiceError maps service sentinel errors onto HTTP statuses. Every
// unexpected error collapses to a plain 500 so internals never leak.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", err.Error()))
	case errors.Is(err, models.ErrPolicyNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("POLICY_NOT_FOUND", err.Error()))
	case errors.Is(err, models.ErrNoActivePolicy):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NO_ACTIVE_POLICY", err.Error()))
	case errors.Is(err, models.ErrWeekLockMissing):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("WEEK_LOCK_NOT_FOUND", err.Error()))
	case errors.Is(err, models.ErrPartialComputation):
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("PARTIAL_COMPUTE_FAILURE", err.Error()))
	default:
		slog.Error("Unhandled service error", "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("INTERNAL_ERROR", "internal server error"))
	}
}
