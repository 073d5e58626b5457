package handlers

import (
	"net/http"

	"availability-service/internal/services"
	"availability-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// BIHandler serves the version-pinned unavailability views consumed by the
// reporting dashboards.
type BIHandler struct {
	availabilityService *services.AvailabilityService
}

func NewBIHandler(availabilityService *services.AvailabilityService) *BIHandler {
	return &BIHandler{availabilityService: availabilityService}
}

func (h *BIHandler) Register(app *fiber.App) {
	biGroup := app.Group("availability/api/v1/bi")
	biGroup.Get("/daily/unavailable", h.DailyUnavailable)
	biGroup.Get("/weekly/unavailable", h.WeeklyUnavailable)
}

func (h *BIHandler) DailyUnavailable(c fiber.Ctx) error {
	date := c.Query("date")
	policyID, ok := queryPolicyID(c)
	if date == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "date and policy_id query parameters are required"))
	}

	results, err := h.availabilityService.GetDailyUnavailable(date, policyID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(results))
}

func (h *BIHandler) WeeklyUnavailable(c fiber.Ctx) error {
	weekStart := c.Query("week_start")
	policyID, ok := queryPolicyID(c)
	if weekStart == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "week_start and policy_id query parameters are required"))
	}

	results, err := h.availabilityService.GetWeeklyUnavailable(weekStart, policyID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(results))
}
