package handlers

import (
	"net/http"

	"availability-service/internal/services"
	"availability-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type MetricsHandler struct {
	metricsService *services.MetricsService
}

func NewMetricsHandler(metricsService *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

func (h *MetricsHandler) Register(app *fiber.App) {
	app.Get("availability/api/v1/metrics/summary", h.GetSummary) // GET /metrics/summary
}

func (h *MetricsHandler) GetSummary(c fiber.Ctx) error {
	date := c.Query("date")
	weekStart := c.Query("week_start")
	policyID, ok := queryPolicyID(c)
	if date == "" || weekStart == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "date, week_start and policy_id query parameters are required"))
	}

	summary, err := h.metricsService.GetSummary(date, weekStart, policyID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(summary))
}
