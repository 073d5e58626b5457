package handlers

import (
	"fmt"
	"net/http"

	"availability-service/internal/services"
	"availability-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) Register(app *fiber.App) {
	api := app.Group("availability/api/v1")
	api.Get("/daily/export", h.ExportDaily)
	api.Get("/weekly/export", h.ExportWeekly)
}

func sendCSV(c fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}

func (h *ExportHandler) ExportDaily(c fiber.Ctx) error {
	date := c.Query("date")
	policyID, ok := queryPolicyID(c)
	if date == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "date and policy_id query parameters are required"))
	}

	var weekStart *string
	if ws := c.Query("week_start"); ws != "" {
		weekStart = &ws
	}
	auto := c.Query("auto") == "1"

	filename, data, err := h.exportService.ExportDaily(c.Context(), date, policyID, weekStart, auto)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendCSV(c, filename, data)
}

func (h *ExportHandler) ExportWeekly(c fiber.Ctx) error {
	weekStart := c.Query("week_start")
	policyID, ok := queryPolicyID(c)
	if weekStart == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "week_start and policy_id query parameters are required"))
	}
	auto := c.Query("auto") == "1"

	filename, data, err := h.exportService.ExportWeekly(c.Context(), weekStart, policyID, auto)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendCSV(c, filename, data)
}
