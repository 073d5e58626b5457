package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"availability-service/internal/models"
	"availability-service/internal/services"
	"availability-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
}

func NewAvailabilityHandler(availabilityService *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

func (h *AvailabilityHandler) Register(app *fiber.App) {
	api := app.Group("availability/api/v1")

	api.Post("/daily/compute", h.ComputeDaily)
	api.Get("/daily", h.GetDaily)
	api.Post("/weekly/compute", h.ComputeWeekly)
	api.Get("/weekly", h.GetWeekly)
}

func (h *AvailabilityHandler) ComputeDaily(c fiber.Ctx) error {
	var req models.ComputeDailyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	count, err := h.availabilityService.ComputeDaily(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(models.ComputeResponse{Count: count}))
}

func (h *AvailabilityHandler) ComputeWeekly(c fiber.Ctx) error {
	var req models.ComputeWeeklyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	count, err := h.availabilityService.ComputeWeekly(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(models.ComputeResponse{Count: count}))
}

func queryPolicyID(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("policy_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryFilter(c fiber.Ctx) models.ResultFilter {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "0"))
	return models.ResultFilter{
		Search:   c.Query("search"),
		Status:   models.AvailabilityStatus(c.Query("status", "all")),
		Page:     page,
		PageSize: pageSize,
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order", "desc"),
	}
}

func (h *AvailabilityHandler) GetDaily(c fiber.Ctx) error {
	date := c.Query("date")
	policyID, ok := queryPolicyID(c)
	if date == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "date and policy_id query parameters are required"))
	}

	filter := queryFilter(c).Normalize(models.DefaultDailyPageSize)
	results, totals, summary, err := h.availabilityService.GetDaily(date, policyID, filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateListResponse(
		results, totals.Total, filter.Page, filter.PageSize,
		totals.AvailableCount, totals.UnavailableCount, summary))
}

func (h *AvailabilityHandler) GetWeekly(c fiber.Ctx) error {
	weekStart := c.Query("week_start")
	policyID, ok := queryPolicyID(c)
	if weekStart == "" || !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "week_start and policy_id query parameters are required"))
	}

	filter := queryFilter(c).Normalize(models.DefaultWeeklyPageSize)
	results, totals, summary, err := h.availabilityService.GetWeekly(weekStart, policyID, filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateListResponse(
		results, totals.Total, filter.Page, filter.PageSize,
		totals.AvailableCount, totals.UnavailableCount, summary))
}
