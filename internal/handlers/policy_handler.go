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

type PolicyHandler struct {
	policyService *services.PolicyService
}

func NewPolicyHandler(policyService *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

func (h *PolicyHandler) Register(app *fiber.App) {
	api := app.Group("availability/api/v1")

	policyGroup := api.Group("/policies")
	policyGroup.Post("", h.CreatePolicy)           // POST /policies
	policyGroup.Get("", h.ListPolicies)            // GET /policies
	policyGroup.Get("/:id", h.GetPolicy)           // GET /policies/:id
	policyGroup.Put("/:id", h.UpdatePolicy)        // PUT /policies/:id
	policyGroup.Delete("/:id", h.DeletePolicy)     // DELETE /policies/:id
	policyGroup.Get("/:id/versions", h.GetVersions) // GET /policies/:id/versions

	lockGroup := api.Group("/week-locks")
	lockGroup.Post("", h.SetWeekLock)                   // POST /week-locks
	lockGroup.Get("/:year/:week", h.GetWeekLock)        // GET /week-locks/:year/:week
	lockGroup.Delete("/:year/:week", h.ClearWeekLock)   // DELETE /week-locks/:year/:week
}

func parsePolicyIDParam(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ============================================================================
// POLICY CRUD
// ============================================================================

func (h *PolicyHandler) CreatePolicy(c fiber.Ctx) error {
	var req models.CreatePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	policy, err := h.policyService.CreatePolicy(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(policy))
}

func (h *PolicyHandler) ListPolicies(c fiber.Ctx) error {
	policies, err := h.policyService.ListPolicies()
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(policies))
}

func (h *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	id, ok := parsePolicyIDParam(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "policy id must be a positive integer"))
	}

	policy, err := h.policyService.GetPolicy(id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(policy))
}

func (h *PolicyHandler) UpdatePolicy(c fiber.Ctx) error {
	id, ok := parsePolicyIDParam(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "policy id must be a positive integer"))
	}

	var req models.UpdatePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	policy, err := h.policyService.UpdatePolicy(c.Context(), id, req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(policy))
}

func (h *PolicyHandler) DeletePolicy(c fiber.Ctx) error {
	id, ok := parsePolicyIDParam(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "policy id must be a positive integer"))
	}

	if err := h.policyService.DeletePolicy(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(fiber.Map{"deleted": id}))
}

func (h *PolicyHandler) GetVersions(c fiber.Ctx) error {
	id, ok := parsePolicyIDParam(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "policy id must be a positive integer"))
	}

	versions, err := h.policyService.GetVersions(id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(versions))
}

// ============================================================================
// WEEK LOCKS
// ============================================================================

func (h *PolicyHandler) SetWeekLock(c fiber.Ctx) error {
	var req models.SetWeekLockRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body: "+err.Error()))
	}

	lock, err := h.policyService.SetWeekLock(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(lock))
}

func parseWeekParams(c fiber.Ctx) (int, int, bool) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return 0, 0, false
	}
	week, err := strconv.Atoi(c.Params("week"))
	if err != nil || week < 1 || week > 53 {
		return 0, 0, false
	}
	return year, week, true
}

func (h *PolicyHandler) GetWeekLock(c fiber.Ctx) error {
	year, week, ok := parseWeekParams(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "week path must be /:year/:week with week 1..53"))
	}

	lock, err := h.policyService.GetWeekLock(year, week)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(lock))
}

func (h *PolicyHandler) ClearWeekLock(c fiber.Ctx) error {
	year, week, ok := parseWeekParams(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_INPUT", "week path must be /:year/:week with week 1..53"))
	}

	if err := h.policyService.ClearWeekLock(c.Context(), year, week); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(utils.CreateSuccessResponse(fiber.Map{"week_year": year, "week_number": week, "cleared": true}))
}
