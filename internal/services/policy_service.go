package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"availability-service/internal/models"
	"availability-service/internal/repository"
	"availability-service/internal/utils"

	"github.com/redis/go-redis/v9"
)

// resolvedPolicyTTL bounds staleness of the per-week policy resolution
// cache; writes invalidate eagerly, the TTL is the backstop.
const resolvedPolicyTTL = 10 * time.Minute

// PolicyService owns policy lifecycle, shape versioning and week locks.
type PolicyService struct {
	policyRepo *repository.PolicyRepository
}

func NewPolicyService(policyRepo *repository.PolicyRepository) *PolicyService {
	return &PolicyService{policyRepo: policyRepo}
}

func validateShape(s models.PolicyShape) error {
	if s.BatteryMinPct < 0 || s.BatteryMinPct > 100 {
		return fmt.Errorf("%w: battery_min_pct must be within 0..100", models.ErrInvalidInput)
	}
	if s.DailyFailN < 0 {
		return fmt.Errorf("%w: daily_fail_n must not be negative", models.ErrInvalidInput)
	}
	if s.WeeklyFailDaysValue() < 0 || s.WeeklyFailSlotsValue() < 0 {
		return fmt.Errorf("%w: weekly thresholds must not be negative", models.ErrInvalidInput)
	}
	if !s.PaperMode.Valid() {
		return fmt.Errorf("%w: paper_mode must be strict or lenient", models.ErrInvalidInput)
	}
	if len(models.NormalizeSlotHours(s.SlotHours)) == 0 {
		return fmt.Errorf("%w: slot_hours must contain at least one hour in 0..23", models.ErrInvalidInput)
	}
	return nil
}

func (s *PolicyService) CreatePolicy(ctx context.Context, req models.CreatePolicyRequest) (*models.Policy, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}

	status := models.PolicyDraft
	if req.Status != nil {
		status = models.PolicyStatus(*req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrInvalidInput, *req.Status)
		}
	}

	shape := req.Shape()
	if err := validateShape(shape); err != nil {
		return nil, err
	}

	policy := &models.Policy{
		Name:        name,
		Status:      status,
		PolicyShape: shape,
	}
	if err := s.policyRepo.CreatePolicy(policy); err != nil {
		return nil, err
	}

	// Every policy starts life with a version 1 snapshot so result rows can
	// always be traced back to the exact shape that produced them.
	snapshot := &models.PolicyVersion{
		PolicyID:    policy.ID,
		Version:     policy.CurrentVersion,
		Name:        policy.Name,
		Status:      policy.Status,
		PolicyShape: policy.PolicyShape,
	}
	if err := s.policyRepo.InsertVersionSnapshot(snapshot); err != nil {
		return nil, err
	}

	s.invalidateResolutions(ctx)
	return policy, nil
}

func (s *PolicyService) GetPolicy(id int64) (*models.Policy, error) {
	return s.policyRepo.GetPolicyByID(id)
}

func (s *PolicyService) ListPolicies() ([]models.Policy, error) {
	return s.policyRepo.ListPolicies()
}

func (s *PolicyService) GetVersions(policyID int64) ([]models.PolicyVersion, error) {
	if _, err := s.policyRepo.GetPolicyByID(policyID); err != nil {
		return nil, err
	}
	return s.policyRepo.GetVersionsByPolicyID(policyID)
}

// UpdatePolicy applies the request to an existing policy. Name and status
// edits never bump the version; any edit that changes the normalized shape
// bumps it once and freezes exactly one snapshot.
func (s *PolicyService) UpdatePolicy(ctx context.Context, id int64, req models.UpdatePolicyRequest) (*models.Policy, error) {
	policy, err := s.policyRepo.GetPolicyByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", models.ErrInvalidInput)
		}
		policy.Name = name
	}
	if req.Status != nil {
		status := models.PolicyStatus(*req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrInvalidInput, *req.Status)
		}
		policy.Status = status
	}

	merged := req.MergeShape(policy.PolicyShape)
	if err := validateShape(merged); err != nil {
		return nil, err
	}

	shapeChanged := !merged.Equal(policy.PolicyShape.Normalize())
	policy.PolicyShape = merged
	if shapeChanged {
		policy.CurrentVersion++
		slog.Info("Policy shape changed, bumping version",
			"policy_id", policy.ID,
			"new_version", policy.CurrentVersion)
	}

	if err := s.policyRepo.UpdatePolicy(policy); err != nil {
		return nil, err
	}

	if shapeChanged {
		snapshot := &models.PolicyVersion{
			PolicyID:    policy.ID,
			Version:     policy.CurrentVersion,
			Name:        policy.Name,
			Status:      policy.Status,
			PolicyShape: policy.PolicyShape,
		}
		if err := s.policyRepo.InsertVersionSnapshot(snapshot); err != nil {
			return nil, err
		}
	}

	s.invalidateResolutions(ctx)
	return policy, nil
}

func (s *PolicyService) DeletePolicy(ctx context.Context, id int64) error {
	if err := s.policyRepo.DeletePolicy(id); err != nil {
		return err
	}
	s.invalidateResolutions(ctx)
	return nil
}

// ============================================================================
// WEEK LOCKS
// ============================================================================

func (s *PolicyService) SetWeekLock(ctx context.Context, req models.SetWeekLockRequest) (*models.WeekLock, error) {
	if req.WeekYear < 2000 || req.WeekNumber < 1 || req.WeekNumber > 53 {
		return nil, fmt.Errorf("%w: week_year and week_number (1..53) are required", models.ErrInvalidInput)
	}
	if _, err := s.policyRepo.GetPolicyByID(req.PolicyID); err != nil {
		return nil, err
	}

	lock := &models.WeekLock{
		WeekYear:   req.WeekYear,
		WeekNumber: req.WeekNumber,
		PolicyID:   req.PolicyID,
	}
	if err := s.policyRepo.UpsertWeekLock(lock); err != nil {
		return nil, err
	}

	s.invalidateResolutions(ctx)
	return lock, nil
}

func (s *PolicyService) GetWeekLock(weekYear, weekNumber int) (*models.WeekLock, error) {
	return s.policyRepo.GetWeekLock(weekYear, weekNumber)
}

func (s *PolicyService) ClearWeekLock(ctx context.Context, weekYear, weekNumber int) error {
	if err := s.policyRepo.DeleteWeekLock(weekYear, weekNumber); err != nil {
		return err
	}
	s.invalidateResolutions(ctx)
	return nil
}

// ============================================================================
// RESOLUTION
// ============================================================================

// ResolveForWeek picks the policy that governs a week: an explicit id wins,
// then the week's lock, then the latest active policy. The lock and active
// paths go through the Redis cache; explicit lookups do not, so a caller
// pinning a policy always sees its current row.
func (s *PolicyService) ResolveForWeek(ctx context.Context, weekStart time.Time, explicitPolicyID *int64) (*models.Policy, error) {
	if explicitPolicyID != nil {
		return s.policyRepo.GetPolicyByID(*explicitPolicyID)
	}

	weekYear, weekNumber := utils.ISOWeekOf(weekStart)

	if cached, err := s.policyRepo.GetCachedResolvedPolicy(ctx, weekYear, weekNumber); err == nil {
		return cached, nil
	} else if err != redis.Nil {
		slog.Warn("Resolved policy cache read failed",
			"week_year", weekYear,
			"week_number", weekNumber,
			"error", err)
	}

	policy, err := s.policyRepo.GetWeekLockedPolicy(weekYear, weekNumber)
	if err == models.ErrWeekLockMissing {
		policy, err = s.policyRepo.GetLatestActivePolicy()
	}
	if err != nil {
		return nil, err
	}

	if cacheErr := s.policyRepo.CacheResolvedPolicy(ctx, weekYear, weekNumber, policy, resolvedPolicyTTL); cacheErr != nil {
		slog.Warn("Resolved policy cache write failed",
			"week_year", weekYear,
			"week_number", weekNumber,
			"error", cacheErr)
	}

	return policy, nil
}

func (s *PolicyService) invalidateResolutions(ctx context.Context) {
	if err := s.policyRepo.InvalidateResolvedPolicies(ctx); err != nil {
		slog.Warn("Failed to invalidate resolved policy cache", "error", err)
	}
}
