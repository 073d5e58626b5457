package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"availability-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const policyColumns = `
		id, name, status, current_version,
		use_tpe_on, use_internet, use_geofence, use_battery, use_paper,
		battery_min_pct, daily_fail_n, weekly_fail_days, weekly_fail_slots,
		slot_hours, paper_mode, weekly_auto_strict,
		created_at, updated_at`

type PolicyRepository struct {
	db          *sqlx.DB
	redisClient *redis.Client
}

func NewPolicyRepository(db *sqlx.DB, redisClient *redis.Client) *PolicyRepository {
	return &PolicyRepository{
		db:          db,
		redisClient: redisClient,
	}
}

func (r *PolicyRepository) CreatePolicy(policy *models.Policy) error {
	slog.Info("Creating availability policy", "name", policy.Name, "status", policy.Status)

	policy.CreatedAt = time.Now()
	policy.UpdatedAt = time.Now()
	policy.CurrentVersion = 1

	query := `
		INSERT INTO availability_policy (
			name, status, current_version,
			use_tpe_on, use_internet, use_geofence, use_battery, use_paper,
			battery_min_pct, daily_fail_n, weekly_fail_days, weekly_fail_slots,
			slot_hours, paper_mode, weekly_auto_strict,
			created_at, updated_at
		) VALUES (
			:name, :status, :current_version,
			:use_tpe_on, :use_internet, :use_geofence, :use_battery, :use_paper,
			:battery_min_pct, :daily_fail_n, :weekly_fail_days, :weekly_fail_slots,
			:slot_hours, :paper_mode, :weekly_auto_strict,
			:created_at, :updated_at
		) RETURNING id`

	rows, err := r.db.NamedQuery(query, policy)
	if err != nil {
		slog.Error("Failed to create policy", "name", policy.Name, "error", err)
		return fmt.Errorf("failed to create policy: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&policy.ID); err != nil {
			return fmt.Errorf("failed to scan created policy id: %w", err)
		}
	}

	slog.Info("Successfully created policy", "policy_id", policy.ID)
	return nil
}

func (r *PolicyRepository) GetPolicyByID(id int64) (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT ` + policyColumns + ` FROM availability_policy WHERE id = $1`

	err := r.db.Get(&policy, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			slog.Warn("Policy not found", "policy_id", id)
			return nil, models.ErrPolicyNotFound
		}
		slog.Error("Failed to get policy", "policy_id", id, "error", err)
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepository) ListPolicies() ([]models.Policy, error) {
	var policies []models.Policy
	query := `SELECT ` + policyColumns + ` FROM availability_policy ORDER BY id DESC`

	err := r.db.Select(&policies, query)
	if err != nil {
		slog.Error("Failed to list policies", "error", err)
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	return policies, nil
}

// GetLatestActivePolicy returns the most recently created active policy.
func (r *PolicyRepository) GetLatestActivePolicy() (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT ` + policyColumns + `
		FROM availability_policy
		WHERE status = 'active'
		ORDER BY id DESC
		LIMIT 1`

	err := r.db.Get(&policy, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNoActivePolicy
		}
		return nil, fmt.Errorf("failed to get latest active policy: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepository) UpdatePolicy(policy *models.Policy) error {
	slog.Info("Updating policy",
		"policy_id", policy.ID,
		"current_version", policy.CurrentVersion)

	policy.UpdatedAt = time.Now()

	query := `
		UPDATE availability_policy SET
			name = :name,
			status = :status,
			current_version = :current_version,
			use_tpe_on = :use_tpe_on,
			use_internet = :use_internet,
			use_geofence = :use_geofence,
			use_battery = :use_battery,
			use_paper = :use_paper,
			battery_min_pct = :battery_min_pct,
			daily_fail_n = :daily_fail_n,
			weekly_fail_days = :weekly_fail_days,
			weekly_fail_slots = :weekly_fail_slots,
			slot_hours = :slot_hours,
			paper_mode = :paper_mode,
			weekly_auto_strict = :weekly_auto_strict,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExec(query, policy)
	if err != nil {
		slog.Error("Failed to update policy", "policy_id", policy.ID, "error", err)
		return fmt.Errorf("failed to update policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrPolicyNotFound
	}

	return nil
}

func (r *PolicyRepository) DeletePolicy(id int64) error {
	result, err := r.db.Exec(`DELETE FROM availability_policy WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrPolicyNotFound
	}

	// Version snapshots and week locks go with the policy via ON DELETE CASCADE.
	return nil
}

// ============================================================================
// VERSION SNAPSHOTS
// ============================================================================

// InsertVersionSnapshot freezes a policy's shape under its current version.
// Snapshot rows are immutable; there is deliberately no update path.
func (r *PolicyRepository) InsertVersionSnapshot(version *models.PolicyVersion) error {
	slog.Info("Inserting policy version snapshot",
		"policy_id", version.PolicyID,
		"version", version.Version)

	version.CreatedAt = time.Now()

	query := `
		INSERT INTO availability_policy_version (
			policy_id, version, name, status,
			use_tpe_on, use_internet, use_geofence, use_battery, use_paper,
			battery_min_pct, daily_fail_n, weekly_fail_days, weekly_fail_slots,
			slot_hours, paper_mode, weekly_auto_strict, created_at
		) VALUES (
			:policy_id, :version, :name, :status,
			:use_tpe_on, :use_internet, :use_geofence, :use_battery, :use_paper,
			:battery_min_pct, :daily_fail_n, :weekly_fail_days, :weekly_fail_slots,
			:slot_hours, :paper_mode, :weekly_auto_strict, :created_at
		)`

	_, err := r.db.NamedExec(query, version)
	if err != nil {
		slog.Error("Failed to insert version snapshot",
			"policy_id", version.PolicyID,
			"version", version.Version,
			"error", err)
		return fmt.Errorf("failed to insert version snapshot: %w", err)
	}

	return nil
}

func (r *PolicyRepository) GetVersionsByPolicyID(policyID int64) ([]models.PolicyVersion, error) {
	var versions []models.PolicyVersion
	query := `
		SELECT
			policy_id, version, name, status,
			use_tpe_on, use_internet, use_geofence, use_battery, use_paper,
			battery_min_pct, daily_fail_n, weekly_fail_days, weekly_fail_slots,
			slot_hours, paper_mode, weekly_auto_strict, created_at
		FROM availability_policy_version
		WHERE policy_id = $1
		ORDER BY version DESC`

	err := r.db.Select(&versions, query, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy versions: %w", err)
	}

	return versions, nil
}

// ============================================================================
// WEEK LOCKS
// ============================================================================

func (r *PolicyRepository) UpsertWeekLock(lock *models.WeekLock) error {
	lock.CreatedAt = time.Now()

	query := `
		INSERT INTO availability_policy_week_lock (week_year, week_number, policy_id, created_at)
		VALUES (:week_year, :week_number, :policy_id, :created_at)
		ON CONFLICT (week_year, week_number) DO UPDATE SET
			policy_id = EXCLUDED.policy_id,
			created_at = EXCLUDED.created_at`

	_, err := r.db.NamedExec(query, lock)
	if err != nil {
		slog.Error("Failed to upsert week lock",
			"week_year", lock.WeekYear,
			"week_number", lock.WeekNumber,
			"error", err)
		return fmt.Errorf("failed to upsert week lock: %w", err)
	}

	slog.Info("Week lock set",
		"week_year", lock.WeekYear,
		"week_number", lock.WeekNumber,
		"policy_id", lock.PolicyID)
	return nil
}

func (r *PolicyRepository) GetWeekLock(weekYear, weekNumber int) (*models.WeekLock, error) {
	var lock models.WeekLock
	query := `
		SELECT week_year, week_number, policy_id, created_at
		FROM availability_policy_week_lock
		WHERE week_year = $1 AND week_number = $2`

	err := r.db.Get(&lock, query, weekYear, weekNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrWeekLockMissing
		}
		return nil, fmt.Errorf("failed to get week lock: %w", err)
	}

	return &lock, nil
}

// GetWeekLockedPolicy resolves the policy bound to an ISO week, if any.
func (r *PolicyRepository) GetWeekLockedPolicy(weekYear, weekNumber int) (*models.Policy, error) {
	var policy models.Policy
	query := `
		SELECT ` + policySelectPrefixed + `
		FROM availability_policy_week_lock l
		JOIN availability_policy p ON p.id = l.policy_id
		WHERE l.week_year = $1 AND l.week_number = $2
		LIMIT 1`

	err := r.db.Get(&policy, query, weekYear, weekNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrWeekLockMissing
		}
		return nil, fmt.Errorf("failed to get week locked policy: %w", err)
	}

	return &policy, nil
}

const policySelectPrefixed = `
		p.id, p.name, p.status, p.current_version,
		p.use_tpe_on, p.use_internet, p.use_geofence, p.use_battery, p.use_paper,
		p.battery_min_pct, p.daily_fail_n, p.weekly_fail_days, p.weekly_fail_slots,
		p.slot_hours, p.paper_mode, p.weekly_auto_strict,
		p.created_at, p.updated_at`

func (r *PolicyRepository) DeleteWeekLock(weekYear, weekNumber int) error {
	result, err := r.db.Exec(
		`DELETE FROM availability_policy_week_lock WHERE week_year = $1 AND week_number = $2`,
		weekYear, weekNumber)
	if err != nil {
		return fmt.Errorf("failed to delete week lock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrWeekLockMissing
	}

	return nil
}

// ============================================================================
// RESOLVED POLICY CACHE (Redis)
// ============================================================================

const resolvedPolicyKeyPattern = "policy:resolved:*"

func resolvedPolicyKey(weekYear, weekNumber int) string {
	return fmt.Sprintf("policy:resolved:%d:%d", weekYear, weekNumber)
}

// CacheResolvedPolicy stores the policy resolved for an ISO week. The
// repository tolerates a missing Redis client so the service degrades to
// direct lookups.
func (r *PolicyRepository) CacheResolvedPolicy(ctx context.Context, weekYear, weekNumber int, policy *models.Policy, expiration time.Duration) error {
	if r.redisClient == nil {
		return nil
	}

	payload, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to marshal policy for cache: %w", err)
	}

	return r.redisClient.Set(ctx, resolvedPolicyKey(weekYear, weekNumber), payload, expiration).Err()
}

func (r *PolicyRepository) GetCachedResolvedPolicy(ctx context.Context, weekYear, weekNumber int) (*models.Policy, error) {
	if r.redisClient == nil {
		return nil, redis.Nil
	}

	data, err := r.redisClient.Get(ctx, resolvedPolicyKey(weekYear, weekNumber)).Bytes()
	if err != nil {
		return nil, err
	}

	var policy models.Policy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached policy: %w", err)
	}

	return &policy, nil
}

// InvalidateResolvedPolicies drops every cached week resolution. Called on
// policy and week-lock writes so stale shapes never drive a computation.
func (r *PolicyRepository) InvalidateResolvedPolicies(ctx context.Context) error {
	if r.redisClient == nil {
		return nil
	}

	var keys []string
	iter := r.redisClient.Scan(ctx, 0, resolvedPolicyKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan resolved policy keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	return r.redisClient.Del(ctx, keys...).Err()
}
