package repository

import (
	"fmt"
	"log/slog"

	"availability-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// upsertChunkSize keeps multi-row inserts well under the driver's parameter
// limit.
const upsertChunkSize = 500

type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// ============================================================================
// UPSERTS
// ============================================================================

// UpsertDailyResults replaces the verdict row for each (date, terminal,
// policy) key. Recomputing a day is idempotent apart from computed_at.
func (r *ResultRepository) UpsertDailyResults(results []models.DailyResult) error {
	if len(results) == 0 {
		return nil
	}

	query := `
		INSERT INTO availability_daily_result (
			date, terminal_sn, policy_id, policy_version,
			day_ok, slot_ok_count, slot_fail_count,
			failed_slots, failed_reasons, computed_at
		) VALUES (
			:date, :terminal_sn, :policy_id, :policy_version,
			:day_ok, :slot_ok_count, :slot_fail_count,
			:failed_slots, :failed_reasons, :computed_at
		)
		ON CONFLICT (date, terminal_sn, policy_id) DO UPDATE SET
			policy_version = EXCLUDED.policy_version,
			day_ok = EXCLUDED.day_ok,
			slot_ok_count = EXCLUDED.slot_ok_count,
			slot_fail_count = EXCLUDED.slot_fail_count,
			failed_slots = EXCLUDED.failed_slots,
			failed_reasons = EXCLUDED.failed_reasons,
			computed_at = EXCLUDED.computed_at`

	for start := 0; start < len(results); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(results) {
			end = len(results)
		}
		if _, err := r.db.NamedExec(query, results[start:end]); err != nil {
			slog.Error("Failed to upsert daily results",
				"chunk_start", start,
				"chunk_size", end-start,
				"error", err)
			return fmt.Errorf("failed to upsert daily results: %w", err)
		}
	}

	return nil
}

// UpsertWeeklyResults replaces the decision row for each (week_start,
// terminal, policy) key.
func (r *ResultRepository) UpsertWeeklyResults(results []models.WeeklyResult) error {
	if len(results) == 0 {
		return nil
	}

	query := `
		INSERT INTO availability_weekly_result (
			week_start, terminal_sn, policy_id, policy_version,
			decision, days_ok, days_fail,
			slots_ok_total, slots_fail_total,
			fail_dates, week_reasons, computed_at
		) VALUES (
			:week_start, :terminal_sn, :policy_id, :policy_version,
			:decision, :days_ok, :days_fail,
			:slots_ok_total, :slots_fail_total,
			:fail_dates, :week_reasons, :computed_at
		)
		ON CONFLICT (week_start, terminal_sn, policy_id) DO UPDATE SET
			policy_version = EXCLUDED.policy_version,
			decision = EXCLUDED.decision,
			days_ok = EXCLUDED.days_ok,
			days_fail = EXCLUDED.days_fail,
			slots_ok_total = EXCLUDED.slots_ok_total,
			slots_fail_total = EXCLUDED.slots_fail_total,
			fail_dates = EXCLUDED.fail_dates,
			week_reasons = EXCLUDED.week_reasons,
			computed_at = EXCLUDED.computed_at`

	for start := 0; start < len(results); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(results) {
			end = len(results)
		}
		if _, err := r.db.NamedExec(query, results[start:end]); err != nil {
			slog.Error("Failed to upsert weekly results",
				"chunk_start", start,
				"chunk_size", end-start,
				"error", err)
			return fmt.Errorf("failed to upsert weekly results: %w", err)
		}
	}

	return nil
}

// ============================================================================
// LISTINGS
// ============================================================================

const dailyResultColumns = `
		to_char(date, 'YYYY-MM-DD') AS date,
		terminal_sn, policy_id, policy_version,
		day_ok, slot_ok_count, slot_fail_count,
		failed_slots, failed_reasons, computed_at`

const weeklyResultColumns = `
		to_char(week_start, 'YYYY-MM-DD') AS week_start,
		terminal_sn, policy_id, policy_version,
		decision, days_ok, days_fail,
		slots_ok_total, slots_fail_total,
		fail_dates, week_reasons, computed_at`

// GetDailyResults lists one day's verdicts under the filter. Totals are
// counted over the date and search predicates so the available and
// unavailable counters stay meaningful when a status filter is applied.
func (r *ResultRepository) GetDailyResults(date string, policyID int64, filter models.ResultFilter) ([]models.DailyResult, models.ResultTotals, error) {
	where := `WHERE date = $1 AND policy_id = $2`
	args := []any{date, policyID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND terminal_sn ILIKE $%d", len(args))
	}

	var totals models.ResultTotals
	countQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE day_ok) AS available_count,
			COUNT(*) FILTER (WHERE NOT day_ok) AS unavailable_count
		FROM availability_daily_result ` + where
	if err := r.db.Get(&totals, countQuery, args...); err != nil {
		return nil, totals, fmt.Errorf("failed to count daily results: %w", err)
	}

	switch filter.Status {
	case models.StatusAvailable:
		where += " AND day_ok"
		totals.Total = totals.AvailableCount
	case models.StatusUnavailable:
		where += " AND NOT day_ok"
		totals.Total = totals.UnavailableCount
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT %s
		FROM availability_daily_result
		%s
		ORDER BY terminal_sn ASC
		LIMIT $%d OFFSET $%d`, dailyResultColumns, where, len(args)-1, len(args))

	var results []models.DailyResult
	if err := r.db.Select(&results, query, args...); err != nil {
		slog.Error("Failed to list daily results", "date", date, "error", err)
		return nil, totals, fmt.Errorf("failed to list daily results: %w", err)
	}

	return results, totals, nil
}

// GetWeeklyResults lists one week's decisions under the filter. SortBy is
// assumed pre-validated against the sortable column whitelist.
func (r *ResultRepository) GetWeeklyResults(weekStart string, policyID int64, filter models.ResultFilter) ([]models.WeeklyResult, models.ResultTotals, error) {
	where := `WHERE week_start = $1 AND policy_id = $2`
	args := []any{weekStart, policyID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND terminal_sn ILIKE $%d", len(args))
	}

	var totals models.ResultTotals
	countQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE decision) AS available_count,
			COUNT(*) FILTER (WHERE NOT decision) AS unavailable_count
		FROM availability_weekly_result ` + where
	if err := r.db.Get(&totals, countQuery, args...); err != nil {
		return nil, totals, fmt.Errorf("failed to count weekly results: %w", err)
	}

	switch filter.Status {
	case models.StatusAvailable:
		where += " AND decision"
		totals.Total = totals.AvailableCount
	case models.StatusUnavailable:
		where += " AND NOT decision"
		totals.Total = totals.UnavailableCount
	}

	orderBy := "terminal_sn ASC"
	if filter.SortBy != "" {
		orderBy = fmt.Sprintf("%s %s, terminal_sn ASC", filter.SortBy, filter.Order)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT %s
		FROM availability_weekly_result
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, weeklyResultColumns, where, orderBy, len(args)-1, len(args))

	var results []models.WeeklyResult
	if err := r.db.Select(&results, query, args...); err != nil {
		slog.Error("Failed to list weekly results", "week_start", weekStart, "error", err)
		return nil, totals, fmt.Errorf("failed to list weekly results: %w", err)
	}

	return results, totals, nil
}

// ListDailyForWeek returns every daily row of a policy within the half-open
// week window [weekStart, weekStart+7d).
func (r *ResultRepository) ListDailyForWeek(weekStart string, policyID int64) ([]models.DailyResult, error) {
	query := `
		SELECT ` + dailyResultColumns + `
		FROM availability_daily_result
		WHERE policy_id = $2
		  AND date >= $1::date
		  AND date < $1::date + INTERVAL '7 days'
		ORDER BY terminal_sn, date`

	var results []models.DailyResult
	if err := r.db.Select(&results, query, weekStart, policyID); err != nil {
		slog.Error("Failed to list daily rows for week",
			"week_start", weekStart,
			"policy_id", policyID,
			"error", err)
		return nil, fmt.Errorf("failed to list daily rows for week: %w", err)
	}

	return results, nil
}

// ListDailyUnavailable returns the failing rows of one day for the given
// policy version, ordered for export.
func (r *ResultRepository) ListDailyUnavailable(date string, policyID int64, policyVersion int) ([]models.DailyResult, error) {
	query := `
		SELECT ` + dailyResultColumns + `
		FROM availability_daily_result
		WHERE date = $1 AND policy_id = $2 AND policy_version = $3 AND NOT day_ok
		ORDER BY terminal_sn`

	var results []models.DailyResult
	if err := r.db.Select(&results, query, date, policyID, policyVersion); err != nil {
		return nil, fmt.Errorf("failed to list unavailable daily rows: %w", err)
	}

	return results, nil
}

// ListWeeklyUnavailable returns the failing rows of one week for the given
// policy version, ordered for export.
func (r *ResultRepository) ListWeeklyUnavailable(weekStart string, policyID int64, policyVersion int) ([]models.WeeklyResult, error) {
	query := `
		SELECT ` + weeklyResultColumns + `
		FROM availability_weekly_result
		WHERE week_start = $1 AND policy_id = $2 AND policy_version = $3 AND NOT decision
		ORDER BY terminal_sn`

	var results []models.WeeklyResult
	if err := r.db.Select(&results, query, weekStart, policyID, policyVersion); err != nil {
		return nil, fmt.Errorf("failed to list unavailable weekly rows: %w", err)
	}

	return results, nil
}

// ============================================================================
// EXPORT LISTINGS
// ============================================================================

// ListDailyForExport returns every daily row of a (date, policy) pair in
// terminal order, available and unavailable alike.
func (r *ResultRepository) ListDailyForExport(date string, policyID int64) ([]models.DailyResult, error) {
	query := `
		SELECT ` + dailyResultColumns + `
		FROM availability_daily_result
		WHERE date = $1 AND policy_id = $2
		ORDER BY terminal_sn`

	var results []models.DailyResult
	if err := r.db.Select(&results, query, date, policyID); err != nil {
		return nil, fmt.Errorf("failed to list daily rows for export: %w", err)
	}

	return results, nil
}

// ListWeeklyForExport returns every weekly row of a (week, policy) pair in
// terminal order.
func (r *ResultRepository) ListWeeklyForExport(weekStart string, policyID int64) ([]models.WeeklyResult, error) {
	query := `
		SELECT ` + weeklyResultColumns + `
		FROM availability_weekly_result
		WHERE week_start = $1 AND policy_id = $2
		ORDER BY terminal_sn`

	var results []models.WeeklyResult
	if err := r.db.Select(&results, query, weekStart, policyID); err != nil {
		return nil, fmt.Errorf("failed to list weekly rows for export: %w", err)
	}

	return results, nil
}

// ============================================================================
// SUMMARIES
// ============================================================================

func (r *ResultRepository) GetDailySummary(date string, policyID int64) (*models.DailySummary, error) {
	var summary models.DailySummary
	query := `
		SELECT
			COUNT(*) AS tpe_day_total,
			COUNT(*) FILTER (WHERE day_ok) AS tpe_day_ok,
			COALESCE(SUM(slot_ok_count), 0) AS slots_ok_day,
			COALESCE(SUM(slot_fail_count), 0) AS slots_fail_day,
			to_char(MAX(computed_at), 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS last_daily_computed_at
		FROM availability_daily_result
		WHERE date = $1 AND policy_id = $2`

	if err := r.db.Get(&summary, query, date, policyID); err != nil {
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}

	return &summary, nil
}

func (r *ResultRepository) GetWeeklySummary(weekStart string, policyID int64) (*models.WeeklySummary, error) {
	var summary models.WeeklySummary
	query := `
		SELECT
			COUNT(*) AS tpe_week_total,
			COUNT(*) FILTER (WHERE decision) AS tpe_week_ok,
			COALESCE(SUM(slots_ok_total), 0) AS slots_ok_week,
			COALESCE(SUM(slots_fail_total), 0) AS slots_fail_week,
			to_char(MAX(computed_at), 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS last_weekly_computed_at
		FROM availability_weekly_result
		WHERE week_start = $1 AND policy_id = $2`

	if err := r.db.Get(&summary, query, weekStart, policyID); err != nil {
		return nil, fmt.Errorf("failed to get weekly summary: %w", err)
	}

	return &summary, nil
}
