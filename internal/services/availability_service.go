package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"availability-service/internal/event"
	"availability-service/internal/models"
	"availability-service/internal/repository"
	"availability-service/internal/utils"
)


// AvailabilityService computes daily verdicts and weekly rollups and serves
// their listings. The event publisher is optional: computations succeed with
// or without a broker attached.
type AvailabilityService struct {
	policyService *PolicyService
	telemetryRepo *repository.TelemetryRepository
	resultRepo    *repository.ResultRepository
	publisher     *event.ComputePublisher
	vocab         StatusVocabulary
}

func NewAvailabilityService(
	policyService *PolicyService,
	telemetryRepo *repository.TelemetryRepository,
	resultRepo *repository.ResultRepository,
	publisher *event.ComputePublisher,
	vocab StatusVocabulary,
) *AvailabilityService {
	return &AvailabilityService{
		policyService: policyService,
		telemetryRepo: telemetryRepo,
		resultRepo:    resultRepo,
		publisher:     publisher,
		vocab:         vocab,
	}
}

// ============================================================================
// DAILY
// ============================================================================

// ComputeDaily evaluates every terminal that reported on the date and
// upserts one verdict row per terminal. Returns the number of rows written.
func (s *AvailabilityService) ComputeDaily(ctx context.Context, req models.ComputeDailyRequest) (int, error) {
	date, err := utils.ParseISODate(req.Date)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	weekStart := utils.MondayOf(date)
	if req.WeekStart != nil {
		weekStart, err = utils.ParseISODate(*req.WeekStart)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
		}
	}

	policy, err := s.policyService.ResolveForWeek(ctx, weekStart, req.PolicyID)
	if err != nil {
		return 0, err
	}

	dateISO := utils.FormatISODate(date)
	slog.Info("Computing daily availability",
		"date", dateISO,
		"policy_id", policy.ID,
		"policy_version", policy.CurrentVersion)

	terminals, err := s.telemetryRepo.ListTerminalsOnDate(dateISO)
	if err != nil {
		return 0, err
	}
	if len(terminals) == 0 {
		slog.Info("No terminals reported on date", "date", dateISO)
		return 0, nil
	}

	snapshots, err := s.telemetryRepo.BestSnapshotsByHour(dateISO, policy.SlotHours)
	if err != nil {
		return 0, err
	}

	bySlot := indexSnapshots(snapshots)

	results := make([]models.DailyResult, 0, len(terminals))
	computedAt := time.Now().UTC()
	for _, sn := range terminals {
		results = append(results, buildDailyResult(date, sn, policy, bySlot[sn], s.vocab, computedAt))
	}

	if err := s.resultRepo.UpsertDailyResults(results); err != nil {
		return 0, err
	}

	s.publishCompleted(ctx, event.ComputeCompletedEvent{
		Scope:         event.ScopeDaily,
		Date:          dateISO,
		PolicyID:      policy.ID,
		PolicyVersion: policy.CurrentVersion,
		RowCount:      len(results),
		ComputedAt:    computedAt.Format(time.RFC3339),
	})

	return len(results), nil
}

func indexSnapshots(snapshots []models.TelemetrySnapshot) map[string]map[int]*models.TelemetrySnapshot {
	bySlot := make(map[string]map[int]*models.TelemetrySnapshot)
	for i := range snapshots {
		snap := &snapshots[i]
		if bySlot[snap.TerminalSN] == nil {
			bySlot[snap.TerminalSN] = make(map[int]*models.TelemetrySnapshot)
		}
		bySlot[snap.TerminalSN][snap.SlotHour] = snap
	}
	return bySlot
}

// buildDailyResult folds one terminal's slot verdicts into a daily row.
// Failed slots come out in ascending hour order and reasons deduplicated and
// sorted, so recomputing an unchanged day rewrites an identical row.
func buildDailyResult(
	date time.Time,
	terminalSN string,
	policy *models.Policy,
	slots map[int]*models.TelemetrySnapshot,
	vocab StatusVocabulary,
	computedAt time.Time,
) models.DailyResult {
	okCount := 0
	failCount := 0
	failedSlots := make(utils.StringSlice, 0)
	reasonSet := make(map[models.ReasonCode]bool)

	for _, hour := range policy.SlotHours {
		verdict := EvaluateSlot(slots[hour], policy.PolicyShape, vocab)
		if verdict.OK {
			okCount++
			continue
		}
		failCount++
		failedSlots = append(failedSlots, utils.SlotTimestamp(date, hour))
		for _, reason := range verdict.Reasons {
			reasonSet[reason] = true
		}
	}

	reasons := make(models.ReasonList, 0, len(reasonSet))
	for reason := range reasonSet {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	return models.DailyResult{
		Date:          utils.FormatISODate(date),
		TerminalSN:    terminalSN,
		PolicyID:      policy.ID,
		PolicyVersion: policy.CurrentVersion,
		DayOK:         failCount < policy.DailyFailN,
		SlotOKCount:   okCount,
		SlotFailCount: failCount,
		FailedSlots:   failedSlots,
		FailedReasons: reasons,
		ComputedAt:    computedAt,
	}
}

// ============================================================================
// WEEKLY
// ============================================================================

// ComputeWeekly rolls the week's daily rows up into one decision per
// terminal. In auto mode it first recomputes each of the 7 days; a failing
// day is skipped with a warning unless the policy demands strict freshness.
func (s *AvailabilityService) ComputeWeekly(ctx context.Context, req models.ComputeWeeklyRequest) (int, error) {
	weekStart, err := utils.ParseISODate(req.WeekStart)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	weekStartISO := utils.FormatISODate(weekStart)

	policy, err := s.policyService.ResolveForWeek(ctx, weekStart, req.PolicyID)
	if err != nil {
		return 0, err
	}

	if req.Auto {
		if err := s.recomputeWeekDays(ctx, weekStart, policy); err != nil {
			return 0, err
		}
	}

	dailies, err := s.resultRepo.ListDailyForWeek(weekStartISO, policy.ID)
	if err != nil {
		return 0, err
	}
	if len(dailies) == 0 {
		slog.Info("No daily rows in week", "week_start", weekStartISO, "policy_id", policy.ID)
		return 0, nil
	}

	computedAt := time.Now().UTC()
	results := buildWeeklyResults(weekStartISO, policy, dailies, computedAt)

	if err := s.resultRepo.UpsertWeeklyResults(results); err != nil {
		return 0, err
	}

	s.publishCompleted(ctx, event.ComputeCompletedEvent{
		Scope:         event.ScopeWeekly,
		WeekStart:     weekStartISO,
		PolicyID:      policy.ID,
		PolicyVersion: policy.CurrentVersion,
		RowCount:      len(results),
		ComputedAt:    computedAt.Format(time.RFC3339),
	})

	return len(results), nil
}

func (s *AvailabilityService) recomputeWeekDays(ctx context.Context, weekStart time.Time, policy *models.Policy) error {
	weekStartISO := utils.FormatISODate(weekStart)
	for i := 0; i < 7; i++ {
		dayISO := utils.FormatISODate(weekStart.AddDate(0, 0, i))
		_, err := s.ComputeDaily(ctx, models.ComputeDailyRequest{
			Date:      dayISO,
			WeekStart: &weekStartISO,
			PolicyID:  &policy.ID,
		})
		if err == nil {
			continue
		}
		if policy.WeeklyAutoStrict {
			return fmt.Errorf("%w: daily compute for %s: %v", models.ErrPartialComputation, dayISO, err)
		}
		slog.Warn("Daily compute failed in weekly auto mode, skipping day",
			"date", dayISO,
			"policy_id", policy.ID,
			"error", err)
	}
	return nil
}

// buildWeeklyResults folds a week's daily rows, grouped per terminal, into
// weekly decisions. A zero threshold disables its branch of the decision.
func buildWeeklyResults(weekStartISO string, policy *models.Policy, dailies []models.DailyResult, computedAt time.Time) []models.WeeklyResult {
	type weekAgg struct {
		daysOK         int
		daysFail       int
		slotsOKTotal   int
		slotsFailTotal int
		failDates      utils.StringSlice
		reasons        models.ReasonCounts
	}

	aggs := make(map[string]*weekAgg)
	order := make([]string, 0)
	for _, d := range dailies {
		agg := aggs[d.TerminalSN]
		if agg == nil {
			agg = &weekAgg{failDates: make(utils.StringSlice, 0), reasons: make(models.ReasonCounts)}
			aggs[d.TerminalSN] = agg
			order = append(order, d.TerminalSN)
		}
		if d.DayOK {
			agg.daysOK++
		} else {
			agg.daysFail++
			agg.failDates = append(agg.failDates, d.Date)
		}
		agg.slotsOKTotal += d.SlotOKCount
		agg.slotsFailTotal += d.SlotFailCount
		for _, reason := range d.FailedReasons {
			agg.reasons[reason]++
		}
	}
	sort.Strings(order)

	failDays := policy.WeeklyFailDaysValue()
	failSlots := policy.WeeklyFailSlotsValue()

	results := make([]models.WeeklyResult, 0, len(order))
	for _, sn := range order {
		agg := aggs[sn]
		sort.Strings(agg.failDates)

		unavailable := (failDays > 0 && agg.daysFail >= failDays) ||
			(failSlots > 0 && agg.slotsFailTotal >= failSlots)

		results = append(results, models.WeeklyResult{
			WeekStart:      weekStartISO,
			TerminalSN:     sn,
			PolicyID:       policy.ID,
			PolicyVersion:  policy.CurrentVersion,
			Decision:       !unavailable,
			DaysOK:         agg.daysOK,
			DaysFail:       agg.daysFail,
			SlotsOKTotal:   agg.slotsOKTotal,
			SlotsFailTotal: agg.slotsFailTotal,
			FailDates:      agg.failDates,
			WeekReasons:    agg.reasons,
			ComputedAt:     computedAt,
		})
	}

	return results
}

// ============================================================================
// LISTINGS
// ============================================================================

func listingSummary(totals models.ResultTotals) models.ListingSummary {
	overall := totals.AvailableCount + totals.UnavailableCount
	summary := models.ListingSummary{
		TPETotal:         overall,
		AvailableCount:   totals.AvailableCount,
		UnavailableCount: totals.UnavailableCount,
	}
	if overall > 0 {
		summary.AvailablePct = float64(totals.AvailableCount) * 100 / float64(overall)
		summary.UnavailablePct = float64(totals.UnavailableCount) * 100 / float64(overall)
	}
	return summary
}

func (s *AvailabilityService) GetDaily(date string, policyID int64, filter models.ResultFilter) ([]models.DailyResult, models.ResultTotals, models.ListingSummary, error) {
	if _, err := utils.ParseISODate(date); err != nil {
		return nil, models.ResultTotals{}, models.ListingSummary{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if _, err := s.policyService.GetPolicy(policyID); err != nil {
		return nil, models.ResultTotals{}, models.ListingSummary{}, err
	}

	filter = filter.Normalize(models.DefaultDailyPageSize)
	results, totals, err := s.resultRepo.GetDailyResults(date, policyID, filter)
	if err != nil {
		return nil, models.ResultTotals{}, models.ListingSummary{}, err
	}

	return results, totals, listingSummary(totals), nil
}

func (s *AvailabilityService) GetWeekly(weekStart string, policyID int64, filter models.ResultFilter) ([]models.WeeklyResult, models.ResultTotals, models.ListingSummary, error) {
	if _, err := utils.ParseISODate(weekStart); err != nil {
		return nil, models.ResultTotals{}, models.ListingSummary{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if _, err := s.policyService.GetPolicy(policyID); err != nil {
		return nil, models.ResultTotals{}, models.ListingSummary{}, err
	}

	filter = filter.Normalize(models.DefaultWeeklyPageSize)
	results, totals, err := s.resultRepo.GetWeeklyResults(weekStart, policyID, filter)
	if err != nil {
		return nil, models.ResultTotals{}, models.ListingSummary{}, err
	}

	return results, totals, listingSummary(totals), nil
}

// ============================================================================
// BI VIEWS
// ============================================================================

// GetDailyUnavailable lists the day's failing terminals for the policy's
// current version only, so BI dashboards never mix shape generations.
func (s *AvailabilityService) GetDailyUnavailable(date string, policyID int64) ([]models.DailyResult, error) {
	if _, err := utils.ParseISODate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	policy, err := s.policyService.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	return s.resultRepo.ListDailyUnavailable(date, policy.ID, policy.CurrentVersion)
}

func (s *AvailabilityService) GetWeeklyUnavailable(weekStart string, policyID int64) ([]models.WeeklyResult, error) {
	if _, err := utils.ParseISODate(weekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	policy, err := s.policyService.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	return s.resultRepo.ListWeeklyUnavailable(weekStart, policy.ID, policy.CurrentVersion)
}

func (s *AvailabilityService) publishCompleted(ctx context.Context, evt event.ComputeCompletedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishComputeCompleted(ctx, evt); err != nil {
		slog.Warn("Failed to publish compute event", "scope", evt.Scope, "error", err)
	}
}
