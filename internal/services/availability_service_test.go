package services

import (
	"testing"
	"time"

	"availability-service/internal/models"
	"availability-service/internal/utils"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func testPolicy(shape models.PolicyShape) *models.Policy {
	return &models.Policy{
		ID:             7,
		Name:           "fleet default",
		Status:         models.PolicyActive,
		CurrentVersion: 3,
		PolicyShape:    shape.Normalize(),
	}
}

func testDate() time.Time {
	d, _ := utils.ParseISODate("2025-01-06") // a Monday
	return d
}

func dailyRow(date, sn string, dayOK bool, okCount, failCount int, reasons ...models.ReasonCode) models.DailyResult {
	return models.DailyResult{
		Date:          date,
		TerminalSN:    sn,
		PolicyID:      7,
		PolicyVersion: 3,
		DayOK:         dayOK,
		SlotOKCount:   okCount,
		SlotFailCount: failCount,
		FailedReasons: models.ReasonList(reasons),
	}
}

// ============================================================================
// TEST SUITE 1: DAILY ROW BUILDER
// ============================================================================

func TestBuildDailyResult_MissingSlotsFailWithNoData(t *testing.T) {
	shape := models.PolicyShape{
		UseBattery:    true,
		UsePaper:      true,
		BatteryMinPct: 20,
		DailyFailN:    1,
		SlotHours:     []int{12, 13},
		PaperMode:     models.PaperStrict,
	}
	policy := testPolicy(shape)

	slots := map[int]*models.TelemetrySnapshot{
		12: {
			TerminalSN:     "T1",
			SlotHour:       12,
			BatteryRateAvg: floatPtr(0.15),
			Printer:        strPtr("Available"),
		},
		// Hour 13 has no snapshot.
	}

	result := buildDailyResult(testDate(), "T1", policy, slots, DefaultVocabulary(), time.Now())

	assert.Equal(t, 0, result.SlotOKCount)
	assert.Equal(t, 2, result.SlotFailCount)
	assert.False(t, result.DayOK, "2 failing slots >= dailyFailN 1")
	assert.Equal(t, []string{"2025-01-06 12:00:00", "2025-01-06 13:00:00"}, []string(result.FailedSlots))
	assert.Equal(t, models.ReasonList{models.ReasonBatteryLow, models.ReasonNoData}, result.FailedReasons,
		"reasons must be deduplicated and sorted")
	assert.Equal(t, int64(7), result.PolicyID)
	assert.Equal(t, 3, result.PolicyVersion)
}

func TestBuildDailyResult_DayOKUsesStrictLessThan(t *testing.T) {
	shape := models.PolicyShape{
		UseTPEOn:   true,
		SlotHours:  []int{12, 13, 14},
		DailyFailN: 2,
		PaperMode:  models.PaperStrict,
	}
	policy := testPolicy(shape)

	active := strPtr("Active")
	short := strPtr("2 min")
	slots := map[int]*models.TelemetrySnapshot{
		12: {TerminalSN: "T1", SlotHour: 12, Status: active, OfflineDuration: short},
		13: {TerminalSN: "T1", SlotHour: 13, Status: active, OfflineDuration: short},
		// Hour 14 missing: exactly one failure.
	}

	result := buildDailyResult(testDate(), "T1", policy, slots, DefaultVocabulary(), time.Now())

	assert.Equal(t, 1, result.SlotFailCount)
	assert.True(t, result.DayOK, "1 failure < dailyFailN 2")
}

func TestBuildDailyResult_DailyFailNZeroNeverOK(t *testing.T) {
	shape := models.PolicyShape{
		UseTPEOn:   true,
		SlotHours:  []int{12},
		DailyFailN: 0,
		PaperMode:  models.PaperStrict,
	}
	policy := testPolicy(shape)

	slots := map[int]*models.TelemetrySnapshot{
		12: {TerminalSN: "T1", SlotHour: 12, Status: strPtr("Active"), OfflineDuration: strPtr("1 min")},
	}

	result := buildDailyResult(testDate(), "T1", policy, slots, DefaultVocabulary(), time.Now())

	assert.Equal(t, 0, result.SlotFailCount)
	assert.False(t, result.DayOK, "0 failures is not < 0")
}

func TestBuildDailyResult_Deterministic(t *testing.T) {
	policy := testPolicy(models.DefaultShape())
	computedAt := time.Now()

	first := buildDailyResult(testDate(), "T1", policy, nil, DefaultVocabulary(), computedAt)
	second := buildDailyResult(testDate(), "T1", policy, nil, DefaultVocabulary(), computedAt)

	assert.Equal(t, first, second)
}

// ============================================================================
// TEST SUITE 2: WEEKLY FOLD
// ============================================================================

func TestBuildWeeklyResults_FailDaysThreshold(t *testing.T) {
	shape := models.DefaultShape()
	shape.WeeklyFailDays = intPtr(2)
	shape.WeeklyFailSlots = nil
	policy := testPolicy(shape)

	dailies := []models.DailyResult{
		dailyRow("2025-01-06", "T1", false, 5, 2, models.ReasonBatteryLow),
		dailyRow("2025-01-07", "T1", false, 4, 3, models.ReasonBatteryLow, models.ReasonPaperOut),
		dailyRow("2025-01-08", "T1", true, 7, 0),
		dailyRow("2025-01-06", "T2", false, 6, 1, models.ReasonNoData),
		dailyRow("2025-01-07", "T2", true, 7, 0),
	}

	results := buildWeeklyResults("2025-01-06", policy, dailies, time.Now())

	assert.Len(t, results, 2)

	t1 := results[0]
	assert.Equal(t, "T1", t1.TerminalSN)
	assert.False(t, t1.Decision, "2 failing days >= weeklyFailDays 2")
	assert.Equal(t, 1, t1.DaysOK)
	assert.Equal(t, 2, t1.DaysFail)
	assert.Equal(t, 16, t1.SlotsOKTotal)
	assert.Equal(t, 5, t1.SlotsFailTotal)
	assert.Equal(t, []string{"2025-01-06", "2025-01-07"}, []string(t1.FailDates))
	assert.Equal(t, models.ReasonCounts{
		models.ReasonBatteryLow: 2,
		models.ReasonPaperOut:   1,
	}, t1.WeekReasons, "one count per day a reason appeared")

	t2 := results[1]
	assert.Equal(t, "T2", t2.TerminalSN)
	assert.True(t, t2.Decision, "1 failing day < weeklyFailDays 2")
}

func TestBuildWeeklyResults_FailSlotsThreshold(t *testing.T) {
	shape := models.DefaultShape()
	shape.WeeklyFailDays = nil
	shape.WeeklyFailSlots = intPtr(6)
	policy := testPolicy(shape)

	dailies := []models.DailyResult{
		// Every day OK, but slot failures accumulate to the threshold.
		dailyRow("2025-01-06", "T1", true, 4, 3),
		dailyRow("2025-01-07", "T1", true, 4, 3),
	}

	results := buildWeeklyResults("2025-01-06", policy, dailies, time.Now())

	assert.Len(t, results, 1)
	assert.False(t, results[0].Decision, "6 failing slots >= weeklyFailSlots 6")
}

func TestBuildWeeklyResults_DisabledThresholdsAlwaysAvailable(t *testing.T) {
	shape := models.DefaultShape()
	shape.WeeklyFailDays = nil
	shape.WeeklyFailSlots = nil
	policy := testPolicy(shape)

	dailies := []models.DailyResult{
		dailyRow("2025-01-06", "T1", false, 0, 7, models.ReasonNoData),
		dailyRow("2025-01-07", "T1", false, 0, 7, models.ReasonNoData),
	}

	results := buildWeeklyResults("2025-01-06", policy, dailies, time.Now())

	assert.Len(t, results, 1)
	assert.True(t, results[0].Decision, "both thresholds disabled means no branch can fire")
}

func TestBuildWeeklyResults_OrderedByTerminal(t *testing.T) {
	policy := testPolicy(models.DefaultShape())

	dailies := []models.DailyResult{
		dailyRow("2025-01-06", "ZZ-9", true, 7, 0),
		dailyRow("2025-01-06", "AA-1", true, 7, 0),
	}

	results := buildWeeklyResults("2025-01-06", policy, dailies, time.Now())

	assert.Equal(t, "AA-1", results[0].TerminalSN)
	assert.Equal(t, "ZZ-9", results[1].TerminalSN)
}

// ============================================================================
// TEST SUITE 3: LISTING SUMMARY
// ============================================================================

func TestListingSummary_Percentages(t *testing.T) {
	summary := listingSummary(models.ResultTotals{
		Total:            8,
		AvailableCount:   6,
		UnavailableCount: 2,
	})

	assert.Equal(t, 8, summary.TPETotal)
	assert.InDelta(t, 75.0, summary.AvailablePct, 0.001)
	assert.InDelta(t, 25.0, summary.UnavailablePct, 0.001)
}

func TestListingSummary_EmptySetHasZeroPercentages(t *testing.T) {
	summary := listingSummary(models.ResultTotals{})

	assert.Equal(t, 0, summary.TPETotal)
	assert.Zero(t, summary.AvailablePct)
	assert.Zero(t, summary.UnavailablePct)
}
