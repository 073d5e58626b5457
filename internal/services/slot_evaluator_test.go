package services

import (
	"testing"

	"availability-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int { return &n }

func healthySnapshot() *models.TelemetrySnapshot {
	return &models.TelemetrySnapshot{
		TerminalSN:      "TPE-001",
		SlotHour:        12,
		Status:          strPtr("Active"),
		OfflineDuration: strPtr("5 min"),
		Signal:          strPtr("4"),
		Geofence:        strPtr("In geofence"),
		Printer:         strPtr("Available"),
		BatteryRateAvg:  floatPtr(0.85),
	}
}

func allChecksShape() models.PolicyShape {
	return models.DefaultShape()
}

// ============================================================================
// TEST SUITE 1: MISSING DATA
// ============================================================================

func TestEvaluateSlot_NilSnapshot(t *testing.T) {
	verdict := EvaluateSlot(nil, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Equal(t, []models.ReasonCode{models.ReasonNoData}, verdict.Reasons)
}

func TestEvaluateSlot_HealthySnapshotPasses(t *testing.T) {
	verdict := EvaluateSlot(healthySnapshot(), allChecksShape(), DefaultVocabulary())

	assert.True(t, verdict.OK)
	assert.Empty(t, verdict.Reasons)
}

// ============================================================================
// TEST SUITE 2: INDIVIDUAL CRITERIA
// ============================================================================

func TestEvaluateSlot_ProlongedOffline(t *testing.T) {
	snap := healthySnapshot()
	snap.OfflineDuration = strPtr("> 1 day")

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonOfflineDuration)
}

func TestEvaluateSlot_InactiveStatus(t *testing.T) {
	snap := healthySnapshot()
	snap.Status = strPtr("Disabled")

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonStatusInactive)
}

func TestEvaluateSlot_MissingStatusIsInactive(t *testing.T) {
	snap := healthySnapshot()
	snap.Status = nil

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonStatusInactive)
}

func TestEvaluateSlot_LowSignal(t *testing.T) {
	snap := healthySnapshot()
	snap.Signal = strPtr("1")

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonSignalLow)
}

func TestEvaluateSlot_NonNumericSignalCountsAsZero(t *testing.T) {
	snap := healthySnapshot()
	snap.Signal = strPtr("n/a")

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonSignalLow)
}

func TestEvaluateSlot_GeofenceOut(t *testing.T) {
	snap := healthySnapshot()
	snap.Geofence = strPtr("Out of zone")

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonGeofenceOut)
}

func TestEvaluateSlot_BatteryBelowThreshold(t *testing.T) {
	snap := healthySnapshot()
	snap.BatteryRateAvg = floatPtr(0.15) // 15% < 20%

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonBatteryLow)
}

func TestEvaluateSlot_BatteryExactlyAtThresholdPasses(t *testing.T) {
	snap := healthySnapshot()
	snap.BatteryRateAvg = floatPtr(0.20) // 20% is not < 20%

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.True(t, verdict.OK)
}

func TestEvaluateSlot_LowVoltageHintOverridesRatio(t *testing.T) {
	snap := healthySnapshot()
	snap.Printer = strPtr("Low voltage")
	snap.BatteryRateAvg = floatPtr(0.90) // ratio says full, hint says low

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonBatteryLow)
	// Low voltage is a battery concern, not a paper concern.
	assert.NotContains(t, verdict.Reasons, models.ReasonPaperOut)
	assert.NotContains(t, verdict.Reasons, models.ReasonPaperUnknown)
}

func TestEvaluateSlot_PaperOut(t *testing.T) {
	snap := healthySnapshot()
	snap.Printer = strPtr("Out of paper")

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonPaperOut)
}

func TestEvaluateSlot_PaperUnknownStrictFails(t *testing.T) {
	snap := healthySnapshot()
	snap.Printer = strPtr("weird vendor text")

	shape := allChecksShape()
	shape.PaperMode = models.PaperStrict

	verdict := EvaluateSlot(snap, shape, DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Contains(t, verdict.Reasons, models.ReasonPaperUnknown)
}

// ============================================================================
// TEST SUITE 3: AGGREGATE BEHAVIOR
// ============================================================================

func TestEvaluateSlot_CollectsAllFailingReasons(t *testing.T) {
	snap := &models.TelemetrySnapshot{
		TerminalSN:      "TPE-002",
		SlotHour:        13,
		Status:          strPtr("inactive"),
		OfflineDuration: strPtr("> 2 days"),
		Signal:          strPtr("0"),
		Geofence:        strPtr("outside"),
		Printer:         strPtr("Out of paper"),
		BatteryRateAvg:  floatPtr(0.05),
	}

	verdict := EvaluateSlot(snap, allChecksShape(), DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.ElementsMatch(t, []models.ReasonCode{
		models.ReasonOfflineDuration,
		models.ReasonStatusInactive,
		models.ReasonSignalLow,
		models.ReasonGeofenceOut,
		models.ReasonBatteryLow,
		models.ReasonPaperOut,
	}, verdict.Reasons, "no criterion should short-circuit the others")
}

func TestEvaluateSlot_DisabledtogglesSkipChecks(t *testing.T) {
	snap := &models.TelemetrySnapshot{
		TerminalSN: "TPE-003",
		SlotHour:   14,
		// Everything missing or failing, but no toggle is on.
	}

	shape := models.PolicyShape{PaperMode: models.PaperStrict}

	verdict := EvaluateSlot(snap, shape, DefaultVocabulary())

	assert.True(t, verdict.OK)
	assert.Empty(t, verdict.Reasons)
}

// Shape {useBattery, batteryMinPct:20, usePaper strict}: a 15% battery with a
// working printer fails on battery alone.
func TestEvaluateSlot_BatteryAndPaperScenario(t *testing.T) {
	shape := models.PolicyShape{
		UseBattery:    true,
		UsePaper:      true,
		BatteryMinPct: 20,
		DailyFailN:    1,
		PaperMode:     models.PaperStrict,
	}
	snap := &models.TelemetrySnapshot{
		TerminalSN:     "T1",
		SlotHour:       12,
		BatteryRateAvg: floatPtr(0.15),
		Printer:        strPtr("Available"),
	}

	verdict := EvaluateSlot(snap, shape, DefaultVocabulary())

	assert.False(t, verdict.OK)
	assert.Equal(t, []models.ReasonCode{models.ReasonBatteryLow}, verdict.Reasons)
}

func TestEvaluateSlot_LenientPaperWarnsWithoutFailing(t *testing.T) {
	shape := models.PolicyShape{
		UseBattery:    true,
		UsePaper:      true,
		BatteryMinPct: 20,
		DailyFailN:    1,
		PaperMode:     models.PaperLenient,
	}
	snap := &models.TelemetrySnapshot{
		TerminalSN:     "T1",
		SlotHour:       12,
		BatteryRateAvg: floatPtr(0.80),
		Printer:        strPtr("unknown text"),
	}

	verdict := EvaluateSlot(snap, shape, DefaultVocabulary())

	assert.True(t, verdict.OK, "lenient paper uncertainty must not fail the slot")
	assert.Equal(t, []models.ReasonCode{models.ReasonPaperUnknownWarn}, verdict.Reasons)
}
