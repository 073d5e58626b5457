package services

import (
	"testing"

	"availability-service/internal/config"
	"availability-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST SUITE 1: DEFAULT CLASSIFIERS
// ============================================================================

func TestIsOfflineDurationProlonged(t *testing.T) {
	vocab := DefaultVocabulary()

	assert.True(t, vocab.IsOfflineDurationProlonged(strPtr("> 1 day")))
	assert.True(t, vocab.IsOfflineDurationProlonged(strPtr("3 days")))
	assert.True(t, vocab.IsOfflineDurationProlonged(strPtr("> 30 min")))
	assert.False(t, vocab.IsOfflineDurationProlonged(strPtr("5 min")))
	assert.False(t, vocab.IsOfflineDurationProlonged(strPtr("")))
	assert.False(t, vocab.IsOfflineDurationProlonged(nil))
}

func TestIsStatusActive(t *testing.T) {
	vocab := DefaultVocabulary()

	assert.True(t, vocab.IsStatusActive(strPtr("Active")))
	assert.True(t, vocab.IsStatusActive(strPtr("ONLINE")))
	assert.True(t, vocab.IsStatusActive(strPtr("terminal online")))
	assert.False(t, vocab.IsStatusActive(strPtr("disabled")))
	assert.False(t, vocab.IsStatusActive(nil))
}

func TestIsGeofenceIn(t *testing.T) {
	vocab := DefaultVocabulary()

	assert.True(t, vocab.IsGeofenceIn(strPtr("In geofence")))
	assert.True(t, vocab.IsGeofenceIn(strPtr("terminal is in geofence zone A")))
	assert.False(t, vocab.IsGeofenceIn(strPtr("out of zone")))
	assert.False(t, vocab.IsGeofenceIn(nil))
}

func TestClassifyPrinter(t *testing.T) {
	vocab := DefaultVocabulary()

	paper, hint := vocab.ClassifyPrinter(strPtr("Available"))
	assert.Equal(t, models.PaperStateOK, paper)
	assert.False(t, hint)

	paper, hint = vocab.ClassifyPrinter(strPtr("Out of paper"))
	assert.Equal(t, models.PaperStateOut, paper)
	assert.False(t, hint)

	paper, hint = vocab.ClassifyPrinter(strPtr("Low voltage"))
	assert.Equal(t, models.PaperStateOK, paper, "low voltage is a battery hint, paper itself is fine")
	assert.True(t, hint)

	paper, hint = vocab.ClassifyPrinter(strPtr("some vendor text"))
	assert.Equal(t, models.PaperStateUnknown, paper)
	assert.False(t, hint)

	paper, hint = vocab.ClassifyPrinter(nil)
	assert.Equal(t, models.PaperStateUnknown, paper)
	assert.False(t, hint)
}

// ============================================================================
// TEST SUITE 2: NUMERIC PARSERS
// ============================================================================

func TestParseSignal(t *testing.T) {
	assert.Equal(t, 4.0, ParseSignal(strPtr("4")))
	assert.Equal(t, 2.5, ParseSignal(strPtr(" 2.5 ")))
	assert.Zero(t, ParseSignal(strPtr("strong")))
	assert.Zero(t, ParseSignal(nil))
}

func TestParseBatteryPct(t *testing.T) {
	assert.Equal(t, 18, ParseBatteryPct(floatPtr(0.18)))
	assert.Equal(t, 20, ParseBatteryPct(floatPtr(0.195)))
	assert.Equal(t, 100, ParseBatteryPct(floatPtr(1.0)))
	assert.Zero(t, ParseBatteryPct(nil))
}

// ============================================================================
// TEST SUITE 3: CONFIG OVERRIDES
// ============================================================================

func TestVocabularyFromConfig_Overrides(t *testing.T) {
	vocab := VocabularyFromConfig(config.VocabularyConfig{
		ActiveStatusMarkers: []string{"running"},
		GeofenceInMarker:    "inside perimeter",
	})

	assert.True(t, vocab.IsStatusActive(strPtr("Running")))
	assert.False(t, vocab.IsStatusActive(strPtr("Active")), "override replaces the default markers")
	assert.True(t, vocab.IsGeofenceIn(strPtr("inside perimeter B")))

	// Untouched fields keep their defaults.
	assert.True(t, vocab.IsOfflineDurationProlonged(strPtr("> 1 day")))
	paper, _ := vocab.ClassifyPrinter(strPtr("Available"))
	assert.Equal(t, models.PaperStateOK, paper)
}
