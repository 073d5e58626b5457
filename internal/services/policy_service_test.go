package services

import (
	"testing"

	"availability-service/internal/models"
	"availability-service/internal/utils"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST SUITE: SHAPE VALIDATION
// ============================================================================

func TestValidateShapeAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validateShape(models.DefaultShape()))
}

func TestValidateShapeBatteryRange(t *testing.T) {
	shape := models.DefaultShape()

	shape.BatteryMinPct = -1
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	shape.BatteryMinPct = 101
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	shape.BatteryMinPct = 0
	assert.NoError(t, validateShape(shape))

	shape.BatteryMinPct = 100
	assert.NoError(t, validateShape(shape))
}

func TestValidateShapeNegativeThresholds(t *testing.T) {
	shape := models.DefaultShape()
	shape.DailyFailN = -1
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	shape = models.DefaultShape()
	shape.WeeklyFailDays = intPtr(-1)
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	shape = models.DefaultShape()
	shape.WeeklyFailSlots = intPtr(-3)
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)
}

func TestValidateShapeNilThresholdsAllowed(t *testing.T) {
	// A missing weekly threshold disables that branch of the decision; it
	// must not be rejected as invalid.
	shape := models.DefaultShape()
	shape.WeeklyFailDays = nil
	shape.WeeklyFailSlots = nil
	assert.NoError(t, validateShape(shape))
}

func TestValidateShapePaperMode(t *testing.T) {
	shape := models.DefaultShape()
	shape.PaperMode = models.PaperMode("loose")
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	shape.PaperMode = models.PaperLenient
	assert.NoError(t, validateShape(shape))
}

func TestValidateShapeSlotHours(t *testing.T) {
	shape := models.DefaultShape()
	shape.SlotHours = utils.IntSlice{}
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	// All out of range normalizes to empty.
	shape.SlotHours = utils.IntSlice{-2, 24, 99}
	assert.ErrorIs(t, validateShape(shape), models.ErrInvalidInput)

	shape.SlotHours = utils.IntSlice{24, 12}
	assert.NoError(t, validateShape(shape))
}
