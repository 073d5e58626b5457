package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

// ============================================================================
// TEST SUITE 1: SHAPE NORMALIZATION
// ============================================================================

func TestNormalizeSlotHours(t *testing.T) {
	assert.Equal(t, []int{12, 13, 17}, []int(NormalizeSlotHours([]int{17, 12, 13, 12})),
		"hours must come out deduplicated and ascending")
	assert.Equal(t, []int{0, 23}, []int(NormalizeSlotHours([]int{23, -1, 0, 24})),
		"hours outside 0..23 are dropped")
	assert.Empty(t, NormalizeSlotHours(nil))
}

func TestNormalize_DefaultsPaperMode(t *testing.T) {
	s := PolicyShape{SlotHours: []int{12}, PaperMode: "bogus"}.Normalize()
	assert.Equal(t, PaperStrict, s.PaperMode)
}

// ============================================================================
// TEST SUITE 2: STRUCTURAL EQUALITY
// ============================================================================

func TestShapeEqual_IgnoresSlotOrderAfterNormalize(t *testing.T) {
	a := DefaultShape()
	b := DefaultShape()
	b.SlotHours = NormalizeSlotHours([]int{19, 18, 17, 15, 14, 13, 12})

	assert.True(t, a.Equal(b))
}

func TestShapeEqual_DetectsThresholdChange(t *testing.T) {
	a := DefaultShape()
	b := DefaultShape()
	b.BatteryMinPct = 25

	assert.False(t, a.Equal(b))
}

func TestShapeEqual_NilVersusZeroThreshold(t *testing.T) {
	a := DefaultShape()
	a.WeeklyFailDays = nil
	b := DefaultShape()
	b.WeeklyFailDays = intPtr(0)

	// Both disable the branch, but they are distinct stored shapes.
	assert.False(t, a.Equal(b))
	assert.Equal(t, 0, a.WeeklyFailDaysValue())
	assert.Equal(t, 0, b.WeeklyFailDaysValue())
}

// ============================================================================
// TEST SUITE 3: REQUEST MERGING
// ============================================================================

func TestCreatePolicyRequest_ShapeAppliesDefaults(t *testing.T) {
	req := CreatePolicyRequest{Name: "p"}
	s := req.Shape()

	assert.Equal(t, DefaultShape().Normalize(), s)
	assert.Equal(t, 20, s.BatteryMinPct)
	assert.Equal(t, []int{12, 13, 14, 15, 17, 18, 19}, []int(s.SlotHours))
}

func TestCreatePolicyRequest_ShapeOverrides(t *testing.T) {
	req := CreatePolicyRequest{
		Name:          "p",
		UseGeofence:   boolPtr(false),
		BatteryMinPct: intPtr(30),
		SlotHours:     []int{9, 9, 10},
		PaperMode:     strPtr("lenient"),
	}
	s := req.Shape()

	assert.False(t, s.UseGeofence)
	assert.Equal(t, 30, s.BatteryMinPct)
	assert.Equal(t, []int{9, 10}, []int(s.SlotHours))
	assert.Equal(t, PaperLenient, s.PaperMode)
}

func TestUpdatePolicyRequest_MergeShapeKeepsUnsetFields(t *testing.T) {
	current := DefaultShape()
	req := UpdatePolicyRequest{DailyFailN: intPtr(3)}

	merged := req.MergeShape(current)

	assert.Equal(t, 3, merged.DailyFailN)
	assert.Equal(t, current.BatteryMinPct, merged.BatteryMinPct)
	assert.Equal(t, current.SlotHours, merged.SlotHours)
}

func TestUpdatePolicyRequest_DisplayOnlyEditKeepsShapeEqual(t *testing.T) {
	current := DefaultShape()
	req := UpdatePolicyRequest{Name: strPtr("renamed"), Status: strPtr("archived")}

	merged := req.MergeShape(current)

	assert.True(t, merged.Equal(current.Normalize()),
		"name and status never participate in shape equality")
}

// ============================================================================
// TEST SUITE 4: RESULT FILTER
// ============================================================================

func TestResultFilter_Normalize(t *testing.T) {
	f := ResultFilter{Page: -3, PageSize: 5000, Status: "bogus", SortBy: "drop table", Order: "ASC"}.Normalize(200)

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 1000, f.PageSize, "page size is clamped")
	assert.Equal(t, StatusAll, f.Status)
	assert.Equal(t, "", f.SortBy, "unknown sort columns are rejected")
	assert.Equal(t, "desc", f.Order, "only lowercase asc flips the order")
}

func TestResultFilter_NormalizeWhitelistedSort(t *testing.T) {
	f := ResultFilter{SortBy: "slots_fail_total", Order: "asc"}.Normalize(50)

	assert.Equal(t, "slots_fail_total", f.SortBy)
	assert.Equal(t, "asc", f.Order)
	assert.Equal(t, 50, f.PageSize)
}
