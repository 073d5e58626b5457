package models

import (
	"sort"
	"time"

	"availability-service/internal/utils"
)

// PolicyShape is the subset of policy fields that change evaluation
// outcomes. It is compared by structural equality: any edit that alters a
// normalized shape bumps the policy version and freezes a snapshot, while
// display fields (name, status) never do.
type PolicyShape struct {
	UseTPEOn         bool           `json:"use_tpe_on" db:"use_tpe_on"`
	UseInternet      bool           `json:"use_internet" db:"use_internet"`
	UseGeofence      bool           `json:"use_geofence" db:"use_geofence"`
	UseBattery       bool           `json:"use_battery" db:"use_battery"`
	UsePaper         bool           `json:"use_paper" db:"use_paper"`
	BatteryMinPct    int            `json:"battery_min_pct" db:"battery_min_pct"`
	DailyFailN       int            `json:"daily_fail_n" db:"daily_fail_n"`
	WeeklyFailDays   *int           `json:"weekly_fail_days" db:"weekly_fail_days"`
	WeeklyFailSlots  *int           `json:"weekly_fail_slots" db:"weekly_fail_slots"`
	SlotHours        utils.IntSlice `json:"slot_hours" db:"slot_hours"`
	PaperMode        PaperMode      `json:"paper_mode" db:"paper_mode"`
	WeeklyAutoStrict bool           `json:"weekly_auto_strict" db:"weekly_auto_strict"`
}

// DefaultShape mirrors the defaults applied when a policy is created
// without explicit thresholds.
func DefaultShape() PolicyShape {
	failDays := 1
	failSlots := 6
	return PolicyShape{
		UseTPEOn:        true,
		UseInternet:     true,
		UseGeofence:     true,
		UseBattery:      true,
		UsePaper:        true,
		BatteryMinPct:   20,
		DailyFailN:      1,
		WeeklyFailDays:  &failDays,
		WeeklyFailSlots: &failSlots,
		SlotHours:       utils.IntSlice{12, 13, 14, 15, 17, 18, 19},
		PaperMode:       PaperStrict,
	}
}

// NormalizeSlotHours deduplicates, sorts ascending and drops values outside
// 0..23.
func NormalizeSlotHours(hours []int) utils.IntSlice {
	seen := make(map[int]bool, len(hours))
	out := make(utils.IntSlice, 0, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

// Normalize returns a canonical copy of the shape: slot hours deduplicated
// and sorted, paper mode defaulted to strict.
func (s PolicyShape) Normalize() PolicyShape {
	n := s
	n.SlotHours = NormalizeSlotHours(s.SlotHours)
	if !n.PaperMode.Valid() {
		n.PaperMode = PaperStrict
	}
	return n
}

// Equal reports structural equality of two normalized shapes.
func (s PolicyShape) Equal(other PolicyShape) bool {
	if s.UseTPEOn != other.UseTPEOn ||
		s.UseInternet != other.UseInternet ||
		s.UseGeofence != other.UseGeofence ||
		s.UseBattery != other.UseBattery ||
		s.UsePaper != other.UsePaper ||
		s.BatteryMinPct != other.BatteryMinPct ||
		s.DailyFailN != other.DailyFailN ||
		s.PaperMode != other.PaperMode ||
		s.WeeklyAutoStrict != other.WeeklyAutoStrict {
		return false
	}
	if !intPtrEqual(s.WeeklyFailDays, other.WeeklyFailDays) ||
		!intPtrEqual(s.WeeklyFailSlots, other.WeeklyFailSlots) {
		return false
	}
	if len(s.SlotHours) != len(other.SlotHours) {
		return false
	}
	for i := range s.SlotHours {
		if s.SlotHours[i] != other.SlotHours[i] {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// WeeklyFailDaysValue treats a missing threshold as 0, which disables that
// branch of the weekly decision.
func (s PolicyShape) WeeklyFailDaysValue() int {
	if s.WeeklyFailDays == nil {
		return 0
	}
	return *s.WeeklyFailDays
}

func (s PolicyShape) WeeklyFailSlotsValue() int {
	if s.WeeklyFailSlots == nil {
		return 0
	}
	return *s.WeeklyFailSlots
}

// Policy is a named, versioned availability rule set for payment terminals.
type Policy struct {
	ID             int64        `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	Status         PolicyStatus `json:"status" db:"status"`
	CurrentVersion int          `json:"current_version" db:"current_version"`
	PolicyShape
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PolicyVersion is an immutable snapshot of a policy's shape at a point in
// time. Rows are only ever inserted, never updated.
type PolicyVersion struct {
	PolicyID int64        `json:"policy_id" db:"policy_id"`
	Version  int          `json:"version" db:"version"`
	Name     string       `json:"name" db:"name"`
	Status   PolicyStatus `json:"status" db:"status"`
	PolicyShape
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WeekLock pins a policy to a specific ISO week so historical weeks stay
// reproducible when the active policy changes.
type WeekLock struct {
	WeekYear   int       `json:"week_year" db:"week_year"`
	WeekNumber int       `json:"week_number" db:"week_number"`
	PolicyID   int64     `json:"policy_id" db:"policy_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
