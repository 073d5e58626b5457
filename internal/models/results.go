package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"availability-service/internal/utils"
)

// ReasonList maps a JSONB array column to []ReasonCode.
type ReasonList []ReasonCode

func (l ReasonList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]ReasonCode{})
	}
	return json.Marshal([]ReasonCode(l))
}

func (l *ReasonList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("ReasonList: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, (*[]ReasonCode)(l))
}

// ReasonCounts maps a JSONB object column to reason code occurrence counts.
type ReasonCounts map[ReasonCode]int

func (c ReasonCounts) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(map[ReasonCode]int{})
	}
	return json.Marshal(map[ReasonCode]int(c))
}

func (c *ReasonCounts) Scan(value any) error {
	if value == nil {
		*c = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("ReasonCounts: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, (*map[ReasonCode]int)(c))
}

// DailyResult is one availability verdict per (date, terminal, policy).
// Recomputation fully replaces the row for its key.
type DailyResult struct {
	Date          string            `json:"date" db:"date"`
	TerminalSN    string            `json:"terminal_sn" db:"terminal_sn"`
	PolicyID      int64             `json:"policy_id" db:"policy_id"`
	PolicyVersion int               `json:"policy_version" db:"policy_version"`
	DayOK         bool              `json:"day_ok" db:"day_ok"`
	SlotOKCount   int               `json:"slot_ok_count" db:"slot_ok_count"`
	SlotFailCount int               `json:"slot_fail_count" db:"slot_fail_count"`
	FailedSlots   utils.StringSlice `json:"failed_slots" db:"failed_slots"`
	FailedReasons ReasonList        `json:"failed_reasons" db:"failed_reasons"`
	ComputedAt    time.Time         `json:"computed_at" db:"computed_at"`
}

// WeeklyResult is one availability decision per (week start, terminal,
// policy), derived entirely from the week's daily rows.
type WeeklyResult struct {
	WeekStart      string            `json:"week_start" db:"week_start"`
	TerminalSN     string            `json:"terminal_sn" db:"terminal_sn"`
	PolicyID       int64             `json:"policy_id" db:"policy_id"`
	PolicyVersion  int               `json:"policy_version" db:"policy_version"`
	Decision       bool              `json:"decision" db:"decision"`
	DaysOK         int               `json:"days_ok" db:"days_ok"`
	DaysFail       int               `json:"days_fail" db:"days_fail"`
	SlotsOKTotal   int               `json:"slots_ok_total" db:"slots_ok_total"`
	SlotsFailTotal int               `json:"slots_fail_total" db:"slots_fail_total"`
	FailDates      utils.StringSlice `json:"fail_dates" db:"fail_dates"`
	WeekReasons    ReasonCounts      `json:"week_reasons" db:"week_reasons"`
	ComputedAt     time.Time         `json:"computed_at" db:"computed_at"`
}

// ResultTotals carries the counters of a filtered result listing.
type ResultTotals struct {
	Total            int `db:"total"`
	AvailableCount   int `db:"available_count"`
	UnavailableCount int `db:"unavailable_count"`
}

// ListingSummary rides along with paginated result listings.
type ListingSummary struct {
	TPETotal         int     `json:"tpe_total"`
	AvailableCount   int     `json:"available_count"`
	UnavailableCount int     `json:"unavailable_count"`
	AvailablePct     float64 `json:"available_pct"`
	UnavailablePct   float64 `json:"unavailable_pct"`
}

// DailySummary aggregates one day's rows for the metrics endpoint.
type DailySummary struct {
	TPEDayTotal         int     `json:"tpe_day_total" db:"tpe_day_total"`
	TPEDayOK            int     `json:"tpe_day_ok" db:"tpe_day_ok"`
	TPEDayFail          int     `json:"tpe_day_fail" db:"-"`
	DailyAvailablePct   float64 `json:"daily_available_pct" db:"-"`
	SlotsOKDay          int     `json:"slots_ok_day" db:"slots_ok_day"`
	SlotsFailDay        int     `json:"slots_fail_day" db:"slots_fail_day"`
	LastDailyComputedAt *string `json:"last_daily_computed_at" db:"last_daily_computed_at"`
}

// WeeklySummary aggregates one week's rows for the metrics endpoint.
type WeeklySummary struct {
	TPEWeekTotal         int     `json:"tpe_week_total" db:"tpe_week_total"`
	TPEWeekOK            int     `json:"tpe_week_ok" db:"tpe_week_ok"`
	TPEWeekFail          int     `json:"tpe_week_fail" db:"-"`
	WeeklyAvailablePct   float64 `json:"weekly_available_pct" db:"-"`
	SlotsOKWeek          int     `json:"slots_ok_week" db:"slots_ok_week"`
	SlotsFailWeek        int     `json:"slots_fail_week" db:"slots_fail_week"`
	LastWeeklyComputedAt *string `json:"last_weekly_computed_at" db:"last_weekly_computed_at"`
}

// MetricsSummary is the combined day and week dashboard payload.
type MetricsSummary struct {
	DailySummary
	WeeklySummary
}
