package utils

import (
	"fmt"
	"time"
)

const ISODateLayout = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD string as a UTC midnight instant.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISODateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func FormatISODate(t time.Time) string {
	return t.UTC().Format(ISODateLayout)
}

// MondayOf snaps a date to the Monday of its ISO week.
func MondayOf(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return t.AddDate(0, 0, -offset)
}

// WeekRange returns the half-open window [weekStart, weekStart+7d).
func WeekRange(weekStart time.Time) (time.Time, time.Time) {
	start := weekStart.UTC().Truncate(24 * time.Hour)
	return start, start.AddDate(0, 0, 7)
}

// ISOWeekOf returns the ISO week-year and week number of a date.
func ISOWeekOf(t time.Time) (year, week int) {
	return t.UTC().ISOWeek()
}

// SlotTimestamp renders the start of an hourly slot on a date, in the
// format downstream reports expect.
func SlotTimestamp(date time.Time, hour int) string {
	slot := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
	return slot.Format("2006-01-02 15:04:05")
}
