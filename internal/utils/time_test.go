package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2025-01-06")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseISODate("06/01/2025")
	assert.Error(t, err)

	_, err = ParseISODate("")
	assert.Error(t, err)
}

func TestMondayOf(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	// Monday maps to itself, every other weekday maps back to it.
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		assert.Equal(t, monday, MondayOf(day), "day %s", day.Weekday())
	}

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), MondayOf(sunday))
}

func TestWeekRange(t *testing.T) {
	start, end := WeekRange(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), end, "window is half-open")
}

func TestISOWeekOf(t *testing.T) {
	// 2024-12-30 is already ISO week 1 of 2025.
	year, week := ISOWeekOf(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, week)
}

func TestSlotTimestamp(t *testing.T) {
	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-06 17:00:00", SlotTimestamp(date, 17))
}
