package models

import "time"

// TelemetrySnapshot is the most recent reading for a (terminal, hour)
// bucket within one day, read straight from the terminal timeline view.
// Vendor fields are loosely typed text; classification happens in the
// evaluator, never here.
type TelemetrySnapshot struct {
	TerminalSN      string    `json:"terminal_sn" db:"terminal_sn"`
	EventTime       time.Time `json:"event_time" db:"event_time"`
	SlotHour        int       `json:"slot_hour" db:"slot_hour"`
	Status          *string   `json:"status" db:"status"`
	OfflineDuration *string   `json:"offline_duration" db:"offline_duration"`
	Signal          *string   `json:"signal" db:"signal"`
	Geofence        *string   `json:"geofence" db:"geofence"`
	BatteryRateAvg  *float64  `json:"battery_rate_avg" db:"battery_rate_avg"`
	Printer         *string   `json:"printer" db:"printer"`
	IsCharging      *bool     `json:"is_charging" db:"is_charging"`
}
