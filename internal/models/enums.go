package models

type PolicyStatus string

const (
	PolicyDraft    PolicyStatus = "draft"
	PolicyActive   PolicyStatus = "active"
	PolicyArchived PolicyStatus = "archived"
)

func (s PolicyStatus) Valid() bool {
	switch s {
	case PolicyDraft, PolicyActive, PolicyArchived:
		return true
	}
	return false
}

type PaperMode string

const (
	PaperStrict  PaperMode = "strict"
	PaperLenient PaperMode = "lenient"
)

func (m PaperMode) Valid() bool {
	return m == PaperStrict || m == PaperLenient
}

// ReasonCode is a closed enumeration consumed by downstream reporting.
// Renaming or removing a value is a breaking wire change.
type ReasonCode string

const (
	ReasonOfflineDuration  ReasonCode = "OFFLINE_DURATION"
	ReasonStatusInactive   ReasonCode = "STATUS_INACTIVE"
	ReasonSignalLow        ReasonCode = "SIGNAL_LOW"
	ReasonGeofenceOut      ReasonCode = "GEOFENCE_OUT"
	ReasonBatteryLow       ReasonCode = "BATTERY_LOW"
	ReasonPaperOut         ReasonCode = "PAPER_OUT"
	ReasonPaperUnknown     ReasonCode = "PAPER_UNKNOWN"
	ReasonPaperUnknownWarn ReasonCode = "PAPER_UNKNOWN_WARN"
	ReasonNoData           ReasonCode = "NO_DATA"
)

// PaperState is the classification of a printer status string.
type PaperState string

const (
	PaperStateOK      PaperState = "ok"
	PaperStateOut     PaperState = "out"
	PaperStateUnknown PaperState = "unknown"
)

type AvailabilityStatus string

const (
	StatusAll         AvailabilityStatus = "all"
	StatusAvailable   AvailabilityStatus = "available"
	StatusUnavailable AvailabilityStatus = "unavailable"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusAll, StatusAvailable, StatusUnavailable:
		return true
	}
	return false
}
