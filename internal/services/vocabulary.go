package services

import (
	"math"
	"strconv"
	"strings"

	"availability-service/internal/config"
	"availability-service/internal/models"
)

// StatusVocabulary holds the vendor strings the slot classifiers look for in
// raw telemetry. Terminals report free-text fields, so everything here is a
// lowercase substring match. The defaults follow the GreenPay fleet's
// firmware; deployments with a different vendor override them through the
// environment.
type StatusVocabulary struct {
	ProlongedOfflineMarkers []string
	ActiveStatusMarkers     []string
	GeofenceInMarker        string
	PrinterAvailable        string
	PrinterOutOfPaper       string
	PrinterLowVoltage       string
}

func DefaultVocabulary() StatusVocabulary {
	return StatusVocabulary{
		ProlongedOfflineMarkers: []string{">", "days"},
		ActiveStatusMarkers:     []string{"active", "online"},
		GeofenceInMarker:        "in geofence",
		PrinterAvailable:        "available",
		PrinterOutOfPaper:       "out of paper",
		PrinterLowVoltage:       "low voltage",
	}
}

// VocabularyFromConfig overlays any configured overrides on the defaults.
func VocabularyFromConfig(cfg config.VocabularyConfig) StatusVocabulary {
	v := DefaultVocabulary()
	if len(cfg.ProlongedOfflineMarkers) > 0 {
		v.ProlongedOfflineMarkers = cfg.ProlongedOfflineMarkers
	}
	if len(cfg.ActiveStatusMarkers) > 0 {
		v.ActiveStatusMarkers = cfg.ActiveStatusMarkers
	}
	if cfg.GeofenceInMarker != "" {
		v.GeofenceInMarker = cfg.GeofenceInMarker
	}
	if cfg.PrinterAvailable != "" {
		v.PrinterAvailable = cfg.PrinterAvailable
	}
	if cfg.PrinterOutOfPaper != "" {
		v.PrinterOutOfPaper = cfg.PrinterOutOfPaper
	}
	if cfg.PrinterLowVoltage != "" {
		v.PrinterLowVoltage = cfg.PrinterLowVoltage
	}
	return v
}

func lower(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

// IsOfflineDurationProlonged reports whether the offline_duration field
// describes a multi-hour outage, e.g. "> 1 day" or "3 days".
func (v StatusVocabulary) IsOfflineDurationProlonged(offline *string) bool {
	s := lower(offline)
	if s == "" {
		return false
	}
	for _, marker := range v.ProlongedOfflineMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// IsStatusActive reports whether the status field marks a powered terminal.
// A missing status counts as inactive.
func (v StatusVocabulary) IsStatusActive(status *string) bool {
	s := lower(status)
	if s == "" {
		return false
	}
	for _, marker := range v.ActiveStatusMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// IsGeofenceIn reports whether the geofence field places the terminal inside
// its assigned zone. A missing value counts as out.
func (v StatusVocabulary) IsGeofenceIn(geofence *string) bool {
	s := lower(geofence)
	if s == "" {
		return false
	}
	return strings.Contains(s, v.GeofenceInMarker)
}

// ClassifyPrinter folds the printer field into a paper state plus a battery
// hint. "Low voltage" firmware messages report the battery through the
// printer channel while the paper feed itself is fine.
func (v StatusVocabulary) ClassifyPrinter(printer *string) (models.PaperState, bool) {
	s := lower(printer)
	if s == "" {
		return models.PaperStateUnknown, false
	}
	if s == v.PrinterAvailable {
		return models.PaperStateOK, false
	}
	if s == v.PrinterOutOfPaper {
		return models.PaperStateOut, false
	}
	if strings.Contains(s, v.PrinterLowVoltage) {
		return models.PaperStateOK, true
	}
	return models.PaperStateUnknown, false
}

// ParseSignal converts the free-text signal field to a number; anything
// non-numeric counts as zero bars.
func ParseSignal(signal *string) float64 {
	if signal == nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(*signal), 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseBatteryPct converts the 0..1 battery ratio to a rounded percentage.
// A missing reading counts as empty.
func ParseBatteryPct(ratio *float64) int {
	if ratio == nil {
		return 0
	}
	return int(math.Round(*ratio * 100))
}
