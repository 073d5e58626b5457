package services

import (
	"availability-service/internal/models"
)

// minSignalBars is the lowest signal reading that still counts as connected.
const minSignalBars = 2

// SlotVerdict is the outcome of evaluating one terminal snapshot against a
// policy shape. Reasons lists every failing criterion plus any non-failing
// warning; checks never short-circuit.
type SlotVerdict struct {
	OK      bool
	Reasons []models.ReasonCode
}

// EvaluateSlot applies every enabled criterion of the shape to the snapshot.
// A nil snapshot means the terminal reported nothing inside the slot hour,
// which always fails with NO_DATA.
func EvaluateSlot(snap *models.TelemetrySnapshot, shape models.PolicyShape, vocab StatusVocabulary) SlotVerdict {
	if snap == nil {
		return SlotVerdict{OK: false, Reasons: []models.ReasonCode{models.ReasonNoData}}
	}

	verdict := SlotVerdict{OK: true}
	fail := func(reason models.ReasonCode) {
		verdict.OK = false
		verdict.Reasons = append(verdict.Reasons, reason)
	}

	if shape.UseTPEOn {
		if vocab.IsOfflineDurationProlonged(snap.OfflineDuration) {
			fail(models.ReasonOfflineDuration)
		}
		if !vocab.IsStatusActive(snap.Status) {
			fail(models.ReasonStatusInactive)
		}
	}

	if shape.UseInternet {
		if ParseSignal(snap.Signal) < minSignalBars {
			fail(models.ReasonSignalLow)
		}
	}

	if shape.UseGeofence {
		if !vocab.IsGeofenceIn(snap.Geofence) {
			fail(models.ReasonGeofenceOut)
		}
	}

	paper, batteryLowHint := vocab.ClassifyPrinter(snap.Printer)

	// The battery criterion trusts the printer's low-voltage hint over the
	// averaged charge ratio.
	if shape.UseBattery {
		if batteryLowHint {
			fail(models.ReasonBatteryLow)
		} else if ParseBatteryPct(snap.BatteryRateAvg) < shape.BatteryMinPct {
			fail(models.ReasonBatteryLow)
		}
	}

	if shape.UsePaper {
		switch paper {
		case models.PaperStateOut:
			fail(models.ReasonPaperOut)
		case models.PaperStateUnknown:
			if shape.PaperMode == models.PaperStrict {
				fail(models.ReasonPaperUnknown)
			} else {
				// Lenient mode records the uncertainty without failing
				// the slot.
				verdict.Reasons = append(verdict.Reasons, models.ReasonPaperUnknownWarn)
			}
		}
	}

	return verdict
}
