package repository

import (
	"fmt"
	"log/slog"

	"availability-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// TelemetryRepository reads the terminal_timeline table. The table is fed by
// the ingestion pipeline; this service never writes to it.
type TelemetryRepository struct {
	db *sqlx.DB
}

func NewTelemetryRepository(db *sqlx.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// ListTerminalsOnDate returns every terminal serial that reported at least
// one snapshot within the calendar date, regardless of slot hour.
func (r *TelemetryRepository) ListTerminalsOnDate(date string) ([]string, error) {
	var serials []string
	query := `
		SELECT DISTINCT terminal_sn
		FROM terminal_timeline
		WHERE event_time >= $1::date
		  AND event_time < $1::date + INTERVAL '1 day'
		ORDER BY terminal_sn`

	err := r.db.Select(&serials, query, date)
	if err != nil {
		slog.Error("Failed to list terminals on date", "date", date, "error", err)
		return nil, fmt.Errorf("failed to list terminals on date: %w", err)
	}

	return serials, nil
}

// BestSnapshotsByHour picks, per terminal and slot hour, the latest snapshot
// recorded inside that hour on the given date. Hours outside slotHours are
// filtered out in SQL so a day with dense telemetry stays cheap to scan.
func (r *TelemetryRepository) BestSnapshotsByHour(date string, slotHours []int) ([]models.TelemetrySnapshot, error) {
	if len(slotHours) == 0 {
		return nil, nil
	}

	query := `
		WITH ranked AS (
			SELECT
				terminal_sn,
				event_time,
				EXTRACT(HOUR FROM event_time)::int AS slot_hour,
				status,
				offline_duration,
				signal,
				geofence,
				printer,
				battery_rate_avg,
				is_charging,
				ROW_NUMBER() OVER (
					PARTITION BY terminal_sn, EXTRACT(HOUR FROM event_time)
					ORDER BY event_time DESC
				) AS rn
			FROM terminal_timeline
			WHERE event_time >= ?::date
			  AND event_time < ?::date + INTERVAL '1 day'
			  AND EXTRACT(HOUR FROM event_time)::int IN (?)
		)
		SELECT
			terminal_sn, event_time, slot_hour,
			status, offline_duration, signal, geofence, printer,
			battery_rate_avg, is_charging
		FROM ranked
		WHERE rn = 1
		ORDER BY terminal_sn, slot_hour`

	query, args, err := sqlx.In(query, date, date, slotHours)
	if err != nil {
		return nil, fmt.Errorf("failed to expand slot hours: %w", err)
	}
	query = r.db.Rebind(query)

	var snapshots []models.TelemetrySnapshot
	if err := r.db.Select(&snapshots, query, args...); err != nil {
		slog.Error("Failed to fetch hourly snapshots", "date", date, "error", err)
		return nil, fmt.Errorf("failed to fetch hourly snapshots: %w", err)
	}

	return snapshots, nil
}
