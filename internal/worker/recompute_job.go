package worker

import (
	"context"
	"log/slog"
	"time"

	"availability-service/internal/models"
	"availability-service/internal/services"
	"availability-service/internal/utils"
)

// NewRecomputeJob returns the periodic freshness job: it recomputes
// yesterday's daily verdicts and the current week's rollup in auto mode,
// both against whichever policy resolves for the week. Missing policies are
// expected on fresh deployments and only logged.
func NewRecomputeJob(availability *services.AvailabilityService) Job {
	return func(ctx context.Context) error {
		now := time.Now().UTC()
		yesterday := utils.FormatISODate(now.AddDate(0, 0, -1))
		weekStart := utils.FormatISODate(utils.MondayOf(now))

		count, err := availability.ComputeDaily(ctx, models.ComputeDailyRequest{Date: yesterday})
		if err != nil {
			slog.Warn("Scheduled daily recompute failed", "date", yesterday, "error", err)
		} else {
			slog.Info("Scheduled daily recompute done", "date", yesterday, "rows", count)
		}

		count, err = availability.ComputeWeekly(ctx, models.ComputeWeeklyRequest{
			WeekStart: weekStart,
			Auto:      true,
		})
		if err != nil {
			slog.Warn("Scheduled weekly recompute failed", "week_start", weekStart, "error", err)
			return err
		}
		slog.Info("Scheduled weekly recompute done", "week_start", weekStart, "rows", count)
		return nil
	}
}
