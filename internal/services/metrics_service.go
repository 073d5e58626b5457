package services

import (
	"fmt"

	"availability-service/internal/models"
	"availability-service/internal/repository"
	"availability-service/internal/utils"
)

// MetricsService assembles the combined day plus week dashboard summary.
type MetricsService struct {
	policyService *PolicyService
	resultRepo    *repository.ResultRepository
}

func NewMetricsService(policyService *PolicyService, resultRepo *repository.ResultRepository) *MetricsService {
	return &MetricsService{
		policyService: policyService,
		resultRepo:    resultRepo,
	}
}

// GetSummary aggregates one (date, week, policy) triple. Percentages are
// raw ratios out of 100; formatting is the caller's concern.
func (s *MetricsService) GetSummary(date, weekStart string, policyID int64) (*models.MetricsSummary, error) {
	if _, err := utils.ParseISODate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if _, err := utils.ParseISODate(weekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if _, err := s.policyService.GetPolicy(policyID); err != nil {
		return nil, err
	}

	daily, err := s.resultRepo.GetDailySummary(date, policyID)
	if err != nil {
		return nil, err
	}
	weekly, err := s.resultRepo.GetWeeklySummary(weekStart, policyID)
	if err != nil {
		return nil, err
	}

	daily.TPEDayFail = daily.TPEDayTotal - daily.TPEDayOK
	if daily.TPEDayFail < 0 {
		daily.TPEDayFail = 0
	}
	if daily.TPEDayTotal > 0 {
		daily.DailyAvailablePct = float64(daily.TPEDayOK) * 100 / float64(daily.TPEDayTotal)
	}

	weekly.TPEWeekFail = weekly.TPEWeekTotal - weekly.TPEWeekOK
	if weekly.TPEWeekFail < 0 {
		weekly.TPEWeekFail = 0
	}
	if weekly.TPEWeekTotal > 0 {
		weekly.WeeklyAvailablePct = float64(weekly.TPEWeekOK) * 100 / float64(weekly.TPEWeekTotal)
	}

	return &models.MetricsSummary{
		DailySummary:  *daily,
		WeeklySummary: *weekly,
	}, nil
}
