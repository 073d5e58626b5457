package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"availability-service/internal/database/minio"
	"availability-service/internal/models"
	"availability-service/internal/repository"
	"availability-service/internal/utils"
)

// utf8BOM makes the CSV open correctly in Excel with accented labels.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// reasonLabels are the French report labels for each reason code.
var reasonLabels = map[models.ReasonCode]string{
	models.ReasonOfflineDuration:  "Hors-ligne prolongé",
	models.ReasonStatusInactive:   "Statut inactif",
	models.ReasonSignalLow:        "Signal faible",
	models.ReasonGeofenceOut:      "Hors geofence",
	models.ReasonBatteryLow:       "Batterie faible",
	models.ReasonPaperOut:         "Plus de papier",
	models.ReasonPaperUnknown:     "État papier inconnu",
	models.ReasonPaperUnknownWarn: "Papier incertain",
	models.ReasonNoData:           "Pas de données",
}

func reasonLabel(code models.ReasonCode) string {
	if label, ok := reasonLabels[code]; ok {
		return label
	}
	return string(code)
}

func availabilityLabel(ok bool) string {
	if ok {
		return "DISPONIBLE"
	}
	return "INDISPONIBLE"
}

// ExportService renders daily and weekly CSV reports and archives a copy to
// object storage. Archiving is best effort: a storage failure never blocks
// the download.
type ExportService struct {
	availability *AvailabilityService
	resultRepo   *repository.ResultRepository
	storage      *minio.MinioClient
}

func NewExportService(availability *AvailabilityService, resultRepo *repository.ResultRepository, storage *minio.MinioClient) *ExportService {
	return &ExportService{
		availability: availability,
		resultRepo:   resultRepo,
		storage:      storage,
	}
}

// ExportDaily renders the day's verdicts for a policy as CSV. With auto set,
// the day is recomputed first; a recompute failure is logged and the export
// proceeds on the stored rows.
func (s *ExportService) ExportDaily(ctx context.Context, date string, policyID int64, weekStart *string, auto bool) (string, []byte, error) {
	if _, err := utils.ParseISODate(date); err != nil {
		return "", nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if _, err := s.availability.policyService.GetPolicy(policyID); err != nil {
		return "", nil, err
	}

	if auto {
		_, err := s.availability.ComputeDaily(ctx, models.ComputeDailyRequest{
			Date:      date,
			WeekStart: weekStart,
			PolicyID:  &policyID,
		})
		if err != nil {
			slog.Warn("Recompute before daily export failed", "date", date, "error", err)
		}
	}

	rows, err := s.resultRepo.ListDailyForExport(date, policyID)
	if err != nil {
		return "", nil, err
	}

	records := [][]string{{"Date", "PolicyID", "Terminal", "Statut", "Slots OK", "Slots KO", "Créneaux KO", "Raisons KO"}}
	for _, r := range rows {
		reasons := make([]string, 0, len(r.FailedReasons))
		for _, code := range r.FailedReasons {
			reasons = append(reasons, reasonLabel(code))
		}
		records = append(records, []string{
			date,
			strconv.FormatInt(policyID, 10),
			r.TerminalSN,
			availabilityLabel(r.DayOK),
			strconv.Itoa(r.SlotOKCount),
			strconv.Itoa(r.SlotFailCount),
			strings.Join(r.FailedSlots, " | "),
			strings.Join(reasons, " | "),
		})
	}

	data, err := renderCSV(records)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("daily_%s_policy%d.csv", date, policyID)
	s.archive(ctx, filename, data)
	return filename, data, nil
}

// ExportWeekly renders the week's decisions for a policy as CSV. With auto
// set, the full weekly rollup (including its 7 daily computes) runs first.
func (s *ExportService) ExportWeekly(ctx context.Context, weekStart string, policyID int64, auto bool) (string, []byte, error) {
	if _, err := utils.ParseISODate(weekStart); err != nil {
		return "", nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if _, err := s.availability.policyService.GetPolicy(policyID); err != nil {
		return "", nil, err
	}

	if auto {
		_, err := s.availability.ComputeWeekly(ctx, models.ComputeWeeklyRequest{
			WeekStart: weekStart,
			PolicyID:  &policyID,
			Auto:      true,
		})
		if err != nil {
			slog.Warn("Recompute before weekly export failed", "week_start", weekStart, "error", err)
		}
	}

	rows, err := s.resultRepo.ListWeeklyForExport(weekStart, policyID)
	if err != nil {
		return "", nil, err
	}

	records := [][]string{{
		"Semaine (lundi)", "PolicyID", "Terminal", "Décision",
		"Jours OK", "Jours KO", "Slots OK (sem.)", "Slots KO (sem.)",
		"Dates KO", "Raisons (compteurs)",
	}}
	for _, r := range rows {
		records = append(records, []string{
			weekStart,
			strconv.FormatInt(policyID, 10),
			r.TerminalSN,
			availabilityLabel(r.Decision),
			strconv.Itoa(r.DaysOK),
			strconv.Itoa(r.DaysFail),
			strconv.Itoa(r.SlotsOKTotal),
			strconv.Itoa(r.SlotsFailTotal),
			strings.Join(r.FailDates, " | "),
			formatReasonCounts(r.WeekReasons),
		})
	}

	data, err := renderCSV(records)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("weekly_%s_policy%d.csv", weekStart, policyID)
	s.archive(ctx, filename, data)
	return filename, data, nil
}

// formatReasonCounts renders a reason histogram as "label:count | ..." in
// stable code order.
func formatReasonCounts(counts models.ReasonCounts) string {
	codes := make([]models.ReasonCode, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s:%d", reasonLabel(code), counts[code]))
	}
	return strings.Join(parts, " | ")
}

func renderCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) archive(ctx context.Context, filename string, data []byte) {
	if s.storage == nil {
		return
	}
	if err := s.storage.ArchiveReport(ctx, filename, data, "text/csv; charset=utf-8"); err != nil {
		slog.Warn("Failed to archive report", "object", filename, "error", err)
	}
}
