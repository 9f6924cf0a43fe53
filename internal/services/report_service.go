package services

import (
	"context"
	"fmt"
	"sort"

	"userapi/internal/models"
	"userapi/internal/repositories"
)

var reportDateLayouts = map[models.ReportPeriod]string{
	models.ReportPeriodDay:   "02/01/2006",
	models.ReportPeriodMonth: "01/2006",
}

// ReportService aggregates logins per user across all users.
type ReportService interface {
	Day(ctx context.Context) ([]models.ActivityReportRow, error)
	Month(ctx context.Context) ([]models.ActivityReportRow, error)
}

type reportService struct {
	activity repositories.ActivityReportRepository
}

func NewReportService(activity repositories.ActivityReportRepository) ReportService {
	return &reportService{activity: activity}
}

func (s *reportService) Day(ctx context.Context) ([]models.ActivityReportRow, error) {
	return s.report(ctx, models.ReportPeriodDay)
}

func (s *reportService) Month(ctx context.Context) ([]models.ActivityReportRow, error) {
	return s.report(ctx, models.ReportPeriodMonth)
}

func (s *reportService) report(ctx context.Context, period models.ReportPeriod) ([]models.ActivityReportRow, error) {
	counts, err := s.activity.CountByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s report: %w", period, err)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		if !counts[i].Period.Equal(counts[j].Period) {
			return counts[i].Period.Before(counts[j].Period)
		}
		return counts[i].Username < counts[j].Username
	})

	layout := reportDateLayouts[period]
	rows := make([]models.ActivityReportRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, models.ActivityReportRow{
			User:  c.Username,
			Date:  c.Period.Format(layout),
			Count: c.Count,
		})
	}
	return rows, nil
}
