package repositories

import (
	"context"
	"fmt"

	"userapi/internal/models"
)

type ActivityReportRepository interface {
	Create(ctx context.Context, entry *models.ActivityReportEntry) error
	CountByPeriod(ctx context.Context, period models.ReportPeriod) ([]models.ActivityCount, error)
}

const (
	createActivityQuery = `INSERT INTO activity_reports (user_id, date) VALUES ($1, $2) RETURNING id`

	countActivityByDayQuery = `
		SELECT u.username, date_trunc('day', a.date)::date AS period, COUNT(*) AS count
		FROM activity_reports a
		JOIN users u ON u.id = a.user_id
		GROUP BY u.username, period
		ORDER BY period, u.username`

	countActivityByMonthQuery = `
		SELECT u.username, date_trunc('month', a.date)::date AS period, COUNT(*) AS count
		FROM activity_reports a
		JOIN users u ON u.id = a.user_id
		GROUP BY u.username, period
		ORDER BY period, u.username`
)

var countActivityQueries = map[models.ReportPeriod]string{
	models.ReportPeriodDay:   countActivityByDayQuery,
	models.ReportPeriodMonth: countActivityByMonthQuery,
}

type activityReportRepo struct {
	db DBTX
}

func NewActivityReportRepo(db DBTX) ActivityReportRepository {
	return &activityReportRepo{db: db}
}

func (r *activityReportRepo) Create(ctx context.Context, entry *models.ActivityReportEntry) error {
	if err := conn(ctx, r.db).QueryRow(ctx, createActivityQuery, entry.UserID, entry.Date).Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *activityReportRepo) CountByPeriod(ctx context.Context, period models.ReportPeriod) ([]models.ActivityCount, error) {
	query, ok := countActivityQueries[period]
	if !ok {
		return nil, fmt.Errorf("unsupported report period %q", period)
	}

	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	defer rows.Close()

	counts := make([]models.ActivityCount, 0)
	for rows.Next() {
		var c models.ActivityCount
		if err := rows.Scan(&c.Username, &c.Period, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	return counts, nil
}
