package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityReportEntry records one successful login.
type ActivityReportEntry struct {
	ID     int64     `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Date   time.Time `json:"date" db:"date"`
}

type ReportPeriod string

const (
	ReportPeriodDay   ReportPeriod = "day"
	ReportPeriodMonth ReportPeriod = "month"
)

// ActivityCount is one aggregated group as read from the store.
type ActivityCount struct {
	Username string    `db:"username"`
	Period   time.Time `db:"period"`
	Count    int64     `db:"count"`
}

type ActivityReportRow struct {
	User  string `json:"user"`
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
