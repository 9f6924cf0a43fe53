package handlers

import (
	"net/http"

	"userapi/internal/services"

	"github.com/labstack/echo/v4"
)

type ReportHandlers struct {
	reportService services.ReportService
}

func NewReportHandlers(reportService services.ReportService) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// Day counts logins per user per calendar day
// @Summary Daily activity report
// @Tags activityReport
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.ActivityReportRow
// @Failure 401 {object} ErrorResponse
// @Router /activityReport/day/ [get]
func (h *ReportHandlers) Day(c echo.Context) error {
	rows, err := h.reportService.Day(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// Month counts logins per user per calendar month
// @Summary Monthly activity report
// @Tags activityReport
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.ActivityReportRow
// @Failure 401 {object} ErrorResponse
// @Router /activityReport/month/ [get]
func (h *ReportHandlers) Month(c echo.Context) error {
	rows, err := h.reportService.Month(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
