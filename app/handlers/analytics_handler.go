package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// AnalyticsHandlerInterface defines the click analytics endpoints
type AnalyticsHandlerInterface interface {
	Stats(c fiber.Ctx) error
	ExportCSV(c fiber.Ctx) error
	ExportExcel(c fiber.Ctx) error
}

type AnalyticsHandler struct {
	flow   businessflow.AnalyticsFlow
	logger *zap.Logger
}

func NewAnalyticsHandler(flow businessflow.AnalyticsFlow, logger *zap.Logger) AnalyticsHandlerInterface {
	return &AnalyticsHandler{flow: flow, logger: logger}
}

// Stats returns click and short link statistics for a date range
// @Summary Analytics stats
// @Tags Admin Analytics
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "RFC3339 or YYYY-MM-DD, defaults to epoch"
// @Param end_date query string false "RFC3339 or YYYY-MM-DD, defaults to now"
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsStatsResponse}
// @Failure 400 {object} dto.APIResponse "Invalid date range"
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/admin/analytics/stats [get]
func (h *AnalyticsHandler) Stats(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/analytics/stats"
	req := h.dateRange(c)

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	stats, err := h.flow.Stats(ctx, req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Analytics retrieved", stats)
}

// ExportCSV downloads the analytics report as CSV
// @Summary Export analytics CSV
// @Tags Admin Analytics
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string false "RFC3339 or YYYY-MM-DD"
// @Param end_date query string false "RFC3339 or YYYY-MM-DD"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/admin/analytics/export.csv [get]
func (h *AnalyticsHandler) ExportCSV(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/analytics/export.csv"
	ctx, cancel := createRequestContextWithTimeout(c, endpoint, 2*defaultRequestTimeout)
	defer cancel()

	filename, data, err := h.flow.ExportCSV(ctx, h.dateRange(c))
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return sendFile(c, "text/csv; charset=utf-8", filename, data)
}

// ExportExcel downloads the analytics report as an Excel workbook
// @Summary Export analytics XLSX
// @Tags Admin Analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string false "RFC3339 or YYYY-MM-DD"
// @Param end_date query string false "RFC3339 or YYYY-MM-DD"
// @Success 200 {file} file "XLSX file"
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/admin/analytics/export.xlsx [get]
func (h *AnalyticsHandler) ExportExcel(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/analytics/export.xlsx"
	ctx, cancel := createRequestContextWithTimeout(c, endpoint, 2*defaultRequestTimeout)
	defer cancel()

	filename, data, err := h.flow.ExportExcel(ctx, h.dateRange(c))
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return sendFile(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, data)
}

func (h *AnalyticsHandler) dateRange(c fiber.Ctx) dto.AnalyticsStatsRequest {
	return dto.AnalyticsStatsRequest{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
}
