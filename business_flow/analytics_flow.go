package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const (
	TopLinksLimit   = 5
	reportTitle     = "Masuk10 Analytics Report"
	reportTimestamp = "2006-01-02 15:04:05"
	reportDate      = "2006-01-02"
)

// AnalyticsFlow computes dashboard statistics over clicks and exports them.
type AnalyticsFlow interface {
	Stats(ctx context.Context, req dto.AnalyticsStatsRequest) (*dto.AnalyticsStatsResponse, error)
	ExportCSV(ctx context.Context, req dto.AnalyticsStatsRequest) (string, []byte, error)
	ExportExcel(ctx context.Context, req dto.AnalyticsStatsRequest) (string, []byte, error)
}

type AnalyticsFlowImpl struct {
	linkRepo  repository.ShortLinkRepository
	clickRepo repository.ShortLinkClickRepository
	now       func() time.Time
}

func NewAnalyticsFlow(linkRepo repository.ShortLinkRepository, clickRepo repository.ShortLinkClickRepository) AnalyticsFlow {
	return &AnalyticsFlowImpl{linkRepo: linkRepo, clickRepo: clickRepo, now: utils.UTCNow}
}

// parseRange defaults to the epoch up to now. A bare end date covers the whole day.
func (f *AnalyticsFlowImpl) parseRange(req dto.AnalyticsStatsRequest) (time.Time, time.Time, error) {
	start := time.Unix(0, 0).UTC()
	end := f.now()

	if v := strings.TrimSpace(req.StartDate); v != "" {
		t, err := utils.ParseDateParam(v, false)
		if err != nil {
			return time.Time{}, time.Time{}, NewBusinessErrorf("INVALID_DATE", "Invalid start_date %q", ErrInvalidDate, v)
		}
		start = t
	}
	if v := strings.TrimSpace(req.EndDate); v != "" {
		t, err := utils.ParseDateParam(v, true)
		if err != nil {
			return time.Time{}, time.Time{}, NewBusinessErrorf("INVALID_DATE", "Invalid end_date %q", ErrInvalidDate, v)
		}
		end = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, NewBusinessError("INVALID_DATE_RANGE", "start_date cannot be after end_date", ErrStartDateAfterEndDate)
	}
	return start, end, nil
}

func (f *AnalyticsFlowImpl) Stats(ctx context.Context, req dto.AnalyticsStatsRequest) (*dto.AnalyticsStatsResponse, error) {
	start, end, err := f.parseRange(req)
	if err != nil {
		return nil, err
	}

	now := f.now()
	today := utils.StartOfDay(now)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthStart := utils.StartOfMonth(now)
	active := true

	var (
		resp     dto.AnalyticsStatsResponse
		topLinks []*models.ShortLinkWithClicks
		devices  []*models.ClickGroupCount
		browsers []*models.ClickGroupCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.ShortLinks.Total, err = f.linkRepo.Count(gctx, models.ShortLinkFilter{})
		return err
	})
	g.Go(func() (err error) {
		resp.ShortLinks.Active, err = f.linkRepo.Count(gctx, models.ShortLinkFilter{IsActive: &active})
		return err
	})
	g.Go(func() (err error) {
		resp.Clicks.Total, err = f.clickRepo.Count(gctx, models.ShortLinkClickFilter{ClickedAfter: &start, ClickedBefore: &end})
		return err
	})
	g.Go(func() (err error) {
		resp.Clicks.Today, err = f.clickRepo.Count(gctx, models.ShortLinkClickFilter{ClickedAfter: &today})
		return err
	})
	g.Go(func() (err error) {
		resp.Clicks.ThisWeek, err = f.clickRepo.Count(gctx, models.ShortLinkClickFilter{ClickedAfter: &weekAgo})
		return err
	})
	g.Go(func() (err error) {
		resp.Clicks.ThisMonth, err = f.clickRepo.Count(gctx, models.ShortLinkClickFilter{ClickedAfter: &monthStart})
		return err
	})
	g.Go(func() (err error) {
		topLinks, err = f.clickRepo.TopShortLinks(gctx, start, end, TopLinksLimit)
		return err
	})
	g.Go(func() (err error) {
		devices, err = f.clickRepo.GroupByDevice(gctx, start, end)
		return err
	})
	g.Go(func() (err error) {
		browsers, err = f.clickRepo.GroupByBrowser(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, NewBusinessError("ANALYTICS_FAILED", "Failed to compute analytics", err)
	}

	resp.DateRange = dto.DateRangeDTO{Start: formatTime(start), End: formatTime(end)}
	resp.TopLinks = make([]dto.TopLinkDTO, 0, len(topLinks))
	for _, l := range topLinks {
		resp.TopLinks = append(resp.TopLinks, dto.TopLinkDTO{
			ID:          l.ID,
			Code:        l.Code,
			Title:       l.Title,
			Destination: l.Destination,
			Clicks:      l.ClickCount,
		})
	}
	resp.Devices = toBreakdown(devices)
	resp.Browsers = toBreakdown(browsers)

	return &resp, nil
}

func toBreakdown(groups []*models.ClickGroupCount) []dto.BreakdownDTO {
	var total int64
	for _, g := range groups {
		total += g.Count
	}
	out := make([]dto.BreakdownDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.BreakdownDTO{Label: g.Label, Count: g.Count, Percentage: percentage(g.Count, total)})
	}
	return out
}

// percentage is rounded to one decimal.
func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

func (f *AnalyticsFlowImpl) ExportCSV(ctx context.Context, req dto.AnalyticsStatsRequest) (string, []byte, error) {
	stats, err := f.Stats(ctx, req)
	if err != nil {
		return "", nil, err
	}
	start, end, _ := f.parseRange(req)
	generated := f.now()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{
		{reportTitle},
		{"Generated", generated.Format(reportTimestamp)},
		{"Date Range", start.Format(reportDate), end.Format(reportDate)},
		{},
		{"Summary Statistics"},
		{"Metric", "Value"},
	}
	records = append(records, summaryRows(stats)...)
	records = append(records,
		[]string{},
		[]string{"Top Performing Links"},
		[]string{"Code", "Title", "Destination", "Clicks"},
	)
	for _, l := range stats.TopLinks {
		records = append(records, []string{l.Code, utils.StringValue(l.Title), l.Destination, strconv.FormatInt(l.Clicks, 10)})
	}
	records = append(records,
		[]string{},
		[]string{"Device Distribution"},
		[]string{"Device Type", "Count", "Percentage"},
	)
	records = append(records, breakdownRows(stats.Devices)...)
	records = append(records,
		[]string{},
		[]string{"Browser Statistics"},
		[]string{"Browser", "Count", "Percentage"},
	)
	records = append(records, breakdownRows(stats.Browsers)...)

	if err := w.WriteAll(records); err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to write CSV report", err)
	}
	return fmt.Sprintf("masuk10-analytics-%s.csv", generated.Format(reportDate)), buf.Bytes(), nil
}

func summaryRows(stats *dto.AnalyticsStatsResponse) [][]string {
	return [][]string{
		{"Total Shortlinks", strconv.FormatInt(stats.ShortLinks.Total, 10)},
		{"Active Shortlinks", strconv.FormatInt(stats.ShortLinks.Active, 10)},
		{"Total Clicks", strconv.FormatInt(stats.Clicks.Total, 10)},
		{"Clicks Today", strconv.FormatInt(stats.Clicks.Today, 10)},
		{"Clicks This Week", strconv.FormatInt(stats.Clicks.ThisWeek, 10)},
		{"Clicks This Month", strconv.FormatInt(stats.Clicks.ThisMonth, 10)},
	}
}

func breakdownRows(items []dto.BreakdownDTO) [][]string {
	rows := make([][]string, 0, len(items))
	for _, b := range items {
		rows = append(rows, []string{b.Label, strconv.FormatInt(b.Count, 10), strconv.FormatFloat(b.Percentage, 'f', 1, 64) + "%"})
	}
	return rows
}

func (f *AnalyticsFlowImpl) ExportExcel(ctx context.Context, req dto.AnalyticsStatsRequest) (string, []byte, error) {
	stats, err := f.Stats(ctx, req)
	if err != nil {
		return "", nil, err
	}
	generated := f.now()

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	const summary = "Summary"
	if err := xl.SetSheetName(xl.GetSheetName(0), summary); err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
	}
	summaryData := [][]any{
		{reportTitle},
		{"Generated", generated.Format(reportTimestamp)},
		{"Date Range", stats.DateRange.Start, stats.DateRange.End},
		{},
		{"Metric", "Value"},
		{"Total Shortlinks", stats.ShortLinks.Total},
		{"Active Shortlinks", stats.ShortLinks.Active},
		{"Total Clicks", stats.Clicks.Total},
		{"Clicks Today", stats.Clicks.Today},
		{"Clicks This Week", stats.Clicks.ThisWeek},
		{"Clicks This Month", stats.Clicks.ThisMonth},
	}
	if err := writeSheet(xl, summary, summaryData); err != nil {
		return "", nil, err
	}

	topData := [][]any{{"Code", "Title", "Destination", "Clicks"}}
	for _, l := range stats.TopLinks {
		topData = append(topData, []any{l.Code, utils.StringValue(l.Title), l.Destination, l.Clicks})
	}
	if err := newSheet(xl, "Top Links", topData); err != nil {
		return "", nil, err
	}
	if err := newSheet(xl, "Devices", breakdownSheet("Device Type", stats.Devices)); err != nil {
		return "", nil, err
	}
	if err := newSheet(xl, "Browsers", breakdownSheet("Browser", stats.Browsers)); err != nil {
		return "", nil, err
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to write workbook", err)
	}
	return fmt.Sprintf("masuk10-analytics-%s.xlsx", generated.Format(reportDate)), buf.Bytes(), nil
}

func breakdownSheet(label string, items []dto.BreakdownDTO) [][]any {
	rows := [][]any{{label, "Count", "Percentage"}}
	for _, b := range items {
		rows = append(rows, []any{b.Label, b.Count, b.Percentage})
	}
	return rows
}

func newSheet(xl *excelize.File, name string, rows [][]any) error {
	if _, err := xl.NewSheet(name); err != nil {
		return NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
	}
	return writeSheet(xl, name, rows)
}

func writeSheet(xl *excelize.File, name string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
		}
		if err := xl.SetSheetRow(name, cell, &row); err != nil {
			return NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
		}
	}
	return nil
}
