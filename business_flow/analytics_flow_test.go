package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var analyticsNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func newAnalyticsFixture(t *testing.T) *AnalyticsFlowImpl {
	t.Helper()
	testDB := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)

	a, err := fixtures.CreateTestShortLink("alpha", "https://example.com/a")
	require.NoError(t, err)
	b, err := fixtures.CreateTestShortLink("beta", "https://example.com/b")
	require.NoError(t, err)
	_, err = fixtures.CreateTestShortLink("gamma", "https://example.com/c", testingutil.Inactive())
	require.NoError(t, err)

	clicks := []struct {
		link    uint
		at      time.Time
		device  string
		browser string
	}{
		{a.ID, time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC), models.DeviceDesktop, models.BrowserChrome},
		{a.ID, time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC), models.DeviceDesktop, models.BrowserChrome},
		{a.ID, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), models.DeviceMobile, models.BrowserSafari},
		{b.ID, time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC), "", ""},
	}
	for _, c := range clicks {
		_, err := fixtures.CreateTestClick(c.link, c.at, c.device, c.browser)
		require.NoError(t, err)
	}

	flow := NewAnalyticsFlow(
		repository.NewShortLinkRepository(testDB.DB),
		repository.NewShortLinkClickRepository(testDB.DB),
	).(*AnalyticsFlowImpl)
	flow.now = func() time.Time { return analyticsNow }
	return flow
}

func TestAnalyticsFlowStats(t *testing.T) {
	flow := newAnalyticsFixture(t)
	ctx := context.Background()

	t.Run("AllTime", func(t *testing.T) {
		stats, err := flow.Stats(ctx, dto.AnalyticsStatsRequest{})
		require.NoError(t, err)

		assert.Equal(t, dto.ShortLinkTotalsDTO{Total: 3, Active: 2}, stats.ShortLinks)
		assert.Equal(t, dto.ClickTotalsDTO{Total: 4, Today: 1, ThisWeek: 2, ThisMonth: 3}, stats.Clicks)
		assert.Equal(t, "1970-01-01T00:00:00Z", stats.DateRange.Start)
		assert.Equal(t, "2026-03-20T12:00:00Z", stats.DateRange.End)

		require.Len(t, stats.TopLinks, 3)
		assert.Equal(t, "alpha", stats.TopLinks[0].Code)
		assert.Equal(t, int64(3), stats.TopLinks[0].Clicks)
		assert.Equal(t, "beta", stats.TopLinks[1].Code)
		assert.Equal(t, int64(0), stats.TopLinks[2].Clicks)

		assert.Equal(t, []dto.BreakdownDTO{
			{Label: models.DeviceDesktop, Count: 2, Percentage: 50},
			{Label: models.DeviceMobile, Count: 1, Percentage: 25},
			{Label: models.DeviceUnknown, Count: 1, Percentage: 25},
		}, stats.Devices)
		assert.Equal(t, []dto.BreakdownDTO{
			{Label: models.BrowserChrome, Count: 2, Percentage: 50},
			{Label: models.BrowserSafari, Count: 1, Percentage: 25},
			{Label: models.BrowserUnknown, Count: 1, Percentage: 25},
		}, stats.Browsers)
	})

	t.Run("DateRange", func(t *testing.T) {
		stats, err := flow.Stats(ctx, dto.AnalyticsStatsRequest{StartDate: "2026-03-01", EndDate: "2026-03-16"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Clicks.Total)
		// rolling counters ignore the requested range
		assert.Equal(t, int64(3), stats.Clicks.ThisMonth)
		assert.Equal(t, "2026-03-16T23:59:59Z", stats.DateRange.End)
		require.NotEmpty(t, stats.TopLinks)
		assert.Equal(t, int64(2), stats.TopLinks[0].Clicks)
		assert.Equal(t, int64(0), stats.TopLinks[1].Clicks)
	})

	errCases := []struct {
		name string
		req  dto.AnalyticsStatsRequest
		code string
	}{
		{"BadStart", dto.AnalyticsStatsRequest{StartDate: "yesterday"}, "INVALID_DATE"},
		{"BadEnd", dto.AnalyticsStatsRequest{EndDate: "2026-13-40"}, "INVALID_DATE"},
		{"Inverted", dto.AnalyticsStatsRequest{StartDate: "2026-03-10", EndDate: "2026-03-01"}, "INVALID_DATE_RANGE"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.Stats(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, businessCode(t, err))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(1, 0))
	assert.Equal(t, 33.3, percentage(1, 3))
	assert.Equal(t, 66.7, percentage(2, 3))
	assert.Equal(t, 100.0, percentage(5, 5))
}

func TestAnalyticsFlowExportCSV(t *testing.T) {
	flow := newAnalyticsFixture(t)

	name, data, err := flow.ExportCSV(context.Background(), dto.AnalyticsStatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "masuk10-analytics-2026-03-20.csv", name)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Masuk10 Analytics Report"}, records[0])
	assert.Equal(t, []string{"Generated", "2026-03-20 12:00:00"}, records[1])
	assert.Equal(t, []string{"Date Range", "1970-01-01", "2026-03-20"}, records[2])
	assert.Contains(t, records, []string{"Total Clicks", "4"})
	assert.Contains(t, records, []string{"Active Shortlinks", "2"})
	assert.Contains(t, records, []string{"alpha", "Link alpha", "https://example.com/a", "3"})
	assert.Contains(t, records, []string{"desktop", "2", "50.0%"})
	assert.Contains(t, records, []string{"Safari", "1", "25.0%"})
	assert.Contains(t, records, []string{"Device Type", "Count", "Percentage"})

	_, _, err = flow.ExportCSV(context.Background(), dto.AnalyticsStatsRequest{StartDate: "nope"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestAnalyticsFlowExportExcel(t *testing.T) {
	flow := newAnalyticsFixture(t)

	name, data, err := flow.ExportExcel(context.Background(), dto.AnalyticsStatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "masuk10-analytics-2026-03-20.xlsx", name)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xl.Close()

	assert.Equal(t, []string{"Summary", "Top Links", "Devices", "Browsers"}, xl.GetSheetList())

	v, err := xl.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Masuk10 Analytics Report", v)
	v, err = xl.GetCellValue("Summary", "B8")
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	v, err = xl.GetCellValue("Top Links", "A2")
	require.NoError(t, err)
	assert.Equal(t, "alpha", v)
	v, err = xl.GetCellValue("Devices", "A2")
	require.NoError(t, err)
	assert.Equal(t, "desktop", v)
}
