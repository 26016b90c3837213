package repository

import (
	"testing"
	"time"

	"github.com/amirphl/masuk10/models"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortLinkClickRepository(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := NewShortLinkClickRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	a, err := fixtures.CreateTestShortLink("aaa", "https://a.example.com")
	require.NoError(t, err)
	b, err := fixtures.CreateTestShortLink("bbb", "https://b.example.com")
	require.NoError(t, err)
	c, err := fixtures.CreateTestShortLink("ccc", "https://c.example.com")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := fixtures.CreateTestClick(b.ID, day.Add(time.Duration(i)*time.Hour), models.DeviceMobile, models.BrowserChrome)
		require.NoError(t, err)
	}
	_, err = fixtures.CreateTestClick(a.ID, day.Add(time.Hour), models.DeviceDesktop, models.BrowserFirefox)
	require.NoError(t, err)
	_, err = fixtures.CreateTestClick(a.ID, day.Add(2*time.Hour), "", "")
	require.NoError(t, err)
	// outside the range below
	_, err = fixtures.CreateTestClick(c.ID, day.AddDate(0, -1, 0), models.DeviceTablet, models.BrowserSafari)
	require.NoError(t, err)

	from, to := day, day.Add(24*time.Hour)

	t.Run("CountInRange", func(t *testing.T) {
		count, err := repo.Count(ctx, models.ShortLinkClickFilter{ClickedAfter: &from, ClickedBefore: &to})
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)

		all, err := repo.Count(ctx, models.ShortLinkClickFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(6), all)
	})

	t.Run("CountByShortLinkIDs", func(t *testing.T) {
		counts, err := repo.CountByShortLinkIDs(ctx, []uint{a.ID, b.ID, c.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[a.ID])
		assert.Equal(t, int64(3), counts[b.ID])
		assert.Equal(t, int64(1), counts[c.ID])

		empty, err := repo.CountByShortLinkIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("TopShortLinks", func(t *testing.T) {
		top, err := repo.TopShortLinks(ctx, from, to, 5)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, "bbb", top[0].Code)
		assert.Equal(t, int64(3), top[0].ClickCount)
		assert.Equal(t, "aaa", top[1].Code)
		assert.Equal(t, int64(2), top[1].ClickCount)
		assert.Equal(t, "ccc", top[2].Code)
		assert.Equal(t, int64(0), top[2].ClickCount)

		limited, err := repo.TopShortLinks(ctx, from, to, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("GroupByDevice", func(t *testing.T) {
		rows, err := repo.GroupByDevice(ctx, from, to)
		require.NoError(t, err)
		got := map[string]int64{}
		for _, r := range rows {
			got[r.Label] = r.Count
		}
		assert.Equal(t, map[string]int64{"mobile": 3, "desktop": 1, "unknown": 1}, got)
		assert.Equal(t, "mobile", rows[0].Label)
	})

	t.Run("GroupByBrowserOrderedByCount", func(t *testing.T) {
		rows, err := repo.GroupByBrowser(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Chrome", rows[0].Label)
		assert.Equal(t, int64(3), rows[0].Count)
		assert.Equal(t, "Firefox", rows[1].Label)
		assert.Equal(t, "unknown", rows[2].Label)
	})
}
