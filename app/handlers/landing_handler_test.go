package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newSiteApp wires the landing, content, theme and analytics handlers over one database.
func newSiteApp(t *testing.T) (*fiber.App, *testingutil.TestFixtures) {
	t.Helper()
	db := testingutil.MustSetupTestDB(t)
	themeRepo := repository.NewThemeRepository(db.DB)
	customizationRepo := repository.NewThemeCustomizationRepository(db.DB)
	contentRepo := repository.NewLandingContentRepository(db.DB)

	landing := NewLandingHandler(businessflow.NewLandingFlow(themeRepo, customizationRepo, contentRepo), zap.NewNop())
	content := NewContentHandler(businessflow.NewContentFlow(contentRepo), zap.NewNop())
	themes := NewThemeHandler(businessflow.NewThemeFlow(themeRepo, customizationRepo, db.DB), zap.NewNop())
	analytics := NewAnalyticsHandler(businessflow.NewAnalyticsFlow(
		repository.NewShortLinkRepository(db.DB),
		repository.NewShortLinkClickRepository(db.DB),
	), zap.NewNop())

	app := fiber.New()
	app.Get("/", landing.Page)
	app.Get("/admin", landing.AdminEntry)
	app.Get("/content", content.Get)
	app.Get("/themes/active", themes.Active)

	admin := app.Group("/admin", withActor(1, utils.RoleAdmin))
	admin.Put("/content", content.Upsert)
	admin.Get("/themes", themes.List)
	admin.Post("/themes", themes.Create)
	admin.Put("/themes/active", themes.Activate)
	admin.Get("/themes/customize", themes.Customization)
	admin.Put("/themes/customize", themes.Customize)
	admin.Get("/analytics/stats", analytics.Stats)
	admin.Get("/analytics/export.csv", analytics.ExportCSV)
	admin.Get("/analytics/export.xlsx", analytics.ExportExcel)
	return app, testingutil.NewTestFixtures(db)
}

func TestLandingHandler_AdminEntry(t *testing.T) {
	app, _ := newSiteApp(t)
	resp := doRequest(t, app, http.MethodGet, "/admin", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entry := decodeData[dto.AdminEntryResponse](t, decodeEnvelope(t, resp))
	assert.Equal(t, "/api/v1/auth/admin/login", entry.LoginEndpoint)
}

func TestLandingHandler_PageFollowsActiveThemeAndContent(t *testing.T) {
	app, fixtures := newSiteApp(t)

	resp := doRequest(t, app, http.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := decodeData[dto.LandingPageResponse](t, decodeEnvelope(t, resp))
	assert.Nil(t, page.Theme)

	resp = doRequest(t, app, http.MethodGet, "/themes/active", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NO_ACTIVE_THEME", decodeEnvelope(t, resp).Error.Code)

	resp = doRequest(t, app, http.MethodPut, "/admin/content", map[string]any{"section": "hero", "key": "title", "value": "Masuk10"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ms", decodeData[dto.LandingContentDTO](t, decodeEnvelope(t, resp)).Language)

	theme, err := fixtures.CreateTestTheme("cyber_neon", false)
	require.NoError(t, err)
	resp = doRequest(t, app, http.MethodPut, "/admin/themes/active", map[string]any{"theme_id": theme.ID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPut, "/admin/themes/customize", map[string]any{"custom_colors": map[string]any{"primary": "#ff00ff"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page = decodeData[dto.LandingPageResponse](t, decodeEnvelope(t, resp))
	require.NotNil(t, page.Theme)
	assert.Equal(t, "cyber_neon", page.Theme.Name)
	require.NotNil(t, page.Theme.Customization)
	assert.Equal(t, "#ff00ff", page.Theme.Customization.CustomColors["primary"])
	assert.Equal(t, "Masuk10", page.Content["hero"]["title"])

	resp = doRequest(t, app, http.MethodGet, "/content?section=hero", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeData[dto.ContentResponse](t, decodeEnvelope(t, resp)).Raw, 1)
}

func TestThemeHandler_CreateAndActivate(t *testing.T) {
	app, _ := newSiteApp(t)

	body := map[string]any{
		"name":         "midnight",
		"display_name": "Midnight",
		"css_vars":     map[string]any{"--color-primary": "#000"},
		"is_active":    true,
	}
	resp := doRequest(t, app, http.MethodPost, "/admin/themes", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, decodeData[dto.ThemeDTO](t, decodeEnvelope(t, resp)).IsActive)

	resp = doRequest(t, app, http.MethodPost, "/admin/themes", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/admin/themes", map[string]any{"name": "x", "display_name": "X"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPut, "/admin/themes/active", map[string]any{"theme_id": 999})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/admin/themes", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeData[[]dto.ThemeDTO](t, decodeEnvelope(t, resp)), 1)
}

func TestAnalyticsHandler(t *testing.T) {
	app, fixtures := newSiteApp(t)
	link, err := fixtures.CreateTestShortLink("alpha", "https://example.com/a")
	require.NoError(t, err)
	_, err = fixtures.CreateTestClick(link.ID, time.Now().UTC().Add(-time.Hour), "mobile", "Chrome")
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodGet, "/admin/analytics/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stats := decodeData[dto.AnalyticsStatsResponse](t, decodeEnvelope(t, resp))
	assert.Equal(t, int64(1), stats.Clicks.Total)
	require.Len(t, stats.TopLinks, 1)
	assert.Equal(t, "alpha", stats.TopLinks[0].Code)

	resp = doRequest(t, app, http.MethodGet, "/admin/analytics/stats?start_date=2026-02-01&end_date=2026-01-01", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_DATE_RANGE", decodeEnvelope(t, resp).Error.Code)

	resp = doRequest(t, app, http.MethodGet, "/admin/analytics/export.csv", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment; filename=")

	resp = doRequest(t, app, http.MethodGet, "/admin/analytics/export.xlsx", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}
