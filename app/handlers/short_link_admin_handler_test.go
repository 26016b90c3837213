package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/services"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newShortLinkAdminApp(t *testing.T) (*fiber.App, *testingutil.TestFixtures, uint) {
	t.Helper()
	testDB := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	admin, err := fixtures.CreateTestUser(utils.RoleAdmin)
	require.NoError(t, err)
	flow := businessflow.NewAdminShortLinkFlow(
		repository.NewShortLinkRepository(testDB.DB),
		repository.NewShortLinkClickRepository(testDB.DB),
		nil,
		services.NewQRCodeService(),
		"https://masuk10.example.com",
		zap.NewNop(),
	)
	h := NewShortLinkAdminHandler(flow, zap.NewNop())

	app := fiber.New()
	g := app.Group("/admin/shortlinks", withActor(admin.ID, utils.RoleAdmin))
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/qrcode", h.QRCode)
	return app, fixtures, admin.ID
}

func TestShortLinkAdminHandler_Create(t *testing.T) {
	app, _, adminID := newShortLinkAdminApp(t)

	resp := doRequest(t, app, http.MethodPost, "/admin/shortlinks", map[string]any{
		"code":        "Promo-1",
		"destination": "https://shop.example.com/sale",
		"title":       "Sale",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	link := decodeData[dto.ShortLinkDTO](t, decodeEnvelope(t, resp))
	assert.Equal(t, "Promo-1", link.Code)
	assert.Equal(t, "https://masuk10.example.com/Promo-1", link.ShortURL)
	assert.True(t, link.IsActive)
	require.NotNil(t, link.CreatedBy)
	assert.Equal(t, adminID, *link.CreatedBy)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"missing destination", map[string]any{"code": "abc"}, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed code", map[string]any{"code": "bad code!", "destination": "https://example.com"}, fiber.StatusBadRequest, "INVALID_CODE"},
		{"reserved code", map[string]any{"code": "Admin", "destination": "https://example.com"}, fiber.StatusBadRequest, "RESERVED_CODE"},
		{"duplicate code", map[string]any{"code": "Promo-1", "destination": "https://example.com"}, fiber.StatusConflict, "CODE_ALREADY_EXISTS"},
		{"non-http destination", map[string]any{"destination": "ftp://example.com/file"}, fiber.StatusBadRequest, "INVALID_DESTINATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/admin/shortlinks", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeEnvelope(t, resp).Error.Code)
		})
	}
}

func TestShortLinkAdminHandler_CreateGeneratesCode(t *testing.T) {
	app, _, _ := newShortLinkAdminApp(t)

	resp := doRequest(t, app, http.MethodPost, "/admin/shortlinks", map[string]any{"destination": "https://example.com"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	link := decodeData[dto.ShortLinkDTO](t, decodeEnvelope(t, resp))
	assert.Regexp(t, `^[a-z0-9]{8}$`, link.Code)
}

func TestShortLinkAdminHandler_GetUpdateDelete(t *testing.T) {
	app, fixtures, _ := newShortLinkAdminApp(t)
	link, err := fixtures.CreateTestShortLink("spring", "https://example.com/spring")
	require.NoError(t, err)
	path := fmt.Sprintf("/admin/shortlinks/%d", link.ID)

	resp := doRequest(t, app, http.MethodGet, path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "spring", decodeData[dto.ShortLinkDTO](t, decodeEnvelope(t, resp)).Code)

	resp = doRequest(t, app, http.MethodPut, path, map[string]any{"destination": "https://example.com/summer", "is_active": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeData[dto.ShortLinkDTO](t, decodeEnvelope(t, resp))
	assert.Equal(t, "spring", updated.Code)
	assert.Equal(t, "https://example.com/summer", updated.Destination)
	assert.False(t, updated.IsActive)

	resp = doRequest(t, app, http.MethodDelete, path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, path, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SHORT_LINK_NOT_FOUND", decodeEnvelope(t, resp).Error.Code)

	resp = doRequest(t, app, http.MethodGet, "/admin/shortlinks/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decodeEnvelope(t, resp).Error.Code)
}

func TestShortLinkAdminHandler_List(t *testing.T) {
	app, fixtures, _ := newShortLinkAdminApp(t)
	for i := 0; i < 3; i++ {
		_, err := fixtures.CreateTestShortLink(fmt.Sprintf("code-%d", i), "https://example.com")
		require.NoError(t, err)
	}

	resp := doRequest(t, app, http.MethodGet, "/admin/shortlinks?page=1&limit=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	res := decodeData[dto.ListShortLinksResponse](t, decodeEnvelope(t, resp))
	assert.Len(t, res.Items, 2)
	assert.Equal(t, dto.PaginationInfo{Page: 1, Limit: 2, Total: 3, Pages: 2}, res.Pagination)

	resp = doRequest(t, app, http.MethodGet, "/admin/shortlinks?limit=500", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestShortLinkAdminHandler_QRCode(t *testing.T) {
	app, fixtures, _ := newShortLinkAdminApp(t)
	link, err := fixtures.CreateTestShortLink("qr-me", "https://example.com")
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodGet, fmt.Sprintf("/admin/shortlinks/%d/qrcode", link.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("Content-Disposition"))

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/admin/shortlinks/%d/qrcode?format=svg&download=true", link.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "image/svg+xml")
	assert.Equal(t, "attachment; filename=qr-qr-me.svg", resp.Header.Get("Content-Disposition"))

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/admin/shortlinks/%d/qrcode?format=gif", link.ID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
