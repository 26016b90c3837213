package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVisitFlow struct {
	result   businessflow.VisitResult
	panicVal any
	code     string
	headers  businessflow.RequestHeaders
}

func (s *stubVisitFlow) Visit(_ context.Context, code string, headers businessflow.RequestHeaders) businessflow.VisitResult {
	if s.panicVal != nil {
		panic(s.panicVal)
	}
	s.code = code
	s.headers = headers
	return s.result
}

func (s *stubVisitFlow) FallbackURL() string { return "/" }

func newVisitApp(flow businessflow.ShortLinkVisitFlow) *fiber.App {
	app := fiber.New()
	app.Get("/:code", NewShortLinkHandler(flow, zap.NewNop()).Visit)
	return app
}

func TestShortLinkHandler_Visit(t *testing.T) {
	flow := &stubVisitFlow{result: businessflow.VisitResult{Target: "https://example.com/sale", Outcome: businessflow.OutcomeFound}}
	app := newVisitApp(flow)

	req := httptest.NewRequest(http.MethodGet, "/promo-1", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("X-Real-IP", "10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	req.Header.Set("Referer", "https://news.example.org/")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/sale", resp.Header.Get("Location"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	assert.Equal(t, "promo-1", flow.code)
	assert.Equal(t, businessflow.RequestHeaders{
		ForwardedFor: "203.0.113.9, 10.0.0.1",
		RealIP:       "10.0.0.1",
		UserAgent:    "Mozilla/5.0 (iPhone)",
		Referer:      "https://news.example.org/",
	}, flow.headers)
}

func TestShortLinkHandler_VisitFallback(t *testing.T) {
	flow := &stubVisitFlow{result: businessflow.VisitResult{Target: "/", Outcome: businessflow.OutcomeNotFound}}
	resp, err := newVisitApp(flow).Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestShortLinkHandler_VisitPanicRedirectsToFallback(t *testing.T) {
	flow := &stubVisitFlow{panicVal: "boom"}
	resp, err := newVisitApp(flow).Test(httptest.NewRequest(http.MethodGet, "/promo", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}
