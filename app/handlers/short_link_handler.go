package handlers

import (
	"fmt"

	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ShortLinkHandlerInterface defines contract for public short link visit
type ShortLinkHandlerInterface interface {
	Visit(c fiber.Ctx) error
}

type ShortLinkHandler struct {
	flow   businessflow.ShortLinkVisitFlow
	logger *zap.Logger
}

func NewShortLinkHandler(flow businessflow.ShortLinkVisitFlow, logger *zap.Logger) ShortLinkHandlerInterface {
	return &ShortLinkHandler{flow: flow, logger: logger}
}

// Visit resolves a short link code and redirects. Unknown, expired, inactive and
// malformed codes all redirect to the fallback URL; this endpoint never answers 5xx.
// @Summary Visit Short Link
// @Tags ShortLinks
// @Param code path string true "Short link code"
// @Success 302 {string} string "Redirect to destination or fallback"
// @Router /{code} [get]
func (h *ShortLinkHandler) Visit(c fiber.Ctx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("short link handler panicked", zap.String("path", c.Path()), zap.String("panic", fmt.Sprint(p)))
			err = h.redirect(c, h.flow.FallbackURL())
		}
	}()

	code := c.Params("code")
	headers := businessflow.RequestHeaders{
		ForwardedFor: c.Get("X-Forwarded-For"),
		RealIP:       c.Get("X-Real-IP"),
		UserAgent:    c.Get("User-Agent"),
		Referer:      c.Get("Referer"),
	}

	ctx, cancel := createRequestContext(c, "/:code")
	defer cancel()

	result := h.flow.Visit(ctx, code, headers)
	return h.redirect(c, result.Target)
}

func (h *ShortLinkHandler) redirect(c fiber.Ctx, target string) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Redirect().Status(fiber.StatusFound).To(target)
}
