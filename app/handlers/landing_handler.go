package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// LandingHandlerInterface serves the landing payload and the admin section entry
type LandingHandlerInterface interface {
	Page(c fiber.Ctx) error
	AdminEntry(c fiber.Ctx) error
}

type LandingHandler struct {
	flow   businessflow.LandingFlow
	logger *zap.Logger
}

func NewLandingHandler(flow businessflow.LandingFlow, logger *zap.Logger) LandingHandlerInterface {
	return &LandingHandler{flow: flow, logger: logger}
}

// Page returns the active theme and the landing content
// @Summary Landing page
// @Tags Landing
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.LandingPageResponse}
// @Router / [get]
func (h *LandingHandler) Page(c fiber.Ctx) error {
	const endpoint = "/"
	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	page, err := h.flow.Page(ctx)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Landing page", page)
}

// AdminEntry points clients at the admin login endpoints
// @Summary Admin section entry
// @Tags Landing
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminEntryResponse}
// @Router /admin [get]
func (h *LandingHandler) AdminEntry(c fiber.Ctx) error {
	return SuccessResponse(c, fiber.StatusOK, "Admin section", dto.AdminEntryResponse{
		Section:         "admin",
		LoginEndpoint:   "/api/v1/auth/admin/login",
		CaptchaEndpoint: "/api/v1/auth/admin/captcha/init",
	})
}
