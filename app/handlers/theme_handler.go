package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ThemeHandlerInterface defines the theme endpoints
type ThemeHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Active(c fiber.Ctx) error
	Activate(c fiber.Ctx) error
	Customization(c fiber.Ctx) error
	Customize(c fiber.Ctx) error
}

type ThemeHandler struct {
	flow      businessflow.ThemeFlow
	validator *validator.Validate
	logger    *zap.Logger
}

func NewThemeHandler(flow businessflow.ThemeFlow, logger *zap.Logger) ThemeHandlerInterface {
	return &ThemeHandler{
		flow:      flow,
		validator: validator.New(),
		logger:    logger,
	}
}

// List returns all themes oldest first
// @Summary List themes
// @Tags Admin Themes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ThemeDTO}
// @Router /api/v1/admin/themes [get]
func (h *ThemeHandler) List(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/themes"
	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	themes, err := h.flow.List(ctx)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Themes retrieved", themes)
}

// Create adds a theme. An active theme deactivates the others.
// @Summary Create theme
// @Tags Admin Themes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateThemeRequest true "Theme"
// @Success 201 {object} dto.APIResponse{data=dto.ThemeDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Theme already exists"
// @Router /api/v1/admin/themes [post]
func (h *ThemeHandler) Create(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/themes"
	var req dto.CreateThemeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	theme, err := h.flow.Create(ctx, &req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusCreated, "Theme created", theme)
}

// Active returns the active theme and its customization
// @Summary Active theme
// @Tags Themes
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ActiveThemeResponse}
// @Failure 404 {object} dto.APIResponse "No active theme"
// @Router /api/v1/themes/active [get]
func (h *ThemeHandler) Active(c fiber.Ctx) error {
	const endpoint = "/api/v1/themes/active"
	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	res, err := h.flow.Active(ctx)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Active theme retrieved", res)
}

// Activate makes one theme the only active theme
// @Summary Activate theme
// @Tags Admin Themes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ActivateThemeRequest true "Theme ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThemeDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/themes/active [put]
func (h *ThemeHandler) Activate(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/themes/active"
	var req dto.ActivateThemeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	theme, err := h.flow.Activate(ctx, &req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Theme activated", theme)
}

// Customization returns the latest theme customization
// @Summary Theme customization
// @Tags Admin Themes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ThemeCustomizationDTO}
// @Router /api/v1/admin/themes/customize [get]
func (h *ThemeHandler) Customization(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/themes/customize"
	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	res, err := h.flow.Customization(ctx)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Customization retrieved", res)
}

// Customize saves the customization of the active theme
// @Summary Customize active theme
// @Tags Admin Themes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertCustomizationRequest true "Customization"
// @Success 200 {object} dto.APIResponse{data=dto.ThemeCustomizationDTO}
// @Failure 404 {object} dto.APIResponse "No active theme"
// @Router /api/v1/admin/themes/customize [put]
func (h *ThemeHandler) Customize(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/themes/customize"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}

	var req dto.UpsertCustomizationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	res, err := h.flow.Customize(ctx, &req, actor.UserID)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Customization saved", res)
}
