package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ShortLinkAdminHandlerInterface defines admin endpoints for short links
type ShortLinkAdminHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	QRCode(c fiber.Ctx) error
}

// ShortLinkAdminHandler implements the admin short link endpoints
type ShortLinkAdminHandler struct {
	flow      businessflow.AdminShortLinkFlow
	validator *validator.Validate
	logger    *zap.Logger
}

func NewShortLinkAdminHandler(flow businessflow.AdminShortLinkFlow, logger *zap.Logger) ShortLinkAdminHandlerInterface {
	return &ShortLinkAdminHandler{
		flow:      flow,
		validator: validator.New(),
		logger:    logger,
	}
}

// List returns short links newest first with their click counts
// @Summary List short links
// @Tags Admin ShortLinks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Filter by code, title or destination"
// @Success 200 {object} dto.APIResponse{data=dto.ListShortLinksResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/admin/shortlinks [get]
func (h *ShortLinkAdminHandler) List(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/shortlinks"
	var req dto.PageRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	res, err := h.flow.List(ctx, req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Short links retrieved", res)
}

// Create adds a short link. An empty code is generated.
// @Summary Create short link
// @Tags Admin ShortLinks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateShortLinkRequest true "Short link"
// @Success 201 {object} dto.APIResponse{data=dto.ShortLinkDTO}
// @Failure 400 {object} dto.APIResponse "Invalid or reserved code, invalid destination"
// @Failure 409 {object} dto.APIResponse "Code already exists"
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/admin/shortlinks [post]
func (h *ShortLinkAdminHandler) Create(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/shortlinks"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}

	var req dto.CreateShortLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	link, err := h.flow.Create(ctx, &req, actor.UserID)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusCreated, "Short link created", link)
}

// Get returns one short link with its click count
// @Summary Get short link
// @Tags Admin ShortLinks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Short link ID"
// @Success 200 {object} dto.APIResponse{data=dto.ShortLinkDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/shortlinks/{id} [get]
func (h *ShortLinkAdminHandler) Get(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/shortlinks/:id"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	link, err := h.flow.Get(ctx, id)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Short link retrieved", link)
}

// Update changes destination, title, description, status or expiry. The code cannot change.
// @Summary Update short link
// @Tags Admin ShortLinks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Short link ID"
// @Param request body dto.UpdateShortLinkRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ShortLinkDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/shortlinks/{id} [put]
func (h *ShortLinkAdminHandler) Update(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/shortlinks/:id"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	var req dto.UpdateShortLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	link, err := h.flow.Update(ctx, id, &req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Short link updated", link)
}

// Delete removes a short link and its clicks
// @Summary Delete short link
// @Tags Admin ShortLinks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Short link ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/shortlinks/{id} [delete]
func (h *ShortLinkAdminHandler) Delete(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/shortlinks/:id"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	if err := h.flow.Delete(ctx, id); err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Short link deleted", nil)
}

// QRCode renders the QR code of the public short URL
// @Summary Short link QR code
// @Tags Admin ShortLinks
// @Produce image/png
// @Produce image/svg+xml
// @Security BearerAuth
// @Param id path int true "Short link ID"
// @Param format query string false "png or svg" default(png)
// @Param size query int false "Image size in pixels" default(300)
// @Param download query bool false "Serve as attachment at download size"
// @Success 200 {file} file "QR code"
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/shortlinks/{id}/qrcode [get]
func (h *ShortLinkAdminHandler) QRCode(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/shortlinks/:id/qrcode"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	var req dto.QRCodeRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	img, err := h.flow.QRCode(ctx, id, req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	if req.Download {
		return sendFile(c, img.ContentType, img.Filename, img.Content)
	}
	c.Set("Content-Type", img.ContentType)
	return c.Send(img.Content)
}
