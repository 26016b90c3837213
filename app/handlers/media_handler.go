package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// MediaHandlerInterface defines the media library endpoints
type MediaHandlerInterface interface {
	Upload(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Preview(c fiber.Ctx) error
}

type MediaHandler struct {
	flow      businessflow.MediaFlow
	validator *validator.Validate
	logger    *zap.Logger
}

func NewMediaHandler(flow businessflow.MediaFlow, logger *zap.Logger) MediaHandlerInterface {
	return &MediaHandler{
		flow:      flow,
		validator: validator.New(),
		logger:    logger,
	}
}

// Upload stores an image in the media library
// @Summary Upload media
// @Tags Admin Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG, PNG, GIF or WebP image up to 5 MB"
// @Success 201 {object} dto.APIResponse{data=dto.MediaDTO}
// @Failure 400 {object} dto.APIResponse "Missing file or unsupported type"
// @Failure 413 {object} dto.APIResponse "File too large"
// @Router /api/v1/admin/media/upload [post]
func (h *MediaHandler) Upload(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/media/upload"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "file is required", "FILE_REQUIRED", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	media, err := h.flow.Upload(ctx, &dto.UploadMediaRequest{
		UploadedBy:       actor.UserID,
		OriginalFilename: fileHeader.Filename,
		FileSize:         fileHeader.Size,
		ContentType:      fileHeader.Header.Get("Content-Type"),
		File:             file,
	})
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusCreated, "Media uploaded", media)
}

// List returns the media library newest first
// @Summary List media
// @Tags Admin Media
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param search query string false "Filename filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListMediaResponse}
// @Router /api/v1/admin/media [get]
func (h *MediaHandler) List(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/media"
	var req dto.ListMediaRequest
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
	return SuccessResponse(c, fiber.StatusOK, "Media retrieved", res)
}

// Delete removes the file and its record
// @Summary Delete media
// @Tags Admin Media
// @Produce json
// @Security BearerAuth
// @Param id path int true "Media ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/media/{id} [delete]
func (h *MediaHandler) Delete(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/media/:id"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	if err := h.flow.Delete(ctx, id); err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Media deleted", nil)
}

// Preview returns a JPEG thumbnail of an image
// @Summary Media preview
// @Tags Admin Media
// @Produce image/jpeg
// @Security BearerAuth
// @Param id path int true "Media ID"
// @Success 200 {file} file "JPEG thumbnail"
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/media/{id}/preview [get]
func (h *MediaHandler) Preview(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/media/:id/preview"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	_, contentType, data, err := h.flow.Preview(ctx, id)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	c.Set("Content-Type", contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.Send(data)
}
