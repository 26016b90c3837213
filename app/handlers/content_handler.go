package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ContentHandlerInterface defines the landing content endpoints
type ContentHandlerInterface interface {
	Get(c fiber.Ctx) error
	Upsert(c fiber.Ctx) error
}

type ContentHandler struct {
	flow      businessflow.ContentFlow
	validator *validator.Validate
	logger    *zap.Logger
}

func NewContentHandler(flow businessflow.ContentFlow, logger *zap.Logger) ContentHandlerInterface {
	return &ContentHandler{
		flow:      flow,
		validator: validator.New(),
		logger:    logger,
	}
}

// Get returns landing content grouped by section and key
// @Summary Landing content
// @Tags Content
// @Produce json
// @Param section query string false "Section filter"
// @Param language query string false "Language" default(ms)
// @Success 200 {object} dto.APIResponse{data=dto.ContentResponse}
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/content [get]
func (h *ContentHandler) Get(c fiber.Ctx) error {
	const endpoint = "/api/v1/content"
	var req dto.GetContentRequest
	if err := c.Bind().Query(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	res, err := h.flow.Get(ctx, req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Content retrieved", res)
}

// Upsert creates or replaces one content value
// @Summary Upsert landing content
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertContentRequest true "Content value"
// @Success 200 {object} dto.APIResponse{data=dto.LandingContentDTO}
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/admin/content [put]
func (h *ContentHandler) Upsert(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/content"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}

	var req dto.UpsertContentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	content, err := h.flow.Upsert(ctx, &req, actor.UserID)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Content saved", content)
}
