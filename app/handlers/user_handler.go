package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// UserHandlerInterface defines the back-office account endpoints
type UserHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	ChangePassword(c fiber.Ctx) error
}

type UserHandler struct {
	flow      businessflow.UserFlow
	validator *validator.Validate
	logger    *zap.Logger
}

func NewUserHandler(flow businessflow.UserFlow, logger *zap.Logger) UserHandlerInterface {
	return &UserHandler{
		flow:      flow,
		validator: validator.New(),
		logger:    logger,
	}
}

// List returns all users newest first
// @Summary List users
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListUsersResponse}
// @Failure 403 {object} dto.APIResponse
// @Router /api/v1/admin/users [get]
func (h *UserHandler) List(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/users"
	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	res, err := h.flow.List(ctx)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Users retrieved", res)
}

// Create adds a back-office user
// @Summary Create user
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.APIResponse{data=dto.UserDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Router /api/v1/admin/users [post]
func (h *UserHandler) Create(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/users"
	var req dto.CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	user, err := h.flow.Create(ctx, &req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusCreated, "User created", user)
}

// Get returns one user
// @Summary Get user
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/users/{id} [get]
func (h *UserHandler) Get(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/users/:id"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	user, err := h.flow.Get(ctx, id)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "User retrieved", user)
}

// Update changes a user's name or role
// @Summary Update user
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO}
// @Failure 403 {object} dto.APIResponse "Cannot demote the last admin"
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/users/{id} [patch]
func (h *UserHandler) Update(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/users/:id"
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	var req dto.UpdateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	user, err := h.flow.Update(ctx, id, &req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "User updated", user)
}

// Delete removes a user. Admins cannot delete themselves or the last admin.
// @Summary Delete user
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/admin/users/{id} [delete]
func (h *UserHandler) Delete(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/users/:id"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	if err := h.flow.Delete(ctx, id, actor); err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "User deleted", nil)
}

// ChangePassword sets a new password. Editors may only change their own.
// @Summary Change user password
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ChangePasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse
// @Router /api/v1/admin/users/{id}/password [patch]
func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	const endpoint = "/api/v1/admin/users/:id/password"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDResponse(c)
	}

	var req dto.ChangePasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	if err := h.flow.ChangePassword(ctx, id, &req, actor); err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Password updated", nil)
}
