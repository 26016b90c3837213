package handlers

import (
	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/middleware"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// AuthAdminHandlerInterface defines the contract for back-office auth handlers
type AuthAdminHandlerInterface interface {
	InitCaptcha(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	Me(c fiber.Ctx) error
}

// AuthAdminHandler implements AuthAdminHandlerInterface
type AuthAdminHandler struct {
	flow      businessflow.AdminAuthFlow
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAuthAdminHandler(flow businessflow.AdminAuthFlow, logger *zap.Logger) AuthAdminHandlerInterface {
	return &AuthAdminHandler{
		flow:      flow,
		validator: validator.New(),
		logger:    logger,
	}
}

// InitCaptcha starts the admin login by returning a rotate captcha challenge
// @Summary Admin captcha init
// @Description Initialize rotate captcha for admin login (returns base64 images and challenge ID)
// @Tags Admin Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaInitResponse} "Captcha initialized"
// @Failure 503 {object} dto.APIResponse "Captcha not available"
// @Failure 500 {object} dto.APIResponse "Failed to initialize captcha"
// @Router /api/v1/auth/admin/captcha/init [post]
func (h *AuthAdminHandler) InitCaptcha(c fiber.Ctx) error {
	const endpoint = "/api/v1/auth/admin/captcha/init"
	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	resp, err := h.flow.InitCaptcha(ctx)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Captcha initialized", resp)
}

// Login authenticates a back-office user with email and password
// @Summary Admin login
// @Description Verify captcha (when enforced) and credentials, returns access and refresh tokens
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request or captcha"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/admin/login [post]
func (h *AuthAdminHandler) Login(c fiber.Ctx) error {
	const endpoint = "/api/v1/auth/admin/login"
	var req dto.AdminLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	result, err := h.flow.Login(ctx, &req, metadata)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh admin session
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.SessionDTO} "Tokens refreshed"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/auth/admin/refresh [post]
func (h *AuthAdminHandler) Refresh(c fiber.Ctx) error {
	const endpoint = "/api/v1/auth/admin/refresh"
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := ValidateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	session, err := h.flow.Refresh(ctx, &req)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Tokens refreshed", session)
}

// Logout revokes the current access token and, when given, the refresh token
// @Summary Admin logout
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/auth/admin/logout [post]
func (h *AuthAdminHandler) Logout(c fiber.Ctx) error {
	const endpoint = "/api/v1/auth/admin/logout"
	token, ok := middleware.GetAccessTokenFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}

	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	if err := h.flow.Logout(ctx, token, &req); err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}

// Me returns the authenticated user
// @Summary Current admin user
// @Tags Admin Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "Current user"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/auth/admin/me [get]
func (h *AuthAdminHandler) Me(c fiber.Ctx) error {
	const endpoint = "/api/v1/auth/admin/me"
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthenticatedResponse(c)
	}

	ctx, cancel := createRequestContext(c, endpoint)
	defer cancel()

	user, err := h.flow.Me(ctx, actor.UserID)
	if err != nil {
		return HandleBusinessError(c, h.logger, endpoint, err)
	}
	return SuccessResponse(c, fiber.StatusOK, "User retrieved", user)
}
