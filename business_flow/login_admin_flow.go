package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/services"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the back-office authentication flow used by handlers
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.CaptchaInitResponse, error)
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.SessionDTO, error)
	Logout(ctx context.Context, accessToken string, req *dto.LogoutRequest) error
	Me(ctx context.Context, userID uint) (*dto.UserDTO, error)
}

// AdminAuthFlowImpl provides captcha-init and credential verification
type AdminAuthFlowImpl struct {
	userRepo        repository.UserRepository
	tokenService    services.TokenService
	captchaSvc      services.CaptchaService
	captchaRequired bool
	logger          *zap.Logger
}

func NewAdminAuthFlow(
	userRepo repository.UserRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
	captchaRequired bool,
	logger *zap.Logger,
) AdminAuthFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAuthFlowImpl{
		userRepo:        userRepo,
		tokenService:    tokenService,
		captchaSvc:      captchaSvc,
		captchaRequired: captchaRequired,
		logger:          logger,
	}
}

func (af *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.CaptchaInitResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_NOT_AVAILABLE", "Captcha service not available", ErrCacheNotAvailable)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_INIT_FAILED", "Failed to initialize captcha", err)
	}
	return &dto.CaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	}, nil
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Email and password are required", ErrIncorrectPassword)
	}

	// Verify captcha first
	if af.captchaRequired {
		if req.ChallengeID == "" {
			return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha challenge missing", ErrInvalidCaptcha)
		}
		if af.captchaSvc == nil || !af.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.UserAngle) {
			return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha validation failed", ErrInvalidCaptcha)
		}
	}

	user, err := af.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	// unknown email and wrong password look the same to the caller
	if user == nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	accessToken, refreshToken, err := af.tokenService.GenerateUserTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	now := utils.UTCNow()
	if err := af.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		af.logger.Warn("failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	fields := []zap.Field{zap.Uint("user_id", user.ID), zap.String("role", user.Role)}
	if metadata != nil {
		fields = append(fields, zap.String("ip", metadata.IPAddress), zap.String("request_id", metadata.RequestID))
	}
	af.logger.Info("admin login", fields...)

	return &dto.AdminLoginResponse{
		User:    ToUserDTO(*user),
		Session: ToSessionDTO(accessToken, refreshToken, af.tokenService.AccessTokenTTL()),
	}, nil
}

func (af *AdminAuthFlowImpl) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.SessionDTO, error) {
	if req == nil || req.RefreshToken == "" {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is required", services.ErrTokenInvalid)
	}
	claims, err := af.tokenService.ValidateUserToken(req.RefreshToken)
	if err != nil || claims.TokenType != services.TokenTypeRefresh {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Invalid refresh token", services.ErrTokenInvalid)
	}

	user, err := af.userRepo.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	// rotate, then reissue with the current role
	if err := af.tokenService.RevokeToken(req.RefreshToken); err != nil {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Invalid refresh token", err)
	}
	accessToken, refreshToken, err := af.tokenService.GenerateUserTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}
	session := ToSessionDTO(accessToken, refreshToken, af.tokenService.AccessTokenTTL())
	return &session, nil
}

func (af *AdminAuthFlowImpl) Logout(ctx context.Context, accessToken string, req *dto.LogoutRequest) error {
	if accessToken != "" {
		if err := af.tokenService.RevokeToken(accessToken); err != nil {
			af.logger.Debug("logout with unusable access token", zap.Error(err))
		}
	}
	if req != nil && req.RefreshToken != "" {
		if err := af.tokenService.RevokeToken(req.RefreshToken); err != nil {
			af.logger.Debug("logout with unusable refresh token", zap.Error(err))
		}
	}
	return nil
}

func (af *AdminAuthFlowImpl) Me(ctx context.Context, userID uint) (*dto.UserDTO, error) {
	user, err := af.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	out := ToUserDTO(*user)
	return &out, nil
}
