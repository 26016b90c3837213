// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/services"
	"github.com/gofiber/fiber/v3"
)

const (
	localUserID      = "user_id"
	localRole        = "role"
	localTokenID     = "token_id"
	localTokenClaims = "token_claims"
	localAccessToken = "access_token"
	localRequestID   = "request_id"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// AdminAuthenticate validates the Bearer access token of a back-office user
// and stores user_id and role in the request locals.
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error:   dto.ErrorDetail{Code: "MISSING_AUTHORIZATION_HEADER"},
			})
		}

		if authHeader != "Bearer" && !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error:   dto.ErrorDetail{Code: "INVALID_AUTHORIZATION_FORMAT"},
			})
		}

		// fasthttp trims the trailing space, so "Bearer " arrives as "Bearer"
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error:   dto.ErrorDetail{Code: "MISSING_ACCESS_TOKEN"},
			})
		}

		// ValidateUserToken already checks for revocation
		claims, err := m.tokenService.ValidateUserToken(token)
		if err != nil {
			var code, msg string
			if errors.Is(err, services.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
				msg = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				code = "TOKEN_INVALID"
				msg = "Invalid access token"
			} else if errors.Is(err, services.ErrTokenRevoked) {
				code = "TOKEN_REVOKED"
				msg = "Access token has been revoked"
			} else {
				code = "TOKEN_VALIDATION_FAILED"
				msg = "Token validation failed"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{Success: false, Message: msg, Error: dto.ErrorDetail{Code: code}})
		}

		// A refresh token must never authorize a request
		if claims.TokenType != services.TokenTypeAccess {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid access token",
				Error:   dto.ErrorDetail{Code: "TOKEN_INVALID"},
			})
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localRole, claims.Role)
		c.Locals(localTokenID, claims.TokenID)
		c.Locals(localTokenClaims, claims)
		c.Locals(localAccessToken, token)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(localRequestID, requestID)
		}

		return c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not one of roles.
// It must run after AdminAuthenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, ok := GetRoleFromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authentication required",
				Error:   dto.ErrorDetail{Code: "AUTHENTICATION_REQUIRED"},
			})
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
			Success: false,
			Message: "Insufficient permissions",
			Error:   dto.ErrorDetail{Code: "FORBIDDEN"},
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the request context
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(localUserID).(uint)
	return userID, ok && userID != 0
}

// GetRoleFromContext extracts the authenticated user's role
func GetRoleFromContext(c fiber.Ctx) (string, bool) {
	role, ok := c.Locals(localRole).(string)
	return role, ok && role != ""
}

// GetAccessTokenFromContext returns the raw bearer token of the request
func GetAccessTokenFromContext(c fiber.Ctx) (string, bool) {
	token, ok := c.Locals(localAccessToken).(string)
	return token, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.UserTokenClaims, bool) {
	claims, ok := c.Locals(localTokenClaims).(*services.UserTokenClaims)
	return claims, ok
}
