// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/middleware"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

// businessErrorStatus maps business error codes to HTTP statuses. Unknown codes are 500.
var businessErrorStatus = map[string]int{
	"VALIDATION_ERROR":        fiber.StatusBadRequest,
	"LOGIN_VALIDATION_FAILED": fiber.StatusBadRequest,
	"INVALID_CODE":            fiber.StatusBadRequest,
	"RESERVED_CODE":           fiber.StatusBadRequest,
	"INVALID_DESTINATION":     fiber.StatusBadRequest,
	"INVALID_DATE":            fiber.StatusBadRequest,
	"INVALID_DATE_RANGE":      fiber.StatusBadRequest,
	"INVALID_EMAIL":           fiber.StatusBadRequest,
	"INVALID_ROLE":            fiber.StatusBadRequest,
	"PASSWORD_TOO_SHORT":      fiber.StatusBadRequest,
	"FILE_REQUIRED":           fiber.StatusBadRequest,
	"INVALID_FILE_TYPE":       fiber.StatusBadRequest,
	"CAPTCHA_INVALID":         fiber.StatusBadRequest,
	"FILE_TOO_LARGE":          fiber.StatusRequestEntityTooLarge,

	"INVALID_CREDENTIALS":   fiber.StatusUnauthorized,
	"INVALID_REFRESH_TOKEN": fiber.StatusUnauthorized,

	"ACCOUNT_INACTIVE":   fiber.StatusForbidden,
	"FORBIDDEN":          fiber.StatusForbidden,
	"LAST_ADMIN":         fiber.StatusForbidden,
	"CANNOT_DELETE_SELF": fiber.StatusForbidden,

	"SHORT_LINK_NOT_FOUND": fiber.StatusNotFound,
	"USER_NOT_FOUND":       fiber.StatusNotFound,
	"MEDIA_NOT_FOUND":      fiber.StatusNotFound,
	"MEDIA_FILE_MISSING":   fiber.StatusNotFound,
	"THEME_NOT_FOUND":      fiber.StatusNotFound,
	"NO_ACTIVE_THEME":      fiber.StatusNotFound,

	"CODE_ALREADY_EXISTS":  fiber.StatusConflict,
	"EMAIL_ALREADY_EXISTS": fiber.StatusConflict,
	"THEME_ALREADY_EXISTS": fiber.StatusConflict,

	"CAPTCHA_NOT_AVAILABLE": fiber.StatusServiceUnavailable,
}

// ErrorResponse standard JSON error
func ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// HandleBusinessError writes the response for an error returned by a flow.
// Server-side failures are logged with the endpoint and request id.
func HandleBusinessError(c fiber.Ctx, logger *zap.Logger, endpoint string, err error) error {
	be, ok := businessflow.AsBusinessError(err)
	if !ok {
		logger.Error("unhandled error", zap.String("endpoint", endpoint), zap.String("request_id", requestID(c)), zap.Error(err))
		return ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
	}

	status, known := businessErrorStatus[be.Code]
	if !known {
		status = fiber.StatusInternalServerError
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("endpoint", endpoint),
			zap.String("code", be.Code),
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
	}
	return ErrorResponse(c, status, be.Message, be.Code, nil)
}

// ValidateRequest runs struct validation and writes a 400 on failure.
// It returns true when the request is valid.
func ValidateRequest(c fiber.Ctx, v *validator.Validate, req any) (bool, error) {
	if err := v.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return false, ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			messages = append(messages, getValidationErrorMessage(fe))
		}
		return false, ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", messages)
	}
	return true, nil
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "url":
		return err.Field() + " must be an absolute URL"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// parseIDParam reads a positive numeric route parameter.
func parseIDParam(c fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidIDResponse(c fiber.Ctx) error {
	return ErrorResponse(c, fiber.StatusBadRequest, "Invalid id", "INVALID_ID", nil)
}

func requestID(c fiber.Ctx) string {
	if id := c.Get("X-Request-ID"); id != "" {
		return id
	}
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// actorFromContext returns the authenticated user set by the auth middleware.
func actorFromContext(c fiber.Ctx) (businessflow.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return businessflow.Actor{}, false
	}
	role, _ := middleware.GetRoleFromContext(c)
	return businessflow.Actor{UserID: userID, Role: role}, true
}

func unauthenticatedResponse(c fiber.Ctx) error {
	return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
}

func sendFile(c fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// createRequestContext builds the request-scoped context handed to flows.
// The returned cancel func must be called once the flow returns.
func createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return createRequestContextWithTimeout(c, endpoint, defaultRequestTimeout)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		ctx = context.WithValue(ctx, utils.UserIDKey, userID)
	}
	return ctx, cancel
}
