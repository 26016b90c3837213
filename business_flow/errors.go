// Package businessflow contains the use cases of the shortlink and landing back office
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Short link errors
	ErrShortLinkNotFound   = errors.New("short link not found")
	ErrInvalidCode         = errors.New("code must be 2-50 characters of letters, digits or hyphens")
	ErrReservedCode        = errors.New("code is reserved")
	ErrCodeAlreadyExists   = errors.New("code already exists")
	ErrInvalidDestination  = errors.New("destination must be an absolute http(s) URL")
	ErrShortLinkUpdateNone = errors.New("at least one field must be provided for update")

	// User and auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRole        = errors.New("role must be ADMIN or EDITOR")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrLastAdmin          = errors.New("cannot remove the last admin")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCaptcha     = errors.New("invalid captcha")
	ErrCacheNotAvailable  = errors.New("cache not available")

	// Media errors
	ErrMediaNotFound        = errors.New("media not found")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMediaTooLarge        = errors.New("media file too large")
	ErrMediaFileRequired    = errors.New("media file is required")

	// Theme errors
	ErrThemeNotFound      = errors.New("theme not found")
	ErrThemeAlreadyExists = errors.New("theme already exists")
	ErrNoActiveTheme      = errors.New("no active theme")
	ErrThemeCSSVarsEmpty  = errors.New("css_vars is required")

	// Content errors
	ErrContentFieldsRequired = errors.New("section, key and value are required")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrInvalidDate           = errors.New("date must be RFC3339 or YYYY-MM-DD")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// AsBusinessError extracts the outermost BusinessError in the chain.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsShortLinkNotFound(err error) bool {
	return errors.Is(err, ErrShortLinkNotFound)
}

func IsInvalidCode(err error) bool {
	return errors.Is(err, ErrInvalidCode)
}

func IsReservedCodeError(err error) bool {
	return errors.Is(err, ErrReservedCode)
}

func IsCodeAlreadyExists(err error) bool {
	return errors.Is(err, ErrCodeAlreadyExists)
}

func IsInvalidDestination(err error) bool {
	return errors.Is(err, ErrInvalidDestination)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsLastAdmin(err error) bool {
	return errors.Is(err, ErrLastAdmin)
}

func IsCannotDeleteSelf(err error) bool {
	return errors.Is(err, ErrCannotDeleteSelf)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsMediaNotFound(err error) bool {
	return errors.Is(err, ErrMediaNotFound)
}

func IsUnsupportedMediaType(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType)
}

func IsMediaTooLarge(err error) bool {
	return errors.Is(err, ErrMediaTooLarge)
}

func IsThemeNotFound(err error) bool {
	return errors.Is(err, ErrThemeNotFound)
}

func IsThemeAlreadyExists(err error) bool {
	return errors.Is(err, ErrThemeAlreadyExists)
}

func IsNoActiveTheme(err error) bool {
	return errors.Is(err, ErrNoActiveTheme)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
