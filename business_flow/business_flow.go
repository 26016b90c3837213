package businessflow

import (
	"strings"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
)

const RequestIDKey = "X-Request-ID"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ClientMetadata holds client information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// normalizePage clamps page and limit and returns the row offset.
func normalizePage(page, limit, defaultLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func searchPtr(search string) *string {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil
	}
	return &search
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:          user.ID,
		UUID:        user.UUID.String(),
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		IsActive:    utils.IsTrue(user.IsActive),
		LastLoginAt: formatTimePtr(user.LastLoginAt),
		CreatedAt:   formatTime(user.CreatedAt),
	}
}

func ToSessionDTO(accessToken, refreshToken string, expiresIn time.Duration) dto.SessionDTO {
	return dto.SessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(expiresIn.Seconds()),
		TokenType:    "Bearer",
	}
}

// ToShortLinkDTO renders a short link; baseURL is prepended to the code for short_url.
func ToShortLinkDTO(link models.ShortLink, clicks int64, baseURL string) dto.ShortLinkDTO {
	return dto.ShortLinkDTO{
		ID:          link.ID,
		Code:        link.Code,
		ShortURL:    ShortURL(baseURL, link.Code),
		Destination: link.Destination,
		Title:       link.Title,
		Description: link.Description,
		IsActive:    utils.IsTrue(link.IsActive),
		ExpiresAt:   formatTimePtr(link.ExpiresAt),
		ClickCount:  clicks,
		CreatedBy:   link.CreatedBy,
		CreatedAt:   formatTime(link.CreatedAt),
		UpdatedAt:   formatTime(link.UpdatedAt),
	}
}

// ShortURL joins the public base URL and a code.
func ShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + code
}

func ToLandingContentDTO(content models.LandingContent) dto.LandingContentDTO {
	return dto.LandingContentDTO{
		ID:        content.ID,
		Section:   content.Section,
		Key:       content.Key,
		Value:     content.Value,
		Language:  content.Language,
		UpdatedBy: content.UpdatedBy,
		UpdatedAt: formatTime(content.UpdatedAt),
	}
}

func ToMediaDTO(media models.Media) dto.MediaDTO {
	return dto.MediaDTO{
		ID:               media.ID,
		Filename:         media.Filename,
		OriginalFilename: media.OriginalFilename,
		URL:              media.URL,
		FileSize:         media.FileSize,
		MimeType:         media.MimeType,
		UploadedBy:       media.UploadedBy,
		UploadedAt:       formatTime(media.UploadedAt),
	}
}

func ToThemeDTO(theme models.Theme) dto.ThemeDTO {
	return dto.ThemeDTO{
		ID:          theme.ID,
		Name:        theme.Name,
		DisplayName: theme.DisplayName,
		Description: theme.Description,
		PreviewURL:  theme.PreviewURL,
		CSSVars:     theme.CSSVars,
		Animations:  theme.Animations,
		Typography:  theme.Typography,
		IsActive:    utils.IsTrue(theme.IsActive),
		CreatedAt:   formatTime(theme.CreatedAt),
		UpdatedAt:   formatTime(theme.UpdatedAt),
	}
}

func ToThemeCustomizationDTO(c models.ThemeCustomization) dto.ThemeCustomizationDTO {
	return dto.ThemeCustomizationDTO{
		ID:               c.ID,
		ActiveThemeID:    c.ActiveThemeID,
		CustomColors:     c.CustomColors,
		CustomFonts:      c.CustomFonts,
		CustomSpacing:    c.CustomSpacing,
		CustomAnimations: c.CustomAnimations,
		CustomEffects:    c.CustomEffects,
		UpdatedBy:        c.UpdatedBy,
		UpdatedAt:        formatTime(c.UpdatedAt),
	}
}
