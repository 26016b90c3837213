// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/masuk10/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ShortLinkLookup is the read path used by the redirect pipeline.
type ShortLinkLookup interface {
	ByCode(ctx context.Context, code string) (*models.ShortLink, error)
}

// ShortLinkRepository defines operations for short links
type ShortLinkRepository interface {
	Repository[models.ShortLink, models.ShortLinkFilter]
	ShortLinkLookup
	ListWithClicks(ctx context.Context, filter models.ShortLinkFilter, orderBy string, limit, offset int) ([]*models.ShortLinkWithClicks, error)
	Update(ctx context.Context, link *models.ShortLink) error
	DeleteWithClicks(ctx context.Context, id uint) error
}

// ShortLinkClickRepository defines operations for short link clicks
type ShortLinkClickRepository interface {
	Repository[models.ShortLinkClick, models.ShortLinkClickFilter]
	CountByShortLinkIDs(ctx context.Context, ids []uint) (map[uint]int64, error)
	TopShortLinks(ctx context.Context, from, to time.Time, limit int) ([]*models.ShortLinkWithClicks, error)
	GroupByDevice(ctx context.Context, from, to time.Time) ([]*models.ClickGroupCount, error)
	GroupByBrowser(ctx context.Context, from, to time.Time) ([]*models.ClickGroupCount, error)
}

// UserRepository defines operations for back-office users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

// LandingContentRepository defines operations for landing content blocks
type LandingContentRepository interface {
	Repository[models.LandingContent, models.LandingContentFilter]
	Upsert(ctx context.Context, content *models.LandingContent) error
}

// MediaRepository defines operations for uploaded media
type MediaRepository interface {
	Repository[models.Media, models.MediaFilter]
	Delete(ctx context.Context, id uint) error
}

// ThemeRepository defines operations for themes
type ThemeRepository interface {
	Repository[models.Theme, models.ThemeFilter]
	ByName(ctx context.Context, name string) (*models.Theme, error)
	Active(ctx context.Context) (*models.Theme, error)
	Activate(ctx context.Context, id uint) error
	DeactivateAll(ctx context.Context) error
}

// ThemeCustomizationRepository defines operations for theme customizations
type ThemeCustomizationRepository interface {
	Repository[models.ThemeCustomization, any]
	ByActiveThemeID(ctx context.Context, themeID uint) (*models.ThemeCustomization, error)
	Latest(ctx context.Context) (*models.ThemeCustomization, error)
	Upsert(ctx context.Context, customization *models.ThemeCustomization) error
}
