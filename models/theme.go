package models

import (
	"time"

	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// Theme is a named set of landing-page CSS variables. At most one theme is active.
type Theme struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uk_themes_name" json:"name"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	PreviewURL  *string   `gorm:"type:text" json:"preview_url,omitempty"`
	CSSVars     JSONMap   `gorm:"not null" json:"css_vars"`
	Animations  JSONMap   `json:"animations,omitempty"`
	Typography  JSONMap   `json:"typography,omitempty"`
	IsActive    *bool     `gorm:"not null;default:false;index:idx_themes_is_active" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;index:idx_themes_created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Theme) TableName() string { return "themes" }

// BeforeCreate ensures timestamps are set.
func (t *Theme) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return nil
}

// ThemeFilter represents filter criteria for theme queries
type ThemeFilter struct {
	ID       *uint
	Name     *string
	IsActive *bool
}

// ThemeCustomization holds admin overrides on top of the active theme.
type ThemeCustomization struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ActiveThemeID    uint      `gorm:"not null;uniqueIndex:uk_theme_customizations_active_theme_id" json:"active_theme_id"`
	CustomColors     JSONMap   `json:"custom_colors,omitempty"`
	CustomFonts      JSONMap   `json:"custom_fonts,omitempty"`
	CustomSpacing    JSONMap   `json:"custom_spacing,omitempty"`
	CustomAnimations JSONMap   `json:"custom_animations,omitempty"`
	CustomEffects    JSONMap   `json:"custom_effects,omitempty"`
	UpdatedBy        *uint     `gorm:"index:idx_theme_customizations_updated_by" json:"updated_by,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;index:idx_theme_customizations_updated_at" json:"updated_at"`

	ActiveTheme *Theme `gorm:"foreignKey:ActiveThemeID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ThemeCustomization) TableName() string { return "theme_customizations" }

// BeforeCreate ensures timestamps are set.
func (t *ThemeCustomization) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return nil
}

// AllModels lists every persisted entity, in dependency order.
func AllModels() []any {
	return []any{
		&User{},
		&ShortLink{},
		&ShortLinkClick{},
		&LandingContent{},
		&Media{},
		&Theme{},
		&ThemeCustomization{},
	}
}
