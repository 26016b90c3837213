// Package models contains the persisted entities of the shortlink and landing back office
package models

import (
	"time"

	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// ShortLink maps a short code to a destination URL.
// Code is unique (case-sensitive) and never changes after creation.
type ShortLink struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:50;not null;uniqueIndex:uk_short_links_code" json:"code"`
	Destination string     `gorm:"type:text;not null" json:"destination"`
	Title       *string    `gorm:"size:255" json:"title,omitempty"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	IsActive    *bool      `gorm:"not null;default:true;index:idx_short_links_is_active" json:"is_active"`
	ExpiresAt   *time.Time `gorm:"index:idx_short_links_expires_at" json:"expires_at,omitempty"`
	CreatedBy   *uint      `gorm:"index:idx_short_links_created_by" json:"created_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:idx_short_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Creator *User `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName returns the table name for ShortLink
func (ShortLink) TableName() string { return "short_links" }

// BeforeCreate fills timestamps in UTC.
func (s *ShortLink) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	return nil
}

// ExpiredAt reports whether the link has an expiry strictly before now.
func (s *ShortLink) ExpiredAt(now time.Time) bool {
	return s.ExpiresAt != nil && utils.IsExpiredAt(*s.ExpiresAt, now)
}

// ShortLinkFilter provides filter fields for repository queries
type ShortLinkFilter struct {
	ID            *uint
	Code          *string
	IsActive      *bool
	CreatedBy     *uint
	Search        *string // matches code, title or destination
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ShortLinkWithClicks is a list row carrying the aggregated click count.
type ShortLinkWithClicks struct {
	ShortLink
	ClickCount int64 `gorm:"column:click_count" json:"click_count"`
}
