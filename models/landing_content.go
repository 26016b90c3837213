package models

import (
	"time"

	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// LandingContent is one editable text block of the landing page.
type LandingContent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Section   string    `gorm:"size:100;not null;uniqueIndex:uk_landing_contents_section_key_lang,priority:1" json:"section"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:uk_landing_contents_section_key_lang,priority:2" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Language  string    `gorm:"size:10;not null;default:'ms';uniqueIndex:uk_landing_contents_section_key_lang,priority:3" json:"language"`
	UpdatedBy *uint     `gorm:"index:idx_landing_contents_updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LandingContent) TableName() string { return "landing_contents" }

// BeforeCreate fills the default language and timestamps.
func (l *LandingContent) BeforeCreate(tx *gorm.DB) error {
	if l.Language == "" {
		l.Language = utils.DefaultContentLanguage
	}
	now := utils.UTCNow()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	return nil
}

// LandingContentFilter represents filter criteria for content queries
type LandingContentFilter struct {
	Section  *string
	Key      *string
	Language *string
}
