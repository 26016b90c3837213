package models

import (
	"time"

	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// Media represents an uploaded image stored on disk and served under /uploads.
type Media struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename         string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_media_filename" json:"filename"`
	OriginalFilename string    `gorm:"type:varchar(255);not null" json:"original_filename"`
	URL              string    `gorm:"type:text;not null" json:"url"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	MimeType         string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	UploadedBy       *uint     `gorm:"index:idx_media_uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt       time.Time `gorm:"not null;index:idx_media_uploaded_at" json:"uploaded_at"`
}

func (Media) TableName() string { return "media" }

// BeforeCreate ensures the upload timestamp is set.
func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.UploadedAt.IsZero() {
		m.UploadedAt = utils.UTCNow()
	}
	return nil
}

// MediaFilter represents filter criteria for media queries.
type MediaFilter struct {
	ID         *uint   `json:"id,omitempty"`
	Filename   *string `json:"filename,omitempty"`
	Search     *string `json:"search,omitempty"`
	UploadedBy *uint   `json:"uploaded_by,omitempty"`
}
