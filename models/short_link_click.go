package models

import (
	"time"

	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// Device classes stored on a click.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// Browser families stored on a click.
const (
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserOther   = "Other"
	BrowserUnknown = "unknown"
)

// ShortLinkClick is one append-only resolution event of a short link.
type ShortLinkClick struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShortLinkID uint      `gorm:"not null;index:idx_short_link_clicks_short_link_id" json:"short_link_id"`
	ClickedAt   time.Time `gorm:"not null;index:idx_short_link_clicks_clicked_at" json:"clicked_at"`
	IPAddress   *string   `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   *string   `gorm:"size:500" json:"user_agent,omitempty"`
	Referrer    *string   `gorm:"size:500" json:"referrer,omitempty"`
	DeviceType  *string   `gorm:"size:20;index:idx_short_link_clicks_device_type" json:"device_type,omitempty"`
	Browser     *string   `gorm:"size:50;index:idx_short_link_clicks_browser" json:"browser,omitempty"`

	ShortLink *ShortLink `gorm:"foreignKey:ShortLinkID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for ShortLinkClick
func (ShortLinkClick) TableName() string { return "short_link_clicks" }

// BeforeCreate defaults ClickedAt to the record time.
func (c *ShortLinkClick) BeforeCreate(tx *gorm.DB) error {
	if c.ClickedAt.IsZero() {
		c.ClickedAt = utils.UTCNow()
	}
	return nil
}

// ShortLinkClickFilter represents filter criteria for click queries
type ShortLinkClickFilter struct {
	ShortLinkID   *uint
	ClickedAfter  *time.Time
	ClickedBefore *time.Time
}

// ClickGroupCount is one bucket of a group-by over clicks.
type ClickGroupCount struct {
	Label string `gorm:"column:label" json:"label"`
	Count int64  `gorm:"column:total" json:"count"`
}
