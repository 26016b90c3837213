package dto

import "time"

type ShortLinkDTO struct {
	ID          uint    `json:"id" example:"1"`
	Code        string  `json:"code" example:"promo-2026"`
	ShortURL    string  `json:"short_url" example:"https://masuk10.com/promo-2026"`
	Destination string  `json:"destination" example:"https://shop.example.com/sale"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active" example:"true"`
	ExpiresAt   *string `json:"expires_at,omitempty" example:"2026-12-31T23:59:59Z"`
	ClickCount  int64   `json:"click_count" example:"42"`
	CreatedBy   *uint   `json:"created_by,omitempty"`
	CreatedAt   string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt   string  `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// CreateShortLinkRequest creates a short link. An empty code is generated.
type CreateShortLinkRequest struct {
	Code        string     `json:"code,omitempty" validate:"omitempty,max=50"`
	Destination string     `json:"destination" validate:"required,url,max=2048"`
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive    *bool      `json:"is_active,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateShortLinkRequest never carries a code: codes are immutable.
type UpdateShortLinkRequest struct {
	Destination    *string    `json:"destination,omitempty" validate:"omitempty,url,max=2048"`
	Title          *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive       *bool      `json:"is_active,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClearExpiresAt bool       `json:"clear_expires_at,omitempty"`
}

type ListShortLinksResponse struct {
	Items      []ShortLinkDTO `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

type QRCodeRequest struct {
	Format   string `query:"format" validate:"omitempty,oneof=png svg"`
	Size     int    `query:"size" validate:"omitempty,min=64,max=2048"`
	Download bool   `query:"download"`
}
