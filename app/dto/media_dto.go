package dto

import "io"

// UploadMediaRequest contains upload details passed from handler to flow.
type UploadMediaRequest struct {
	UploadedBy       uint      `json:"-"`
	OriginalFilename string    `json:"-"`
	FileSize         int64     `json:"-"`
	ContentType      string    `json:"-"`
	File             io.Reader `json:"-"`
}

type MediaDTO struct {
	ID               uint   `json:"id"`
	Filename         string `json:"filename" example:"1760000000000-banner.png"`
	OriginalFilename string `json:"original_filename" example:"banner.png"`
	URL              string `json:"url" example:"/uploads/1760000000000-banner.png"`
	FileSize         int64  `json:"file_size"`
	MimeType         string `json:"mime_type" example:"image/png"`
	UploadedBy       *uint  `json:"uploaded_by,omitempty"`
	UploadedAt       string `json:"uploaded_at"`
}

type ListMediaRequest struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"omitempty,max=255"`
}

type ListMediaResponse struct {
	Media      []MediaDTO `json:"media"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
