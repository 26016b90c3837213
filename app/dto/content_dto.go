package dto

type LandingContentDTO struct {
	ID        uint   `json:"id"`
	Section   string `json:"section" example:"hero"`
	Key       string `json:"key" example:"title"`
	Value     string `json:"value" example:"Masuk10"`
	Language  string `json:"language" example:"ms"`
	UpdatedBy *uint  `json:"updated_by,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type GetContentRequest struct {
	Section  string `query:"section" validate:"omitempty,max=100"`
	Language string `query:"language" validate:"omitempty,max=10"`
}

// ContentResponse groups values as section -> key -> value next to the raw rows
type ContentResponse struct {
	Grouped map[string]map[string]string `json:"grouped"`
	Raw     []LandingContentDTO          `json:"raw"`
}

type UpsertContentRequest struct {
	Section  string `json:"section" validate:"required,max=100"`
	Key      string `json:"key" validate:"required,max=100"`
	Value    string `json:"value" validate:"required"`
	Language string `json:"language,omitempty" validate:"omitempty,max=10"`
}
