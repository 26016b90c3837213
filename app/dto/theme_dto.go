package dto

type ThemeDTO struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name" example:"cyber_neon"`
	DisplayName string         `json:"display_name" example:"Cyber Neon"`
	Description *string        `json:"description,omitempty"`
	PreviewURL  *string        `json:"preview_url,omitempty"`
	CSSVars     map[string]any `json:"css_vars"`
	Animations  map[string]any `json:"animations,omitempty"`
	Typography  map[string]any `json:"typography,omitempty"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

type CreateThemeRequest struct {
	Name        string         `json:"name" validate:"required,max=100"`
	DisplayName string         `json:"display_name" validate:"required,max=255"`
	Description *string        `json:"description,omitempty"`
	PreviewURL  *string        `json:"preview_url,omitempty" validate:"omitempty,url"`
	CSSVars     map[string]any `json:"css_vars" validate:"required"`
	Animations  map[string]any `json:"animations,omitempty"`
	Typography  map[string]any `json:"typography,omitempty"`
	IsActive    bool           `json:"is_active,omitempty"`
}

type ActivateThemeRequest struct {
	ThemeID uint `json:"theme_id" validate:"required,gt=0"`
}

type ThemeCustomizationDTO struct {
	ID               uint           `json:"id"`
	ActiveThemeID    uint           `json:"active_theme_id"`
	CustomColors     map[string]any `json:"custom_colors,omitempty"`
	CustomFonts      map[string]any `json:"custom_fonts,omitempty"`
	CustomSpacing    map[string]any `json:"custom_spacing,omitempty"`
	CustomAnimations map[string]any `json:"custom_animations,omitempty"`
	CustomEffects    map[string]any `json:"custom_effects,omitempty"`
	UpdatedBy        *uint          `json:"updated_by,omitempty"`
	UpdatedAt        string         `json:"updated_at"`
}

type UpsertCustomizationRequest struct {
	CustomColors     map[string]any `json:"custom_colors,omitempty"`
	CustomFonts      map[string]any `json:"custom_fonts,omitempty"`
	CustomSpacing    map[string]any `json:"custom_spacing,omitempty"`
	CustomAnimations map[string]any `json:"custom_animations,omitempty"`
	CustomEffects    map[string]any `json:"custom_effects,omitempty"`
}

type ActiveThemeResponse struct {
	Theme         ThemeDTO               `json:"theme"`
	Customization *ThemeCustomizationDTO `json:"customization,omitempty"`
}
