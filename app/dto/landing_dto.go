package dto

// LandingThemeDTO is the slice of the active theme the landing page renders with
type LandingThemeDTO struct {
	Name          string                 `json:"name"`
	DisplayName   string                 `json:"display_name"`
	CSSVars       map[string]any         `json:"css_vars"`
	Customization *ThemeCustomizationDTO `json:"customization,omitempty"`
}

type LandingPageResponse struct {
	Theme   *LandingThemeDTO             `json:"theme"`
	Content map[string]map[string]string `json:"content"`
}

type AdminEntryResponse struct {
	Section         string `json:"section" example:"admin"`
	LoginEndpoint   string `json:"login_endpoint" example:"/api/v1/auth/admin/login"`
	CaptchaEndpoint string `json:"captcha_endpoint" example:"/api/v1/auth/admin/captcha/init"`
}
