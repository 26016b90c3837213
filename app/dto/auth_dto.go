package dto

type UserDTO struct {
	ID          uint    `json:"id" example:"1"`
	UUID        string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Email       string  `json:"email" example:"admin@masuk10.com"`
	Name        *string `json:"name,omitempty" example:"Admin"`
	Role        string  `json:"role" example:"ADMIN"`
	IsActive    bool    `json:"is_active" example:"true"`
	LastLoginAt *string `json:"last_login_at,omitempty" example:"2026-01-15T10:30:00Z"`
	CreatedAt   string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

type SessionDTO struct {
	AccessToken  string `json:"access_token" example:"jwt"`
	RefreshToken string `json:"refresh_token" example:"jwt"`
	ExpiresIn    int    `json:"expires_in" example:"604800"`
	TokenType    string `json:"token_type" example:"Bearer"`
}

type CaptchaInitResponse struct {
	ChallengeID       string `json:"challenge_id"`
	MasterImageBase64 string `json:"master_image_base64"`
	ThumbImageBase64  string `json:"thumb_image_base64"`
}

// AdminLoginRequest carries credentials. The captcha fields are required only when captcha is enforced.
type AdminLoginRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,max=100"`
	ChallengeID string  `json:"challenge_id,omitempty" validate:"omitempty,max=64"`
	UserAngle   float64 `json:"user_angle,omitempty"`
}

type AdminLoginResponse struct {
	User    UserDTO    `json:"user"`
	Session SessionDTO `json:"session"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
