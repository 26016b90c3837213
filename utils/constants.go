package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (7 days)
	AccessTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (30 days)
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Click field bounds
const (
	MaxClickIPLength        = 45
	MaxClickUserAgentLength = 500
	MaxClickReferrerLength  = 500
)

// Content and roles
const (
	DefaultContentLanguage = "ms"

	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"

	MinPasswordLength = 8
)
