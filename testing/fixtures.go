package testing

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTestPassword is the plain password of every fixture user
const DefaultTestPassword = "TestPass123!"

var fixtureSeq atomic.Int64

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with the given role and DefaultTestPassword
func (tf *TestFixtures) CreateTestUser(role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultTestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	n := fixtureSeq.Add(1)
	user := &models.User{
		Email:        fmt.Sprintf("user.%d@example.com", n),
		Name:         utils.ToPtr(fmt.Sprintf("User %d", n)),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// ShortLinkOption tweaks a fixture short link before insert
type ShortLinkOption func(*models.ShortLink)

// WithExpiry sets the expiry of the fixture short link
func WithExpiry(at time.Time) ShortLinkOption {
	return func(s *models.ShortLink) { s.ExpiresAt = &at }
}

// Inactive disables the fixture short link
func Inactive() ShortLinkOption {
	return func(s *models.ShortLink) { s.IsActive = utils.ToPtr(false) }
}

// WithCreatedAt pins the creation time of the fixture short link
func WithCreatedAt(at time.Time) ShortLinkOption {
	return func(s *models.ShortLink) { s.CreatedAt = at.UTC(); s.UpdatedAt = at.UTC() }
}

// CreateTestShortLink inserts an active short link for code and destination
func (tf *TestFixtures) CreateTestShortLink(code, destination string, opts ...ShortLinkOption) (*models.ShortLink, error) {
	link := &models.ShortLink{
		Code:        code,
		Destination: destination,
		Title:       utils.ToPtr("Link " + code),
		IsActive:    utils.ToPtr(true),
	}
	for _, opt := range opts {
		opt(link)
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test short link %s: %w", code, err)
	}
	return link, nil
}

// CreateTestClick inserts a click for the short link at the given time
func (tf *TestFixtures) CreateTestClick(shortLinkID uint, at time.Time, device, browser string) (*models.ShortLinkClick, error) {
	click := &models.ShortLinkClick{
		ShortLinkID: shortLinkID,
		ClickedAt:   at.UTC(),
		IPAddress:   utils.ToPtr("203.0.113.7"),
	}
	if device != "" {
		click.DeviceType = &device
	}
	if browser != "" {
		click.Browser = &browser
	}

	if err := tf.DB.DB.Create(click).Error; err != nil {
		return nil, fmt.Errorf("failed to create test click: %w", err)
	}
	return click, nil
}

// CreateTestTheme inserts a theme with a minimal css_vars map
func (tf *TestFixtures) CreateTestTheme(name string, active bool) (*models.Theme, error) {
	theme := &models.Theme{
		Name:        name,
		DisplayName: name,
		CSSVars:     models.JSONMap{"--color-primary": "#000000"},
		IsActive:    utils.ToPtr(active),
	}
	if err := tf.DB.DB.Create(theme).Error; err != nil {
		return nil, fmt.Errorf("failed to create test theme %s: %w", name, err)
	}
	return theme, nil
}
