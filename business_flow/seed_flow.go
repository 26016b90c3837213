package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type defaultContent struct {
	section, key, value string
}

var defaultLandingContent = []defaultContent{
	{"hero", "title", "Masuk10"},
	{"hero", "subtitle", "Platform Gaming & Link Pendek Terbaik"},
	{"hero", "description", "Dapatkan tips gaming terkini dan cipta shortlink dalam sekelip mata"},
	{"hero", "cta_text", "Mulakan Sekarang"},
	{"hero", "cta_url", "https://wa.me/60123456789"},
	{"features", "title", "Kenapa Pilih Masuk10?"},
	{"features", "feature1_title", "Tips Gaming Terkini"},
	{"features", "feature1_desc", "Dapatkan strategi dan tips terbaik untuk game popular"},
	{"features", "feature2_title", "Shortlink Pantas"},
	{"features", "feature2_desc", "Cipta link pendek dalam sekelip mata"},
	{"features", "feature3_title", "Analytics Lengkap"},
	{"features", "feature3_desc", "Track clicks dan performance shortlink anda"},
	{"footer", "tagline", "© 2026 Masuk10. Platform Gaming Terpercaya."},
}

// SeedResult counts what a seed run changed.
type SeedResult struct {
	AdminCreated   bool
	ContentCreated int
	ThemesCreated  int
	ActivatedTheme string
}

// SeedFlow brings an empty database to a usable state. Every step is idempotent.
type SeedFlow interface {
	Seed(ctx context.Context, adminEmail, adminPassword string) (*SeedResult, error)
}

type SeedFlowImpl struct {
	userRepo    repository.UserRepository
	contentRepo repository.LandingContentRepository
	themeRepo   repository.ThemeRepository
	bcryptCost  int
	logger      *zap.Logger
}

func NewSeedFlow(
	userRepo repository.UserRepository,
	contentRepo repository.LandingContentRepository,
	themeRepo repository.ThemeRepository,
	bcryptCost int,
	logger *zap.Logger,
) SeedFlow {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedFlowImpl{
		userRepo:    userRepo,
		contentRepo: contentRepo,
		themeRepo:   themeRepo,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

func (f *SeedFlowImpl) Seed(ctx context.Context, adminEmail, adminPassword string) (*SeedResult, error) {
	result := &SeedResult{}

	admin, created, err := f.seedAdmin(ctx, adminEmail, adminPassword)
	if err != nil {
		return nil, err
	}
	result.AdminCreated = created

	if result.ContentCreated, err = f.seedContent(ctx, admin.ID); err != nil {
		return nil, err
	}
	if result.ThemesCreated, result.ActivatedTheme, err = f.seedThemes(ctx); err != nil {
		return nil, err
	}

	f.logger.Info("seed complete",
		zap.String("admin_email", admin.Email),
		zap.Bool("admin_created", result.AdminCreated),
		zap.Int("content_created", result.ContentCreated),
		zap.Int("themes_created", result.ThemesCreated),
		zap.String("activated_theme", result.ActivatedTheme),
	)
	return result, nil
}

// seedAdmin creates the admin or resets the password of an existing account.
func (f *SeedFlowImpl) seedAdmin(ctx context.Context, email, password string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, false, NewBusinessError("SEED_ADMIN_FAILED", "Admin email and password are required", ErrInvalidEmail)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), f.bcryptCost)
	if err != nil {
		return nil, false, NewBusinessError("SEED_ADMIN_FAILED", "Failed to hash admin password", err)
	}

	existing, err := f.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, false, NewBusinessError("SEED_ADMIN_FAILED", "Failed to lookup admin", err)
	}
	if existing != nil {
		if err := f.userRepo.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			return nil, false, NewBusinessError("SEED_ADMIN_FAILED", "Failed to reset admin password", err)
		}
		return existing, false, nil
	}

	admin := &models.User{
		Email:        email,
		Name:         utils.ToPtr("Admin"),
		PasswordHash: string(hash),
		Role:         utils.RoleAdmin,
		IsActive:     utils.ToPtr(true),
	}
	if err := f.userRepo.Save(ctx, admin); err != nil {
		return nil, false, NewBusinessError("SEED_ADMIN_FAILED", "Failed to create admin", err)
	}
	return admin, true, nil
}

// seedContent only fills missing keys, edited copy is left alone.
func (f *SeedFlowImpl) seedContent(ctx context.Context, adminID uint) (int, error) {
	language := utils.DefaultContentLanguage
	created := 0
	for _, c := range defaultLandingContent {
		section, key := c.section, c.key
		exists, err := f.contentRepo.Exists(ctx, models.LandingContentFilter{Section: &section, Key: &key, Language: &language})
		if err != nil {
			return created, NewBusinessError("SEED_CONTENT_FAILED", "Failed to check landing content", err)
		}
		if exists {
			continue
		}
		row := &models.LandingContent{
			Section:   section,
			Key:       key,
			Value:     c.value,
			Language:  language,
			UpdatedBy: &adminID,
		}
		if err := f.contentRepo.Save(ctx, row); err != nil {
			return created, NewBusinessErrorf("SEED_CONTENT_FAILED", "Failed to create %s.%s", err, section, key)
		}
		created++
	}
	return created, nil
}

func (f *SeedFlowImpl) seedThemes(ctx context.Context) (int, string, error) {
	presets, err := ThemePresets()
	if err != nil {
		return 0, "", NewBusinessError("SEED_THEMES_FAILED", "Failed to load theme presets", err)
	}
	active, err := f.themeRepo.Active(ctx)
	if err != nil {
		return 0, "", NewBusinessError("SEED_THEMES_FAILED", "Failed to fetch active theme", err)
	}

	created := 0
	for _, p := range presets {
		existing, err := f.themeRepo.ByName(ctx, p.Name)
		if err != nil {
			return created, "", NewBusinessError("SEED_THEMES_FAILED", "Failed to check theme", err)
		}
		if existing != nil {
			continue
		}
		theme, err := p.ToTheme(false)
		if err != nil {
			return created, "", NewBusinessError("SEED_THEMES_FAILED", fmt.Sprintf("Failed to build theme %s", p.Name), err)
		}
		if err := f.themeRepo.Save(ctx, theme); err != nil {
			return created, "", NewBusinessError("SEED_THEMES_FAILED", fmt.Sprintf("Failed to create theme %s", p.Name), err)
		}
		created++
	}

	if active != nil {
		return created, "", nil
	}
	def, err := f.themeRepo.ByName(ctx, DefaultThemeName)
	if err != nil {
		return created, "", NewBusinessError("SEED_THEMES_FAILED", "Failed to fetch default theme", err)
	}
	if def == nil {
		return created, "", nil
	}
	if err := f.themeRepo.Activate(ctx, def.ID); err != nil {
		return created, "", NewBusinessError("SEED_THEMES_FAILED", "Failed to activate default theme", err)
	}
	return created, def.Name, nil
}
