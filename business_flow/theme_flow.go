package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"gorm.io/gorm"
)

// ThemeFlow manages landing themes. At most one theme is active at a time.
type ThemeFlow interface {
	List(ctx context.Context) ([]dto.ThemeDTO, error)
	Create(ctx context.Context, req *dto.CreateThemeRequest) (*dto.ThemeDTO, error)
	Active(ctx context.Context) (*dto.ActiveThemeResponse, error)
	Activate(ctx context.Context, req *dto.ActivateThemeRequest) (*dto.ThemeDTO, error)
	Customization(ctx context.Context) (*dto.ThemeCustomizationDTO, error)
	Customize(ctx context.Context, req *dto.UpsertCustomizationRequest, userID uint) (*dto.ThemeCustomizationDTO, error)
}

type ThemeFlowImpl struct {
	themeRepo         repository.ThemeRepository
	customizationRepo repository.ThemeCustomizationRepository
	db                *gorm.DB
}

func NewThemeFlow(themeRepo repository.ThemeRepository, customizationRepo repository.ThemeCustomizationRepository, db *gorm.DB) ThemeFlow {
	return &ThemeFlowImpl{
		themeRepo:         themeRepo,
		customizationRepo: customizationRepo,
		db:                db,
	}
}

func (f *ThemeFlowImpl) List(ctx context.Context) ([]dto.ThemeDTO, error) {
	themes, err := f.themeRepo.ByFilter(ctx, models.ThemeFilter{}, "created_at ASC, id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_THEMES_FAILED", "Failed to list themes", err)
	}
	out := make([]dto.ThemeDTO, 0, len(themes))
	for _, t := range themes {
		out = append(out, ToThemeDTO(*t))
	}
	return out, nil
}

func (f *ThemeFlowImpl) Create(ctx context.Context, req *dto.CreateThemeRequest) (*dto.ThemeDTO, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.DisplayName) == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "Name and display_name are required", nil)
	}
	if len(req.CSSVars) == 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "css_vars is required", ErrThemeCSSVarsEmpty)
	}

	name := strings.TrimSpace(req.Name)
	existing, err := f.themeRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("CREATE_THEME_FAILED", "Failed to check theme name", err)
	}
	if existing != nil {
		return nil, NewBusinessErrorf("THEME_ALREADY_EXISTS", "Theme %q already exists", ErrThemeAlreadyExists, name)
	}

	active := req.IsActive
	theme := &models.Theme{
		Name:        name,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Description: trimmedPtr(req.Description),
		PreviewURL:  trimmedPtr(req.PreviewURL),
		CSSVars:     req.CSSVars,
		Animations:  req.Animations,
		Typography:  req.Typography,
		IsActive:    &active,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if active {
			if err := f.themeRepo.DeactivateAll(txCtx); err != nil {
				return err
			}
		}
		return f.themeRepo.Save(txCtx, theme)
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_THEME_FAILED", "Failed to create theme", err)
	}

	out := ToThemeDTO(*theme)
	return &out, nil
}

func (f *ThemeFlowImpl) Active(ctx context.Context) (*dto.ActiveThemeResponse, error) {
	theme, err := f.themeRepo.Active(ctx)
	if err != nil {
		return nil, NewBusinessError("FETCH_THEME_FAILED", "Failed to fetch active theme", err)
	}
	if theme == nil {
		return nil, NewBusinessError("NO_ACTIVE_THEME", "No active theme", ErrNoActiveTheme)
	}

	resp := &dto.ActiveThemeResponse{Theme: ToThemeDTO(*theme)}
	customization, err := f.customizationRepo.ByActiveThemeID(ctx, theme.ID)
	if err != nil {
		return nil, NewBusinessError("FETCH_THEME_FAILED", "Failed to fetch theme customization", err)
	}
	if customization != nil {
		c := ToThemeCustomizationDTO(*customization)
		resp.Customization = &c
	}
	return resp, nil
}

func (f *ThemeFlowImpl) Activate(ctx context.Context, req *dto.ActivateThemeRequest) (*dto.ThemeDTO, error) {
	if req == nil || req.ThemeID == 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "theme_id is required", nil)
	}
	if err := f.themeRepo.Activate(ctx, req.ThemeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBusinessError("THEME_NOT_FOUND", "Theme not found", ErrThemeNotFound)
		}
		return nil, NewBusinessError("ACTIVATE_THEME_FAILED", "Failed to activate theme", err)
	}

	theme, err := f.themeRepo.ByID(ctx, req.ThemeID)
	if err != nil {
		return nil, NewBusinessError("FETCH_THEME_FAILED", "Failed to fetch theme", err)
	}
	if theme == nil {
		return nil, NewBusinessError("THEME_NOT_FOUND", "Theme not found", ErrThemeNotFound)
	}
	out := ToThemeDTO(*theme)
	return &out, nil
}

// Customization returns the most recently updated customization, nil when there is none.
func (f *ThemeFlowImpl) Customization(ctx context.Context) (*dto.ThemeCustomizationDTO, error) {
	c, err := f.customizationRepo.Latest(ctx)
	if err != nil {
		return nil, NewBusinessError("FETCH_CUSTOMIZATION_FAILED", "Failed to fetch theme customization", err)
	}
	if c == nil {
		return nil, nil
	}
	out := ToThemeCustomizationDTO(*c)
	return &out, nil
}

// Customize upserts the overrides attached to the active theme.
func (f *ThemeFlowImpl) Customize(ctx context.Context, req *dto.UpsertCustomizationRequest, userID uint) (*dto.ThemeCustomizationDTO, error) {
	if req == nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Request body is required", nil)
	}
	theme, err := f.themeRepo.Active(ctx)
	if err != nil {
		return nil, NewBusinessError("FETCH_THEME_FAILED", "Failed to fetch active theme", err)
	}
	if theme == nil {
		return nil, NewBusinessError("NO_ACTIVE_THEME", "No active theme", ErrNoActiveTheme)
	}

	c := &models.ThemeCustomization{
		ActiveThemeID:    theme.ID,
		CustomColors:     req.CustomColors,
		CustomFonts:      req.CustomFonts,
		CustomSpacing:    req.CustomSpacing,
		CustomAnimations: req.CustomAnimations,
		CustomEffects:    req.CustomEffects,
	}
	if userID != 0 {
		c.UpdatedBy = &userID
	}
	if err := f.customizationRepo.Upsert(ctx, c); err != nil {
		return nil, NewBusinessError("SAVE_CUSTOMIZATION_FAILED", "Failed to save theme customization", err)
	}
	out := ToThemeCustomizationDTO(*c)
	return &out, nil
}
