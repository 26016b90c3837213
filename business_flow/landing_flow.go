package businessflow

import (
	"context"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
)

// LandingFlow assembles the public landing payload per request.
// The active theme is read every time and handed to the caller, never kept in process state.
type LandingFlow interface {
	Page(ctx context.Context) (*dto.LandingPageResponse, error)
}

type LandingFlowImpl struct {
	themeRepo         repository.ThemeRepository
	customizationRepo repository.ThemeCustomizationRepository
	contentRepo       repository.LandingContentRepository
}

func NewLandingFlow(
	themeRepo repository.ThemeRepository,
	customizationRepo repository.ThemeCustomizationRepository,
	contentRepo repository.LandingContentRepository,
) LandingFlow {
	return &LandingFlowImpl{
		themeRepo:         themeRepo,
		customizationRepo: customizationRepo,
		contentRepo:       contentRepo,
	}
}

func (f *LandingFlowImpl) Page(ctx context.Context) (*dto.LandingPageResponse, error) {
	language := utils.DefaultContentLanguage
	rows, err := f.contentRepo.ByFilter(ctx, models.LandingContentFilter{Language: &language}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("FETCH_CONTENT_FAILED", "Failed to fetch content", err)
	}
	resp := &dto.LandingPageResponse{Content: GroupContent(rows)}

	theme, err := f.themeRepo.Active(ctx)
	if err != nil {
		return nil, NewBusinessError("FETCH_THEME_FAILED", "Failed to fetch active theme", err)
	}
	if theme == nil {
		return resp, nil
	}

	landingTheme := &dto.LandingThemeDTO{
		Name:        theme.Name,
		DisplayName: theme.DisplayName,
		CSSVars:     theme.CSSVars,
	}
	customization, err := f.customizationRepo.ByActiveThemeID(ctx, theme.ID)
	if err != nil {
		return nil, NewBusinessError("FETCH_THEME_FAILED", "Failed to fetch theme customization", err)
	}
	if customization != nil {
		c := ToThemeCustomizationDTO(*customization)
		landingTheme.Customization = &c
	}
	resp.Theme = landingTheme
	return resp, nil
}
