package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingFlowPage(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	ctx := context.Background()
	themeRepo := repository.NewThemeRepository(testDB.DB)
	customizationRepo := repository.NewThemeCustomizationRepository(testDB.DB)
	contentRepo := repository.NewLandingContentRepository(testDB.DB)
	flow := NewLandingFlow(themeRepo, customizationRepo, contentRepo)

	page, err := flow.Page(ctx)
	require.NoError(t, err)
	assert.Nil(t, page.Theme)
	assert.Empty(t, page.Content)

	content := NewContentFlow(contentRepo)
	_, err = content.Upsert(ctx, &dto.UpsertContentRequest{Section: "hero", Key: "title", Value: "Masuk10"}, 0)
	require.NoError(t, err)
	_, err = content.Upsert(ctx, &dto.UpsertContentRequest{Section: "hero", Key: "title", Value: "Masuk10 EN", Language: "en"}, 0)
	require.NoError(t, err)

	theme, err := testingutil.NewTestFixtures(testDB).CreateTestTheme("base", true)
	require.NoError(t, err)

	page, err = flow.Page(ctx)
	require.NoError(t, err)
	require.NotNil(t, page.Theme)
	assert.Equal(t, "base", page.Theme.Name)
	assert.Equal(t, "#000000", page.Theme.CSSVars["--color-primary"])
	assert.Nil(t, page.Theme.Customization)
	assert.Equal(t, map[string]map[string]string{"hero": {"title": "Masuk10"}}, page.Content)

	_, err = NewThemeFlow(themeRepo, customizationRepo, testDB.DB).
		Customize(ctx, &dto.UpsertCustomizationRequest{CustomColors: map[string]any{"primary": "#123456"}}, 0)
	require.NoError(t, err)

	page, err = flow.Page(ctx)
	require.NoError(t, err)
	require.NotNil(t, page.Theme.Customization)
	assert.Equal(t, theme.ID, page.Theme.Customization.ActiveThemeID)
	assert.Equal(t, "#123456", page.Theme.Customization.CustomColors["primary"])
}
