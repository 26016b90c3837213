package repository

import (
	"testing"

	"github.com/amirphl/masuk10/models"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeRepository(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	repo := NewThemeRepository(testDB.DB)
	customizations := NewThemeCustomizationRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	neon := &models.Theme{
		Name:        "cyber_neon",
		DisplayName: "Cyber Neon",
		CSSVars:     models.JSONMap{"--color-primary": "#00f0ff", "--radius-lg": "16px"},
		Animations:  models.JSONMap{"duration": 300},
		IsActive:    utils.ToPtr(true),
	}
	require.NoError(t, repo.Save(ctx, neon))
	luxury := &models.Theme{
		Name:        "dark_luxury",
		DisplayName: "Dark Luxury",
		CSSVars:     models.JSONMap{"--color-primary": "#d4af37"},
		IsActive:    utils.ToPtr(false),
	}
	require.NoError(t, repo.Save(ctx, luxury))

	t.Run("ReadsJSONColumnsBack", func(t *testing.T) {
		row, err := repo.ByID(ctx, neon.ID)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "#00f0ff", row.CSSVars["--color-primary"])
		assert.Equal(t, "16px", row.CSSVars["--radius-lg"])
		assert.Equal(t, float64(300), row.Animations["duration"])
		assert.Nil(t, row.Typography)
	})

	t.Run("ActiveAndByName", func(t *testing.T) {
		active, err := repo.Active(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, neon.ID, active.ID)

		row, err := repo.ByName(ctx, "dark_luxury")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "#d4af37", row.CSSVars["--color-primary"])

		missing, err := repo.ByName(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("ActivateKeepsOneActive", func(t *testing.T) {
		require.NoError(t, repo.Activate(ctx, luxury.ID))

		active, err := repo.Active(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, luxury.ID, active.ID)

		isActive := true
		count, err := repo.Count(ctx, models.ThemeFilter{IsActive: &isActive})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("CustomizationRoundTrip", func(t *testing.T) {
		require.NoError(t, customizations.Upsert(ctx, &models.ThemeCustomization{
			ActiveThemeID: luxury.ID,
			CustomColors:  models.JSONMap{"primary": "#111111"},
		}))

		row, err := customizations.ByActiveThemeID(ctx, luxury.ID)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "#111111", row.CustomColors["primary"])
	})
}
