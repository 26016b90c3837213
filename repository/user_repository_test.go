package repository

import (
	"testing"
	"time"

	"github.com/amirphl/masuk10/models"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := NewUserRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	admin, err := fixtures.CreateTestUser(utils.RoleAdmin)
	require.NoError(t, err)
	editor, err := fixtures.CreateTestUser(utils.RoleEditor)
	require.NoError(t, err)

	t.Run("ByEmailNormalizes", func(t *testing.T) {
		row, err := repo.ByEmail(ctx, "  "+admin.Email+" ")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, admin.ID, row.ID)
		assert.True(t, row.IsAdmin())
	})

	t.Run("CountByRole", func(t *testing.T) {
		role := utils.RoleAdmin
		count, err := repo.Count(ctx, models.UserFilter{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("UpdateAndPassword", func(t *testing.T) {
		editor.Role = utils.RoleAdmin
		editor.Name = utils.ToPtr("Renamed")
		require.NoError(t, repo.Update(ctx, editor))
		require.NoError(t, repo.UpdatePassword(ctx, editor.ID, "new-hash"))
		at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
		require.NoError(t, repo.UpdateLastLogin(ctx, editor.ID, at))

		row, err := repo.ByID(ctx, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, utils.RoleAdmin, row.Role)
		assert.Equal(t, "Renamed", utils.StringValue(row.Name))
		assert.Equal(t, "new-hash", row.PasswordHash)
		require.NotNil(t, row.LastLoginAt)
		assert.True(t, row.LastLoginAt.Equal(at))
	})

	t.Run("DeleteDetachesShortLinks", func(t *testing.T) {
		link, err := fixtures.CreateTestShortLink("owned", "https://example.com", func(s *models.ShortLink) { s.CreatedBy = &editor.ID })
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, editor.ID))
		row, err := repo.ByID(ctx, editor.ID)
		require.NoError(t, err)
		assert.Nil(t, row)

		var stored models.ShortLink
		require.NoError(t, testDB.DB.First(&stored, link.ID).Error)
		assert.Nil(t, stored.CreatedBy)
	})
}

func TestLandingContentRepositoryUpsert(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	repo := NewLandingContentRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	first := &models.LandingContent{Section: "hero", Key: "title", Value: "Masuk10"}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, "ms", first.Language)

	second := &models.LandingContent{Section: "hero", Key: "title", Value: "Masuk10 Baru"}
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Masuk10 Baru", second.Value)

	english := &models.LandingContent{Section: "hero", Key: "title", Value: "Masuk10 New", Language: "en"}
	require.NoError(t, repo.Upsert(ctx, english))
	assert.NotEqual(t, first.ID, english.ID)

	key := "title"
	lang := "ms"
	rows, err := repo.ByFilter(ctx, models.LandingContentFilter{Key: &key, Language: &lang}, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Masuk10 Baru", rows[0].Value)
}

func TestThemeRepositoryActivate(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := NewThemeRepository(testDB.DB)
	customizations := NewThemeCustomizationRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	neon, err := fixtures.CreateTestTheme("cyber_neon", true)
	require.NoError(t, err)
	glass, err := fixtures.CreateTestTheme("glass_morphism", false)
	require.NoError(t, err)

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, neon.ID, active.ID)
	assert.Equal(t, "#000000", active.CSSVars["--color-primary"])

	require.NoError(t, repo.Activate(ctx, glass.ID))
	active, err = repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, glass.ID, active.ID)

	isActive := true
	count, err := repo.Count(ctx, models.ThemeFilter{IsActive: &isActive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Error(t, repo.Activate(ctx, 9999))

	t.Run("CustomizationUpsert", func(t *testing.T) {
		c := &models.ThemeCustomization{ActiveThemeID: glass.ID, CustomColors: models.JSONMap{"primary": "#ff0000"}}
		require.NoError(t, customizations.Upsert(ctx, c))
		firstID := c.ID

		c2 := &models.ThemeCustomization{ActiveThemeID: glass.ID, CustomFonts: models.JSONMap{"heading": "Orbitron"}}
		require.NoError(t, customizations.Upsert(ctx, c2))
		assert.Equal(t, firstID, c2.ID)
		assert.Nil(t, c2.CustomColors)
		assert.Equal(t, "Orbitron", c2.CustomFonts["heading"])

		latest, err := customizations.Latest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, firstID, latest.ID)
	})
}
