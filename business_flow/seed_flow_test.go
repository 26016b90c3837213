package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedFlow(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	ctx := context.Background()
	userRepo := repository.NewUserRepository(testDB.DB)
	contentRepo := repository.NewLandingContentRepository(testDB.DB)
	themeRepo := repository.NewThemeRepository(testDB.DB)
	flow := NewSeedFlow(userRepo, contentRepo, themeRepo, bcrypt.MinCost, nil)

	t.Run("EmptyDatabase", func(t *testing.T) {
		res, err := flow.Seed(ctx, "Admin@Masuk10.com", "first-password")
		require.NoError(t, err)
		assert.True(t, res.AdminCreated)
		assert.Equal(t, len(defaultLandingContent), res.ContentCreated)
		assert.Equal(t, 4, res.ThemesCreated)
		assert.Equal(t, DefaultThemeName, res.ActivatedTheme)

		admin, err := userRepo.ByEmail(ctx, "admin@masuk10.com")
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.Equal(t, utils.RoleAdmin, admin.Role)

		active, err := themeRepo.Active(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, DefaultThemeName, active.Name)
	})

	t.Run("SecondRunIsIdempotent", func(t *testing.T) {
		_, err := NewContentFlow(contentRepo).Upsert(ctx, &dto.UpsertContentRequest{Section: "hero", Key: "title", Value: "Edited"}, 0)
		require.NoError(t, err)

		res, err := flow.Seed(ctx, "admin@masuk10.com", "second-password")
		require.NoError(t, err)
		assert.False(t, res.AdminCreated)
		assert.Zero(t, res.ContentCreated)
		assert.Zero(t, res.ThemesCreated)
		assert.Empty(t, res.ActivatedTheme)

		admin, err := userRepo.ByEmail(ctx, "admin@masuk10.com")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("second-password")))

		users, err := userRepo.Count(ctx, models.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), users)

		section, key := "hero", "title"
		rows, err := contentRepo.ByFilter(ctx, models.LandingContentFilter{Section: &section, Key: &key}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Edited", rows[0].Value)
	})

	t.Run("KeepsChosenTheme", func(t *testing.T) {
		luxury, err := themeRepo.ByName(ctx, "dark_luxury")
		require.NoError(t, err)
		require.NoError(t, themeRepo.Activate(ctx, luxury.ID))

		res, err := flow.Seed(ctx, "admin@masuk10.com", "second-password")
		require.NoError(t, err)
		assert.Empty(t, res.ActivatedTheme)

		active, err := themeRepo.Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dark_luxury", active.Name)
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		_, err := flow.Seed(ctx, "", "")
		assert.Equal(t, "SEED_ADMIN_FAILED", businessCode(t, err))
	})
}
