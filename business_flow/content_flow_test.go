package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentFlow(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	flow := NewContentFlow(repository.NewLandingContentRepository(testDB.DB))
	ctx := context.Background()

	for _, req := range []dto.UpsertContentRequest{
		{Section: "hero", Key: "title", Value: "Masuk10"},
		{Section: "hero", Key: "cta_text", Value: "Mulakan"},
		{Section: "footer", Key: "tagline", Value: "Terpercaya"},
		{Section: "hero", Key: "title", Value: "Masuk10 EN", Language: "en"},
	} {
		_, err := flow.Upsert(ctx, &req, 3)
		require.NoError(t, err)
	}

	t.Run("UpsertOverwrites", func(t *testing.T) {
		out, err := flow.Upsert(ctx, &dto.UpsertContentRequest{Section: " hero ", Key: "title", Value: "Masuk10 Baru"}, 4)
		require.NoError(t, err)
		assert.Equal(t, "ms", out.Language)
		assert.Equal(t, "Masuk10 Baru", out.Value)
		assert.Equal(t, uint(4), *out.UpdatedBy)
		assert.NotZero(t, out.ID)

		count, err := repository.NewLandingContentRepository(testDB.DB).Count(ctx, models.LandingContentFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("GetDefaultLanguage", func(t *testing.T) {
		res, err := flow.Get(ctx, dto.GetContentRequest{})
		require.NoError(t, err)
		assert.Equal(t, map[string]map[string]string{
			"hero":   {"title": "Masuk10 Baru", "cta_text": "Mulakan"},
			"footer": {"tagline": "Terpercaya"},
		}, res.Grouped)
		require.Len(t, res.Raw, 3)
		assert.Equal(t, "footer", res.Raw[0].Section)
		assert.Equal(t, "cta_text", res.Raw[1].Key)
		assert.Equal(t, "title", res.Raw[2].Key)
	})

	t.Run("GetSectionAndLanguage", func(t *testing.T) {
		res, err := flow.Get(ctx, dto.GetContentRequest{Section: "hero", Language: "en"})
		require.NoError(t, err)
		assert.Equal(t, map[string]map[string]string{"hero": {"title": "Masuk10 EN"}}, res.Grouped)

		res, err = flow.Get(ctx, dto.GetContentRequest{Language: "id"})
		require.NoError(t, err)
		assert.Empty(t, res.Grouped)
		assert.NotNil(t, res.Raw)
	})

	t.Run("Validation", func(t *testing.T) {
		for _, req := range []*dto.UpsertContentRequest{
			nil,
			{Section: "", Key: "k", Value: "v"},
			{Section: "s", Key: "  ", Value: "v"},
			{Section: "s", Key: "k"},
		} {
			_, err := flow.Upsert(ctx, req, 1)
			assert.ErrorIs(t, err, ErrContentFieldsRequired)
		}
	})
}
