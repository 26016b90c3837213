package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LandingContentRepositoryImpl implements LandingContentRepository
type LandingContentRepositoryImpl struct {
	*BaseRepository[models.LandingContent, models.LandingContentFilter]
}

func NewLandingContentRepository(db *gorm.DB) LandingContentRepository {
	return &LandingContentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LandingContent, models.LandingContentFilter](db),
	}
}

func (r *LandingContentRepositoryImpl) applyFilter(query *gorm.DB, filter models.LandingContentFilter) *gorm.DB {
	if filter.Section != nil {
		query = query.Where("section = ?", *filter.Section)
	}
	if filter.Key != nil {
		query = query.Where(clause.Eq{Column: "key", Value: *filter.Key})
	}
	if filter.Language != nil {
		query = query.Where("language = ?", *filter.Language)
	}
	return query
}

func (r *LandingContentRepositoryImpl) ByFilter(ctx context.Context, filter models.LandingContentFilter, orderBy string, limit, offset int) ([]*models.LandingContent, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.LandingContent{}), filter), orderBy, limit, offset)

	var rows []*models.LandingContent
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list landing content: %w", err)
	}
	return rows, nil
}

func (r *LandingContentRepositoryImpl) Count(ctx context.Context, filter models.LandingContentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.LandingContent{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count landing content: %w", err)
	}
	return count, nil
}

func (r *LandingContentRepositoryImpl) Exists(ctx context.Context, filter models.LandingContentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Upsert inserts or updates the row identified by (section, key, language) and reloads it.
func (r *LandingContentRepositoryImpl) Upsert(ctx context.Context, content *models.LandingContent) error {
	if content.Language == "" {
		content.Language = utils.DefaultContentLanguage
	}
	content.UpdatedAt = utils.UTCNow()

	return r.write(ctx, func(db *gorm.DB) error {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "section"}, {Name: "key"}, {Name: "language"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).Create(content).Error
		if err != nil {
			return fmt.Errorf("failed to upsert landing content %s.%s: %w", content.Section, content.Key, err)
		}

		var stored models.LandingContent
		err = db.Where(map[string]any{"section": content.Section, "key": content.Key, "language": content.Language}).Take(&stored).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("landing content %s.%s missing after upsert", content.Section, content.Key)
			}
			return fmt.Errorf("failed to reload landing content: %w", err)
		}
		*content = stored
		return nil
	})
}
