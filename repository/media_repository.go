package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/masuk10/models"
	"gorm.io/gorm"
)

// MediaRepositoryImpl implements MediaRepository
type MediaRepositoryImpl struct {
	*BaseRepository[models.Media, models.MediaFilter]
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &MediaRepositoryImpl{BaseRepository: NewBaseRepository[models.Media, models.MediaFilter](db)}
}

func (r *MediaRepositoryImpl) applyFilter(query *gorm.DB, filter models.MediaFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Filename != nil {
		query = query.Where("filename = ?", *filter.Filename)
	}
	if filter.Search != nil && *filter.Search != "" {
		query = query.Where("(LOWER(original_filename) LIKE ? OR LOWER(filename) LIKE ?)", likePattern(*filter.Search), likePattern(*filter.Search))
	}
	if filter.UploadedBy != nil {
		query = query.Where("uploaded_by = ?", *filter.UploadedBy)
	}
	return query
}

func (r *MediaRepositoryImpl) ByFilter(ctx context.Context, filter models.MediaFilter, orderBy string, limit, offset int) ([]*models.Media, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.Media{}), filter), orderBy, limit, offset)

	var rows []*models.Media
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return rows, nil
}

func (r *MediaRepositoryImpl) Count(ctx context.Context, filter models.MediaFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Media{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return count, nil
}

func (r *MediaRepositoryImpl) Exists(ctx context.Context, filter models.MediaFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *MediaRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.DeleteByID(ctx, id)
}
