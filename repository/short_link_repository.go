package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// ShortLinkRepositoryImpl implements ShortLinkRepository
type ShortLinkRepositoryImpl struct {
	*BaseRepository[models.ShortLink, models.ShortLinkFilter]
}

func NewShortLinkRepository(db *gorm.DB) ShortLinkRepository {
	return &ShortLinkRepositoryImpl{BaseRepository: NewBaseRepository[models.ShortLink, models.ShortLinkFilter](db)}
}

// ByCode does an exact, case-sensitive lookup.
func (r *ShortLinkRepositoryImpl) ByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	db := r.getDB(ctx)
	var row models.ShortLink
	if err := db.Where("code = ?", code).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find short link by code: %w", err)
	}
	return &row, nil
}

func (r *ShortLinkRepositoryImpl) applyFilter(db *gorm.DB, f models.ShortLinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("short_links.id = ?", *f.ID)
	}
	if f.Code != nil {
		db = db.Where("short_links.code = ?", *f.Code)
	}
	if f.IsActive != nil {
		db = db.Where("short_links.is_active = ?", *f.IsActive)
	}
	if f.CreatedBy != nil {
		db = db.Where("short_links.created_by = ?", *f.CreatedBy)
	}
	if f.Search != nil && *f.Search != "" {
		p := likePattern(*f.Search)
		db = db.Where("(LOWER(short_links.code) LIKE ? OR LOWER(short_links.title) LIKE ? OR LOWER(short_links.destination) LIKE ?)", p, p, p)
	}
	if f.CreatedAfter != nil {
		db = db.Where("short_links.created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("short_links.created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ShortLinkRepositoryImpl) ByFilter(ctx context.Context, filter models.ShortLinkFilter, orderBy string, limit, offset int) ([]*models.ShortLink, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.ShortLink{}), filter), orderBy, limit, offset)
	var rows []*models.ShortLink
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}
	return rows, nil
}

// ListWithClicks returns short links with their total click count.
func (r *ShortLinkRepositoryImpl) ListWithClicks(ctx context.Context, filter models.ShortLinkFilter, orderBy string, limit, offset int) ([]*models.ShortLinkWithClicks, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ShortLink{}).
		Select("short_links.*, COUNT(short_link_clicks.id) AS click_count").
		Joins("LEFT JOIN short_link_clicks ON short_link_clicks.short_link_id = short_links.id").
		Group("short_links.id")
	query = paginate(r.applyFilter(query, filter), orderBy, limit, offset)

	var rows []*models.ShortLinkWithClicks
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list short links with clicks: %w", err)
	}
	return rows, nil
}

func (r *ShortLinkRepositoryImpl) Count(ctx context.Context, filter models.ShortLinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShortLink{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count short links: %w", err)
	}
	return count, nil
}

func (r *ShortLinkRepositoryImpl) Exists(ctx context.Context, filter models.ShortLinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Update writes the mutable fields only. Code is never updated.
func (r *ShortLinkRepositoryImpl) Update(ctx context.Context, link *models.ShortLink) error {
	return r.write(ctx, func(db *gorm.DB) error {
		link.UpdatedAt = utils.UTCNow()
		err := db.Model(&models.ShortLink{}).
			Where("id = ?", link.ID).
			Updates(map[string]any{
				"destination": link.Destination,
				"title":       link.Title,
				"description": link.Description,
				"is_active":   utils.IsTrue(link.IsActive),
				"expires_at":  link.ExpiresAt,
				"updated_at":  link.UpdatedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update short link %d: %w", link.ID, err)
		}
		return nil
	})
}

// DeleteWithClicks removes the clicks of a short link and then the link itself.
func (r *ShortLinkRepositoryImpl) DeleteWithClicks(ctx context.Context, id uint) error {
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.Where("short_link_id = ?", id).Delete(&models.ShortLinkClick{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks of short link %d: %w", id, err)
		}
		if err := db.Delete(&models.ShortLink{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete short link %d: %w", id, err)
		}
		return nil
	})
}
