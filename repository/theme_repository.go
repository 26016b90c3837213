package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// ThemeRepositoryImpl implements ThemeRepository
type ThemeRepositoryImpl struct {
	*BaseRepository[models.Theme, models.ThemeFilter]
}

func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &ThemeRepositoryImpl{BaseRepository: NewBaseRepository[models.Theme, models.ThemeFilter](db)}
}

func (r *ThemeRepositoryImpl) applyFilter(query *gorm.DB, filter models.ThemeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

func (r *ThemeRepositoryImpl) ByFilter(ctx context.Context, filter models.ThemeFilter, orderBy string, limit, offset int) ([]*models.Theme, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.Theme{}), filter), orderBy, limit, offset)

	var rows []*models.Theme
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return rows, nil
}

func (r *ThemeRepositoryImpl) Count(ctx context.Context, filter models.ThemeFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Theme{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count themes: %w", err)
	}
	return count, nil
}

func (r *ThemeRepositoryImpl) Exists(ctx context.Context, filter models.ThemeFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ThemeRepositoryImpl) ByName(ctx context.Context, name string) (*models.Theme, error) {
	rows, err := r.ByFilter(ctx, models.ThemeFilter{Name: &name}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Active returns the active theme, or nil when none is active.
func (r *ThemeRepositoryImpl) Active(ctx context.Context) (*models.Theme, error) {
	active := true
	rows, err := r.ByFilter(ctx, models.ThemeFilter{IsActive: &active}, "updated_at DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// DeactivateAll clears the active flag on every theme.
func (r *ThemeRepositoryImpl) DeactivateAll(ctx context.Context) error {
	return r.write(ctx, func(db *gorm.DB) error {
		err := db.Model(&models.Theme{}).
			Where("is_active = ?", true).
			Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()}).Error
		if err != nil {
			return fmt.Errorf("failed to deactivate themes: %w", err)
		}
		return nil
	})
}

// Activate makes the theme the only active one. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *ThemeRepositoryImpl) Activate(ctx context.Context, id uint) error {
	return r.write(ctx, func(db *gorm.DB) error {
		var theme models.Theme
		if err := db.Take(&theme, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("failed to load theme %d: %w", id, err)
		}

		now := utils.UTCNow()
		if err := db.Model(&models.Theme{}).Where("id <> ? AND is_active = ?", id, true).
			Updates(map[string]any{"is_active": false, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to deactivate themes: %w", err)
		}
		if err := db.Model(&models.Theme{}).Where("id = ?", id).
			Updates(map[string]any{"is_active": true, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to activate theme %d: %w", id, err)
		}
		return nil
	})
}
