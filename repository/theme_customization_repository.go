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

// ThemeCustomizationRepositoryImpl implements ThemeCustomizationRepository
type ThemeCustomizationRepositoryImpl struct {
	*BaseRepository[models.ThemeCustomization, any]
}

func NewThemeCustomizationRepository(db *gorm.DB) ThemeCustomizationRepository {
	return &ThemeCustomizationRepositoryImpl{BaseRepository: NewBaseRepository[models.ThemeCustomization, any](db)}
}

// ByFilter: since no filter is defined, return with order/limit/offset only
func (r *ThemeCustomizationRepositoryImpl) ByFilter(ctx context.Context, _ any, orderBy string, limit, offset int) ([]*models.ThemeCustomization, error) {
	db := r.getDB(ctx)
	query := paginate(db.Model(&models.ThemeCustomization{}), orderBy, limit, offset)
	var rows []*models.ThemeCustomization
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list theme customizations: %w", err)
	}
	return rows, nil
}

func (r *ThemeCustomizationRepositoryImpl) Count(ctx context.Context, _ any) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Model(&models.ThemeCustomization{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count theme customizations: %w", err)
	}
	return count, nil
}

func (r *ThemeCustomizationRepositoryImpl) Exists(ctx context.Context, filter any) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ThemeCustomizationRepositoryImpl) ByActiveThemeID(ctx context.Context, themeID uint) (*models.ThemeCustomization, error) {
	var row models.ThemeCustomization
	if err := r.getDB(ctx).Where("active_theme_id = ?", themeID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find theme customization: %w", err)
	}
	return &row, nil
}

// Latest returns the most recently updated customization.
func (r *ThemeCustomizationRepositoryImpl) Latest(ctx context.Context) (*models.ThemeCustomization, error) {
	rows, err := r.ByFilter(ctx, nil, "updated_at DESC, id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Upsert stores the customization keyed by its active theme and reloads it.
func (r *ThemeCustomizationRepositoryImpl) Upsert(ctx context.Context, customization *models.ThemeCustomization) error {
	customization.ID = 0
	customization.UpdatedAt = utils.UTCNow()

	return r.write(ctx, func(db *gorm.DB) error {
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "active_theme_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"custom_colors", "custom_fonts", "custom_spacing",
				"custom_animations", "custom_effects", "updated_by", "updated_at",
			}),
		}).Create(customization).Error
		if err != nil {
			return fmt.Errorf("failed to upsert theme customization: %w", err)
		}

		var stored models.ThemeCustomization
		if err := db.Where("active_theme_id = ?", customization.ActiveThemeID).Take(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload theme customization: %w", err)
		}
		*customization = stored
		return nil
	})
}
