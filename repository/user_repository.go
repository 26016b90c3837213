package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db),
	}
}

// ByEmail retrieves a user by email, compared lower-cased
func (r *UserRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	users, err := r.ByFilter(ctx, models.UserFilter{Email: &normalized}, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, nil
	}

	return users[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *UserRepositoryImpl) applyFilter(query *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves users based on filter criteria
func (r *UserRepositoryImpl) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.User{}), filter), orderBy, limit, offset)

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Count returns the number of users matching the filter
func (r *UserRepositoryImpl) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.User{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// Exists checks if a user matching the filter exists
func (r *UserRepositoryImpl) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes name, role and active flag.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *models.User) error {
	return r.write(ctx, func(db *gorm.DB) error {
		user.UpdatedAt = utils.UTCNow()
		err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"name":       user.Name,
			"role":       user.Role,
			"is_active":  utils.IsTrue(user.IsActive),
			"updated_at": user.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update user %d: %w", user.ID, err)
		}
		return nil
	})
}

// UpdatePassword replaces the password hash of a user
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.write(ctx, func(db *gorm.DB) error {
		err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    utils.UTCNow(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update password of user %d: %w", userID, err)
		}
		return nil
	})
}

// UpdateLastLogin records a successful login
func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", at.UTC()).Error; err != nil {
			return fmt.Errorf("failed to update last login of user %d: %w", userID, err)
		}
		return nil
	})
}

// Delete removes a user; short links keep their rows with created_by cleared.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.write(ctx, func(db *gorm.DB) error {
		if err := db.Model(&models.ShortLink{}).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return fmt.Errorf("failed to detach short links of user %d: %w", id, err)
		}
		if err := db.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		return nil
	})
}

