package models

import (
	"time"

	"github.com/amirphl/masuk10/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a back-office account with role ADMIN or EDITOR.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"size:36;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	Name         *string   `gorm:"size:255" json:"name,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'EDITOR';index:idx_users_role" json:"role"`

	IsActive    *bool      `gorm:"not null;default:true;index:idx_users_is_active" json:"is_active"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate ensures UUID and timestamps are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool { return u.Role == utils.RoleAdmin }

// IsActiveAdmin reports whether the user counts toward the last-admin guard.
func (u *User) IsActiveAdmin() bool { return u.IsAdmin() && utils.IsTrue(u.IsActive) }

// ValidRole reports whether role is one of the supported roles.
func ValidRole(role string) bool {
	return role == utils.RoleAdmin || role == utils.RoleEditor
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	Role          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
