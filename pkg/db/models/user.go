package models

import (
	"time"

	dbtypes "github.com/angelmondragon/restaurant-reviews/pkg/db/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the account entity. PasswordHash never leaves the service layer.
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Email        string            `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Roles        dbtypes.RoleArray `gorm:"type:text[];column:roles;not null"`
	Name         string            `gorm:"column:name;not null"`
	Avatar       *string           `gorm:"column:avatar"`
	Active       bool              `gorm:"column:active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
