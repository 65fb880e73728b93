package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	dbtypes "github.com/angelmondragon/restaurant-reviews/pkg/db/types"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID       uuid.UUID    `json:"id"`
	Auth     AuthInfo     `json:"auth"`
	Profile  ProfileInfo  `json:"profile"`
	Metadata MetadataInfo `json:"metadata"`
}

type AuthInfo struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type ProfileInfo struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

type MetadataInfo struct {
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
	Active    bool       `json:"active"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
	Roles        enums.RoleSet
}

// UpdateProfileRequest replaces the caller's display name and avatar.
type UpdateProfileRequest struct {
	Profile ProfileInput `json:"profile" validate:"required"`
}

type ProfileInput struct {
	Name   string  `json:"name" validate:"required,max=120"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID: u.ID,
		Auth: AuthInfo{
			Email: u.Email,
			Roles: u.Roles.Set().OrDefault().Strings(),
		},
		Profile: ProfileInfo{
			Name:   u.Name,
			Avatar: u.Avatar,
		},
		Metadata: MetadataInfo{
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLoginAt,
			Active:    u.Active,
		},
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		Name:         strings.TrimSpace(c.Name),
		Roles:        dbtypes.FromRoleSet(c.Roles.OrDefault()),
		Active:       true,
	}
}

// NormalizeEmail lowercases and trims so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
