package auth

import (
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Roles  enums.RoleSet
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
//
// Roles are informational only. Authorization always reloads them from the
// user record so a demotion takes effect before the token expires.
type AccessTokenClaims struct {
	UserID uuid.UUID     `json:"user_id"`
	Roles  enums.RoleSet `json:"roles,omitempty"`
	jwt.RegisteredClaims
}
