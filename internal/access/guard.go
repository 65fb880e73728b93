// Package access decides whether an authenticated caller may perform an action.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgAuth "github.com/angelmondragon/restaurant-reviews/pkg/auth"
	"github.com/angelmondragon/restaurant-reviews/pkg/config"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	unauthenticatedMessage = "Por favor autentíquese"
	forbiddenMessage       = "No autorizado para esta acción"
)

// Identity is the authenticated subject of a request.
type Identity struct {
	UserID uuid.UUID
	Roles  enums.RoleSet
}

// IsZero reports whether no identity was resolved.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

func (i Identity) IsAdmin() bool {
	return i.Roles.Has(enums.RoleAdmin)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Guard resolves bearer tokens into identities backed by live user records.
type Guard struct {
	users  userLookup
	jwtCfg config.JWTConfig
}

func NewGuard(users userLookup, jwtCfg config.JWTConfig) (*Guard, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Guard{users: users, jwtCfg: jwtCfg}, nil
}

// RequireIdentity verifies the token and loads its subject. Roles come from the
// stored user, not from the token claims.
func (g *Guard) RequireIdentity(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
	}

	claims, err := pkgAuth.ParseAccessToken(g.jwtCfg, token)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, unauthenticatedMessage)
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
		}
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load identity")
	}

	return Identity{
		UserID: user.ID,
		Roles:  user.Roles.Set().OrDefault(),
	}, nil
}

// RequireRole succeeds when the identity holds at least one of the allowed roles.
func RequireRole(identity Identity, allowed ...enums.Role) error {
	if identity.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
	}
	required := enums.NewRoleSet(allowed...)
	if identity.Roles.Intersects(required) {
		return nil
	}
	return pkgerrors.New(
		pkgerrors.CodeForbidden,
		fmt.Sprintf("El usuario no tiene los roles necesarios (requeridos: %s)", required),
	)
}

// RequireSelfOrAdmin succeeds when the identity owns the resource or is an admin.
func RequireSelfOrAdmin(identity Identity, ownerID uuid.UUID) error {
	if identity.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
	}
	if identity.UserID == ownerID || identity.IsAdmin() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, forbiddenMessage)
}
