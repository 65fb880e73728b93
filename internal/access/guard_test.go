package access

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/restaurant-reviews/pkg/auth"
	"github.com/angelmondragon/restaurant-reviews/pkg/config"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	dbtypes "github.com/angelmondragon/restaurant-reviews/pkg/db/types"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "restaurant-reviews", ExpirationMinutes: 60}

type stubUsers struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func mintToken(t *testing.T, userID uuid.UUID, roles enums.RoleSet, issuedAt time.Time) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, issuedAt, pkgAuth.AccessTokenPayload{UserID: userID, Roles: roles})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRequireIdentityLoadsRolesFromUserRecord(t *testing.T) {
	user := &models.User{ID: uuid.New(), Roles: dbtypes.RoleArray{enums.RoleUser}}
	guard, err := NewGuard(stubUsers{users: map[uuid.UUID]*models.User{user.ID: user}}, testJWT)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	// the token still claims admin, but the record was demoted
	token := mintToken(t, user.ID, enums.NewRoleSet(enums.RoleAdmin), time.Now())

	identity, err := guard.RequireIdentity(context.Background(), token)
	if err != nil {
		t.Fatalf("require identity: %v", err)
	}
	if identity.UserID != user.ID {
		t.Fatalf("unexpected user %s", identity.UserID)
	}
	if identity.IsAdmin() {
		t.Fatal("roles must come from the stored user, not the token")
	}
}

func TestRequireIdentityDefaultsEmptyRoles(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	guard, _ := NewGuard(stubUsers{users: map[uuid.UUID]*models.User{user.ID: user}}, testJWT)

	identity, err := guard.RequireIdentity(context.Background(), mintToken(t, user.ID, nil, time.Now()))
	if err != nil {
		t.Fatalf("require identity: %v", err)
	}
	if !identity.Roles.Has(enums.RoleUser) || len(identity.Roles) != 1 {
		t.Fatalf("expected default user role, got %v", identity.Roles)
	}
}

func TestRequireIdentityFailures(t *testing.T) {
	known := &models.User{ID: uuid.New()}
	users := stubUsers{users: map[uuid.UUID]*models.User{known.ID: known}}
	guard, _ := NewGuard(users, testJWT)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "not.a.jwt"},
		{"expired", mintToken(t, known.ID, nil, time.Now().Add(-2*time.Hour))},
		{"unknown subject", mintToken(t, uuid.New(), nil, time.Now())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := guard.RequireIdentity(context.Background(), tc.token)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed.Message() != "Por favor autentíquese" {
				t.Fatalf("unexpected message %q", typed.Message())
			}
		})
	}
}

func TestRequireIdentityRepositoryFailureIsInternal(t *testing.T) {
	guard, _ := NewGuard(stubUsers{err: errors.New("db down")}, testJWT)
	_, err := guard.RequireIdentity(context.Background(), mintToken(t, uuid.New(), nil, time.Now()))
	if pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNewGuardValidatesDependencies(t *testing.T) {
	if _, err := NewGuard(nil, testJWT); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewGuard(stubUsers{}, config.JWTConfig{}); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestRequireRole(t *testing.T) {
	admin := Identity{UserID: uuid.New(), Roles: enums.NewRoleSet(enums.RoleUser, enums.RoleAdmin)}
	user := Identity{UserID: uuid.New(), Roles: enums.DefaultRoles()}

	if err := RequireRole(admin, enums.RoleAdmin); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if err := RequireRole(user, enums.RoleUser, enums.RoleAdmin); err != nil {
		t.Fatalf("user should pass when any role matches: %v", err)
	}

	err := RequireRole(user, enums.RoleAdmin)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if typed.Message() != "El usuario no tiene los roles necesarios (requeridos: admin)" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	if pkgerrors.CodeOf(RequireRole(Identity{}, enums.RoleAdmin)) != pkgerrors.CodeUnauthorized {
		t.Fatal("missing identity must be unauthorized")
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	owner := uuid.New()
	self := Identity{UserID: owner, Roles: enums.DefaultRoles()}
	other := Identity{UserID: uuid.New(), Roles: enums.DefaultRoles()}
	admin := Identity{UserID: uuid.New(), Roles: enums.NewRoleSet(enums.RoleAdmin)}

	if err := RequireSelfOrAdmin(self, owner); err != nil {
		t.Fatalf("self should pass: %v", err)
	}
	if err := RequireSelfOrAdmin(admin, owner); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if pkgerrors.CodeOf(RequireSelfOrAdmin(other, owner)) != pkgerrors.CodeForbidden {
		t.Fatal("other user must be forbidden")
	}
	if pkgerrors.CodeOf(RequireSelfOrAdmin(Identity{}, owner)) != pkgerrors.CodeUnauthorized {
		t.Fatal("missing identity must be unauthorized")
	}
}
