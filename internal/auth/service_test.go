package auth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/angelmondragon/restaurant-reviews/internal/users"
	pkgAuth "github.com/angelmondragon/restaurant-reviews/pkg/auth"
	"github.com/angelmondragon/restaurant-reviews/pkg/config"
	"github.com/angelmondragon/restaurant-reviews/pkg/db"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/dbtest"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testJWT      = config.JWTConfig{Secret: "secret", Issuer: "restaurant-reviews", ExpirationMinutes: 1440}
	testPassword = config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := db.NewFromGorm(dbtest.Open(t))
	svc, err := NewService(ServiceParams{
		DB:             client,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	require.NoError(t, err)
	return svc, client
}

func TestRegisterIssuesTokenWithDefaultRole(t *testing.T) {
	svc, client := newTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{Email: " A@X.com ", Password: "pw123456", Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "a@x.com", resp.User.Auth.Email)
	assert.Equal(t, []string{"user"}, resp.User.Auth.Roles)
	assert.True(t, resp.User.Metadata.Active)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.True(t, claims.Roles.Has(enums.RoleUser))

	stored, err := users.NewRepository(client.DB()).FindByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw123456", Name: "Ana"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "A@x.com ", Password: "otherpass", Name: "Ana 2"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "El usuario ya existe", typed.Message())
	assert.Equal(t, 400, pkgerrors.MetadataFor(typed.Code()).HTTPStatus)
}

func TestRegisterConcurrentSameEmailCreatesOneUser(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, RegisterRequest{Email: "race@x.com", Password: "pw123456", Name: "Racer"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)

	list, err := users.NewRepository(client.DB()).List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "123", Name: "Ana"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123456", Name: "  "})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestLoginStampsLastLoginAndReactivates(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw123456", Name: "Ana"})
	require.NoError(t, err)
	assert.Nil(t, registered.User.Metadata.LastLogin)

	repo := users.NewRepository(client.DB())
	require.NoError(t, repo.Deactivate(ctx, registered.User.ID))

	resp, err := svc.Login(ctx, LoginRequest{Email: " A@X.COM", Password: "pw123456"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User.Metadata.LastLogin)
	assert.True(t, resp.User.Metadata.Active)

	stored, err := repo.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw123456", Name: "Ana"})
	require.NoError(t, err)

	cases := []LoginRequest{
		{Email: "a@x.com", Password: "wrong-pass"},
		{Email: "nobody@x.com", Password: "pw123456"},
		{Email: "", Password: "pw123456"},
	}
	for _, req := range cases {
		_, err := svc.Login(ctx, req)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "email %q", req.Email)
		assert.Equal(t, pkgerrors.CodeInvalidCredentials, typed.Code())
		assert.Equal(t, "Credenciales inválidas", typed.Message())
	}
}

func TestLoginAcceptsLegacyBcryptHash(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.NewRepository(client.DB()).Create(ctx, users.CreateUserDTO{
		Email:        "old@x.com",
		PasswordHash: string(hash),
		Name:         "Old",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "old@x.com", Password: "legacy-pass"})
	require.NoError(t, err)
	assert.Equal(t, "old@x.com", resp.User.Auth.Email)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{JWTConfig: testJWT})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{DB: db.NewFromGorm(dbtest.Open(t))})
	assert.Error(t, err)
}

func TestDummyHashFollowsPasswordConfig(t *testing.T) {
	svc, _ := newTestService(t)
	impl, ok := svc.(*service)
	require.True(t, ok)
	assert.Contains(t, impl.dummyHash, "$m=8192,t=1,p=1$")
}
