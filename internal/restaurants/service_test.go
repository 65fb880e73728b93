package restaurants

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/dbtest"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/angelmondragon/restaurant-reviews/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminIdentity = access.Identity{UserID: uuid.New(), Roles: enums.NewRoleSet(enums.RoleUser, enums.RoleAdmin)}
	userIdentity  = access.Identity{UserID: uuid.New(), Roles: enums.DefaultRoles()}
)

func strPtr(v string) *string { return &v }

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateRestaurantStartsWithEmptySummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminIdentity, CreateRestaurantRequest{
		Name:     "  Cafe X ",
		Images:   "https://img/cafe.png",
		Location: "Centro",
		Contact:  &types.Contact{Email: strPtr(" hola@cafe.x "), Phone: strPtr("  ")},
		Tags:     []string{"cafe", " cafe", "", "brunch"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Cafe X", created.Name)
	assert.Equal(t, types.RatingSummary{}, created.Rating)
	assert.Equal(t, []string{"cafe", "brunch"}, created.Tags)
	require.NotNil(t, created.Contact.Email)
	assert.Equal(t, "hola@cafe.x", *created.Contact.Email)
	assert.Nil(t, created.Contact.Phone)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, int64(0), fetched.Rating.Count)
	assert.Equal(t, 0.0, fetched.Rating.Average)
}

func TestCreateRestaurantRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	req := CreateRestaurantRequest{Name: "A", Images: "i", Location: "l"}

	_, err := svc.Create(context.Background(), userIdentity, req)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = svc.Create(context.Background(), access.Identity{}, req)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestCreateRestaurantRejectsBlankFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), adminIdentity, CreateRestaurantRequest{Name: "  ", Images: "i", Location: "l"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestUpdateRestaurantPatchesFieldsAndKeepsRating(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminIdentity, CreateRestaurantRequest{Name: "Cafe X", Images: "i", Location: "Centro", Tags: []string{"cafe"}})
	require.NoError(t, err)

	// simulate the aggregator having written a summary
	require.NoError(t, repo.db.Model(&models.Restaurant{}).Where("id = ?", created.ID).
		UpdateColumns(map[string]any{"rating_average": 4.5, "rating_count": 2}).Error)

	time.Sleep(5 * time.Millisecond)
	tags := []string{"bar"}
	updated, err := svc.Update(ctx, adminIdentity, created.ID, UpdateRestaurantRequest{
		Location: strPtr("Norte"),
		Tags:     &tags,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cafe X", updated.Name)
	assert.Equal(t, "Norte", updated.Location)
	assert.Equal(t, []string{"bar"}, updated.Tags)
	assert.Equal(t, types.RatingSummary{Average: 4.5, Count: 2}, updated.Rating)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateAndDeleteMissingRestaurant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, adminIdentity, uuid.New(), UpdateRestaurantRequest{Name: strPtr("x")})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "Restaurante no encontrado", typed.Message())

	_, err = svc.Delete(ctx, adminIdentity, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.Get(ctx, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDeleteRestaurantLeavesReviews(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminIdentity, CreateRestaurantRequest{Name: "Cafe X", Images: "i", Location: "l"})
	require.NoError(t, err)
	require.NoError(t, repo.db.Create(&models.Review{RestaurantID: created.ID, UserID: uuid.New(), Rating: 5, Comment: "great"}).Error)

	_, err = svc.Delete(ctx, userIdentity, created.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	msg, err := svc.Delete(ctx, adminIdentity, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Restaurante eliminado", msg)

	exists, err := repo.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	var orphaned int64
	require.NoError(t, repo.db.Model(&models.Review{}).Where("restaurant_id = ?", created.ID).Count(&orphaned).Error)
	assert.Equal(t, int64(1), orphaned)
}

func TestListRestaurants(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, name := range []string{"A", "B"} {
		_, err := svc.Create(ctx, adminIdentity, CreateRestaurantRequest{Name: name, Images: "i", Location: "l"})
		require.NoError(t, err)
	}
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
