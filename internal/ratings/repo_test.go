package ratings

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/dbtest"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRestaurant(t *testing.T, conn *gorm.DB) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{Name: "Cafe X", Image: "https://img/cafe.png", Location: "Centro"}
	require.NoError(t, conn.Create(r).Error)
	return r
}

func seedReview(t *testing.T, conn *gorm.DB, restaurantID uuid.UUID, rating int) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Review{
		RestaurantID: restaurantID,
		UserID:       uuid.New(),
		Rating:       rating,
		Comment:      "ok",
	}).Error)
}

func TestRepositoryReviewStats(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	r := seedRestaurant(t, conn)
	other := seedRestaurant(t, conn)
	seedReview(t, conn, r.ID, 4)
	seedReview(t, conn, r.ID, 2)
	seedReview(t, conn, other.ID, 5)

	count, total, err := repo.ReviewStats(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(6), total)

	count, total, err = repo.ReviewStats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, total)
}

func TestRepositoryUpdateSummaryKeepsUpdatedAt(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	r := seedRestaurant(t, conn)
	var before models.Restaurant
	require.NoError(t, conn.First(&before, "id = ?", r.ID).Error)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.UpdateSummary(ctx, r.ID, types.RatingSummary{Average: 3, Count: 2}))

	var after models.Restaurant
	require.NoError(t, conn.First(&after, "id = ?", r.ID).Error)
	assert.Equal(t, 3.0, after.RatingAverage)
	assert.Equal(t, int64(2), after.RatingCount)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "recompute must not bump updated_at")

	// same values again still match the row
	require.NoError(t, repo.UpdateSummary(ctx, r.ID, types.RatingSummary{Average: 3, Count: 2}))
}

func TestRepositoryUpdateSummaryMissingRestaurant(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	err := repo.UpdateSummary(context.Background(), uuid.New(), types.RatingSummary{})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAggregatorAgainstDatabase(t *testing.T) {
	conn := dbtest.Open(t)
	agg, err := NewAggregator(AggregatorParams{Store: NewRepository(conn), Serialize: true})
	require.NoError(t, err)

	r := seedRestaurant(t, conn)
	seedReview(t, conn, r.ID, 4)
	seedReview(t, conn, r.ID, 2)

	summary, err := agg.Recompute(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RatingSummary{Average: 3, Count: 2}, summary)

	var stored models.Restaurant
	require.NoError(t, conn.First(&stored, "id = ?", r.ID).Error)
	assert.Equal(t, 3.0, stored.RatingAverage)
	assert.Equal(t, int64(2), stored.RatingCount)
}
