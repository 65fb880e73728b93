package ratings

import (
	"context"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads review aggregates and writes restaurant rating summaries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type reviewStats struct {
	Count int64
	Total int64
}

// ReviewStats returns the number of reviews and the sum of their ratings for a restaurant.
func (r *Repository) ReviewStats(ctx context.Context, restaurantID uuid.UUID) (int64, int64, error) {
	var stats reviewStats
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS total").
		Where("restaurant_id = ?", restaurantID).
		Scan(&stats).Error
	if err != nil {
		return 0, 0, err
	}
	return stats.Count, stats.Total, nil
}

// UpdateSummary overwrites the cached summary without touching updated_at.
// Returns gorm.ErrRecordNotFound when the restaurant does not exist.
func (r *Repository) UpdateSummary(ctx context.Context, restaurantID uuid.UUID, summary types.RatingSummary) error {
	res := r.db.WithContext(ctx).
		Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		UpdateColumns(map[string]any{
			"rating_average": summary.Average,
			"rating_count":   summary.Count,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
