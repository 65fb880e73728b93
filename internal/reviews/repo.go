package reviews

import (
	"context"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const joinedColumns = "reviews.*, restaurants.name AS restaurant_name, users.name AS author_name"

// Repository persists reviews.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// FindOwned loads a review only when userID authored it. A foreign review and a
// missing one both yield gorm.ErrRecordNotFound.
func (r *Repository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update writes rating, comment and images for an owned review.
func (r *Repository) Update(ctx context.Context, review *models.Review) error {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND user_id = ?", review.ID, review.UserID).
		Updates(map[string]any{
			"rating":  review.Rating,
			"comment": review.Comment,
			"images":  review.Images,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOwned removes a review authored by userID.
func (r *Repository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListWithNames returns every review with its restaurant and author names.
func (r *Repository) ListWithNames(ctx context.Context) ([]models.ReviewWithNames, error) {
	var rows []models.ReviewWithNames
	err := r.joined(ctx).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByRestaurantWithNames returns the reviews of one restaurant.
func (r *Repository) ListByRestaurantWithNames(ctx context.Context, restaurantID uuid.UUID) ([]models.ReviewWithNames, error) {
	var rows []models.ReviewWithNames
	err := r.joined(ctx).
		Where("reviews.restaurant_id = ?", restaurantID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reviews").
		Select(joinedColumns).
		Joins("LEFT JOIN restaurants ON restaurants.id = reviews.restaurant_id").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Order("reviews.created_at DESC").
		Order("reviews.id")
}
