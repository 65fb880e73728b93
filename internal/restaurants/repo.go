package restaurants

import (
	"context"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists restaurants. It never writes the rating columns.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// Exists reports whether a restaurant with id is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the restaurant with an empty rating summary.
func (r *Repository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	restaurant.RatingAverage = 0
	restaurant.RatingCount = 0
	return r.db.WithContext(ctx).
		Omit("rating_average", "rating_count").
		Create(restaurant).Error
}

// Update writes the admin-editable columns.
func (r *Repository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	res := r.db.WithContext(ctx).
		Model(restaurant).
		Select("name", "image", "location", "contact_phone", "contact_email", "contact_website", "tags", "updated_at").
		Updates(restaurant)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the restaurant. Its reviews are left in place.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Restaurant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
