package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Review links an author to a restaurant. Neither reference is enforced by a
// foreign key: deleting either side leaves the review in place.
type Review struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID      `gorm:"type:uuid;column:restaurant_id;not null;index"`
	UserID       uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index"`
	Rating       int            `gorm:"column:rating;not null"`
	Comment      string         `gorm:"column:comment;not null"`
	Images       pq.StringArray `gorm:"type:text[];column:images;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Images == nil {
		r.Images = pq.StringArray{}
	}
	return nil
}

// ReviewWithNames is a review joined with its restaurant name and author name.
// Either name is nil when the referenced row no longer exists.
type ReviewWithNames struct {
	Review
	RestaurantName *string `gorm:"column:restaurant_name"`
	AuthorName     *string `gorm:"column:author_name"`
}
