package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Restaurant is administered by admins; the Rating* columns are written only
// by the rating aggregator.
type Restaurant struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name           string         `gorm:"column:name;not null"`
	Image          string         `gorm:"column:image;not null"`
	Location       string         `gorm:"column:location;not null"`
	ContactPhone   *string        `gorm:"column:contact_phone"`
	ContactEmail   *string        `gorm:"column:contact_email"`
	ContactWebsite *string        `gorm:"column:contact_website"`
	Tags           pq.StringArray `gorm:"type:text[];column:tags;not null"`
	RatingAverage  float64        `gorm:"column:rating_average;not null;default:0"`
	RatingCount    int64          `gorm:"column:rating_count;not null;default:0"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Tags == nil {
		r.Tags = pq.StringArray{}
	}
	return nil
}
