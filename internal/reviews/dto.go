package reviews

import (
	"strings"
	"time"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewDTO is the public review shape. Restaurant and Author are attached by
// the listing endpoints when the referenced rows still exist.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	UserID       uuid.UUID `json:"user_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Images       []string  `json:"images"`
	Date         time.Time `json:"date"`
	Restaurant   *NamedRef `json:"restaurant,omitempty"`
	Author       *NamedRef `json:"author,omitempty"`
}

// NamedRef is an id with a display name.
type NamedRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CreateReviewRequest struct {
	Rating  int      `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string   `json:"comment" validate:"required,max=2000"`
	Images  []string `json:"images,omitempty" validate:"omitempty,max=10,dive,max=2048"`
}

// UpdateReviewRequest patches the fields that are present.
type UpdateReviewRequest struct {
	Rating  *int      `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Comment *string   `json:"comment,omitempty" validate:"omitempty,max=2000"`
	Images  *[]string `json:"images,omitempty" validate:"omitempty,max=10,dive,max=2048"`
}

func FromModel(m *models.Review) *ReviewDTO {
	if m == nil {
		return nil
	}
	images := []string(m.Images)
	if images == nil {
		images = []string{}
	}
	return &ReviewDTO{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		UserID:       m.UserID,
		Rating:       m.Rating,
		Comment:      m.Comment,
		Images:       append([]string{}, images...),
		Date:         m.CreatedAt,
	}
}

// FromJoined converts a listing row, attaching whichever names were found.
func FromJoined(row *models.ReviewWithNames, withRestaurant bool) *ReviewDTO {
	dto := FromModel(&row.Review)
	if dto == nil {
		return nil
	}
	if withRestaurant && row.RestaurantName != nil {
		dto.Restaurant = &NamedRef{ID: row.RestaurantID, Name: *row.RestaurantName}
	}
	if row.AuthorName != nil {
		dto.Author = &NamedRef{ID: row.UserID, Name: *row.AuthorName}
	}
	return dto
}

func normalizeImages(images []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
