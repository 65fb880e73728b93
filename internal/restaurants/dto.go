package restaurants

import (
	"strings"
	"time"

	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RestaurantDTO is the public restaurant shape.
type RestaurantDTO struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Images    string              `json:"images"`
	Location  string              `json:"location"`
	Contact   types.Contact       `json:"contact"`
	Tags      []string            `json:"tags"`
	Rating    types.RatingSummary `json:"rating"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// CreateRestaurantRequest is the admin payload for a new restaurant.
// There is no rating field: the summary is never client-writable.
type CreateRestaurantRequest struct {
	Name     string         `json:"name" validate:"required,max=200"`
	Images   string         `json:"images" validate:"required,max=2048"`
	Location string         `json:"location" validate:"required,max=500"`
	Contact  *types.Contact `json:"contact,omitempty"`
	Tags     []string       `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=60"`
}

// UpdateRestaurantRequest patches the fields that are present.
type UpdateRestaurantRequest struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Images   *string        `json:"images,omitempty" validate:"omitempty,max=2048"`
	Location *string        `json:"location,omitempty" validate:"omitempty,max=500"`
	Contact  *types.Contact `json:"contact,omitempty"`
	Tags     *[]string      `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=60"`
}

func FromModel(m *models.Restaurant) *RestaurantDTO {
	if m == nil {
		return nil
	}
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &RestaurantDTO{
		ID:       m.ID,
		Name:     m.Name,
		Images:   m.Image,
		Location: m.Location,
		Contact: types.Contact{
			Phone:   m.ContactPhone,
			Email:   m.ContactEmail,
			Website: m.ContactWebsite,
		},
		Tags: append([]string{}, tags...),
		Rating: types.RatingSummary{
			Average: m.RatingAverage,
			Count:   m.RatingCount,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r CreateRestaurantRequest) toModel() *models.Restaurant {
	m := &models.Restaurant{
		Name:     strings.TrimSpace(r.Name),
		Image:    strings.TrimSpace(r.Images),
		Location: strings.TrimSpace(r.Location),
		Tags:     normalizeTags(r.Tags),
	}
	if r.Contact != nil {
		applyContact(m, *r.Contact)
	}
	return m
}

func applyContact(m *models.Restaurant, c types.Contact) {
	c = c.Normalize()
	m.ContactPhone = c.Phone
	m.ContactEmail = c.Email
	m.ContactWebsite = c.Website
}

// normalizeTags trims, drops blanks and removes duplicates while keeping order.
func normalizeTags(tags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
