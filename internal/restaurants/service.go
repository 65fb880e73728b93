package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	notFoundMessage = "Restaurante no encontrado"
	deletedMessage  = "Restaurante eliminado"
)

// Service exposes restaurant reads to everyone and mutations to admins.
type Service interface {
	List(ctx context.Context) ([]RestaurantDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error)
	Create(ctx context.Context, identity access.Identity, req CreateRestaurantRequest) (*RestaurantDTO, error)
	Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateRestaurantRequest) (*RestaurantDTO, error)
	Delete(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error)
}

type repository interface {
	List(ctx context.Context) ([]models.Restaurant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	Create(ctx context.Context, restaurant *models.Restaurant) error
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("restaurant repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]RestaurantDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list restaurants")
	}
	out := make([]RestaurantDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error) {
	restaurant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(restaurant), nil
}

func (s *service) Create(ctx context.Context, identity access.Identity, req CreateRestaurantRequest) (*RestaurantDTO, error) {
	if err := access.RequireRole(identity, enums.RoleAdmin); err != nil {
		return nil, err
	}
	restaurant := req.toModel()
	if err := validateRequired(restaurant); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create restaurant")
	}
	return FromModel(restaurant), nil
}

func (s *service) Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateRestaurantRequest) (*RestaurantDTO, error) {
	if err := access.RequireRole(identity, enums.RoleAdmin); err != nil {
		return nil, err
	}
	restaurant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		restaurant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Images != nil {
		restaurant.Image = strings.TrimSpace(*req.Images)
	}
	if req.Location != nil {
		restaurant.Location = strings.TrimSpace(*req.Location)
	}
	if req.Contact != nil {
		applyContact(restaurant, *req.Contact)
	}
	if req.Tags != nil {
		restaurant.Tags = normalizeTags(*req.Tags)
	}
	if err := validateRequired(restaurant); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, restaurant); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update restaurant")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error) {
	if err := access.RequireRole(identity, enums.RoleAdmin); err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete restaurant")
	}
	return deletedMessage, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load restaurant")
	}
	return restaurant, nil
}

// validateRequired rejects values that became blank after trimming.
func validateRequired(r *models.Restaurant) error {
	details := map[string]string{}
	if r.Name == "" {
		details["name"] = "is required"
	}
	if r.Image == "" {
		details["images"] = "is required"
	}
	if r.Location == "" {
		details["location"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
