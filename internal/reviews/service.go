// Package reviews owns the review lifecycle. Every successful mutation is
// followed by a rating recompute for the affected restaurant.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/internal/ratings"
	"github.com/angelmondragon/restaurant-reviews/pkg/db/models"
	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/angelmondragon/restaurant-reviews/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	restaurantNotFoundMessage = "Restaurante no encontrado"
	notOwnedMessage           = "Reseña no encontrada o no autorizado"
	deletedMessage            = "Reseña eliminada"
	unauthenticatedMessage    = "Por favor autentíquese"
)

type Service interface {
	List(ctx context.Context) ([]ReviewDTO, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]ReviewDTO, error)
	Create(ctx context.Context, identity access.Identity, restaurantID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error)
	Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error)
	Delete(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error)
}

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
	ListWithNames(ctx context.Context) ([]models.ReviewWithNames, error)
	ListByRestaurantWithNames(ctx context.Context, restaurantID uuid.UUID) ([]models.ReviewWithNames, error)
}

type restaurantChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ServiceParams wires the review service.
type ServiceParams struct {
	Repo        repository
	Restaurants restaurantChecker
	Ratings     ratings.Recomputer
	Logger      *logger.Logger
}

type service struct {
	repo        repository
	restaurants restaurantChecker
	ratings     ratings.Recomputer
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if params.Restaurants == nil {
		return nil, fmt.Errorf("restaurant checker is required")
	}
	if params.Ratings == nil {
		return nil, fmt.Errorf("rating recomputer is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        params.Repo,
		restaurants: params.Restaurants,
		ratings:     params.Ratings,
		logg:        logg,
	}, nil
}

func (s *service) List(ctx context.Context) ([]ReviewDTO, error) {
	rows, err := s.repo.ListWithNames(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return joinedDTOs(rows, true), nil
}

func (s *service) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByRestaurantWithNames(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list restaurant reviews")
	}
	return joinedDTOs(rows, false), nil
}

func (s *service) Create(ctx context.Context, identity access.Identity, restaurantID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	if identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
	}

	review := &models.Review{
		RestaurantID: restaurantID,
		UserID:       identity.UserID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		Images:       normalizeImages(req.Images),
	}
	if err := validateReview(review); err != nil {
		return nil, err
	}

	exists, err := s.restaurants.Exists(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check restaurant")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, restaurantNotFoundMessage)
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	s.recompute(ctx, restaurantID)
	return FromModel(review), nil
}

func (s *service) Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error) {
	if identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
	}
	review, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = strings.TrimSpace(*req.Comment)
	}
	if req.Images != nil {
		review.Images = normalizeImages(*req.Images)
	}
	if err := validateReview(review); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFoundOrUnauthorized, notOwnedMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update review")
	}
	s.recompute(ctx, review.RestaurantID)

	fresh, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return FromModel(fresh), nil
}

func (s *service) Delete(ctx context.Context, identity access.Identity, id uuid.UUID) (string, error) {
	if identity.IsZero() {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, unauthenticatedMessage)
	}
	review, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return "", err
	}
	if err := s.repo.DeleteOwned(ctx, review.ID, identity.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFoundOrUnauthorized, notOwnedMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	s.recompute(ctx, review.RestaurantID)
	return deletedMessage, nil
}

func (s *service) loadOwned(ctx context.Context, identity access.Identity, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.FindOwned(ctx, id, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFoundOrUnauthorized, notOwnedMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	return review, nil
}

// recompute refreshes the restaurant summary. The review change is already
// committed, so a failure here is logged and left for the next mutation.
func (s *service) recompute(ctx context.Context, restaurantID uuid.UUID) {
	if _, err := s.ratings.Recompute(ctx, restaurantID); err != nil {
		logCtx := s.logg.WithRestaurantID(ctx, restaurantID.String())
		s.logg.Error(logCtx, "reviews.recompute_failed", err)
	}
}

func validateReview(review *models.Review) error {
	details := map[string]string{}
	if review.Rating < minRating || review.Rating > maxRating {
		details["rating"] = fmt.Sprintf("must be between %d and %d", minRating, maxRating)
	}
	if review.Comment == "" {
		details["comment"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func joinedDTOs(rows []models.ReviewWithNames, withRestaurant bool) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromJoined(&rows[i], withRestaurant))
	}
	return out
}
