// Package ratings keeps each restaurant's cached rating summary in line with its reviews.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/angelmondragon/restaurant-reviews/pkg/logger"
	"github.com/angelmondragon/restaurant-reviews/pkg/metrics"
	"github.com/angelmondragon/restaurant-reviews/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const restaurantNotFoundMessage = "Restaurante no encontrado"

type summaryStore interface {
	ReviewStats(ctx context.Context, restaurantID uuid.UUID) (count int64, total int64, err error)
	UpdateSummary(ctx context.Context, restaurantID uuid.UUID, summary types.RatingSummary) error
}

type recomputeMetrics interface {
	Observe(result string, elapsed time.Duration)
}

// Recomputer is the aggregator surface used by review mutations.
type Recomputer interface {
	Recompute(ctx context.Context, restaurantID uuid.UUID) (types.RatingSummary, error)
}

// AggregatorParams bundles the aggregator dependencies.
// Serialize enables the per-restaurant lock; Locker overrides the default KeyedMutex.
type AggregatorParams struct {
	Store     summaryStore
	Logger    *logger.Logger
	Metrics   recomputeMetrics
	Serialize bool
	Locker    Locker
}

type Aggregator struct {
	store   summaryStore
	logg    *logger.Logger
	metrics recomputeMetrics
	locker  Locker
}

func NewAggregator(params AggregatorParams) (*Aggregator, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("summary store is required")
	}
	locker := params.Locker
	switch {
	case !params.Serialize:
		locker = noopLocker{}
	case locker == nil:
		locker = NewKeyedMutex()
	}
	m := params.Metrics
	if m == nil {
		m = (*metrics.RatingMetrics)(nil)
	}
	return &Aggregator{
		store:   params.Store,
		logg:    params.Logger,
		metrics: m,
		locker:  locker,
	}, nil
}

// Summarize derives the cached summary from a review count and rating total.
func Summarize(count, total int64) types.RatingSummary {
	if count <= 0 {
		return types.RatingSummary{}
	}
	return types.RatingSummary{
		Average: float64(total) / float64(count),
		Count:   count,
	}
}

// Recompute rebuilds the summary for one restaurant from its full review set.
// Calling it again with no review change writes the same summary.
func (a *Aggregator) Recompute(ctx context.Context, restaurantID uuid.UUID) (types.RatingSummary, error) {
	unlock := a.locker.Lock(restaurantID)
	defer unlock()

	start := time.Now()

	count, total, err := a.store.ReviewStats(ctx, restaurantID)
	if err != nil {
		return a.fail(ctx, restaurantID, start, metrics.ResultError, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review stats"))
	}

	summary := Summarize(count, total)
	if err := a.store.UpdateSummary(ctx, restaurantID, summary); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.fail(ctx, restaurantID, start, metrics.ResultNotFound, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, restaurantNotFoundMessage))
		}
		return a.fail(ctx, restaurantID, start, metrics.ResultError, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write rating summary"))
	}

	a.metrics.Observe(metrics.ResultOK, time.Since(start))
	if a.logg != nil {
		logCtx := a.logg.WithFields(a.logg.WithRestaurantID(ctx, restaurantID.String()), map[string]any{
			"rating_average": summary.Average,
			"rating_count":   summary.Count,
		})
		a.logg.Debug(logCtx, "ratings.recompute")
	}
	return summary, nil
}

func (a *Aggregator) fail(ctx context.Context, restaurantID uuid.UUID, start time.Time, result string, err error) (types.RatingSummary, error) {
	a.metrics.Observe(result, time.Since(start))
	if a.logg != nil {
		logCtx := a.logg.WithFields(a.logg.WithRestaurantID(ctx, restaurantID.String()), map[string]any{"result": result})
		a.logg.Error(logCtx, "ratings.recompute.failed", err)
	}
	return types.RatingSummary{}, err
}
