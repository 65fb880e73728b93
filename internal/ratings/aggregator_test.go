package ratings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/restaurant-reviews/pkg/errors"
	"github.com/angelmondragon/restaurant-reviews/pkg/metrics"
	"github.com/angelmondragon/restaurant-reviews/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubStore struct {
	mu        sync.Mutex
	ratings   map[uuid.UUID][]int
	summaries map[uuid.UUID]types.RatingSummary
	statsErr  error
	writeErr  error
	writes    int
}

func newStubStore() *stubStore {
	return &stubStore{
		ratings:   map[uuid.UUID][]int{},
		summaries: map[uuid.UUID]types.RatingSummary{},
	}
}

func (s *stubStore) ReviewStats(_ context.Context, id uuid.UUID) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statsErr != nil {
		return 0, 0, s.statsErr
	}
	var total int64
	for _, r := range s.ratings[id] {
		total += int64(r)
	}
	return int64(len(s.ratings[id])), total, nil
}

func (s *stubStore) UpdateSummary(_ context.Context, id uuid.UUID, summary types.RatingSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.summaries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.summaries[id] = summary
	s.writes++
	return nil
}

type recordedMetrics struct {
	mu      sync.Mutex
	results []string
}

func (r *recordedMetrics) Observe(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		name  string
		count int64
		total int64
		want  types.RatingSummary
	}{
		{"no reviews", 0, 0, types.RatingSummary{}},
		{"single", 1, 4, types.RatingSummary{Average: 4, Count: 1}},
		{"mean", 2, 6, types.RatingSummary{Average: 3, Count: 2}},
		{"fractional", 3, 10, types.RatingSummary{Average: 10.0 / 3.0, Count: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summarize(tc.count, tc.total); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRecomputeWritesMean(t *testing.T) {
	store := newStubStore()
	id := uuid.New()
	store.summaries[id] = types.RatingSummary{}
	store.ratings[id] = []int{4, 2}
	rec := &recordedMetrics{}

	agg, err := NewAggregator(AggregatorParams{Store: store, Metrics: rec, Serialize: true})
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}

	summary, err := agg.Recompute(context.Background(), id)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if summary != (types.RatingSummary{Average: 3, Count: 2}) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if store.summaries[id] != summary {
		t.Fatalf("summary not persisted: %+v", store.summaries[id])
	}
	if len(rec.results) != 1 || rec.results[0] != metrics.ResultOK {
		t.Fatalf("expected one ok observation, got %v", rec.results)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	store := newStubStore()
	id := uuid.New()
	store.summaries[id] = types.RatingSummary{Average: 5, Count: 9}
	store.ratings[id] = []int{5, 4, 4}

	agg, _ := NewAggregator(AggregatorParams{Store: store})

	first, err := agg.Recompute(context.Background(), id)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := agg.Recompute(context.Background(), id)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if first != second {
		t.Fatalf("recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestRecomputeEmptyReviewSetResetsSummary(t *testing.T) {
	store := newStubStore()
	id := uuid.New()
	store.summaries[id] = types.RatingSummary{Average: 4, Count: 1}

	agg, _ := NewAggregator(AggregatorParams{Store: store})
	summary, err := agg.Recompute(context.Background(), id)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !summary.IsEmpty() || summary.Average != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestRecomputeMissingRestaurant(t *testing.T) {
	rec := &recordedMetrics{}
	agg, _ := NewAggregator(AggregatorParams{Store: newStubStore(), Metrics: rec})

	_, err := agg.Recompute(context.Background(), uuid.New())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(rec.results) != 1 || rec.results[0] != metrics.ResultNotFound {
		t.Fatalf("expected not_found observation, got %v", rec.results)
	}
}

func TestRecomputeStoreFailures(t *testing.T) {
	id := uuid.New()

	statsFail := newStubStore()
	statsFail.statsErr = errors.New("read failed")
	writeFail := newStubStore()
	writeFail.summaries[id] = types.RatingSummary{}
	writeFail.writeErr = errors.New("write failed")

	for name, store := range map[string]*stubStore{"stats": statsFail, "write": writeFail} {
		t.Run(name, func(t *testing.T) {
			rec := &recordedMetrics{}
			agg, _ := NewAggregator(AggregatorParams{Store: store, Metrics: rec})
			_, err := agg.Recompute(context.Background(), id)
			if pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
				t.Fatalf("expected internal error, got %v", err)
			}
			if len(rec.results) != 1 || rec.results[0] != metrics.ResultError {
				t.Fatalf("expected error observation, got %v", rec.results)
			}
		})
	}
}

func TestNewAggregatorRequiresStore(t *testing.T) {
	if _, err := NewAggregator(AggregatorParams{}); err == nil {
		t.Fatal("expected error without store")
	}
}

type countingLocker struct {
	mu    sync.Mutex
	calls int
}

func (c *countingLocker) Lock(uuid.UUID) func() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return func() {}
}

func TestSerializeFlagSelectsLocker(t *testing.T) {
	id := uuid.New()
	store := newStubStore()
	store.summaries[id] = types.RatingSummary{}

	locker := &countingLocker{}
	agg, _ := NewAggregator(AggregatorParams{Store: store, Serialize: true, Locker: locker})
	if _, err := agg.Recompute(context.Background(), id); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if locker.calls != 1 {
		t.Fatalf("expected locker to be used once, got %d", locker.calls)
	}

	unserialized := &countingLocker{}
	agg, _ = NewAggregator(AggregatorParams{Store: store, Serialize: false, Locker: unserialized})
	if _, err := agg.Recompute(context.Background(), id); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if unserialized.calls != 0 {
		t.Fatalf("locker must be bypassed when serialization is off")
	}
}

func TestConcurrentRecomputesConverge(t *testing.T) {
	store := newStubStore()
	id := uuid.New()
	store.summaries[id] = types.RatingSummary{}

	agg, _ := NewAggregator(AggregatorParams{Store: store, Serialize: true})

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			store.mu.Lock()
			store.ratings[id] = append(store.ratings[id], rating%5+1)
			store.mu.Unlock()
			if _, err := agg.Recompute(context.Background(), id); err != nil {
				t.Errorf("recompute: %v", err)
			}
		}(i)
	}
	wg.Wait()

	count, total, _ := store.ReviewStats(context.Background(), id)
	if got := store.summaries[id]; got != Summarize(count, total) {
		t.Fatalf("summary did not converge: %+v vs count=%d total=%d", got, count, total)
	}
}
