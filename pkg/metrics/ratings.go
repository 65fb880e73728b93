package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recompute outcomes used as the result label.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// RatingMetrics records summary recomputation latency and outcomes.
type RatingMetrics struct {
	duration prometheus.Histogram
	total    *prometheus.CounterVec
}

// NewRatingMetrics registers the rating metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewRatingMetrics(reg prometheus.Registerer) *RatingMetrics {
	if reg == nil {
		return &RatingMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rating_recompute_duration_seconds",
		Help:    "Duration of restaurant rating summary recomputation in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_recompute_total",
		Help: "Restaurant rating summary recomputations by result.",
	}, []string{"result"})
	reg.MustRegister(duration, total)
	return &RatingMetrics{
		duration: duration,
		total:    total,
	}
}

// Observe records one recompute attempt.
func (m *RatingMetrics) Observe(result string, elapsed time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	m.total.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
