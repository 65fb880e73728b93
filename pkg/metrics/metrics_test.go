package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRatingMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRatingMetrics(reg)
	m.Observe(ResultOK, 20*time.Millisecond)
	m.Observe(ResultOK, 30*time.Millisecond)
	m.Observe(ResultNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "rating_recompute_total", map[string]string{"result": ResultOK}); err != nil {
		t.Fatalf("fetch ok: %v", err)
	} else if got != 2 {
		t.Fatalf("expected ok=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "rating_recompute_total", map[string]string{"result": ResultNotFound}); err != nil {
		t.Fatalf("fetch not_found: %v", err)
	} else if got != 1 {
		t.Fatalf("expected not_found=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "rating_recompute_duration_seconds")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("expected a single duration histogram")
	}
	if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 3 {
		t.Fatalf("expected 3 samples, got %d", count)
	}
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest(http.MethodGet, "/api/restaurants/{id}", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/restaurants/{id}", http.StatusNotFound, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	labels := map[string]string{"method": "GET", "route": "/api/restaurants/{id}", "status": "404"}
	if got, err := fetchCounterValue(mfs, "http_requests_total", labels); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 request, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "unknown"}); err != nil {
		t.Fatalf("expected empty route to be labelled unknown: %v", err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewRatingMetrics(nil).Observe(ResultError, time.Second)
	NewHTTPMetrics(nil).ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Second)

	var nilRatings *RatingMetrics
	nilRatings.Observe(ResultOK, time.Second)
	var nilHTTP *HTTPMetrics
	nilHTTP.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, label := range pairs {
			if label.GetName() == name && label.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
