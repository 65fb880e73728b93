package types

// RatingSummary is the denormalized review aggregate cached on a restaurant.
// Average is 0 whenever Count is 0.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// IsEmpty reports whether no reviews contributed to the summary.
func (r RatingSummary) IsEmpty() bool {
	return r.Count == 0
}
