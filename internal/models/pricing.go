package models

import "time"

// PriceSnapshot is one raw observation from the price feed. The feed makes no
// guarantees: snapshots arrive unordered, possibly duplicated per day, and
// prices may be zero or negative when a listing was broken.
type PriceSnapshot struct {
	ProductID  string    `json:"product_id"`
	RecordedAt time.Time `json:"recorded_at"`
	Price      float64   `json:"price"` // USD
}

// PricePoint is one canonical daily price for a product. Day carries no
// time-of-day component (UTC midnight).
type PricePoint struct {
	Day   time.Time `json:"day"`
	Price float64   `json:"price"`
}

// PriceSeries is the canonical ascending daily series for one product:
// strictly increasing days, at most one point per day, all prices positive.
type PriceSeries struct {
	ProductID string       `json:"product_id" badgerhold:"key"`
	Points    []PricePoint `json:"points"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LastDay returns the day of the most recent point, or the zero time for an
// empty series.
func (s *PriceSeries) LastDay() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Day
}

// ExchangeRate is one day's USD→CAD conversion rate.
type ExchangeRate struct {
	USDToCAD   float64   `json:"usd_to_cad"`
	RecordedAt time.Time `json:"recorded_at" badgerhold:"key"`
}

// Day returns t truncated to a UTC calendar date. All daily series and as-of
// comparisons go through this so a snapshot recorded at 23:59 local and one
// at 00:01 UTC land in well-defined buckets.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
