package models

import "time"

// SetMetricsSnapshot carries every per-set aggregate the analytics engine
// produces. Metric fields are pointers: nil means "not enough data", never 0.
// CompositeScore and Rank are always populated — a set with no usable metrics
// still ranks (all its z-contributions default to 0).
type SetMetricsSnapshot struct {
	SetID        string    `json:"set_id" badgerhold:"key"`
	SetCode      string    `json:"set_code"`
	SetName      string    `json:"set_name"`
	Generation   string    `json:"generation,omitempty"`
	ReleaseDate  time.Time `json:"release_date,omitempty"`
	ProductCount int       `json:"product_count"`

	// Lookback returns (percent), aggregated across member products
	AvgReturn30  *float64 `json:"avg_return_30"`
	MedReturn30  *float64 `json:"med_return_30"`
	AvgReturn90  *float64 `json:"avg_return_90"`
	MedReturn90  *float64 `json:"med_return_90"`
	AvgReturn365 *float64 `json:"avg_return_365"`
	MedReturn365 *float64 `json:"med_return_365"`

	// Share of member products with a strictly positive return
	Consistency90  *float64 `json:"consistency_90"`
	Consistency365 *float64 `json:"consistency_365"`

	// Risk metrics averaged across member products
	Volatility90   *float64 `json:"volatility_90"`
	MaxDrawdown365 *float64 `json:"max_drawdown_365"`
	Trend90        *float64 `json:"trend_90"`
	Trend365       *float64 `json:"trend_365"`

	MomentumScore  *float64 `json:"momentum_score"`
	CompositeScore float64  `json:"composite_score"`
	Rank           int      `json:"rank"`

	ComputedAt time.Time `json:"computed_at"`
}
