package models

import "time"

// Portfolio is a named collection of purchase lots. Scoping/authorization is
// the caller's concern — an ID that reaches this service is assumed valid.
type Portfolio struct {
	ID        string    `json:"id" badgerhold:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lot is one discrete purchase event. Lots are purely additive — there is no
// disposal event in this model, so per-product quantity only ever grows.
type Lot struct {
	ID          string    `json:"id" badgerhold:"key"`
	PortfolioID string    `json:"portfolio_id" badgerhold:"index"`
	ProductID   string    `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	AcquiredOn  time.Time `json:"acquired_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValuationPoint is one day of a reconstructed portfolio value series.
type ValuationPoint struct {
	Day   time.Time `json:"day"`
	Value float64   `json:"value"`
}
