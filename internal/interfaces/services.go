// Package interfaces defines service contracts for Cardfolio
package interfaces

import (
	"context"
	"time"

	"github.com/cardfolio/cardfolio/internal/models"
)

// RankingService owns the price-collection → aggregation → ranking pipeline.
type RankingService interface {
	// Refresh collects fresh price snapshots, updates the exchange rate and
	// recomputes set rankings. When force is true every product is
	// re-collected regardless of freshness.
	Refresh(ctx context.Context, force bool) error

	// ComputeRankings recomputes every set's metrics from stored series as
	// of referenceTime and persists the result.
	ComputeRankings(ctx context.Context, referenceTime time.Time) ([]*models.SetMetricsSnapshot, error)

	// GetRankings returns the stored set metrics ordered by rank ascending.
	GetRankings(ctx context.Context) ([]*models.SetMetricsSnapshot, error)

	// GetSetMetrics returns the stored metrics for one set by code.
	GetSetMetrics(ctx context.Context, setCode string) (*models.SetMetricsSnapshot, error)
}

// ValuationOptions configures a portfolio valuation request.
type ValuationOptions struct {
	Start    time.Time // zero: earliest lot acquisition day
	End      time.Time // zero: today
	Currency string    // "USD" (default) or "CAD"
}

// ValuationService reconstructs daily portfolio value series.
type ValuationService interface {
	// GetValuation returns one point per calendar day in the requested
	// range, gap-free, including leading zero-value days.
	GetValuation(ctx context.Context, portfolioID string, opts ValuationOptions) ([]models.ValuationPoint, error)

	// RenderChart renders the valuation series for a portfolio as a PNG.
	RenderChart(ctx context.Context, portfolioID string, opts ValuationOptions) ([]byte, error)

	// AddLot validates and records a purchase lot.
	AddLot(ctx context.Context, lot *models.Lot) error

	// ListLots returns a portfolio's lots sorted by acquisition day.
	ListLots(ctx context.Context, portfolioID string) ([]*models.Lot, error)
}
