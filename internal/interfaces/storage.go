// Package interfaces defines service contracts for Cardfolio
package interfaces

import (
	"context"

	"github.com/cardfolio/cardfolio/internal/models"
)

// StorageManager coordinates all storage areas.
type StorageManager interface {
	CatalogStore() CatalogStore
	PriceStore() PriceStore
	PortfolioStore() PortfolioStore
	MetricsStore() MetricsStore

	Close() error
}

// CatalogStore holds set and product metadata from the catalog feed.
// Grouping keys and passthrough display fields only — nothing computed.
type CatalogStore interface {
	SaveSet(ctx context.Context, set *models.Set) error
	GetSet(ctx context.Context, id string) (*models.Set, error)
	GetSetByCode(ctx context.Context, code string) (*models.Set, error)
	ListSets(ctx context.Context) ([]*models.Set, error)

	SaveProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	ListProductsBySet(ctx context.Context, setID string) ([]*models.Product, error)
}

// PriceStore persists canonical daily price series and exchange rates.
type PriceStore interface {
	GetSeries(ctx context.Context, productID string) (*models.PriceSeries, error)
	GetSeriesBatch(ctx context.Context, productIDs []string) ([]*models.PriceSeries, error)
	SaveSeries(ctx context.Context, series *models.PriceSeries) error

	// SaveSeriesBatch upserts many series, falling back to per-series saves
	// when the batch fails. Returns saved and failed counts.
	SaveSeriesBatch(ctx context.Context, series []*models.PriceSeries) (saved, failed int, err error)

	SaveExchangeRate(ctx context.Context, rate *models.ExchangeRate) error
	LatestExchangeRate(ctx context.Context) (*models.ExchangeRate, error)
}

// PortfolioStore persists portfolios and their purchase lots.
type PortfolioStore interface {
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)

	AddLot(ctx context.Context, lot *models.Lot) error
	ListLots(ctx context.Context, portfolioID string) ([]*models.Lot, error)
}

// MetricsStore persists computed set metrics snapshots.
type MetricsStore interface {
	SaveSetMetrics(ctx context.Context, snaps []*models.SetMetricsSnapshot) error
	GetSetMetrics(ctx context.Context, setID string) (*models.SetMetricsSnapshot, error)
	ListSetMetrics(ctx context.Context) ([]*models.SetMetricsSnapshot, error)
}
