// Package interfaces defines service contracts for Cardfolio
package interfaces

import (
	"context"
	"time"

	"github.com/cardfolio/cardfolio/internal/models"
)

// PriceFeedClient retrieves raw price snapshots from the hosted price store.
// The feed guarantees nothing: results may be unordered, duplicated per day,
// and may contain zero or negative prices. Batching and retrieval
// performance are the feed's concern.
type PriceFeedClient interface {
	// GetPriceSnapshots returns every snapshot for the given products
	// recorded at or after from.
	GetPriceSnapshots(ctx context.Context, productIDs []string, from time.Time) ([]models.PriceSnapshot, error)
}

// ExchangeRateClient fetches the most recent USD→CAD daily rate.
type ExchangeRateClient interface {
	FetchLatestRate(ctx context.Context) (*models.ExchangeRate, error)
}
