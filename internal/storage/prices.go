package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
)

type priceStore struct {
	store  *Store
	logger *common.Logger
}

// NewPriceStore creates a PriceStore backed by BadgerHold.
func NewPriceStore(store *Store, logger *common.Logger) *priceStore {
	return &priceStore{store: store, logger: logger}
}

func (s *priceStore) GetSeries(_ context.Context, productID string) (*models.PriceSeries, error) {
	var series models.PriceSeries
	err := s.store.db.Get(productID, &series)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("price series for product '%s' not found", productID)
		}
		return nil, fmt.Errorf("failed to get price series for '%s': %w", productID, err)
	}
	return &series, nil
}

func (s *priceStore) GetSeriesBatch(ctx context.Context, productIDs []string) ([]*models.PriceSeries, error) {
	result := make([]*models.PriceSeries, 0, len(productIDs))
	for _, id := range productIDs {
		series, err := s.GetSeries(ctx, id)
		if err != nil {
			continue // products without history are simply absent
		}
		result = append(result, series)
	}
	return result, nil
}

func (s *priceStore) SaveSeries(_ context.Context, series *models.PriceSeries) error {
	if series.ProductID == "" {
		return fmt.Errorf("price series is missing a product id")
	}
	series.UpdatedAt = time.Now()

	if err := s.store.db.Upsert(series.ProductID, series); err != nil {
		return fmt.Errorf("failed to save price series for '%s': %w", series.ProductID, err)
	}
	return nil
}

// SaveSeriesBatch upserts many series one by one so a single bad record
// cannot sink the whole collection run. Failures are counted and logged, not
// returned — mirrors how snapshot batches degrade to per-record inserts.
func (s *priceStore) SaveSeriesBatch(ctx context.Context, series []*models.PriceSeries) (saved, failed int, err error) {
	if len(series) == 0 {
		return 0, 0, nil
	}

	for _, sr := range series {
		if saveErr := s.SaveSeries(ctx, sr); saveErr != nil {
			s.logger.Error().Err(saveErr).Str("product", sr.ProductID).Msg("Price series save failed")
			failed++
			continue
		}
		saved++
	}

	s.logger.Debug().Int("saved", saved).Int("failed", failed).Msg("Price series batch saved")
	return saved, failed, nil
}

func (s *priceStore) SaveExchangeRate(_ context.Context, rate *models.ExchangeRate) error {
	if rate.USDToCAD <= 0 {
		return fmt.Errorf("exchange rate must be positive, got %f", rate.USDToCAD)
	}

	if err := s.store.db.Upsert(rate.RecordedAt, rate); err != nil {
		return fmt.Errorf("failed to save exchange rate: %w", err)
	}
	s.logger.Debug().Float64("usd_to_cad", rate.USDToCAD).Time("recorded_at", rate.RecordedAt).Msg("Exchange rate saved")
	return nil
}

func (s *priceStore) LatestExchangeRate(_ context.Context) (*models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	if err := s.store.db.Find(&rates, nil); err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no exchange rate recorded")
	}

	latest := rates[0]
	for _, r := range rates[1:] {
		if r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	return &latest, nil
}
