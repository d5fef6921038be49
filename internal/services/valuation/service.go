package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/interfaces"
	"github.com/cardfolio/cardfolio/internal/models"
)

// Service implements the ValuationService interface over stored lots and
// price series.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new valuation service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// GetValuation reconstructs the daily value series for a portfolio.
func (s *Service) GetValuation(ctx context.Context, portfolioID string, opts interfaces.ValuationOptions) ([]models.ValuationPoint, error) {
	currency, err := NormalizeCurrency(opts.Currency)
	if err != nil {
		return nil, err
	}

	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}

	lotPtrs, err := s.storage.PortfolioStore().ListLots(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if len(lotPtrs) == 0 {
		return nil, nil
	}

	lots := make([]models.Lot, len(lotPtrs))
	productIDs := make([]string, 0, len(lotPtrs))
	seen := make(map[string]bool)
	for i, lot := range lotPtrs {
		lots[i] = *lot
		if !seen[lot.ProductID] {
			seen[lot.ProductID] = true
			productIDs = append(productIDs, lot.ProductID)
		}
	}

	seriesList, err := s.storage.PriceStore().GetSeriesBatch(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[string][]models.PricePoint, len(seriesList))
	for _, series := range seriesList {
		prices[series.ProductID] = series.Points
	}

	start := opts.Start
	if start.IsZero() {
		start = earliestAcquisition(lots)
	}
	end := opts.End
	if end.IsZero() {
		end = time.Now().UTC()
	}

	series, err := BuildDailySeries(lots, prices, start, end)
	if err != nil {
		return nil, err
	}

	if currency == CurrencyCAD {
		rate, err := s.storage.PriceStore().LatestExchangeRate(ctx)
		if err != nil {
			return nil, fmt.Errorf("CAD valuation requires an exchange rate: %w", err)
		}
		series = ConvertSeries(series, rate.USDToCAD)
	}

	s.logger.Debug().
		Str("portfolio", portfolioID).
		Str("currency", currency).
		Int("days", len(series)).
		Msg("Valuation reconstructed")
	return series, nil
}

// RenderChart reconstructs the valuation series and renders it as a PNG.
func (s *Service) RenderChart(ctx context.Context, portfolioID string, opts interfaces.ValuationOptions) ([]byte, error) {
	currency, err := NormalizeCurrency(opts.Currency)
	if err != nil {
		return nil, err
	}

	series, err := s.GetValuation(ctx, portfolioID, opts)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("portfolio '%s' has no lots to chart", portfolioID)
	}

	return RenderValuationChart(series, currency)
}

// AddLot validates and records a purchase lot against an existing portfolio.
func (s *Service) AddLot(ctx context.Context, lot *models.Lot) error {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, lot.PortfolioID); err != nil {
		return err
	}
	if _, err := s.storage.CatalogStore().GetProduct(ctx, lot.ProductID); err != nil {
		return fmt.Errorf("lot references unknown product '%s': %w", lot.ProductID, err)
	}
	return s.storage.PortfolioStore().AddLot(ctx, lot)
}

// ListLots returns a portfolio's lots sorted by acquisition day.
func (s *Service) ListLots(ctx context.Context, portfolioID string) ([]*models.Lot, error) {
	return s.storage.PortfolioStore().ListLots(ctx, portfolioID)
}

func earliestAcquisition(lots []models.Lot) time.Time {
	earliest := lots[0].AcquiredOn
	for _, lot := range lots[1:] {
		if lot.AcquiredOn.Before(earliest) {
			earliest = lot.AcquiredOn
		}
	}
	return earliest
}
