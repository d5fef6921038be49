// Package ranking owns the price-collection, aggregation and composite
// ranking pipeline.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cardfolio/cardfolio/internal/analytics"
	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/interfaces"
	"github.com/cardfolio/cardfolio/internal/models"
)

// Service implements the RankingService interface.
type Service struct {
	storage interfaces.StorageManager
	feed    interfaces.PriceFeedClient
	rates   interfaces.ExchangeRateClient
	config  *common.Config
	weights analytics.WeightConfig
	logger  *common.Logger
}

// NewService creates a new ranking service. The rates client may be nil when
// exchange-rate collection is disabled.
func NewService(storage interfaces.StorageManager, feed interfaces.PriceFeedClient, rates interfaces.ExchangeRateClient, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		feed:    feed,
		rates:   rates,
		config:  config,
		weights: analytics.DefaultWeightConfig(),
		logger:  logger,
	}
}

// Refresh runs the full pipeline: collect stale price series, refresh the
// exchange rate, then recompute rankings. A failed exchange-rate fetch is
// logged and skipped; stored valuations keep the last known rate.
func (s *Service) Refresh(ctx context.Context, force bool) error {
	if err := s.CollectPrices(ctx, force); err != nil {
		return fmt.Errorf("price collection failed: %w", err)
	}

	if err := s.RefreshExchangeRate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Exchange rate refresh failed, keeping last known rate")
	}

	if _, err := s.ComputeRankings(ctx, time.Now().UTC()); err != nil {
		return fmt.Errorf("ranking computation failed: %w", err)
	}
	return nil
}

// CollectPrices fetches snapshots for products whose stored series has gone
// stale, normalizes them and merges them into the canonical series. When
// force is true every product is collected regardless of freshness.
func (s *Service) CollectPrices(ctx context.Context, force bool) error {
	products, err := s.storage.CatalogStore().ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		s.logger.Info().Msg("No products in catalog, skipping price collection")
		return nil
	}

	productIDs := make([]string, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	seriesList, err := s.storage.PriceStore().GetSeriesBatch(ctx, productIDs)
	if err != nil {
		return err
	}
	existing := make(map[string]*models.PriceSeries, len(seriesList))
	for _, series := range seriesList {
		existing[series.ProductID] = series
	}

	stale, from := s.selectStale(productIDs, existing, force)
	if len(stale) == 0 {
		s.logger.Info().Msg("All price series fresh, nothing to collect")
		return nil
	}

	snapshots, err := s.feed.GetPriceSnapshots(ctx, stale, from)
	if err != nil {
		return err
	}

	result, err := analytics.NormalizeSnapshots(snapshots)
	if err != nil {
		return err
	}
	if result.Dropped > 0 {
		s.logger.Warn().Int("dropped", result.Dropped).Msg("Dropped snapshots with unusable prices")
	}

	now := time.Now().UTC()
	updated := make([]*models.PriceSeries, 0, len(result.Series))
	for productID, points := range result.Series {
		series := mergeSeries(existing[productID], productID, points)
		series.UpdatedAt = now
		updated = append(updated, series)
	}

	// Touch fetched-but-empty products too so they are not re-collected
	// every cycle.
	for _, productID := range stale {
		if _, ok := result.Series[productID]; ok {
			continue
		}
		series := existing[productID]
		if series == nil {
			series = &models.PriceSeries{ProductID: productID}
		}
		series.UpdatedAt = now
		updated = append(updated, series)
	}

	saved, failed, err := s.storage.PriceStore().SaveSeriesBatch(ctx, updated)
	if err != nil {
		return err
	}

	s.logger.Info().
		Int("collected", len(stale)).
		Int("saved", saved).
		Int("failed", failed).
		Int("dropped", result.Dropped).
		Msg("Price collection complete")
	return nil
}

// selectStale picks the products to collect and the earliest fetch boundary
// covering all of them. Products with history resume from the day after
// their last point; brand-new products get the configured lookback.
func (s *Service) selectStale(productIDs []string, existing map[string]*models.PriceSeries, force bool) ([]string, time.Time) {
	now := time.Now().UTC()
	newProductFrom := models.Day(now.AddDate(0, 0, -s.config.Feed.LookbackDays))

	var stale []string
	from := now
	for _, id := range productIDs {
		series := existing[id]
		if !force && series != nil && common.IsFresh(series.UpdatedAt, common.FreshnessPriceSnapshot) {
			continue
		}
		stale = append(stale, id)

		candidate := newProductFrom
		if series != nil && len(series.Points) > 0 {
			candidate = series.LastDay().AddDate(0, 0, 1)
		}
		if candidate.Before(from) {
			from = candidate
		}
	}
	return stale, from
}

// RefreshExchangeRate fetches and stores the latest USD to CAD rate. No-op
// when the rates client is disabled or the stored rate is still fresh.
func (s *Service) RefreshExchangeRate(ctx context.Context) error {
	if s.rates == nil || !s.config.Rates.Enabled {
		return nil
	}

	if stored, err := s.storage.PriceStore().LatestExchangeRate(ctx); err == nil {
		if common.IsFresh(stored.RecordedAt, common.FreshnessExchangeRate) {
			return nil
		}
	}

	rate, err := s.rates.FetchLatestRate(ctx)
	if err != nil {
		return err
	}
	return s.storage.PriceStore().SaveExchangeRate(ctx, rate)
}

// ComputeRankings rebuilds every set's metrics from stored series as of
// referenceTime, ranks the population and persists the result.
func (s *Service) ComputeRankings(ctx context.Context, referenceTime time.Time) ([]*models.SetMetricsSnapshot, error) {
	sets, err := s.storage.CatalogStore().ListSets(ctx)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}

	minPoints := s.config.Metrics.MinSeriesPoints

	snaps := make([]*models.SetMetricsSnapshot, 0, len(sets))
	for _, set := range sets {
		products, err := s.storage.CatalogStore().ListProductsBySet(ctx, set.ID)
		if err != nil {
			return nil, err
		}

		members, err := s.loadMembers(ctx, products, minPoints)
		if err != nil {
			return nil, err
		}

		snaps = append(snaps, analytics.AggregateSet(*set, members, referenceTime))
	}

	ranked := analytics.RankSets(snaps, s.weights)
	if err := s.storage.MetricsStore().SaveSetMetrics(ctx, ranked); err != nil {
		return nil, err
	}

	s.logger.Info().Int("sets", len(ranked)).Time("as_of", referenceTime).Msg("Set rankings recomputed")
	return ranked, nil
}

// loadMembers pairs a set's products with their stored series, excluding
// products whose history is too short to yield any metric.
func (s *Service) loadMembers(ctx context.Context, products []*models.Product, minPoints int) ([]analytics.ProductSeries, error) {
	if len(products) == 0 {
		return nil, nil
	}

	productIDs := make([]string, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	seriesList, err := s.storage.PriceStore().GetSeriesBatch(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string]*models.PriceSeries, len(seriesList))
	for _, series := range seriesList {
		byProduct[series.ProductID] = series
	}

	members := make([]analytics.ProductSeries, 0, len(products))
	for _, p := range products {
		series, ok := byProduct[p.ID]
		if !ok || len(series.Points) < minPoints {
			continue
		}
		members = append(members, analytics.ProductSeries{Product: *p, Points: series.Points})
	}
	return members, nil
}

// GetRankings returns the stored set metrics ordered by rank ascending.
func (s *Service) GetRankings(ctx context.Context) ([]*models.SetMetricsSnapshot, error) {
	return s.storage.MetricsStore().ListSetMetrics(ctx)
}

// GetSetMetrics returns the stored metrics for one set by code.
func (s *Service) GetSetMetrics(ctx context.Context, setCode string) (*models.SetMetricsSnapshot, error) {
	set, err := s.storage.CatalogStore().GetSetByCode(ctx, setCode)
	if err != nil {
		return nil, err
	}
	return s.storage.MetricsStore().GetSetMetrics(ctx, set.ID)
}

// mergeSeries folds freshly normalized points into a stored series. New
// observations win on day collisions; the result stays ascending with at
// most one point per day.
func mergeSeries(stored *models.PriceSeries, productID string, points []models.PricePoint) *models.PriceSeries {
	if stored == nil {
		return &models.PriceSeries{ProductID: productID, Points: points}
	}

	byDay := make(map[time.Time]float64, len(stored.Points)+len(points))
	for _, p := range stored.Points {
		byDay[p.Day] = p.Price
	}
	for _, p := range points {
		byDay[p.Day] = p.Price
	}

	merged := make([]models.PricePoint, 0, len(byDay))
	for day, price := range byDay {
		merged = append(merged, models.PricePoint{Day: day, Price: price})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Day.Before(merged[j].Day) })

	stored.Points = merged
	return stored
}
