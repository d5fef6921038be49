package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
)

type portfolioStore struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStore creates a PortfolioStore backed by BadgerHold.
func NewPortfolioStore(store *Store, logger *common.Logger) *portfolioStore {
	return &portfolioStore{store: store, logger: logger}
}

func (s *portfolioStore) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	now := time.Now()
	portfolio.UpdatedAt = now
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = now
	}
	if portfolio.ID == "" {
		portfolio.ID = uuid.New().String()
	}

	if err := s.store.db.Upsert(portfolio.ID, portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.logger.Debug().Str("id", portfolio.ID).Str("name", portfolio.Name).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStore) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.store.db.Get(id, &portfolio)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("portfolio '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get portfolio '%s': %w", id, err)
	}
	return &portfolio, nil
}

func (s *portfolioStore) ListPortfolios(_ context.Context) ([]*models.Portfolio, error) {
	var portfolios []models.Portfolio
	if err := s.store.db.Find(&portfolios, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	result := make([]*models.Portfolio, len(portfolios))
	for i := range portfolios {
		result[i] = &portfolios[i]
	}
	return result, nil
}

// AddLot validates and stores a purchase lot. Shape violations (missing
// product, non-positive quantity) are contract errors and fail fast.
func (s *portfolioStore) AddLot(_ context.Context, lot *models.Lot) error {
	if lot.PortfolioID == "" {
		return fmt.Errorf("lot is missing a portfolio id")
	}
	if lot.ProductID == "" {
		return fmt.Errorf("lot is missing a product id")
	}
	if lot.Quantity <= 0 {
		return fmt.Errorf("lot quantity must be positive, got %d", lot.Quantity)
	}
	if lot.AcquiredOn.IsZero() {
		return fmt.Errorf("lot is missing an acquisition date")
	}

	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	lot.CreatedAt = time.Now()

	if err := s.store.db.Insert(lot.ID, lot); err != nil {
		return fmt.Errorf("failed to save lot: %w", err)
	}
	s.logger.Debug().Str("portfolio", lot.PortfolioID).Str("product", lot.ProductID).Int64("quantity", lot.Quantity).Msg("Lot added")
	return nil
}

func (s *portfolioStore) ListLots(_ context.Context, portfolioID string) ([]*models.Lot, error) {
	var lots []models.Lot
	if err := s.store.db.Find(&lots, badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID")); err != nil {
		return nil, fmt.Errorf("failed to list lots for portfolio '%s': %w", portfolioID, err)
	}

	sort.Slice(lots, func(i, j int) bool { return lots[i].AcquiredOn.Before(lots[j].AcquiredOn) })

	result := make([]*models.Lot, len(lots))
	for i := range lots {
		result[i] = &lots[i]
	}
	return result, nil
}
