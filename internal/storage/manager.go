package storage

import (
	"fmt"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/interfaces"
)

// Manager coordinates the storage areas over one BadgerHold database.
type Manager struct {
	store     *Store
	catalog   interfaces.CatalogStore
	prices    interfaces.PriceStore
	portfolio interfaces.PortfolioStore
	metrics   interfaces.MetricsStore
	logger    *common.Logger
}

// NewManager opens the database and wires up the stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s: %w", config.Storage.Path, err)
	}

	return &Manager{
		store:     store,
		catalog:   NewCatalogStore(store, logger),
		prices:    NewPriceStore(store, logger),
		portfolio: NewPortfolioStore(store, logger),
		metrics:   NewMetricsStore(store, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) CatalogStore() interfaces.CatalogStore     { return m.catalog }
func (m *Manager) PriceStore() interfaces.PriceStore         { return m.prices }
func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return m.portfolio }
func (m *Manager) MetricsStore() interfaces.MetricsStore     { return m.metrics }

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}
