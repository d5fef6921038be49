package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
)

type catalogStore struct {
	store  *Store
	logger *common.Logger
}

// NewCatalogStore creates a CatalogStore backed by BadgerHold.
func NewCatalogStore(store *Store, logger *common.Logger) *catalogStore {
	return &catalogStore{store: store, logger: logger}
}

func (s *catalogStore) SaveSet(_ context.Context, set *models.Set) error {
	if set.ID == "" {
		return fmt.Errorf("set id is required")
	}
	set.UpdatedAt = time.Now()

	if err := s.store.db.Upsert(set.ID, set); err != nil {
		return fmt.Errorf("failed to save set '%s': %w", set.ID, err)
	}
	s.logger.Debug().Str("set", set.Code).Msg("Set saved")
	return nil
}

func (s *catalogStore) GetSet(_ context.Context, id string) (*models.Set, error) {
	var set models.Set
	err := s.store.db.Get(id, &set)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("set '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get set '%s': %w", id, err)
	}
	return &set, nil
}

func (s *catalogStore) GetSetByCode(_ context.Context, code string) (*models.Set, error) {
	var sets []models.Set
	if err := s.store.db.Find(&sets, badgerhold.Where("Code").Eq(code)); err != nil {
		return nil, fmt.Errorf("failed to find set by code '%s': %w", code, err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("set '%s' not found", code)
	}
	return &sets[0], nil
}

func (s *catalogStore) ListSets(_ context.Context) ([]*models.Set, error) {
	var sets []models.Set
	if err := s.store.db.Find(&sets, nil); err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	result := make([]*models.Set, len(sets))
	for i := range sets {
		result[i] = &sets[i]
	}
	return result, nil
}

func (s *catalogStore) SaveProduct(_ context.Context, product *models.Product) error {
	if product.ID == "" {
		return fmt.Errorf("product id is required")
	}
	if product.SetID == "" {
		return fmt.Errorf("product '%s' is missing a set id", product.ID)
	}
	product.UpdatedAt = time.Now()

	if err := s.store.db.Upsert(product.ID, product); err != nil {
		return fmt.Errorf("failed to save product '%s': %w", product.ID, err)
	}
	return nil
}

func (s *catalogStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.store.db.Get(id, &product)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("product '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get product '%s': %w", id, err)
	}
	return &product, nil
}

func (s *catalogStore) ListProducts(_ context.Context) ([]*models.Product, error) {
	var products []models.Product
	if err := s.store.db.Find(&products, nil); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	result := make([]*models.Product, len(products))
	for i := range products {
		result[i] = &products[i]
	}
	return result, nil
}

func (s *catalogStore) ListProductsBySet(_ context.Context, setID string) ([]*models.Product, error) {
	var products []models.Product
	if err := s.store.db.Find(&products, badgerhold.Where("SetID").Eq(setID).Index("SetID")); err != nil {
		return nil, fmt.Errorf("failed to list products for set '%s': %w", setID, err)
	}
	result := make([]*models.Product, len(products))
	for i := range products {
		result[i] = &products[i]
	}
	return result, nil
}
