package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
)

type metricsStore struct {
	store  *Store
	logger *common.Logger
}

// NewMetricsStore creates a MetricsStore backed by BadgerHold.
func NewMetricsStore(store *Store, logger *common.Logger) *metricsStore {
	return &metricsStore{store: store, logger: logger}
}

func (s *metricsStore) SaveSetMetrics(ctx context.Context, snaps []*models.SetMetricsSnapshot) error {
	for _, snap := range snaps {
		if snap.SetID == "" {
			return fmt.Errorf("set metrics snapshot is missing a set id")
		}
		if err := s.store.db.Upsert(snap.SetID, snap); err != nil {
			return fmt.Errorf("failed to save metrics for set '%s': %w", snap.SetID, err)
		}
	}
	s.logger.Debug().Int("sets", len(snaps)).Msg("Set metrics saved")
	return nil
}

func (s *metricsStore) GetSetMetrics(_ context.Context, setID string) (*models.SetMetricsSnapshot, error) {
	var snap models.SetMetricsSnapshot
	err := s.store.db.Get(setID, &snap)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("metrics for set '%s' not found", setID)
		}
		return nil, fmt.Errorf("failed to get metrics for set '%s': %w", setID, err)
	}
	return &snap, nil
}

// ListSetMetrics returns every stored snapshot ordered by rank ascending.
func (s *metricsStore) ListSetMetrics(_ context.Context) ([]*models.SetMetricsSnapshot, error) {
	var snaps []models.SetMetricsSnapshot
	if err := s.store.db.Find(&snaps, nil); err != nil {
		return nil, fmt.Errorf("failed to list set metrics: %w", err)
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Rank < snaps[j].Rank })

	result := make([]*models.SetMetricsSnapshot, len(snaps))
	for i := range snaps {
		result[i] = &snaps[i]
	}
	return result, nil
}
