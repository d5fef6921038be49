package app

import (
	"context"
	"time"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/interfaces"
)

// startRefreshScheduler re-runs the ranking pipeline on a fixed interval.
// Freshness checks inside the pipeline keep a tick cheap when nothing is
// stale.
func startRefreshScheduler(ctx context.Context, rankingService interfaces.RankingService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			runRefresh(ctx, rankingService, logger)
		}
	}
}

func runRefresh(ctx context.Context, rankingService interfaces.RankingService, logger *common.Logger) {
	start := time.Now()

	if err := rankingService.Refresh(ctx, false); err != nil {
		logger.Warn().Err(err).Msg("Scheduled refresh failed")
		return
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Scheduled refresh complete")
}
