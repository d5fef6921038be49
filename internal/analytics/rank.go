package analytics

import (
	"sort"

	"github.com/cardfolio/cardfolio/internal/models"
)

// WeightConfig defines per-metric weights for the composite score. Positive
// weights reward, negative weights penalize. Weights need not sum to 1 —
// they encode relative importance.
type WeightConfig struct {
	AvgReturn30    float64
	AvgReturn90    float64
	AvgReturn365   float64
	Consistency90  float64
	Consistency365 float64
	Trend90        float64
	Trend365       float64
	Volatility90   float64
	MaxDrawdown365 float64
}

// DefaultWeightConfig returns the standard composite weighting: medium-term
// return dominates, consistency and trend reinforce, volatility and drawdown
// penalize.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		AvgReturn30:    0.20,
		AvgReturn90:    0.40,
		AvgReturn365:   0.20,
		Consistency90:  0.15,
		Consistency365: 0.10,
		Trend90:        0.10,
		Trend365:       0.05,
		Volatility90:   -0.20,
		MaxDrawdown365: -0.15,
	}
}

// compositeMetric binds one snapshot field to its weight for scoring.
type compositeMetric struct {
	name   string
	weight func(WeightConfig) float64
	value  func(*models.SetMetricsSnapshot) *float64
}

var compositeMetrics = []compositeMetric{
	{"avg_return_30", func(w WeightConfig) float64 { return w.AvgReturn30 }, func(s *models.SetMetricsSnapshot) *float64 { return s.AvgReturn30 }},
	{"avg_return_90", func(w WeightConfig) float64 { return w.AvgReturn90 }, func(s *models.SetMetricsSnapshot) *float64 { return s.AvgReturn90 }},
	{"avg_return_365", func(w WeightConfig) float64 { return w.AvgReturn365 }, func(s *models.SetMetricsSnapshot) *float64 { return s.AvgReturn365 }},
	{"consistency_90", func(w WeightConfig) float64 { return w.Consistency90 }, func(s *models.SetMetricsSnapshot) *float64 { return s.Consistency90 }},
	{"consistency_365", func(w WeightConfig) float64 { return w.Consistency365 }, func(s *models.SetMetricsSnapshot) *float64 { return s.Consistency365 }},
	{"trend_90", func(w WeightConfig) float64 { return w.Trend90 }, func(s *models.SetMetricsSnapshot) *float64 { return s.Trend90 }},
	{"trend_365", func(w WeightConfig) float64 { return w.Trend365 }, func(s *models.SetMetricsSnapshot) *float64 { return s.Trend365 }},
	{"volatility_90", func(w WeightConfig) float64 { return w.Volatility90 }, func(s *models.SetMetricsSnapshot) *float64 { return s.Volatility90 }},
	{"max_drawdown_365", func(w WeightConfig) float64 { return w.MaxDrawdown365 }, func(s *models.SetMetricsSnapshot) *float64 { return s.MaxDrawdown365 }},
}

// populationStats holds one metric's mean and population standard deviation
// across every set for which it is non-nil.
type populationStats struct {
	mean float64
	std  float64
}

// RankSets assigns composite scores and 1-based ranks across the whole
// population of set snapshots and returns them ordered by rank ascending.
//
// Two phases: first a full pass collecting per-metric population statistics,
// then a scoring pass per set. A metric whose population standard deviation
// is 0 yields z = 0 for every set — it cannot discriminate, so it affects
// all sets equally (which is to say not at all). A nil metric value likewise
// contributes z = 0, so a score always exists and rank is only absent when
// the population itself is empty.
func RankSets(snaps []*models.SetMetricsSnapshot, weights WeightConfig) []*models.SetMetricsSnapshot {
	if len(snaps) == 0 {
		return nil
	}

	// Phase 1: population statistics per metric.
	stats := make([]populationStats, len(compositeMetrics))
	for i, metric := range compositeMetrics {
		values := make([]float64, 0, len(snaps))
		for _, s := range snaps {
			if v := metric.value(s); v != nil {
				values = append(values, *v)
			}
		}
		if len(values) > 0 {
			stats[i] = populationStats{mean: mean(values), std: stdDevPop(values)}
		}
	}

	// Phase 2: weighted z-score sum per set.
	for _, s := range snaps {
		score := 0.0
		for i, metric := range compositeMetrics {
			v := metric.value(s)
			if v == nil || stats[i].std == 0 {
				continue // z = 0 either way
			}
			z := (*v - stats[i].mean) / stats[i].std
			score += metric.weight(weights) * z
		}
		s.CompositeScore = score
	}

	ranked := make([]*models.SetMetricsSnapshot, len(snaps))
	copy(ranked, snaps)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		// Deterministic tie-break so input order never changes the output.
		return ranked[i].SetCode < ranked[j].SetCode
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}
