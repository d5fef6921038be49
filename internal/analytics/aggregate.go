package analytics

import (
	"time"

	"github.com/cardfolio/cardfolio/internal/models"
)

// Lookback windows always computed for ranking, regardless of what a caller
// chooses to display.
const (
	Window30  = 30
	Window90  = 90
	Window365 = 365
)

// ProductSeries pairs a product with its canonical daily price series.
type ProductSeries struct {
	Product models.Product
	Points  []models.PricePoint
}

// MomentumWeights blend the three lookback averages into the momentum score.
// Empirically chosen tuning values, not correctness requirements.
type MomentumWeights struct {
	Avg30  float64
	Avg90  float64
	Avg365 float64
}

// DefaultMomentumWeights returns the standard momentum blend.
func DefaultMomentumWeights() MomentumWeights {
	return MomentumWeights{Avg30: 0.3, Avg90: 0.5, Avg365: 0.2}
}

// AggregateSet reduces the member products of one set into a
// SetMetricsSnapshot as of referenceTime. Products that cannot produce a
// metric are skipped per metric; a metric with zero contributors is nil. The
// composite score and rank are left for RankSets, which needs the whole
// population.
func AggregateSet(set models.Set, members []ProductSeries, referenceTime time.Time) *models.SetMetricsSnapshot {
	return AggregateSetWithWeights(set, members, referenceTime, DefaultMomentumWeights())
}

// AggregateSetWithWeights is AggregateSet with an explicit momentum blend.
func AggregateSetWithWeights(set models.Set, members []ProductSeries, referenceTime time.Time, weights MomentumWeights) *models.SetMetricsSnapshot {
	snap := &models.SetMetricsSnapshot{
		SetID:        set.ID,
		SetCode:      set.Code,
		SetName:      set.Name,
		Generation:   set.Generation,
		ReleaseDate:  set.ReleaseDate,
		ProductCount: len(members),
		ComputedAt:   referenceTime,
	}

	returns30 := collectReturns(members, Window30, referenceTime)
	returns90 := collectReturns(members, Window90, referenceTime)
	returns365 := collectReturns(members, Window365, referenceTime)

	snap.AvgReturn30, snap.MedReturn30 = averageAndMedian(returns30)
	snap.AvgReturn90, snap.MedReturn90 = averageAndMedian(returns90)
	snap.AvgReturn365, snap.MedReturn365 = averageAndMedian(returns365)

	snap.Consistency90 = consistency(returns90)
	snap.Consistency365 = consistency(returns365)

	snap.Volatility90 = averageMetric(members, func(points []models.PricePoint) *float64 {
		return Volatility(points, VolatilityWindowPoints)
	})
	snap.MaxDrawdown365 = averageMetric(members, func(points []models.PricePoint) *float64 {
		return MaxDrawdown(points, DrawdownWindowPoints)
	})
	snap.Trend90 = averageMetric(members, func(points []models.PricePoint) *float64 {
		return TrendSlope(points, TrendShortWindowPoints)
	})
	snap.Trend365 = averageMetric(members, func(points []models.PricePoint) *float64 {
		return TrendSlope(points, TrendLongWindowPoints)
	})

	snap.MomentumScore = momentumScore(snap.AvgReturn30, snap.AvgReturn90, snap.AvgReturn365, weights)

	return snap
}

// collectReturns gathers the non-nil lookback return percents across members.
func collectReturns(members []ProductSeries, lookbackDays int, referenceTime time.Time) []float64 {
	values := make([]float64, 0, len(members))
	for _, m := range members {
		if r := ComputeReturn(m.Points, lookbackDays, referenceTime); r != nil {
			values = append(values, r.Percent)
		}
	}
	return values
}

func averageAndMedian(values []float64) (*float64, *float64) {
	if len(values) == 0 {
		return nil, nil
	}
	return fptr(mean(values)), fptr(median(values))
}

// consistency is the share of contributing products whose return is strictly
// positive. Nil with zero contributors.
func consistency(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	positive := 0
	for _, v := range values {
		if v > 0 {
			positive++
		}
	}
	return fptr(100 * float64(positive) / float64(len(values)))
}

// averageMetric averages a per-product metric across members, skipping nils.
func averageMetric(members []ProductSeries, metric func([]models.PricePoint) *float64) *float64 {
	values := make([]float64, 0, len(members))
	for _, m := range members {
		if v := metric(m.Points); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return fptr(mean(values))
}

// momentumScore blends the three lookback averages. A missing component
// contributes 0 to the weighted sum instead of propagating nil — the score
// itself is nil only when all three components are. Substitution over nil
// propagation is deliberate: a young set with only a 30-day history should
// still earn a (dampened) momentum score.
func momentumScore(avg30, avg90, avg365 *float64, weights MomentumWeights) *float64 {
	if avg30 == nil && avg90 == nil && avg365 == nil {
		return nil
	}
	score := 0.0
	if avg90 != nil {
		score += weights.Avg90 * *avg90
	}
	if avg30 != nil {
		score += weights.Avg30 * *avg30
	}
	if avg365 != nil {
		score += weights.Avg365 * *avg365
	}
	return fptr(score)
}
