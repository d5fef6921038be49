// Package analytics implements the set analytics engine: snapshot
// normalization, as-of lookback returns, trailing-window risk metrics,
// per-set aggregation and composite ranking. Everything here is a pure
// transformation — inputs are read-only, outputs are freshly allocated, and
// the reference time is always an explicit parameter.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cardfolio/cardfolio/internal/models"
)

// NormalizeResult holds canonical per-product series plus a count of raw
// snapshots dropped for carrying unusable prices. Dropping is silent by
// contract; the count is the side channel that keeps it observable.
type NormalizeResult struct {
	Series  map[string][]models.PricePoint
	Dropped int
}

// NormalizeSnapshots collapses raw feed snapshots into one ascending daily
// series per product. Snapshots with a zero, negative or NaN price are
// dropped and counted. When several snapshots land on the same product and
// calendar day, the most recently recorded one wins. A snapshot without a
// product id is a contract violation and fails the whole call.
func NormalizeSnapshots(snapshots []models.PriceSnapshot) (NormalizeResult, error) {
	result := NormalizeResult{Series: make(map[string][]models.PricePoint)}

	latest := make(map[string]map[time.Time]models.PriceSnapshot)
	for _, snap := range snapshots {
		if snap.ProductID == "" {
			return NormalizeResult{}, fmt.Errorf("price snapshot missing product id (recorded %s)", snap.RecordedAt)
		}
		if snap.Price <= 0 || math.IsNaN(snap.Price) || math.IsInf(snap.Price, 0) {
			result.Dropped++
			continue
		}

		day := models.Day(snap.RecordedAt)
		byDay, ok := latest[snap.ProductID]
		if !ok {
			byDay = make(map[time.Time]models.PriceSnapshot)
			latest[snap.ProductID] = byDay
		}
		// Most recently recorded wins; on an exact timestamp tie the later
		// input entry wins.
		if prev, exists := byDay[day]; !exists || !snap.RecordedAt.Before(prev.RecordedAt) {
			byDay[day] = snap
		}
	}

	for productID, byDay := range latest {
		points := make([]models.PricePoint, 0, len(byDay))
		for day, snap := range byDay {
			points = append(points, models.PricePoint{Day: day, Price: snap.Price})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })
		result.Series[productID] = points
	}

	return result, nil
}
