package analytics

import (
	"sort"
	"time"

	"github.com/cardfolio/cardfolio/internal/models"
)

// Return is the result of one lookback return computation.
type Return struct {
	Percent float64 `json:"percent"`
	Delta   float64 `json:"delta"`
}

// asOf returns the latest point whose day does not exceed target. Points must
// be sorted ascending by day.
func asOf(points []models.PricePoint, target time.Time) (models.PricePoint, bool) {
	idx := sort.Search(len(points), func(i int) bool {
		return points[i].Day.After(target)
	})
	if idx == 0 {
		return models.PricePoint{}, false
	}
	return points[idx-1], true
}

// ComputeReturn computes the percent and absolute change between the series
// value as of referenceTime and the value as of lookbackDays earlier. Both
// lookups take the latest point at or before the target day.
//
// The result is nil — never an error — when the series cannot represent the
// window: fewer than 2 points, no point at or before the reference day, no
// point at or before the boundary, a zero boundary price, or a freshest
// point that is itself older than the boundary (the window has gone stale,
// so "now" cannot be represented).
func ComputeReturn(points []models.PricePoint, lookbackDays int, referenceTime time.Time) *Return {
	if len(points) < 2 {
		return nil
	}

	refDay := models.Day(referenceTime)
	current, ok := asOf(points, refDay)
	if !ok {
		return nil
	}

	boundary := refDay.AddDate(0, 0, -lookbackDays)
	if current.Day.Before(boundary) {
		return nil
	}

	past, ok := asOf(points, boundary)
	if !ok {
		return nil
	}
	if past.Price == 0 {
		return nil
	}

	return &Return{
		Percent: (current.Price - past.Price) / past.Price * 100,
		Delta:   current.Price - past.Price,
	}
}
