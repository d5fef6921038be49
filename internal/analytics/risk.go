package analytics

import (
	"github.com/cardfolio/cardfolio/internal/models"
)

// Risk metric windows are counted in data points, not elapsed calendar days:
// a product with recording gaps still contributes a full window of
// observations.
const (
	VolatilityWindowPoints = 90
	DrawdownWindowPoints   = 365
	TrendShortWindowPoints = 90
	TrendLongWindowPoints  = 365
)

// trailing returns the last windowPoints points, or all of them when the
// series is shorter.
func trailing(points []models.PricePoint, windowPoints int) []models.PricePoint {
	if windowPoints > 0 && len(points) > windowPoints {
		return points[len(points)-windowPoints:]
	}
	return points
}

// Volatility returns the population standard deviation of day-over-day
// percent changes over the trailing window. Nil with fewer than 2 changes.
func Volatility(points []models.PricePoint, windowPoints int) *float64 {
	window := trailing(points, windowPoints)

	changes := make([]float64, 0, len(window))
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Price
		if prev == 0 {
			continue
		}
		changes = append(changes, (window[i].Price-prev)/prev*100)
	}

	if len(changes) < 2 {
		return nil
	}
	return fptr(stdDevPop(changes))
}

// MaxDrawdown returns the deepest peak-to-trough decline over the trailing
// window as a positive percent. Nil with fewer than 2 points.
func MaxDrawdown(points []models.PricePoint, windowPoints int) *float64 {
	window := trailing(points, windowPoints)
	if len(window) < 2 {
		return nil
	}

	peak := window[0].Price
	worst := 0.0
	for _, p := range window {
		if p.Price > peak {
			peak = p.Price
		}
		if peak == 0 {
			continue
		}
		dd := (p.Price - peak) / peak * 100 // always <= 0
		if dd < worst {
			worst = dd
		}
	}

	return fptr(-worst)
}

// TrendSlope fits an ordinary least-squares line of price against a 0..n-1
// index over the trailing window and reports slope / mean(price) × 100 —
// percent change per step, comparable across products at different price
// levels. Nil with fewer than 2 points or a zero mean price.
func TrendSlope(points []models.PricePoint, windowPoints int) *float64 {
	window := trailing(points, windowPoints)
	n := len(window)
	if n < 2 {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range window {
		x := float64(i)
		sumX += x
		sumY += p.Price
		sumXY += x * p.Price
		sumXX += x * x
	}

	fn := float64(n)
	meanPrice := sumY / fn
	if meanPrice == 0 {
		return nil
	}

	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (fn*sumXY - sumX*sumY) / denom

	return fptr(slope / meanPrice * 100)
}
