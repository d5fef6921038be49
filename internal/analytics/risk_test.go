package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/models"
)

func TestVolatility(t *testing.T) {
	tests := []struct {
		name   string
		points []models.PricePoint
		window int
		want   *float64
	}{
		{
			name: "symmetric swings",
			// Changes are +10% and -10%; population σ of {10, -10} is 10.
			points: pts([2]float64{0, 100}, [2]float64{1, 110}, [2]float64{2, 99}),
			window: 90,
			want:   fptr(10),
		},
		{
			name:   "flat series has zero volatility",
			points: pts([2]float64{0, 100}, [2]float64{1, 100}, [2]float64{2, 100}),
			window: 90,
			want:   fptr(0),
		},
		{
			name:   "two points yield one change — insufficient",
			points: pts([2]float64{0, 100}, [2]float64{1, 110}),
			window: 90,
			want:   nil,
		},
		{
			name:   "empty series",
			points: nil,
			window: 90,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Volatility(tt.points, tt.window)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

// The trailing window is counted in data points, not elapsed calendar days:
// a product with recording gaps still contributes a full window of
// observations. This is the documented interpretation of "trailing window"
// for every risk metric.
func TestTrailingWindowCountsPointsNotDays(t *testing.T) {
	// Five points spread over 200 calendar days. A 3-point window must use
	// exactly the last three regardless of the gaps between them.
	points := pts([2]float64{0, 100}, [2]float64{50, 120}, [2]float64{100, 100}, [2]float64{150, 110}, [2]float64{200, 99})

	got := Volatility(points, 3)
	require.NotNil(t, got)

	// Last 3 points: 100 → 110 (+10%), 110 → 99 (-10%); σ_pop = 10.
	assert.InDelta(t, 10.0, *got, 0.001)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		points []models.PricePoint
		window int
		want   *float64
	}{
		{
			name:   "decline from running peak",
			points: pts([2]float64{0, 100}, [2]float64{1, 120}, [2]float64{2, 90}, [2]float64{3, 100}),
			window: 365,
			want:   fptr(25), // 120 → 90
		},
		{
			name:   "monotonic rise never draws down",
			points: pts([2]float64{0, 100}, [2]float64{1, 110}, [2]float64{2, 120}),
			window: 365,
			want:   fptr(0),
		},
		{
			name: "peak before the window is not seen",
			// Window of 2 only sees 90 → 100, so no drawdown despite the
			// earlier peak at 120.
			points: pts([2]float64{0, 120}, [2]float64{1, 90}, [2]float64{2, 100}),
			window: 2,
			want:   fptr(0),
		},
		{
			name:   "single point",
			points: pts([2]float64{0, 100}),
			window: 365,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.points, tt.window)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func TestTrendSlope(t *testing.T) {
	tests := []struct {
		name   string
		points []models.PricePoint
		window int
		want   *float64
	}{
		{
			name:   "linear rise",
			points: pts([2]float64{0, 100}, [2]float64{1, 110}, [2]float64{2, 120}),
			window: 90,
			want:   fptr(10.0 / 110.0 * 100), // slope 10 over mean 110
		},
		{
			name:   "flat series",
			points: pts([2]float64{0, 100}, [2]float64{1, 100}, [2]float64{2, 100}),
			window: 90,
			want:   fptr(0),
		},
		{
			name:   "linear decline",
			points: pts([2]float64{0, 120}, [2]float64{1, 110}, [2]float64{2, 100}),
			window: 90,
			want:   fptr(-10.0 / 110.0 * 100),
		},
		{
			name:   "single point",
			points: pts([2]float64{0, 100}),
			window: 90,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendSlope(tt.points, tt.window)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

// Scale independence: the normalized slope must match for two products whose
// prices move identically in relative terms at different absolute levels.
func TestTrendSlopeScaleIndependent(t *testing.T) {
	cheap := pts([2]float64{0, 10}, [2]float64{1, 11}, [2]float64{2, 12})
	expensive := pts([2]float64{0, 1000}, [2]float64{1, 1100}, [2]float64{2, 1200})

	a := TrendSlope(cheap, 90)
	b := TrendSlope(expensive, 90)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.InDelta(t, *a, *b, 0.0001)
}

// Every risk metric must produce a finite value or nil — never NaN or Inf —
// for degenerate inputs.
func TestRiskMetricsNeverNaN(t *testing.T) {
	inputs := [][]models.PricePoint{
		nil,
		pts([2]float64{0, 100}),
		pts([2]float64{0, 100}, [2]float64{1, 100}),
		pts([2]float64{0, 0.0001}, [2]float64{1, 1000000}, [2]float64{2, 0.0001}),
	}

	for _, points := range inputs {
		for _, got := range []*float64{
			Volatility(points, VolatilityWindowPoints),
			MaxDrawdown(points, DrawdownWindowPoints),
			TrendSlope(points, TrendShortWindowPoints),
		} {
			if got != nil {
				assert.False(t, math.IsNaN(*got), "metric produced NaN")
				assert.False(t, math.IsInf(*got, 0), "metric produced Inf")
			}
		}
	}
}
