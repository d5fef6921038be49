package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/models"
)

func member(id string, points []models.PricePoint) ProductSeries {
	return ProductSeries{Product: models.Product{ID: id, SetID: "s1"}, Points: points}
}

func testSet() models.Set {
	return models.Set{ID: "s1", Code: "BS", Name: "Base Set", Generation: "1"}
}

func TestAggregateSetReturns(t *testing.T) {
	// Two products with 30-day returns of +20% and +10%.
	members := []ProductSeries{
		member("p1", pts([2]float64{0, 100}, [2]float64{30, 120})),
		member("p2", pts([2]float64{0, 200}, [2]float64{30, 220})),
	}

	snap := AggregateSet(testSet(), members, day(30))

	require.NotNil(t, snap.AvgReturn30)
	assert.InDelta(t, 15, *snap.AvgReturn30, 0.001)
	require.NotNil(t, snap.MedReturn30)
	assert.InDelta(t, 15, *snap.MedReturn30, 0.001)
	assert.Equal(t, 2, snap.ProductCount)
	assert.Equal(t, "BS", snap.SetCode)
}

func TestAggregateSetMedianEvenCount(t *testing.T) {
	// Returns of +10%, +20%, +30%, +40% — median is the average of the two
	// middle values.
	members := []ProductSeries{
		member("p1", pts([2]float64{0, 100}, [2]float64{30, 110})),
		member("p2", pts([2]float64{0, 100}, [2]float64{30, 120})),
		member("p3", pts([2]float64{0, 100}, [2]float64{30, 130})),
		member("p4", pts([2]float64{0, 100}, [2]float64{30, 140})),
	}

	snap := AggregateSet(testSet(), members, day(30))

	require.NotNil(t, snap.MedReturn30)
	assert.InDelta(t, 25, *snap.MedReturn30, 0.001)
}

func TestAggregateSetSkipsProductsWithoutData(t *testing.T) {
	members := []ProductSeries{
		member("p1", pts([2]float64{0, 100}, [2]float64{30, 120})),
		member("p2", pts([2]float64{0, 100})), // single point — contributes nothing
		member("p3", nil),
	}

	snap := AggregateSet(testSet(), members, day(30))

	require.NotNil(t, snap.AvgReturn30)
	assert.InDelta(t, 20, *snap.AvgReturn30, 0.001)
	assert.Equal(t, 3, snap.ProductCount)
}

func TestAggregateSetEmpty(t *testing.T) {
	snap := AggregateSet(testSet(), nil, day(0))

	// Identity fields survive; every derived field is nil.
	assert.Equal(t, "s1", snap.SetID)
	assert.Zero(t, snap.ProductCount)
	assert.Nil(t, snap.AvgReturn30)
	assert.Nil(t, snap.MedReturn90)
	assert.Nil(t, snap.AvgReturn365)
	assert.Nil(t, snap.Consistency90)
	assert.Nil(t, snap.Consistency365)
	assert.Nil(t, snap.Volatility90)
	assert.Nil(t, snap.MaxDrawdown365)
	assert.Nil(t, snap.Trend90)
	assert.Nil(t, snap.Trend365)
	assert.Nil(t, snap.MomentumScore)
}

func TestAggregateSetConsistency(t *testing.T) {
	// Three products contribute 90-day returns: +10%, -5%, +2% — two of
	// three are strictly positive.
	members := []ProductSeries{
		member("p1", pts([2]float64{0, 100}, [2]float64{90, 110})),
		member("p2", pts([2]float64{0, 100}, [2]float64{90, 95})),
		member("p3", pts([2]float64{0, 100}, [2]float64{90, 102})),
	}

	snap := AggregateSet(testSet(), members, day(90))

	require.NotNil(t, snap.Consistency90)
	assert.InDelta(t, 100.0*2/3, *snap.Consistency90, 0.001)
}

func TestAggregateSetConsistencyZeroReturnNotPositive(t *testing.T) {
	members := []ProductSeries{
		member("p1", pts([2]float64{0, 100}, [2]float64{90, 100})), // exactly 0%
		member("p2", pts([2]float64{0, 100}, [2]float64{90, 110})),
	}

	snap := AggregateSet(testSet(), members, day(90))

	require.NotNil(t, snap.Consistency90)
	assert.InDelta(t, 50, *snap.Consistency90, 0.001)
}

// Momentum uses substitution over nil propagation: any missing component
// among avg30/avg90/avg365 contributes 0 to the weighted sum rather than
// making the whole score nil. The momentum score itself is nil only when all
// three components are nil. This is a deliberate design choice, not an
// oversight.
func TestMomentumScoreSubstitution(t *testing.T) {
	weights := DefaultMomentumWeights()

	tests := []struct {
		name   string
		avg30  *float64
		avg90  *float64
		avg365 *float64
		want   *float64
	}{
		{
			name:  "only avg90 present",
			avg90: fptr(10),
			want:  fptr(5), // 0.5 × 10, missing components contribute 0
		},
		{
			name:   "all present",
			avg30:  fptr(10),
			avg90:  fptr(20),
			avg365: fptr(30),
			want:   fptr(0.3*10 + 0.5*20 + 0.2*30),
		},
		{
			name:   "only avg365 present",
			avg365: fptr(50),
			want:   fptr(10),
		},
		{
			name: "all nil",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := momentumScore(tt.avg30, tt.avg90, tt.avg365, weights)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func TestAggregateSetDeterministic(t *testing.T) {
	members := []ProductSeries{
		member("p1", pts([2]float64{0, 100}, [2]float64{30, 105}, [2]float64{90, 112}, [2]float64{365, 140})),
		member("p2", pts([2]float64{0, 50}, [2]float64{45, 48}, [2]float64{90, 52}, [2]float64{365, 61})),
	}

	first := AggregateSet(testSet(), members, day(365))
	second := AggregateSet(testSet(), members, day(365))

	assert.Equal(t, first, second)
}
