// Package valuation reconstructs daily portfolio value series from purchase
// lots and per-product price history.
package valuation

import (
	"fmt"
	"sort"
	"time"

	"github.com/cardfolio/cardfolio/internal/analytics"
	"github.com/cardfolio/cardfolio/internal/models"
)

// productState tracks one product's replay position while walking the
// calendar: which lots have taken effect, the accumulated quantity, and the
// last observed price carried forward across gap days.
type productState struct {
	lots      []models.Lot
	lotCur    int
	quantity  int64
	prices    []models.PricePoint
	priceCur  int
	lastPrice float64
}

// BuildDailySeries replays lots and price observations over every calendar
// day from start to end inclusive and returns one value point per day.
//
// A product contributes quantity x last-known-price each day. Before its
// first price observation a product contributes zero, so early days can be
// zero-valued while lots already exist. Prices between observations are
// carried forward unchanged.
//
// Lots must reference a product and carry a positive quantity; violations
// are contract errors, not data gaps, and fail the whole reconstruction.
func BuildDailySeries(lots []models.Lot, prices map[string][]models.PricePoint, start, end time.Time) ([]models.ValuationPoint, error) {
	startDay := models.Day(start)
	endDay := models.Day(end)
	if startDay.After(endDay) {
		return nil, fmt.Errorf("valuation start %s is after end %s", startDay.Format("2006-01-02"), endDay.Format("2006-01-02"))
	}

	states := make(map[string]*productState)
	for _, lot := range lots {
		if lot.ProductID == "" {
			return nil, fmt.Errorf("lot '%s' is missing a product id", lot.ID)
		}
		if lot.Quantity <= 0 {
			return nil, fmt.Errorf("lot '%s' has non-positive quantity %d", lot.ID, lot.Quantity)
		}
		state, ok := states[lot.ProductID]
		if !ok {
			state = &productState{}
			states[lot.ProductID] = state
		}
		state.lots = append(state.lots, lot)
	}

	for productID, state := range states {
		sort.Slice(state.lots, func(i, j int) bool {
			return state.lots[i].AcquiredOn.Before(state.lots[j].AcquiredOn)
		})
		if points, ok := prices[productID]; ok {
			state.prices = points
		}
	}

	// Deterministic product order keeps float accumulation reproducible.
	productIDs := make([]string, 0, len(states))
	for id := range states {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	days := endDay.Sub(startDay)/(24*time.Hour) + 1
	series := make([]models.ValuationPoint, 0, days)

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		var total float64
		for _, id := range productIDs {
			state := states[id]

			state.lotCur = analytics.AdvanceCursor(state.lots, state.lotCur,
				func(l models.Lot) bool { return !models.Day(l.AcquiredOn).After(day) },
				func(l models.Lot) { state.quantity += l.Quantity },
			)
			state.priceCur = analytics.AdvanceCursor(state.prices, state.priceCur,
				func(p models.PricePoint) bool { return !p.Day.After(day) },
				func(p models.PricePoint) { state.lastPrice = p.Price },
			)

			total += float64(state.quantity) * state.lastPrice
		}
		series = append(series, models.ValuationPoint{Day: day, Value: total})
	}

	return series, nil
}
