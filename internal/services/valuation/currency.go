package valuation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio/internal/models"
)

// Supported valuation currencies. USD is the native feed currency.
const (
	CurrencyUSD = "USD"
	CurrencyCAD = "CAD"
)

// NormalizeCurrency maps a request currency to its canonical code. Empty
// defaults to USD.
func NormalizeCurrency(currency string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", CurrencyUSD:
		return CurrencyUSD, nil
	case CurrencyCAD:
		return CurrencyCAD, nil
	default:
		return "", fmt.Errorf("unsupported currency '%s'", currency)
	}
}

// ConvertSeries multiplies every point by rate and rounds to cents.
func ConvertSeries(points []models.ValuationPoint, rate float64) []models.ValuationPoint {
	rateDec := decimal.NewFromFloat(rate)

	converted := make([]models.ValuationPoint, len(points))
	for i, p := range points {
		value := decimal.NewFromFloat(p.Value).Mul(rateDec).Round(2)
		converted[i] = models.ValuationPoint{Day: p.Day, Value: value.InexactFloat64()}
	}
	return converted
}
