// Package analytics derives valuation, gain/loss, allocation and summary
// figures from portfolio holdings. Every function is pure.
package analytics

import (
	"math"

	"portfolio-analytics-api/internal/models"

	"github.com/shopspring/decimal"
)

// Places is the number of decimals kept on externalized currency and percent figures.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Enrich computes value, gain/loss and gain/loss percent for one holding.
// Gain/loss percent is 0 when the cost basis is 0.
func Enrich(h models.Holding) (models.EnrichedHolding, error) {
	if err := validate(h); err != nil {
		return models.EnrichedHolding{}, err
	}

	qty := decimal.NewFromFloat(h.Quantity)
	avg := decimal.NewFromFloat(h.AvgPrice)
	cur := decimal.NewFromFloat(h.CurrentPrice)

	gainLoss := cur.Sub(avg).Mul(qty)

	e := models.EnrichedHolding{
		Holding:         h,
		Value:           round(qty.Mul(cur)),
		GainLoss:        round(gainLoss),
		GainLossPercent: round(percentOf(gainLoss, avg.Mul(qty))),
	}
	// Finite inputs can still overflow float64 once multiplied.
	if err := checkFinite(h.Symbol, figure{"value", e.Value}, figure{"gainLoss", e.GainLoss}, figure{"gainLossPercent", e.GainLossPercent}); err != nil {
		return models.EnrichedHolding{}, err
	}
	return e, nil
}

// EnrichAll enriches holdings in input order and stops at the first invalid one.
// It also fails when the portfolio totals would not fit in a float64.
func EnrichAll(holdings []models.Holding) ([]models.EnrichedHolding, error) {
	out := make([]models.EnrichedHolding, 0, len(holdings))
	value, invested := decimal.Zero, decimal.Zero
	for _, h := range holdings {
		e, err := Enrich(h)
		if err != nil {
			return nil, err
		}

		value = value.Add(decimal.NewFromFloat(e.Value))
		invested = invested.Add(decimal.NewFromFloat(h.AvgPrice).Mul(decimal.NewFromFloat(h.Quantity)))
		if err := checkFinite(h.Symbol, figure{"totalValue", round(value)}, figure{"totalInvested", round(invested)}); err != nil {
			return nil, err
		}

		out = append(out, e)
	}
	return out, nil
}

func validate(h models.Holding) error {
	fields := []figure{
		{"quantity", h.Quantity},
		{"avgPrice", h.AvgPrice},
		{"currentPrice", h.CurrentPrice},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return &ValidationError{Symbol: h.Symbol, Field: f.name, Value: f.value}
		}
	}
	return nil
}

type figure struct {
	name  string
	value float64
}

// checkFinite reports the first figure that is NaN or infinite.
func checkFinite(symbol string, figures ...figure) error {
	for _, f := range figures {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{Symbol: symbol, Field: f.name, Value: f.value}
		}
	}
	return nil
}

// percentOf returns part/whole*100, or 0 when whole is 0.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

func round(d decimal.Decimal) float64 {
	return d.Round(Places).InexactFloat64()
}
