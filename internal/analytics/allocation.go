package analytics

import (
	"portfolio-analytics-api/internal/models"

	"github.com/shopspring/decimal"
)

// Allocate groups portfolio value by sector and by market cap. Buckets keep the
// order in which their label first appears in holdings. With a zero total every
// percentage is 0.
func Allocate(holdings []models.EnrichedHolding) models.Allocation {
	total := totalValue(holdings)

	return models.Allocation{
		BySector:    group(holdings, total, func(h models.EnrichedHolding) string { return h.Sector }),
		ByMarketCap: group(holdings, total, func(h models.EnrichedHolding) string { return string(h.MarketCap) }),
		TotalValue:  round(total),
	}
}

func group(holdings []models.EnrichedHolding, total decimal.Decimal, key func(models.EnrichedHolding) string) models.Buckets {
	var order []string
	sums := make(map[string]decimal.Decimal)

	for _, h := range holdings {
		k := key(h)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(decimal.NewFromFloat(h.Value))
	}

	var buckets models.Buckets
	for _, k := range order {
		value := sums[k].Round(Places)
		buckets.Set(k, models.AllocationBucket{
			Value:      round(value),
			Percentage: round(percentOf(value, total)),
		})
	}
	return buckets
}

// totalValue sums the rounded holding values, so every view reports the same total.
func totalValue(holdings []models.EnrichedHolding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(decimal.NewFromFloat(h.Value))
	}
	return total
}

func totalInvested(holdings []models.EnrichedHolding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(decimal.NewFromFloat(h.AvgPrice).Mul(decimal.NewFromFloat(h.Quantity)))
	}
	return total
}
