package analytics

import (
	"testing"

	"portfolio-analytics-api/internal/models"

	"github.com/stretchr/testify/require"
)

func holding(symbol string, qty, avg, cur float64, sector string, mc models.MarketCap) models.Holding {
	return models.Holding{
		Symbol:       symbol,
		Name:         symbol + " Ltd",
		Quantity:     qty,
		AvgPrice:     avg,
		CurrentPrice: cur,
		Sector:       sector,
		MarketCap:    mc,
	}
}

func enrichAll(t *testing.T, holdings ...models.Holding) []models.EnrichedHolding {
	t.Helper()
	out, err := EnrichAll(holdings)
	require.NoError(t, err)
	return out
}

// scenarioAB is the two-holding portfolio used across the package tests.
func scenarioAB() []models.Holding {
	return []models.Holding{
		holding("A", 10, 100, 110, "Tech", models.MarketCapLarge),
		holding("B", 5, 200, 180, "Energy", models.MarketCapMid),
	}
}

func sampleHoldings() []models.Holding {
	return []models.Holding{
		holding("RELIANCE", 50, 2450.00, 2830.50, "Energy", models.MarketCapLarge),
		holding("TCS", 75, 3200.00, 3850.25, "Technology", models.MarketCapLarge),
		holding("HDFCBANK", 100, 1550.00, 1480.75, "Banking", models.MarketCapLarge),
		holding("INFY", 120, 1400.00, 1655.50, "Technology", models.MarketCapLarge),
		holding("ICICIBANK", 150, 980.00, 1150.00, "Banking", models.MarketCapLarge),
		holding("BHARTIARTL", 200, 850.00, 1210.80, "Telecommunication", models.MarketCapLarge),
		holding("SUNPHARMA", 80, 1100.00, 1495.00, "Healthcare", models.MarketCapMid),
		holding("TATAMOTORS", 250, 650.00, 975.30, "Automobile", models.MarketCapMid),
		holding("ADANIPORTS", 180, 780.00, 1350.60, "Infrastructure", models.MarketCapMid),
		holding("ZOMATO", 500, 120.00, 185.20, "Technology", models.MarketCapSmall),
	}
}
