package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"portfolio-analytics-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixture_EmbeddedSample(t *testing.T) {
	f, err := NewFixture("")
	require.NoError(t, err)

	holdings, err := f.Holdings(context.Background())
	require.NoError(t, err)
	require.Len(t, holdings, 10)

	assert.Equal(t, models.Holding{
		Symbol:       "RELIANCE",
		Name:         "Reliance Industries Ltd",
		Quantity:     50,
		AvgPrice:     2450,
		CurrentPrice: 2830.5,
		Sector:       "Energy",
		MarketCap:    models.MarketCapLarge,
	}, holdings[0])
	assert.Equal(t, "Adani Ports & SEZ Ltd", holdings[8].Name)
	assert.Equal(t, "ZOMATO", holdings[9].Symbol)
	assert.Equal(t, models.MarketCapSmall, holdings[9].MarketCap)

	perf, err := f.Performance(context.Background())
	require.NoError(t, err)
	require.Len(t, perf.Timeline, 4)
	assert.Equal(t, "2024-01-01", perf.Timeline[0].Date)
	assert.Equal(t, 1298500.0, perf.Timeline[0].Portfolio)
	assert.Equal(t, map[string]float64{"nifty50": 21741, "gold": 63280}, perf.Timeline[0].Benchmarks)
	assert.Equal(t, models.ReturnSet{OneMonth: 3.1, ThreeMonths: 10.6, OneYear: 25.4}, perf.Returns["portfolio"])
	assert.Len(t, perf.Returns, 3)
}

func TestFixture_HoldingsAreCopies(t *testing.T) {
	f, err := NewFixture("")
	require.NoError(t, err)

	first, _ := f.Holdings(context.Background())
	first[0].CurrentPrice = 1

	second, _ := f.Holdings(context.Background())
	assert.Equal(t, 2830.5, second[0].CurrentPrice)
}

func TestNewFixture_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
holdings:
  - {symbol: A, name: Alpha, quantity: 10, avgPrice: 100, currentPrice: 110, sector: Tech, marketCap: Large}
`), 0o600))

	f, err := NewFixture(path)
	require.NoError(t, err)

	holdings, _ := f.Holdings(context.Background())
	require.Len(t, holdings, 1)
	assert.Equal(t, 110.0, holdings[0].CurrentPrice)

	perf, _ := f.Performance(context.Background())
	assert.Empty(t, perf.Timeline)
}

func TestParseFixture_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"malformed yaml", "holdings: [", "parse fixture"},
		{"missing symbol", "holdings:\n  - {name: X}\n", "without symbol"},
		{"duplicate symbol", "holdings:\n  - {symbol: A}\n  - {symbol: A}\n", `duplicate symbol "A"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := NewFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
