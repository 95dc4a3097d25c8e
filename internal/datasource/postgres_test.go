package datasource

import (
	"testing"

	"portfolio-analytics-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAssemblePerformance(t *testing.T) {
	rows := []timelineRow{
		{Date: "2024-01-01", Series: "gold", Value: 63280},
		{Date: "2024-01-01", Series: "nifty50", Value: 21741},
		{Date: "2024-01-01", Series: "portfolio", Value: 1298500},
		{Date: "2024-03-01", Series: "portfolio", Value: 1450200},
		{Date: "2024-03-01", Series: "gold", Value: 64550},
	}
	returns := []returnsRow{
		{Series: "gold", OneMonth: 0.5, ThreeMonths: 11.2, OneYear: 15.1},
	}

	perf := assemblePerformance(rows, returns)

	assert.Equal(t, []models.TimelinePoint{
		{Date: "2024-01-01", Portfolio: 1298500, Benchmarks: map[string]float64{"gold": 63280, "nifty50": 21741}},
		{Date: "2024-03-01", Portfolio: 1450200, Benchmarks: map[string]float64{"gold": 64550}},
	}, perf.Timeline)
	assert.Equal(t, map[string]models.ReturnSet{
		"gold": {OneMonth: 0.5, ThreeMonths: 11.2, OneYear: 15.1},
	}, perf.Returns)
}

func TestAssemblePerformance_Empty(t *testing.T) {
	perf := assemblePerformance(nil, nil)

	assert.NotNil(t, perf.Timeline)
	assert.Empty(t, perf.Timeline)
	assert.Empty(t, perf.Returns)
}
