package analytics

import (
	"portfolio-analytics-api/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultSectorTaxonomySize is the assumed number of sector categories a fully
// diversified portfolio would span.
const DefaultSectorTaxonomySize = 10

type SummaryOptions struct {
	// SectorTaxonomySize is the denominator of the diversification score.
	SectorTaxonomySize int
	Risk               RiskAssessor
}

func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		SectorTaxonomySize: DefaultSectorTaxonomySize,
		Risk:               StaticRisk{},
	}
}

// Summarize computes the portfolio-wide summary. An empty portfolio yields zero
// totals and nil performers.
func Summarize(holdings []models.EnrichedHolding, opts SummaryOptions) models.PortfolioSummary {
	value := totalValue(holdings)
	invested := totalInvested(holdings)
	gainLoss := value.Sub(invested)

	risk := opts.Risk
	if risk == nil {
		risk = StaticRisk{}
	}

	summary := models.PortfolioSummary{
		TotalValue:           round(value),
		TotalInvested:        round(invested),
		TotalGainLoss:        round(gainLoss),
		TotalGainLossPercent: round(percentOf(gainLoss, invested)),
		NumberOfHoldings:     len(holdings),
		DiversificationScore: DiversificationScore(holdings, opts.SectorTaxonomySize),
		RiskLevel:            string(risk.Assess(holdings)),
		RiskModel:            risk.Name(),
	}

	// ErrEmptyPortfolio is the only failure and leaves both performers nil.
	if top, worst, err := Performers(holdings); err == nil {
		summary.TopPerformer = performer(top)
		summary.WorstPerformer = performer(worst)
	}

	return summary
}

// Performers returns the holdings with the highest and lowest gain/loss percent.
// On ties the earliest holding in input order wins.
func Performers(holdings []models.EnrichedHolding) (top, worst models.EnrichedHolding, err error) {
	if len(holdings) == 0 {
		return top, worst, ErrEmptyPortfolio
	}

	top, worst = holdings[0], holdings[0]
	for _, h := range holdings[1:] {
		if h.GainLossPercent > top.GainLossPercent {
			top = h
		}
		if h.GainLossPercent < worst.GainLossPercent {
			worst = h
		}
	}
	return top, worst, nil
}

// DiversificationScore is the number of distinct sectors over taxonomySize, as a
// percentage rounded to one decimal and capped at 100.
func DiversificationScore(holdings []models.EnrichedHolding, taxonomySize int) float64 {
	if taxonomySize <= 0 {
		return 0
	}

	sectors := make(map[string]struct{})
	for _, h := range holdings {
		sectors[h.Sector] = struct{}{}
	}

	score := decimal.NewFromInt(int64(len(sectors))).
		Div(decimal.NewFromInt(int64(taxonomySize))).
		Mul(hundred)
	if score.GreaterThan(hundred) {
		score = hundred
	}
	return score.Round(1).InexactFloat64()
}

func performer(h models.EnrichedHolding) *models.Performer {
	return &models.Performer{
		Symbol:          h.Symbol,
		Name:            h.Name,
		GainLossPercent: h.GainLossPercent,
	}
}
