package analytics

import (
	"fmt"
	"strings"

	"portfolio-analytics-api/internal/models"

	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

const (
	RiskModelStatic        = "static"
	RiskModelConcentration = "concentration"
)

// RiskAssessor labels the risk of a set of holdings
type RiskAssessor interface {
	Name() string
	Assess(holdings []models.EnrichedHolding) RiskLevel
}

// NewRiskAssessor returns the assessor registered under model.
func NewRiskAssessor(model string) (RiskAssessor, error) {
	switch strings.ToLower(strings.TrimSpace(model)) {
	case "", RiskModelStatic:
		return StaticRisk{}, nil
	case RiskModelConcentration:
		return ConcentrationRisk{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRiskModel, model)
	}
}

// StaticRisk reports the same level for every portfolio. Risk is not yet
// derived from holdings data under this model; Level defaults to Moderate.
type StaticRisk struct {
	Level RiskLevel
}

func (r StaticRisk) Name() string { return RiskModelStatic }

func (r StaticRisk) Assess([]models.EnrichedHolding) RiskLevel {
	if r.Level == "" {
		return RiskModerate
	}
	return r.Level
}

// Herfindahl index bands over sector weights.
var (
	lowConcentration      = decimal.RequireFromString("0.15")
	moderateConcentration = decimal.RequireFromString("0.25")
)

// ConcentrationRisk grades the sector concentration of a portfolio using the
// Herfindahl index of sector weights.
type ConcentrationRisk struct{}

func (ConcentrationRisk) Name() string { return RiskModelConcentration }

func (ConcentrationRisk) Assess(holdings []models.EnrichedHolding) RiskLevel {
	hhi, ok := SectorHerfindahl(holdings)
	switch {
	case !ok, hhi.LessThan(lowConcentration):
		return RiskLow
	case hhi.LessThan(moderateConcentration):
		return RiskModerate
	default:
		return RiskHigh
	}
}

// SectorHerfindahl returns the sum of squared sector weights. ok is false when
// the portfolio has no value to weigh.
func SectorHerfindahl(holdings []models.EnrichedHolding) (hhi decimal.Decimal, ok bool) {
	total := totalValue(holdings)
	if total.IsZero() {
		return decimal.Zero, false
	}

	sums := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		sums[h.Sector] = sums[h.Sector].Add(decimal.NewFromFloat(h.Value))
	}

	hhi = decimal.Zero
	for _, v := range sums {
		w := v.Div(total)
		hhi = hhi.Add(w.Mul(w))
	}
	return hhi, true
}
