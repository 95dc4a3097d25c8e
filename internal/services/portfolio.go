package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"portfolio-analytics-api/internal/analytics"
	"portfolio-analytics-api/internal/datasource"
	"portfolio-analytics-api/internal/models"

	"github.com/rs/zerolog"
)

// PortfolioService loads holdings from the provider and derives every view
// from scratch on each call.
type PortfolioService struct {
	provider datasource.Provider
	opts     analytics.SummaryOptions
	log      zerolog.Logger
}

func NewPortfolioService(provider datasource.Provider, opts analytics.SummaryOptions, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		provider: provider,
		opts:     opts,
		log:      log.With().Str("component", "portfolio").Logger(),
	}
}

// Report bundles the three derived views computed from a single provider read
type Report struct {
	Holdings   []models.EnrichedHolding
	Allocation models.Allocation
	Summary    models.PortfolioSummary
}

// Holdings returns enriched holdings in provider order, or sorted when sort is set.
func (s *PortfolioService) Holdings(ctx context.Context, sort HoldingSort) ([]models.EnrichedHolding, error) {
	holdings, err := s.enriched(ctx)
	if err != nil {
		return nil, err
	}
	sort.Apply(holdings)
	return holdings, nil
}

func (s *PortfolioService) Allocation(ctx context.Context) (models.Allocation, error) {
	holdings, err := s.enriched(ctx)
	if err != nil {
		return models.Allocation{}, err
	}
	return analytics.Allocate(holdings), nil
}

func (s *PortfolioService) Summary(ctx context.Context) (models.PortfolioSummary, error) {
	holdings, err := s.enriched(ctx)
	if err != nil {
		return models.PortfolioSummary{}, err
	}
	return analytics.Summarize(holdings, s.opts), nil
}

// Performance passes the provider's timeline and returns through untouched
func (s *PortfolioService) Performance(ctx context.Context) (models.Performance, error) {
	perf, err := s.provider.Performance(ctx)
	if err != nil {
		return models.Performance{}, fmt.Errorf("load performance: %w", err)
	}
	return perf, nil
}

func (s *PortfolioService) Report(ctx context.Context) (Report, error) {
	holdings, err := s.enriched(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Holdings:   holdings,
		Allocation: analytics.Allocate(holdings),
		Summary:    analytics.Summarize(holdings, s.opts),
	}, nil
}

// Ping checks the provider when it is backed by a remote store
func (s *PortfolioService) Ping(ctx context.Context) error {
	if p, ok := s.provider.(datasource.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.provider.Holdings(ctx)
	return err
}

func (s *PortfolioService) enriched(ctx context.Context) ([]models.EnrichedHolding, error) {
	raw, err := s.provider.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	holdings, err := analytics.EnrichAll(raw)
	if err != nil {
		s.log.Error().Err(err).Msg("holding data rejected")
		return nil, err
	}

	s.log.Debug().Int("holdings", len(holdings)).Msg("holdings enriched")
	return holdings, nil
}

// HoldingSort orders enriched holdings by one field. The zero value keeps input order.
type HoldingSort struct {
	Field      string
	Descending bool
}

var sortKeys = map[string]func(a, b models.EnrichedHolding) int{
	"symbol":          func(a, b models.EnrichedHolding) int { return strings.Compare(a.Symbol, b.Symbol) },
	"name":            func(a, b models.EnrichedHolding) int { return strings.Compare(a.Name, b.Name) },
	"quantity":        func(a, b models.EnrichedHolding) int { return cmp.Compare(a.Quantity, b.Quantity) },
	"value":           func(a, b models.EnrichedHolding) int { return cmp.Compare(a.Value, b.Value) },
	"gainLoss":        func(a, b models.EnrichedHolding) int { return cmp.Compare(a.GainLoss, b.GainLoss) },
	"gainLossPercent": func(a, b models.EnrichedHolding) int { return cmp.Compare(a.GainLossPercent, b.GainLossPercent) },
	"sector":          func(a, b models.EnrichedHolding) int { return strings.Compare(a.Sector, b.Sector) },
	"marketCap":       func(a, b models.EnrichedHolding) int { return strings.Compare(string(a.MarketCap), string(b.MarketCap)) },
}

// ParseHoldingSort validates the sort and order query values. An empty field
// means no sorting; order defaults to ascending.
func ParseHoldingSort(field, order string) (HoldingSort, error) {
	if field == "" {
		return HoldingSort{}, nil
	}
	if _, ok := sortKeys[field]; !ok {
		return HoldingSort{}, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}

	switch strings.ToLower(order) {
	case "", "asc":
		return HoldingSort{Field: field}, nil
	case "desc":
		return HoldingSort{Field: field, Descending: true}, nil
	default:
		return HoldingSort{}, fmt.Errorf("%w: unknown order %q", ErrInvalidSort, order)
	}
}

// Apply sorts holdings in place. Equal keys keep their input order.
func (o HoldingSort) Apply(holdings []models.EnrichedHolding) {
	compare, ok := sortKeys[o.Field]
	if !ok {
		return
	}
	slices.SortStableFunc(holdings, func(a, b models.EnrichedHolding) int {
		if o.Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
}
