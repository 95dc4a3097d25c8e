package datasource

import (
	"context"

	"portfolio-analytics-api/internal/models"

	"github.com/rs/zerolog"
)

// Quoter fetches the latest quotes for a batch of ticker symbols. Missing
// symbols are simply absent from the result.
type Quoter interface {
	FetchBatch(ctx context.Context, symbols []string) (map[string]*models.Quote, error)
}

// Priced replaces each holding's current price with a live quote when one is
// available. When the quote sources fail it serves the underlying prices.
type Priced struct {
	base   Provider
	quotes Quoter
	suffix string
	log    zerolog.Logger
}

// NewPriced wraps base. suffix is appended to symbols when querying quotes,
// e.g. ".NS" for NSE listings on Yahoo.
func NewPriced(base Provider, quotes Quoter, suffix string, log zerolog.Logger) *Priced {
	return &Priced{
		base:   base,
		quotes: quotes,
		suffix: suffix,
		log:    log.With().Str("component", "priced").Logger(),
	}
}

func (p *Priced) Holdings(ctx context.Context) ([]models.Holding, error) {
	holdings, err := p.base.Holdings(ctx)
	if err != nil || len(holdings) == 0 {
		return holdings, err
	}

	quotes, err := p.quotes.FetchBatch(ctx, p.Symbols(holdings))
	if err != nil {
		p.log.Warn().Err(err).Msg("live quotes unavailable, serving stored prices")
		return holdings, nil
	}

	priced := 0
	for i := range holdings {
		q, ok := quotes[holdings[i].Symbol+p.suffix]
		if !ok || q == nil || q.Price <= 0 {
			continue
		}
		holdings[i].CurrentPrice = q.Price
		priced++
	}

	p.log.Debug().Int("priced", priced).Int("holdings", len(holdings)).Msg("applied live quotes")
	return holdings, nil
}

func (p *Priced) Performance(ctx context.Context) (models.Performance, error) {
	return p.base.Performance(ctx)
}

func (p *Priced) Ping(ctx context.Context) error {
	if pinger, ok := p.base.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Symbols returns the quote symbols for holdings in input order.
func (p *Priced) Symbols(holdings []models.Holding) []string {
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol+p.suffix)
	}
	return symbols
}

// Warm fetches quotes for every current holding so the quote cache is hot
// before the next request.
func (p *Priced) Warm(ctx context.Context) error {
	holdings, err := p.base.Holdings(ctx)
	if err != nil {
		return err
	}
	_, err = p.quotes.FetchBatch(ctx, p.Symbols(holdings))
	return err
}
