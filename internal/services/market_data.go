package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio-analytics-api/internal/models"

	"github.com/rs/zerolog"
)

// QuoteSource is a market data vendor
type QuoteSource interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

var ErrNoQuoteSources = errors.New("no quote sources configured")

// MarketDataService handles concurrent market data fetching
type MarketDataService struct {
	cache        *QuoteCache
	sources      []QuoteSource
	workerPool   chan struct{} // Semaphore for bounded concurrency
	fetchTimeout time.Duration
	log          zerolog.Logger
}

func NewMarketDataService(cache *QuoteCache, maxConcurrent int, fetchTimeout time.Duration, log zerolog.Logger, sources ...QuoteSource) *MarketDataService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &MarketDataService{
		cache:        cache,
		sources:      sources,
		workerPool:   make(chan struct{}, maxConcurrent),
		fetchTimeout: fetchTimeout,
		log:          log.With().Str("component", "market_data").Logger(),
	}
}

// FetchBatch fetches quotes for multiple tickers concurrently using worker pool pattern.
// It fails only when every ticker failed.
func (s *MarketDataService) FetchBatch(ctx context.Context, tickers []string) (map[string]*models.Quote, error) {
	results := make(map[string]*models.Quote, len(tickers))
	if len(tickers) == 0 {
		return results, nil
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	for _, ticker := range tickers {
		wg.Add(1)

		go func(symbol string) {
			defer wg.Done()

			// Acquire worker slot (bounded concurrency)
			select {
			case s.workerPool <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				errs = append(errs, ctx.Err())
				mu.Unlock()
				return
			}
			defer func() { <-s.workerPool }()

			fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			q, err := s.FetchQuote(fetchCtx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to fetch %s: %w", symbol, err))
				return
			}
			results[symbol] = q
		}(ticker)
	}

	wg.Wait()

	if len(errs) > 0 {
		s.log.Warn().Int("failed", len(errs)).Int("fetched", len(results)).Msg("some quotes could not be fetched")
	}
	if len(errs) > 0 && len(results) == 0 {
		return nil, fmt.Errorf("all fetches failed: %w", errs[0])
	}

	return results, nil
}

// FetchQuote fetches a single quote, serving from cache when possible. All
// sources are queried concurrently and the first success wins.
func (s *MarketDataService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if cached, found := s.cache.Get(ctx, symbol); found {
		return cached, nil
	}

	if len(s.sources) == 0 {
		return nil, ErrNoQuoteSources
	}

	type result struct {
		quote *models.Quote
		err   error
	}

	// Fan-out
	resultCh := make(chan result, len(s.sources))
	for _, src := range s.sources {
		go func(src QuoteSource) {
			q, err := src.GetQuote(ctx, symbol)
			if err != nil {
				err = fmt.Errorf("%s: %w", src.Name(), err)
			}
			resultCh <- result{q, err}
		}(src)
	}

	// Fan-in: use first successful result
	var errs []error
	for range s.sources {
		select {
		case res := <-resultCh:
			if res.err != nil {
				errs = append(errs, res.err)
				continue
			}
			if err := s.cache.Set(ctx, symbol, res.quote); err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("can't cache quote")
			}
			return res.quote, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("all sources failed for %s: %w", symbol, errors.Join(errs...))
}
