package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-analytics-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name   string
	prices map[string]float64
	delay  time.Duration
	calls  atomic.Int32
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	price, ok := s.prices[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return &models.Quote{Symbol: symbol, Price: price, Source: s.name}, nil
}

func newMarketData(t *testing.T, sources ...QuoteSource) *MarketDataService {
	t.Helper()
	cache := NewQuoteCache(time.Minute, nil, zerolog.Nop())
	t.Cleanup(func() { _ = cache.Close() })
	return NewMarketDataService(cache, 2, time.Second, zerolog.Nop(), sources...)
}

func TestMarketData_FetchQuote_FallsBack(t *testing.T) {
	broken := &fakeSource{name: "broken"}
	working := &fakeSource{name: "working", prices: map[string]float64{"TCS": 3850.25}, delay: 10 * time.Millisecond}
	svc := newMarketData(t, broken, working)

	q, err := svc.FetchQuote(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, "working", q.Source)
	assert.Equal(t, 3850.25, q.Price)
}

func TestMarketData_FetchQuote_UsesCache(t *testing.T) {
	src := &fakeSource{name: "yahoo", prices: map[string]float64{"INFY": 1655.5}}
	svc := newMarketData(t, src)

	_, err := svc.FetchQuote(context.Background(), "INFY")
	require.NoError(t, err)
	_, err = svc.FetchQuote(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestMarketData_FetchQuote_AllFail(t *testing.T) {
	svc := newMarketData(t, &fakeSource{name: "a"}, &fakeSource{name: "b"})

	_, err := svc.FetchQuote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all sources failed for NOPE")
	assert.Contains(t, err.Error(), "a: unknown symbol")
	assert.Contains(t, err.Error(), "b: unknown symbol")
}

func TestMarketData_FetchQuote_NoSources(t *testing.T) {
	_, err := newMarketData(t).FetchQuote(context.Background(), "TCS")
	assert.ErrorIs(t, err, ErrNoQuoteSources)
}

func TestMarketData_FetchBatch(t *testing.T) {
	src := &fakeSource{name: "yahoo", prices: map[string]float64{"TCS": 1, "INFY": 2, "ZOMATO": 3}}
	svc := newMarketData(t, src)

	quotes, err := svc.FetchBatch(context.Background(), []string{"TCS", "INFY", "ZOMATO", "MISSING"})
	require.NoError(t, err)
	assert.Len(t, quotes, 3)
	assert.Equal(t, 2.0, quotes["INFY"].Price)
	assert.NotContains(t, quotes, "MISSING")
}

func TestMarketData_FetchBatch_AllFail(t *testing.T) {
	svc := newMarketData(t, &fakeSource{name: "yahoo"})

	_, err := svc.FetchBatch(context.Background(), []string{"X", "Y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all fetches failed")
}

func TestMarketData_FetchBatch_Empty(t *testing.T) {
	quotes, err := newMarketData(t).FetchBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
