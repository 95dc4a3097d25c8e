package datasource

import (
	"context"
	"errors"
	"testing"

	"portfolio-analytics-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoter struct {
	quotes map[string]*models.Quote
	err    error
	asked  [][]string
}

func (q *fakeQuoter) FetchBatch(_ context.Context, symbols []string) (map[string]*models.Quote, error) {
	q.asked = append(q.asked, symbols)
	return q.quotes, q.err
}

type failingProvider struct{ err error }

func (p failingProvider) Holdings(context.Context) ([]models.Holding, error) { return nil, p.err }
func (p failingProvider) Performance(context.Context) (models.Performance, error) {
	return models.Performance{}, p.err
}

func testFixture(t *testing.T) *Fixture {
	t.Helper()
	f, err := ParseFixture([]byte(`
holdings:
  - {symbol: TCS, name: TCS, quantity: 1, avgPrice: 100, currentPrice: 110, sector: Technology, marketCap: Large}
  - {symbol: INFY, name: Infosys, quantity: 2, avgPrice: 50, currentPrice: 60, sector: Technology, marketCap: Large}
`))
	require.NoError(t, err)
	return f
}

func TestPriced_OverlaysQuotes(t *testing.T) {
	quoter := &fakeQuoter{quotes: map[string]*models.Quote{
		"TCS.NS":  {Symbol: "TCS.NS", Price: 125.5},
		"INFY.NS": {Symbol: "INFY.NS", Price: 0},
	}}
	p := NewPriced(testFixture(t), quoter, ".NS", zerolog.Nop())

	holdings, err := p.Holdings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"TCS.NS", "INFY.NS"}}, quoter.asked)
	assert.Equal(t, 125.5, holdings[0].CurrentPrice)
	assert.Equal(t, 60.0, holdings[1].CurrentPrice, "zero quotes are ignored")
}

func TestPriced_FallsBackWhenQuotesFail(t *testing.T) {
	quoter := &fakeQuoter{err: errors.New("all fetches failed")}
	p := NewPriced(testFixture(t), quoter, "", zerolog.Nop())

	holdings, err := p.Holdings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 110.0, holdings[0].CurrentPrice)
}

func TestPriced_PropagatesProviderErrors(t *testing.T) {
	quoter := &fakeQuoter{}
	p := NewPriced(failingProvider{err: ErrUnavailable}, quoter, "", zerolog.Nop())

	_, err := p.Holdings(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, quoter.asked)

	_, err = p.Performance(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, p.Warm(context.Background()), ErrUnavailable)
}

func TestPriced_Warm(t *testing.T) {
	quoter := &fakeQuoter{quotes: map[string]*models.Quote{}}
	p := NewPriced(testFixture(t), quoter, ".BO", zerolog.Nop())

	require.NoError(t, p.Warm(context.Background()))
	assert.Equal(t, [][]string{{"TCS.BO", "INFY.BO"}}, quoter.asked)
}
