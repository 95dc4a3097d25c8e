package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Global Quote":{"01. symbol":"INFY","05. price":"1655.50","09. change":"-4.50","10. change percent":"-0.2711%","06. volume":"98765"}}`))
	}))
	defer server.Close()

	q, err := NewClient(server.URL, "secret", time.Second).GetQuote(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, 1655.5, q.Price)
	assert.Equal(t, -4.5, q.Change)
	assert.Equal(t, -0.2711, q.ChangePercent)
	assert.Equal(t, int64(98765), q.Volume)
	assert.Equal(t, "alphavantage", q.Source)
}

func TestClient_GetQuote_NotConfigured(t *testing.T) {
	_, err := NewClient("", "", time.Second).GetQuote(context.Background(), "INFY")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_GetQuote_Throttled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "secret", time.Second).GetQuote(context.Background(), "INFY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
