package yahoo

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
	var gotPath, gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":3850.25,"previousClose":3800,"regularMarketVolume":1200}}],"error":null}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 2*time.Second)
	q, err := c.GetQuote(context.Background(), "TCS.NS")
	require.NoError(t, err)

	assert.Equal(t, "/TCS.NS", gotPath)
	assert.Equal(t, "1d", gotRange)
	assert.Equal(t, "TCS.NS", q.Symbol)
	assert.Equal(t, 3850.25, q.Price)
	assert.Equal(t, 50.25, q.Change)
	assert.InDelta(t, 1.3224, q.ChangePercent, 0.0001)
	assert.Equal(t, int64(1200), q.Volume)
	assert.Equal(t, "yahoo", q.Source)
}

func TestClient_GetQuote_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusTooManyRequests, `{}`, "status 429"},
		{"chart error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, "No data found"},
		{"empty result", http.StatusOK, `{"chart":{"result":[]}}`, "no data returned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, time.Second).GetQuote(context.Background(), "BAD")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
