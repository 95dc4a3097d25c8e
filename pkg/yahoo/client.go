package yahoo

import (
	"context"
	"fmt"
	"time"

	"portfolio-analytics-api/internal/models"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"previousClose"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) Name() string { return "yahoo" }

func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body ChartResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{"interval": "1d", "range": "1d"}).
		SetResult(&body).
		Get("/{symbol}")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo finance returned status %d", resp.StatusCode())
	}

	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol %s", symbol)
	}

	meta := body.Chart.Result[0].Meta
	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}

	change := meta.RegularMarketPrice - previousClose
	changePercent := 0.0
	if previousClose > 0 {
		changePercent = (change / previousClose) * 100
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        meta.RegularMarketVolume,
		LastUpdated:   time.Now(),
		Source:        c.Name(),
	}, nil
}
