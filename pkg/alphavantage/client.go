package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolio-analytics-api/internal/models"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://www.alphavantage.co"

var ErrNotConfigured = errors.New("alpha vantage not configured")

type Client struct {
	apiKey string
	client *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

type GlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Price            string `json:"05. price"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
	} `json:"Global Quote"`
	Note string `json:"Note"`
}

func (c *Client) Name() string { return "alphavantage" }

func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var body GlobalQuoteResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   c.apiKey,
		}).
		SetResult(&body).
		Get("/query")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode())
	}

	if body.Note != "" {
		return nil, fmt.Errorf("alpha vantage throttled: %s", body.Note)
	}
	if body.GlobalQuote.Symbol == "" {
		return nil, fmt.Errorf("no data returned for symbol %s", symbol)
	}

	price, err := strconv.ParseFloat(body.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", body.GlobalQuote.Price, err)
	}
	change, _ := strconv.ParseFloat(body.GlobalQuote.Change, 64)
	volume, _ := strconv.ParseInt(body.GlobalQuote.Volume, 10, 64)
	changePercent, _ := strconv.ParseFloat(strings.TrimSuffix(body.GlobalQuote.ChangePercent, "%"), 64)

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		LastUpdated:   time.Now(),
		Source:        c.Name(),
	}, nil
}
