package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MarketCap is the capitalisation tier of a listed company
type MarketCap string

const (
	MarketCapSmall MarketCap = "Small"
	MarketCapMid   MarketCap = "Mid"
	MarketCapLarge MarketCap = "Large"
)

// Holding represents a single stock position as supplied by a data source
type Holding struct {
	Symbol       string    `json:"symbol" yaml:"symbol" firestore:"symbol" db:"symbol"`
	Name         string    `json:"name" yaml:"name" firestore:"name" db:"name"`
	Quantity     float64   `json:"quantity" yaml:"quantity" firestore:"quantity" db:"quantity"`
	AvgPrice     float64   `json:"avgPrice" yaml:"avgPrice" firestore:"avgPrice" db:"avg_price"`
	CurrentPrice float64   `json:"currentPrice" yaml:"currentPrice" firestore:"currentPrice" db:"current_price"`
	Sector       string    `json:"sector" yaml:"sector" firestore:"sector" db:"sector"`
	MarketCap    MarketCap `json:"marketCap" yaml:"marketCap" firestore:"marketCap" db:"market_cap"`
}

// EnrichedHolding is a holding plus its derived metrics, rounded to 2 decimals
type EnrichedHolding struct {
	Holding
	Value           float64 `json:"value"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// AllocationBucket is the share of portfolio value held in one category
type AllocationBucket struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// Buckets maps category labels to allocation buckets and remembers the order
// in which each label was first set. It marshals to a JSON object in that order.
type Buckets struct {
	keys  []string
	items map[string]AllocationBucket
}

// Set stores the bucket for key, appending key to the order if it is new
func (b *Buckets) Set(key string, bucket AllocationBucket) {
	if b.items == nil {
		b.items = make(map[string]AllocationBucket)
	}
	if _, ok := b.items[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.items[key] = bucket
}

// Get returns the bucket stored for key
func (b Buckets) Get(key string) (AllocationBucket, bool) {
	bucket, ok := b.items[key]
	return bucket, ok
}

// Keys returns the labels in first-sighting order
func (b Buckets) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

func (b Buckets) Len() int { return len(b.keys) }

func (b Buckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(b.items[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Allocation is the allocation view of a portfolio
type Allocation struct {
	BySector    Buckets `json:"bySector"`
	ByMarketCap Buckets `json:"byMarketCap"`
	TotalValue  float64 `json:"totalValue"`
}

// Performer identifies the best or worst holding by percentage return
type Performer struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// PortfolioSummary holds portfolio-wide totals and headline statistics.
// TopPerformer and WorstPerformer are nil when the portfolio has no holdings.
type PortfolioSummary struct {
	TotalValue           float64    `json:"totalValue"`
	TotalInvested        float64    `json:"totalInvested"`
	TotalGainLoss        float64    `json:"totalGainLoss"`
	TotalGainLossPercent float64    `json:"totalGainLossPercent"`
	NumberOfHoldings     int        `json:"numberOfHoldings"`
	TopPerformer         *Performer `json:"topPerformer"`
	WorstPerformer       *Performer `json:"worstPerformer"`
	DiversificationScore float64    `json:"diversificationScore"`
	RiskLevel            string     `json:"riskLevel"`
	RiskModel            string     `json:"riskModel"`
}

// TimelinePoint is one dated observation of the portfolio and its benchmarks.
// Benchmarks are flattened next to date and portfolio in JSON and YAML.
type TimelinePoint struct {
	Date       string             `json:"date" yaml:"date" firestore:"date"`
	Portfolio  float64            `json:"portfolio" yaml:"portfolio" firestore:"portfolio"`
	Benchmarks map[string]float64 `json:"-" yaml:",inline" firestore:"benchmarks"`
}

func (p TimelinePoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Benchmarks)+2)
	for name, value := range p.Benchmarks {
		out[name] = value
	}
	out["date"] = p.Date
	out["portfolio"] = p.Portfolio
	return json.Marshal(out)
}

func (p *TimelinePoint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = TimelinePoint{Benchmarks: make(map[string]float64)}
	for key, value := range raw {
		switch key {
		case "date":
			if err := json.Unmarshal(value, &p.Date); err != nil {
				return fmt.Errorf("timeline date: %w", err)
			}
		case "portfolio":
			if err := json.Unmarshal(value, &p.Portfolio); err != nil {
				return fmt.Errorf("timeline portfolio: %w", err)
			}
		default:
			var v float64
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("timeline benchmark %q: %w", key, err)
			}
			p.Benchmarks[key] = v
		}
	}
	return nil
}

// ReturnSet holds percentage returns over the standard horizons
type ReturnSet struct {
	OneMonth    float64 `json:"1month" yaml:"1month" firestore:"1month"`
	ThreeMonths float64 `json:"3months" yaml:"3months" firestore:"3months"`
	OneYear     float64 `json:"1year" yaml:"1year" firestore:"1year"`
}

// Performance is the externally supplied time series and returns table
type Performance struct {
	Timeline []TimelinePoint     `json:"timeline" yaml:"timeline" firestore:"timeline"`
	Returns  map[string]ReturnSet `json:"returns" yaml:"returns" firestore:"returns"`
}

// Quote represents the latest market price for a ticker
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Source        string    `json:"source"` // "alphavantage" or "yahoo"
}

// Response is the success envelope returned by every API route
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   *int `json:"count,omitempty"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
