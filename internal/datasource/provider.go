// Package datasource supplies raw holdings and performance data to the
// analytics layer. Implementations read from an embedded fixture, Firestore or
// Postgres; Priced overlays live quotes on any of them.
package datasource

import (
	"context"
	"errors"

	"portfolio-analytics-api/internal/models"
)

var (
	ErrNotFound    = errors.New("portfolio data not found")
	ErrUnavailable = errors.New("portfolio data source unavailable")
)

// Provider is the source of holdings and performance data. Every call returns
// a fresh holdings slice owned by the caller.
type Provider interface {
	Holdings(ctx context.Context) ([]models.Holding, error)
	Performance(ctx context.Context) (models.Performance, error)
}

// Pinger is implemented by providers backed by a remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}
