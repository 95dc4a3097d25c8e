package datasource

import (
	"context"
	"fmt"

	"portfolio-analytics-api/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	holdingsCollection    = "holdings"
	performanceCollection = "performance"
	performanceDoc        = "current"
	positionField         = "position"
)

// Firestore reads holdings from the "holdings" collection, ordered by their
// "position" field, and performance from the "performance/current" document.
type Firestore struct {
	client *firestore.Client
	log    zerolog.Logger
}

// NewFirestore connects to projectID. credentialsFile may be empty to use
// application default credentials or FIRESTORE_EMULATOR_HOST.
func NewFirestore(ctx context.Context, projectID, credentialsFile string, log zerolog.Logger) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	return &Firestore{
		client: client,
		log:    log.With().Str("component", "firestore").Logger(),
	}, nil
}

func (f *Firestore) Holdings(ctx context.Context) ([]models.Holding, error) {
	docs, err := f.client.Collection(holdingsCollection).
		OrderBy(positionField, firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		f.log.Error().Err(err).Msg("failed to read holdings")
		return nil, fmt.Errorf("%w: read holdings: %v", ErrUnavailable, err)
	}

	holdings := make([]models.Holding, 0, len(docs))
	for _, doc := range docs {
		var h models.Holding
		if err := doc.DataTo(&h); err != nil {
			return nil, fmt.Errorf("decode holding %s: %w", doc.Ref.ID, err)
		}
		if h.Symbol == "" {
			h.Symbol = doc.Ref.ID
		}
		holdings = append(holdings, h)
	}

	f.log.Debug().Int("count", len(holdings)).Msg("holdings loaded")
	return holdings, nil
}

func (f *Firestore) Performance(ctx context.Context) (models.Performance, error) {
	doc, err := f.client.Collection(performanceCollection).Doc(performanceDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.Performance{}, ErrNotFound
		}
		f.log.Error().Err(err).Msg("failed to read performance")
		return models.Performance{}, fmt.Errorf("%w: read performance: %v", ErrUnavailable, err)
	}

	var perf models.Performance
	if err := doc.DataTo(&perf); err != nil {
		return models.Performance{}, fmt.Errorf("decode performance: %w", err)
	}
	return perf, nil
}

// Ping reads a single holding document to prove the project is reachable.
func (f *Firestore) Ping(ctx context.Context) error {
	_, err := f.client.Collection(holdingsCollection).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Seed writes holdings and performance, numbering holdings in slice order.
func (f *Firestore) Seed(ctx context.Context, holdings []models.Holding, perf models.Performance) error {
	batch := f.client.Batch()
	for i, h := range holdings {
		batch.Set(f.client.Collection(holdingsCollection).Doc(h.Symbol), map[string]any{
			"symbol":       h.Symbol,
			"name":         h.Name,
			"quantity":     h.Quantity,
			"avgPrice":     h.AvgPrice,
			"currentPrice": h.CurrentPrice,
			"sector":       h.Sector,
			"marketCap":    string(h.MarketCap),
			positionField:  i,
		})
	}
	batch.Set(f.client.Collection(performanceCollection).Doc(performanceDoc), perf)

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("seed firestore: %w", err)
	}
	return nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
