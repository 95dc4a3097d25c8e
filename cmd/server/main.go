package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-analytics-api/internal/analytics"
	"portfolio-analytics-api/internal/config"
	"portfolio-analytics-api/internal/datasource"
	"portfolio-analytics-api/internal/handlers"
	"portfolio-analytics-api/internal/logger"
	"portfolio-analytics-api/internal/report"
	"portfolio-analytics-api/internal/scheduler"
	"portfolio-analytics-api/internal/services"
	"portfolio-analytics-api/pkg/alphavantage"
	"portfolio-analytics-api/pkg/yahoo"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

const requestTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()

	provider, closeProvider, err := newProvider(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closeProvider != nil {
		closers = append(closers, closeProvider)
	}

	if cfg.Quotes.LivePrices {
		priced, cache := newPricedProvider(cfg, provider, log)
		closers = append(closers, cache.Close)
		provider = priced

		jobs, err := scheduler.New(log)
		if err != nil {
			return err
		}
		if err := jobs.NewIntervalJob("warm_quotes", priced.Warm, cfg.Quotes.RefreshInterval, true); err != nil {
			return err
		}
		jobs.Start()
		closers = append(closers, jobs.Stop)
	}

	risk, err := analytics.NewRiskAssessor(cfg.Analytics.RiskModel)
	if err != nil {
		return err
	}
	portfolio := services.NewPortfolioService(provider, analytics.SummaryOptions{
		SectorTaxonomySize: cfg.Analytics.SectorTaxonomySize,
		Risk:               risk,
	}, log)

	app := handlers.NewRouter(
		handlers.RouterConfig{
			FrontendURL:     cfg.FrontendURL,
			RateLimitMax:    cfg.RateLimit.Max,
			RateLimitWindow: cfg.RateLimit.Window,
			Log:             log.With().Str("component", "http").Logger(),
		},
		handlers.NewPortfolioHandler(portfolio, report.NewXLSXGenerator(log), report.ContentType, requestTimeout),
		handlers.NewHealthHandler(portfolio, version),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Environment).
		Str("dataSource", cfg.DataSource).
		Str("riskModel", risk.Name()).
		Bool("livePrices", cfg.Quotes.LivePrices).
		Msg("portfolio analytics API started")

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

// newProvider opens the configured data source. The returned close func may be nil.
func newProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (datasource.Provider, func() error, error) {
	switch cfg.DataSource {
	case config.DataSourceFirestore:
		fs, err := datasource.NewFirestore(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Firestore.Seed {
			if err := seedFirestore(ctx, fs, cfg.FixturePath); err != nil {
				_ = fs.Close()
				return nil, nil, err
			}
			log.Info().Msg("firestore seeded from fixture")
		}
		return fs, fs.Close, nil

	case config.DataSourcePostgres:
		db, err := datasource.Connect(ctx, cfg.Postgres.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		if err := datasource.Migrate(db, cfg.Postgres.MigrationDir); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return datasource.NewPostgres(db, log), db.Close, nil

	default:
		fixture, err := datasource.NewFixture(cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		return fixture, nil, nil
	}
}

func seedFirestore(ctx context.Context, fs *datasource.Firestore, fixturePath string) error {
	fixture, err := datasource.NewFixture(fixturePath)
	if err != nil {
		return err
	}
	holdings, err := fixture.Holdings(ctx)
	if err != nil {
		return err
	}
	perf, err := fixture.Performance(ctx)
	if err != nil {
		return err
	}
	return fs.Seed(ctx, holdings, perf)
}

func newPricedProvider(cfg *config.Config, base datasource.Provider, log zerolog.Logger) (*datasource.Priced, *services.QuoteCache) {
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cache := services.NewQuoteCache(cfg.Quotes.CacheTTL, rdb, log)

	sources := []services.QuoteSource{yahoo.NewClient("", cfg.Quotes.Timeout)}
	if cfg.Quotes.AlphaVantageKey != "" {
		sources = append(sources, alphavantage.NewClient("", cfg.Quotes.AlphaVantageKey, cfg.Quotes.Timeout))
	}

	market := services.NewMarketDataService(cache, cfg.Quotes.MaxConcurrentFetches, cfg.Quotes.Timeout, log, sources...)
	return datasource.NewPriced(base, market, cfg.Quotes.SymbolSuffix, log), cache
}
