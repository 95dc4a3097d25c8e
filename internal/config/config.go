package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DataSourceFixture   = "fixture"
	DataSourceFirestore = "firestore"
	DataSourcePostgres  = "postgres"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"10000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	DataSource  string `env:"DATA_SOURCE" envDefault:"fixture"`
	FixturePath string `env:"FIXTURE_PATH"`

	Analytics Analytics
	Firestore Firestore
	Postgres  Postgres
	Quotes    Quotes
	Redis     Redis
	RateLimit RateLimit
}

type Analytics struct {
	SectorTaxonomySize int    `env:"SECTOR_TAXONOMY_SIZE" envDefault:"10"`
	RiskModel          string `env:"RISK_MODEL" envDefault:"static"`
}

type Firestore struct {
	ProjectID       string `env:"FIRESTORE_PROJECT_ID"`
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	// Seed writes the embedded sample dataset to Firestore on startup.
	Seed bool `env:"FIRESTORE_SEED" envDefault:"false"`
}

type Postgres struct {
	DSN          string `env:"PG_DSN"`
	MigrationDir string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Quotes struct {
	LivePrices           bool          `env:"LIVE_PRICES" envDefault:"false"`
	AlphaVantageKey      string        `env:"ALPHA_VANTAGE_KEY"`
	SymbolSuffix         string        `env:"QUOTE_SYMBOL_SUFFIX"`
	CacheTTL             time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"15m"`
	RefreshInterval      time.Duration `env:"QUOTE_REFRESH_INTERVAL" envDefault:"5m"`
	MaxConcurrentFetches int           `env:"MAX_CONCURRENT_FETCHES" envDefault:"10"`
	Timeout              time.Duration `env:"QUOTE_TIMEOUT" envDefault:"10s"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RateLimit struct {
	Max    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate reports every setting that would make the service misbehave at runtime
func (c *Config) Validate() error {
	var errs []error

	switch c.DataSource {
	case DataSourceFixture:
	case DataSourceFirestore:
		if c.Firestore.ProjectID == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required for the firestore data source"))
		}
	case DataSourcePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("PG_DSN is required for the postgres data source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource))
	}

	if c.Analytics.SectorTaxonomySize <= 0 {
		errs = append(errs, fmt.Errorf("SECTOR_TAXONOMY_SIZE must be positive, got %d", c.Analytics.SectorTaxonomySize))
	}
	switch normalizeRiskModel(c.Analytics.RiskModel) {
	case "", "static", "concentration":
	default:
		errs = append(errs, fmt.Errorf("unknown RISK_MODEL %q", c.Analytics.RiskModel))
	}

	if c.Quotes.MaxConcurrentFetches <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENT_FETCHES must be positive, got %d", c.Quotes.MaxConcurrentFetches))
	}

	return errors.Join(errs...)
}

// Load parses the environment, reading .env first when present
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Analytics.RiskModel = normalizeRiskModel(cfg.Analytics.RiskModel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizeRiskModel matches the lookup done by analytics.NewRiskAssessor
func normalizeRiskModel(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config error: %s", err)
	}
	return cfg
}
