package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-analytics-api/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const (
	defaultConnAttempts = 10
	connRetryDelay      = time.Second
)

const (
	selectHoldings = `
		SELECT symbol, name, quantity::float8 AS quantity, avg_price::float8 AS avg_price,
		       current_price::float8 AS current_price, sector, market_cap
		FROM holdings
		ORDER BY position`

	selectTimeline = `
		SELECT to_char(observed_on, 'YYYY-MM-DD') AS date, series, value::float8 AS value
		FROM performance_timeline
		ORDER BY observed_on, series`

	selectReturns = `
		SELECT series, one_month::float8 AS one_month, three_months::float8 AS three_months,
		       one_year::float8 AS one_year
		FROM performance_returns
		ORDER BY series`
)

// portfolioSeries is the timeline series holding the portfolio's own value;
// every other series is a benchmark.
const portfolioSeries = "portfolio"

type timelineRow struct {
	Date   string  `db:"date"`
	Series string  `db:"series"`
	Value  float64 `db:"value"`
}

type returnsRow struct {
	Series      string  `db:"series"`
	OneMonth    float64 `db:"one_month"`
	ThreeMonths float64 `db:"three_months"`
	OneYear     float64 `db:"one_year"`
}

// Postgres reads holdings and performance from the schema under migrations/.
type Postgres struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewPostgres(db *sqlx.DB, log zerolog.Logger) *Postgres {
	return &Postgres{db: db, log: log.With().Str("component", "postgres").Logger()}
}

// Connect opens the pgx-backed pool, retrying while the database starts up.
func Connect(ctx context.Context, dsn string, log zerolog.Logger) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	for attempts := defaultConnAttempts; attempts > 0; attempts-- {
		db, err = sqlx.ConnectContext(ctx, "pgx", dsn)
		if err == nil {
			break
		}

		log.Info().Int("attemptsLeft", attempts-1).Err(err).Msg("postgres is trying to connect")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connRetryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %v", ErrUnavailable, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Info().Msg("postgres connected")
	return db, nil
}

// Migrate applies every pending migration in dir.
func Migrate(db *sqlx.DB, dir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (p *Postgres) Holdings(ctx context.Context) ([]models.Holding, error) {
	holdings := []models.Holding{}
	if err := p.db.SelectContext(ctx, &holdings, selectHoldings); err != nil {
		p.log.Error().Err(err).Msg("failed to select holdings")
		return nil, fmt.Errorf("%w: select holdings: %v", ErrUnavailable, err)
	}
	return holdings, nil
}

func (p *Postgres) Performance(ctx context.Context) (models.Performance, error) {
	var rows []timelineRow
	if err := p.db.SelectContext(ctx, &rows, selectTimeline); err != nil {
		p.log.Error().Err(err).Msg("failed to select timeline")
		return models.Performance{}, fmt.Errorf("%w: select timeline: %v", ErrUnavailable, err)
	}

	var returns []returnsRow
	if err := p.db.SelectContext(ctx, &returns, selectReturns); err != nil {
		p.log.Error().Err(err).Msg("failed to select returns")
		return models.Performance{}, fmt.Errorf("%w: select returns: %v", ErrUnavailable, err)
	}

	return assemblePerformance(rows, returns), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// assemblePerformance pivots timeline rows, which arrive sorted by date, into
// one point per date.
func assemblePerformance(rows []timelineRow, returns []returnsRow) models.Performance {
	perf := models.Performance{
		Timeline: []models.TimelinePoint{},
		Returns:  make(map[string]models.ReturnSet, len(returns)),
	}

	for _, row := range rows {
		n := len(perf.Timeline)
		if n == 0 || perf.Timeline[n-1].Date != row.Date {
			perf.Timeline = append(perf.Timeline, models.TimelinePoint{
				Date:       row.Date,
				Benchmarks: make(map[string]float64),
			})
			n++
		}

		point := &perf.Timeline[n-1]
		if row.Series == portfolioSeries {
			point.Portfolio = row.Value
		} else {
			point.Benchmarks[row.Series] = row.Value
		}
	}

	for _, r := range returns {
		perf.Returns[r.Series] = models.ReturnSet{
			OneMonth:    r.OneMonth,
			ThreeMonths: r.ThreeMonths,
			OneYear:     r.OneYear,
		}
	}

	return perf
}
