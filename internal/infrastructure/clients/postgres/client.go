package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/raunelaunch/fooddiscovery/pkg/config"
	"github.com/raunelaunch/fooddiscovery/pkg/retry"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 2
	connMaxLifetime     = 5 * time.Minute
	pingTimeout         = 5 * time.Second
)

// Client wraps the sqlx handle shared by the catalog and analytics adapters
type Client struct {
	db *sqlx.DB
}

// NewClient opens a pool and retries until the server answers
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sqlx.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = min(defaultMaxIdleConns, maxOpen)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	onRetry := func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).
			Str("host", cfg.Host).
			Int("attempt", attempt).
			Dur("retry_in", nextDelay).
			Msg("Postgres not reachable yet")
	}
	if err := retry.DoWithLog(ctx, retry.DefaultConfig(), "PostgreSQL", ping, onRetry); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres %s/%s unreachable: %w", cfg.Host, cfg.Database, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int("max_open_conns", maxOpen).
		Msg("Connected to PostgreSQL")
	return &Client{db: db}, nil
}

// NewClientFromDB wraps an existing connection, used with sqlmock in tests.
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: sqlx.NewDb(db, "postgres")}
}

// DB exposes the plain database/sql handle for Exec calls
func (c *Client) DB() *sql.DB {
	return c.db.DB
}

// DBX returns the sqlx handle used for struct scanning
func (c *Client) DBX() *sqlx.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Ping backs the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
