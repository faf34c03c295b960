// Package store holds the shared PostgreSQL client used by the baseline
// sampler and the resource-metric probes. One client is built in main and
// passed explicitly to keep the measurement core testable without a live
// store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Config holds store connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Client wraps one shared PostgreSQL connection pool.
type Client struct {
	db *sql.DB
}

// NewClient opens a connection pool against the configured store.
func NewClient(cfg Config) (*Client, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{db: db}, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the store connection; this is the trivial round trip the
// baseline sampler times.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// SizeBytes returns the on-disk size of the current database, the resource
// metric sampled across a benchmark run.
func (c *Client) SizeBytes(ctx context.Context) (int64, error) {
	var size int64
	err := c.db.QueryRowContext(ctx,
		`SELECT pg_database_size(current_database())`).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("query database size: %w", err)
	}
	return size, nil
}
