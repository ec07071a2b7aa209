// Package store persists projected block rows to ClickHouse, the
// wide-column store this module has on hand in place of Cassandra, and
// reads back the rows the doctor and sync orchestrator need.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Metrics observes a single store operation.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Repository wraps a ClickHouse connection with the metrics decorator
// pattern used throughout the store.
type Repository struct {
	conn    clickhouse.Conn
	metrics Metrics
}

// NewRepository opens a ClickHouse connection from dsn.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

// Close releases the underlying connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}

func (r *Repository) observe(operation string, err error, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.Observe(operation, err, started)
}

func withProfile(ctx context.Context, profile ExecutionProfile) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, profile.Timeout)
	if len(profile.Settings) > 0 {
		ctx = clickhouse.Context(ctx, clickhouse.WithSettings(profile.Settings))
	}
	return ctx, cancel
}
