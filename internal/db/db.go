// Package db persists normalized bundles to PostgreSQL.
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/jonathan/property-etl/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// Conn is the subset of a pgx pool the loader and run store need.
// *pgxpool.Pool and pgxmock pools both satisfy it.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// ConnectOption adjusts the pool configuration before connecting.
type ConnectOption func(*pgxpool.Config)

// WithSQLEcho logs every statement at debug level through log.
func WithSQLEcho(log logger.Logger) ConnectOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, _ tracelog.LogLevel, msg string, data map[string]any) {
				keyvals := make([]any, 0, len(data)*2)
				for k, v := range data {
					keyvals = append(keyvals, k, v)
				}
				log.Debug("sql: "+msg, keyvals...)
			}),
			LogLevel: tracelog.LogLevelDebug,
		}
	}
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string, opts ...ConnectOption) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Pool exposes the underlying pool as a Conn.
func (db *DB) Pool() Conn {
	return db.pool
}

// EnsureSchema creates the property tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return EnsureSchema(ctx, db.pool)
}

// EnsureSchema runs the embedded DDL on conn.
func EnsureSchema(ctx context.Context, conn Conn) error {
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Schema returns the embedded DDL.
func Schema() string {
	return schemaSQL
}
