package db

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/metrics"
	"github.com/jonathan/property-etl/internal/transform"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 1000

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Loader replaces the stored dataset with a bundle.
type Loader struct {
	conn      Conn
	batchSize int
	log       logger.Logger
	metrics   *metrics.Metrics
}

// NewLoader creates a loader writing through conn. A batchSize below one
// uses DefaultBatchSize.
func NewLoader(conn Conn, batchSize int, log logger.Logger, m *metrics.Metrics) *Loader {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.NewForTests()
	}
	return &Loader{conn: conn, batchSize: batchSize, log: log, metrics: m}
}

// Replace clears every property table and inserts the bundle in one
// transaction. Children are deleted before parents and inserted after them.
// It returns the number of rows written per table.
func (l *Loader) Replace(ctx context.Context, bundle *transform.Bundle) (map[string]int, error) {
	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return nil, &LoadError{Message: "failed to begin transaction", Cause: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	for i := len(insertOrder) - 1; i >= 0; i-- {
		t := insertOrder[i]
		query, args, err := psql.Delete(t.name).ToSql()
		if err != nil {
			return nil, &LoadError{Table: t.name, Message: "failed to build delete", Cause: err}
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, &LoadError{Table: t.name, Message: "failed to clear table", Cause: err}
		}
	}

	written := make(map[string]int, len(insertOrder))
	for _, t := range insertOrder {
		rows := t.rows(bundle)
		for start := 0; start < len(rows); start += l.batchSize {
			end := min(start+l.batchSize, len(rows))
			query, args, err := buildInsert(t, rows[start:end])
			if err != nil {
				return nil, &LoadError{Table: t.name, Message: "failed to build insert", Cause: err}
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return nil, &LoadError{
					Table:   t.name,
					Message: fmt.Sprintf("failed to insert rows %d-%d", start+1, end),
					Cause:   err,
				}
			}
		}
		written[t.name] = len(rows)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &LoadError{Message: "failed to commit transaction", Cause: err}
	}
	committed = true

	for _, t := range insertOrder {
		l.metrics.Written(t.name, written[t.name])
		l.log.Debug("table loaded", "table", t.name, "rows", written[t.name])
	}
	return written, nil
}

func buildInsert(t table, rows [][]any) (string, []any, error) {
	builder := psql.Insert(t.name).Columns(t.columns...)
	for _, row := range rows {
		builder = builder.Values(row...)
	}
	return builder.ToSql()
}
