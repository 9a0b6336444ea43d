package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Run History
// -----------------------------------------------------------------------------

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

const runsTable = "etl_runs"

// Run is one recorded load into the property tables
type Run struct {
	ID           uuid.UUID       `json:"run_id"`
	Status       string          `json:"status"`
	DataPath     string          `json:"data_path"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Summary      json.RawMessage `json:"summary,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// RunStore records run history in etl_runs. The table is not touched by
// Loader.Replace.
type RunStore struct {
	conn Conn
}

func NewRunStore(conn Conn) *RunStore {
	return &RunStore{conn: conn}
}

// StartRun inserts a run in the running state
func (s *RunStore) StartRun(ctx context.Context, runID uuid.UUID, dataPath string) error {
	sql, args, err := psql.Insert(runsTable).
		Columns("run_id", "status", "data_path").
		Values(runID, RunStatusRunning, dataPath).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run insert: %w", err)
	}
	if _, err := s.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a run completed and stores its summary as JSON
func (s *RunStore) CompleteRun(ctx context.Context, runID uuid.UUID, summary any) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return s.finish(ctx, runID, squirrel.Eq{"status": RunStatusCompleted, "summary": string(summaryJSON)})
}

// FailRun marks a run failed with the error message
func (s *RunStore) FailRun(ctx context.Context, runID uuid.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(ctx, runID, squirrel.Eq{"status": RunStatusFailed, "error_message": msg})
}

func (s *RunStore) finish(ctx context.Context, runID uuid.UUID, set squirrel.Eq) error {
	sql, args, err := psql.Update(runsTable).
		SetMap(set).
		Set("completed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run update: %w", err)
	}
	tag, err := s.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}
	sql, args, err := psql.
		Select("run_id", "status", "data_path", "started_at", "completed_at", "summary", "error_message").
		From(runsTable).
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build run query: %w", err)
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var summary []byte
		if err := rows.Scan(&run.ID, &run.Status, &run.DataPath, &run.StartedAt,
			&run.CompletedAt, &summary, &run.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if summary != nil {
			run.Summary = json.RawMessage(summary)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
