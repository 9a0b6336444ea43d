// Package pipeline provides the end-to-end orchestration of a normalization
// run: read, transform, export and load.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/property-etl/internal/config"
	"github.com/jonathan/property-etl/internal/db"
	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/metrics"
	"github.com/jonathan/property-etl/internal/reader"
	"github.com/jonathan/property-etl/internal/transform"
)

// Step names reported through ProgressEvent.
const (
	StepFieldConfig = "field_config"
	StepRead        = "read"
	StepTransform   = "transform"
	StepExport      = "export"
	StepLoad        = "load"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Sink persists a bundle. *db.Loader implements it.
type Sink interface {
	Replace(ctx context.Context, bundle *transform.Bundle) (map[string]int, error)
}

// Recorder keeps the history of loads. *db.RunStore implements it.
type Recorder interface {
	StartRun(ctx context.Context, runID uuid.UUID, dataPath string) error
	CompleteRun(ctx context.Context, runID uuid.UUID, summary any) error
	FailRun(ctx context.Context, runID uuid.UUID, cause error) error
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Settings     config.Settings
	DryRun       bool // Skip the load step
	CreateSchema bool // Run the embedded DDL before loading
	Logger       logger.Logger
	Metrics      *metrics.Metrics
	OnProgress   ProgressCallback
	Now          func() time.Time

	// Sink overrides the database connection built from Settings.DatabaseURL.
	Sink Sink
	// Recorder overrides the run history store. It defaults to etl_runs when
	// the pipeline opens its own connection.
	Recorder Recorder
}

// Result is the outcome of a run.
type Result struct {
	Summary Summary
	Bundle  *transform.Bundle
	Written map[string]int // rows per table; nil on dry runs
}

func (o *RunOptions) emit(runID, step, message string, content any) {
	if o.OnProgress != nil {
		o.OnProgress(ProgressEvent{Step: step, Message: message, RunID: runID, Content: content})
	}
}

func (o *RunOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// LoadTableMaps resolves the field mappings from the configured field
// configuration. An empty path yields empty mappings.
func LoadTableMaps(ctx context.Context, path string) (fieldmap.TableMaps, error) {
	log := logger.FromContext(ctx)
	if path == "" {
		log.Warn("no field configuration supplied; no source fields will be projected")
		return fieldmap.BuildTableMaps(nil), nil
	}
	cfg, err := fieldmap.LoadFieldConfig(path)
	if err != nil {
		return fieldmap.TableMaps{}, err
	}
	log.Debug("field configuration loaded", "path", path, "rows", len(cfg.Rows))
	return fieldmap.BuildTableMaps(cfg), nil
}

// RunPipeline executes one run: read the dataset, assemble the bundle,
// optionally export it, then replace the database contents unless DryRun.
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	id := uuid.New()
	runID := id.String()
	log = log.With("run_id", runID)
	ctx = logger.ContextWithLogger(ctx, log)
	s := opts.Settings

	log.Info("loading field configuration", "path", s.FieldConfigPath)
	maps, err := LoadTableMaps(ctx, s.FieldConfigPath)
	if err != nil {
		return nil, fmt.Errorf("field configuration failed: %w", err)
	}
	opts.emit(runID, StepFieldConfig, "resolved field mappings", nil)

	log.Info("reading raw dataset", "path", s.DataPath)
	records, err := reader.Load(ctx, s.DataPath)
	if err != nil {
		return nil, fmt.Errorf("dataset read failed: %w", err)
	}
	opts.emit(runID, StepRead, fmt.Sprintf("loaded %d raw property records", len(records)), nil)

	transformer := transform.New(maps,
		transform.WithLogger(log),
		transform.WithMetrics(opts.Metrics),
		transform.WithClock(opts.now),
	)
	bundle, err := transformer.TransformParallel(ctx, records, s.Workers)
	if err != nil {
		return nil, fmt.Errorf("transform failed: %w", err)
	}
	summary := NewSummary(runID, bundle)
	opts.emit(runID, StepTransform, "bundle assembled", summary)
	log.Info("transform complete", summary.KeyVals()...)

	result := &Result{Summary: summary, Bundle: bundle}

	if s.OutputPath != "" {
		if err := WriteBundle(s.OutputPath, NewExport(summary, bundle, opts.now())); err != nil {
			return nil, fmt.Errorf("bundle export failed: %w", err)
		}
		log.Info("bundle exported", "path", s.OutputPath)
		opts.emit(runID, StepExport, "bundle written to "+s.OutputPath, nil)
	}

	if opts.DryRun {
		log.Info("dry-run enabled: skipping load stage")
		return result, nil
	}

	sink, recorder := opts.Sink, opts.Recorder
	if sink == nil {
		if s.DatabaseURL == "" {
			return nil, fmt.Errorf("database_url is required unless running with --dry-run")
		}
		var connectOpts []db.ConnectOption
		if s.EchoSQL {
			connectOpts = append(connectOpts, db.WithSQLEcho(log))
		}
		database, err := db.Connect(ctx, s.DatabaseURL, connectOpts...)
		if err != nil {
			return nil, err
		}
		defer database.Close()
		log.Info("connected to database", "url", s.RedactedDatabaseURL())

		if opts.CreateSchema {
			if err := database.EnsureSchema(ctx); err != nil {
				return nil, err
			}
			log.Info("schema ensured")
		}
		sink = db.NewLoader(database.Pool(), s.BatchSize, log, opts.Metrics)
		if recorder == nil {
			recorder = db.NewRunStore(database.Pool())
		}
	}

	if recorder != nil {
		if err := recorder.StartRun(ctx, id, s.DataPath); err != nil {
			log.Warn("run history unavailable", "error", err)
			recorder = nil
		}
	}

	written, err := sink.Replace(ctx, bundle)
	if err != nil {
		err = fmt.Errorf("load failed: %w", err)
		if recorder != nil {
			if ferr := recorder.FailRun(ctx, id, err); ferr != nil {
				log.Warn("failed to record run failure", "error", ferr)
			}
		}
		return nil, err
	}
	if recorder != nil {
		if err := recorder.CompleteRun(ctx, id, summary); err != nil {
			log.Warn("failed to record run completion", "error", err)
		}
	}
	result.Written = written
	opts.emit(runID, StepLoad, "bundle persisted", written)
	log.Info("load phase complete")
	return result, nil
}
