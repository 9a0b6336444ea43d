package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/property-etl/internal/config"
	"github.com/jonathan/property-etl/internal/fieldmap"
	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/schemas"
	"github.com/jonathan/property-etl/internal/transform"
)

const fieldConfigCSV = `Target Table,Column Name,Notes
Property,Street_Address,
Property,City,
Property,State,
Property,Zip,
Property,Year_Built,
Leads,Reviewed_Status,
Valuation,List_Price,
Valuation,Zestimate,
Rehab,Underwriting_Rehab,
HOA,HOA,
HOA,HOA_Flag,
Taxes,Taxes,
`

const datasetJSON = `[
  {
    "Street_Address": "12 Oak St",
    "City": "Austin",
    "State": "TX",
    "Zip": "78701",
    "Year_Built": 1955,
    "Reviewed_Status": "Approved",
    "Taxes": "$4,100.50",
    "Valuation": [{"List_Price": "250,000"}, {"Zestimate": 255000.25}],
    "Rehab": {"Underwriting_Rehab": "12k"},
    "HOA": [{"HOA": "100", "HOA_Flag": "yes"}]
  },
  {
    "Street_Address": "9 Elm Ave",
    "City": "Denver",
    "State": "CO",
    "Zip": "501"
  },
  {
    "Street_Address": "12 Oak St",
    "City": "Austin",
    "State": "TX",
    "Zip": "78701",
    "Year_Built": 1955,
    "Reviewed_Status": "Approved",
    "Taxes": "$4,100.50",
    "Valuation": [{"List_Price": "250,000"}, {"Zestimate": 255000.25}],
    "Rehab": {"Underwriting_Rehab": "12k"},
    "HOA": [{"HOA": "100", "HOA_Flag": "yes"}]
  }
]`

var runClock = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

type fakeSink struct {
	bundle *transform.Bundle
	err    error
}

func (f *fakeSink) Replace(_ context.Context, b *transform.Bundle) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bundle = b
	return b.Counts(), nil
}

type fakeRecorder struct {
	startErr  error
	started   []uuid.UUID
	completed []any
	failed    []error
}

func (f *fakeRecorder) StartRun(_ context.Context, runID uuid.UUID, _ string) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, runID)
	return nil
}

func (f *fakeRecorder) CompleteRun(_ context.Context, _ uuid.UUID, summary any) error {
	f.completed = append(f.completed, summary)
	return nil
}

func (f *fakeRecorder) FailRun(_ context.Context, _ uuid.UUID, cause error) error {
	f.failed = append(f.failed, cause)
	return nil
}

func writeInputs(t *testing.T) (dataPath, fieldPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "properties.json")
	fieldPath = filepath.Join(dir, "field_config.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(datasetJSON), 0o644))
	require.NoError(t, os.WriteFile(fieldPath, []byte(fieldConfigCSV), 0o644))
	return dataPath, fieldPath
}

func testOptions(t *testing.T) RunOptions {
	dataPath, fieldPath := writeInputs(t)
	settings := config.Defaults()
	settings.DataPath = dataPath
	settings.FieldConfigPath = fieldPath
	return RunOptions{
		Settings: settings,
		Logger:   logger.NewForTests(),
		Now:      func() time.Time { return runClock },
	}
}

func TestRunPipeline_DryRunExportsValidBundle(t *testing.T) {
	opts := testOptions(t)
	opts.DryRun = true
	opts.Settings.OutputPath = filepath.Join(t.TempDir(), "out", "bundle.json")

	var steps []string
	opts.OnProgress = func(e ProgressEvent) {
		assert.NotEmpty(t, e.RunID)
		steps = append(steps, e.Step)
	}

	result, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{StepFieldConfig, StepRead, StepTransform, StepExport}, steps)
	assert.Nil(t, result.Written)

	s := result.Summary
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 1, s.DuplicatesDropped)
	assert.Equal(t, 2, s.Properties)
	assert.Equal(t, 1, s.Leads)
	assert.Equal(t, 2, s.Valuations)
	assert.Equal(t, 1, s.Rehabs)
	assert.Equal(t, 1, s.HOAs)
	assert.Equal(t, 1, s.Taxes)

	data, err := os.ReadFile(opts.Settings.OutputPath)
	require.NoError(t, err)
	require.NoError(t, schemas.ValidateBundle(data))
	assert.Contains(t, string(data), `"run_id": "`+s.RunID+`"`)
	assert.Contains(t, string(data), `"amount": "4100.5"`)
}

func TestRunPipeline_LoadsIntoSink(t *testing.T) {
	opts := testOptions(t)
	sink := &fakeSink{}
	opts.Sink = sink

	result, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	require.NotNil(t, sink.bundle)
	assert.Same(t, result.Bundle, sink.bundle)
	assert.Equal(t, 2, result.Written["property"])
	for _, p := range sink.bundle.Properties {
		assert.Equal(t, runClock, p.CreatedAt)
	}
}

func TestRunPipeline_SinkFailure(t *testing.T) {
	opts := testOptions(t)
	opts.Sink = &fakeSink{err: errors.New("connection reset")}

	_, err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load failed")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRunPipeline_RecordsRunHistory(t *testing.T) {
	opts := testOptions(t)
	opts.Sink = &fakeSink{}
	recorder := &fakeRecorder{}
	opts.Recorder = recorder

	result, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, recorder.started, 1)
	assert.Equal(t, result.Summary.RunID, recorder.started[0].String())
	require.Len(t, recorder.completed, 1)
	assert.Equal(t, result.Summary, recorder.completed[0])
	assert.Empty(t, recorder.failed)
}

func TestRunPipeline_RecordsFailure(t *testing.T) {
	opts := testOptions(t)
	opts.Sink = &fakeSink{err: errors.New("disk full")}
	recorder := &fakeRecorder{}
	opts.Recorder = recorder

	_, err := RunPipeline(context.Background(), opts)
	require.Error(t, err)

	require.Len(t, recorder.failed, 1)
	assert.Contains(t, recorder.failed[0].Error(), "disk full")
	assert.Empty(t, recorder.completed)
}

func TestRunPipeline_RunHistoryUnavailable(t *testing.T) {
	opts := testOptions(t)
	sink := &fakeSink{}
	opts.Sink = sink
	recorder := &fakeRecorder{startErr: errors.New(`relation "etl_runs" does not exist`)}
	opts.Recorder = recorder

	_, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)
	assert.NotNil(t, sink.bundle)
	assert.Empty(t, recorder.completed)
}

func TestRunPipeline_RequiresDatabaseURL(t *testing.T) {
	opts := testOptions(t)
	opts.Settings.DatabaseURL = ""

	_, err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url is required")
}

func TestRunPipeline_MissingDataset(t *testing.T) {
	opts := testOptions(t)
	opts.DryRun = true
	opts.Settings.DataPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := RunPipeline(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset read failed")
}

func TestRunPipeline_ParallelMatchesSequential(t *testing.T) {
	opts := testOptions(t)
	opts.DryRun = true

	sequential, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	opts.Settings.Workers = 4
	parallel, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, sequential.Bundle.Counts(), parallel.Bundle.Counts())
	assert.Equal(t, sequential.Bundle.Properties, parallel.Bundle.Properties)
}

func TestLoadTableMaps_EmptyPath(t *testing.T) {
	maps, err := LoadTableMaps(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, maps.Property.Targets())
}

func TestLoadTableMaps_MissingFile(t *testing.T) {
	_, err := LoadTableMaps(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestWriteBundle_EmptyBundle(t *testing.T) {
	b := transform.New(fieldmap.BuildTableMaps(nil)).Transform(nil)
	path := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, WriteBundle(path, NewExport(NewSummary("run-1", b), b, runClock)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, schemas.ValidateBundle(data))
	assert.Contains(t, string(data), `"properties": []`)
	assert.Contains(t, string(data), `"generated_at": "2026-04-02T08:00:00Z"`)
}
