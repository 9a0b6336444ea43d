package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/config"
	"github.com/jonathan/property-etl/internal/logger"
	"github.com/jonathan/property-etl/internal/metrics"
	"github.com/jonathan/property-etl/internal/observability"
	"github.com/jonathan/property-etl/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: read, transform, export and load",
	Long: `Reads the raw dataset, resolves the field configuration, assembles the entity
bundle and replaces the contents of the property tables in PostgreSQL inside a single
transaction.

Settings can be loaded from a JSON file using --config. ETL_* environment variables
override the file, and command-line flags override both.`,
	RunE: runPipelineCmd,
}

var (
	runFlags        settingsFlags
	runDryRun       bool
	runCreateSchema bool
	runVerbose      bool
)

func init() {
	bindInputFlags(runCommand, &runFlags)
	bindDatabaseFlags(runCommand, &runFlags)
	runCommand.Flags().BoolVar(&runDryRun, "dry-run", false, "Transform and export without touching the database")
	runCommand.Flags().BoolVar(&runCreateSchema, "create-schema", false, "Create the property tables before loading")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print progress events")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	settings, err := runFlags.resolveSettings(cmd, os.LookupEnv)
	if err != nil {
		return err
	}
	if !runDryRun && settings.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required (or use --dry-run)")
	}

	opts := pipeline.RunOptions{
		Settings:     settings,
		DryRun:       runDryRun,
		CreateSchema: runCreateSchema,
	}
	if runVerbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", e.Step, e.Message)
		}
	}

	result, err := execute(cmd.Context(), settings, opts)
	if err != nil {
		return err
	}
	printResult(cmd, result, runVerbose)
	return nil
}

// execute wires logging and metrics around pipeline.RunPipeline and writes
// the metrics textfile when one is configured.
func execute(ctx context.Context, settings config.Settings, opts pipeline.RunOptions) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := newLogger(settings)
	ctx = logger.ContextWithLogger(ctx, log)
	opts.Logger = log

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, err
	}
	opts.Metrics = m

	result, runErr := pipeline.RunPipeline(ctx, opts)

	if settings.MetricsPath != "" {
		if err := metrics.WriteTextfile(settings.MetricsPath, registry); err != nil {
			log.Error("failed to write metrics", "error", err)
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func printResult(cmd *cobra.Command, result *pipeline.Result, verbose bool) {
	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintSummary(result.Summary)
	if verbose {
		printer.PrintProperties(result.Bundle)
	}
}
