package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/property-etl/internal/config"
	"github.com/jonathan/property-etl/internal/logger"
)

// settingsFlags holds the flag values shared by the commands that run the
// pipeline. Only flags the user actually set override the config file and
// the environment.
type settingsFlags struct {
	configPath      string
	dataPath        string
	fieldConfigPath string
	databaseURL     string
	batchSize       int
	workers         int
	echoSQL         bool
	logLevel        string
	logJSON         bool
	outputPath      string
	metricsPath     string
}

func bindInputFlags(cmd *cobra.Command, f *settingsFlags) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to settings JSON file (values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.dataPath, "data", "d", "", "Path to the raw property dataset (JSON or YAML)")
	cmd.Flags().StringVarP(&f.fieldConfigPath, "field-config", "f", "", "Path to the field configuration (.csv, .xlsx, .yaml or .json)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Number of transform goroutines")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	cmd.Flags().BoolVar(&f.logJSON, "log-json", false, "Emit logs as JSON")
	cmd.Flags().StringVarP(&f.outputPath, "out", "o", "", "Path to write the bundle JSON")
	cmd.Flags().StringVar(&f.metricsPath, "metrics-out", "", "Path to write run metrics in Prometheus text format")
}

func bindDatabaseFlags(cmd *cobra.Command, f *settingsFlags) {
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Rows per INSERT statement")
	cmd.Flags().BoolVar(&f.echoSQL, "echo-sql", false, "Log every SQL statement at debug level")
}

// resolveSettings merges, in increasing precedence: defaults, the config
// file, ETL_* environment variables and explicitly set flags.
func (f *settingsFlags) resolveSettings(cmd *cobra.Command, lookup func(string) (string, bool)) (config.Settings, error) {
	var s config.Settings
	if f.configPath != "" {
		loaded, err := config.LoadSettings(f.configPath)
		if err != nil {
			return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
		}
		s = *loaded
	}

	if err := s.ApplyEnv(lookup); err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		s.DataPath = f.dataPath
	}
	if flags.Changed("field-config") {
		s.FieldConfigPath = f.fieldConfigPath
	}
	if flags.Changed("db-url") {
		s.DatabaseURL = f.databaseURL
	}
	if flags.Changed("batch-size") {
		s.BatchSize = f.batchSize
	}
	if flags.Changed("workers") {
		s.Workers = f.workers
	}
	if flags.Changed("echo-sql") {
		s.EchoSQL = f.echoSQL
	}
	if flags.Changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if flags.Changed("log-json") {
		s.LogJSON = f.logJSON
	}
	if flags.Changed("out") {
		s.OutputPath = f.outputPath
	}
	if flags.Changed("metrics-out") {
		s.MetricsPath = f.metricsPath
	}

	s = s.MergeWithDefaults(config.Defaults())
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

func newLogger(s config.Settings) logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(s.LogLevel)
	cfg.JSON = s.LogJSON
	cfg.Output = os.Stderr
	log := logger.NewLogger(cfg)
	logger.SetDefault(log)
	return log
}
