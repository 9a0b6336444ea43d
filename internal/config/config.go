// Package config provides settings loading and validation for the ETL CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults for a run started from the repository root.
const (
	DefaultDataPath        = "data/fake_property_data_new.json"
	DefaultFieldConfigPath = "data/field_config.csv"
	DefaultBatchSize       = 1000
	DefaultWorkers         = 1
	DefaultLogLevel        = "info"
)

// EnvPrefix prefixes every settings environment variable.
const EnvPrefix = "ETL_"

// Settings represents the ETL configuration that can be loaded from a JSON
// file, the environment and CLI flags, in increasing precedence.
type Settings struct {
	// Inputs
	DataPath        string `json:"data_path,omitempty"`         // Raw property dataset
	FieldConfigPath string `json:"field_config_path,omitempty"` // Field configuration table (.csv, .xlsx, .yaml, .json)

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	BatchSize   int    `json:"batch_size,omitempty" validate:"gte=1"`
	EchoSQL     bool   `json:"echo_sql,omitempty"` // Log every statement sent to the database

	// Behavior
	Workers  int    `json:"workers,omitempty" validate:"gte=1"` // Transform goroutines
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error disabled"`
	LogJSON  bool   `json:"log_json,omitempty"`

	// Outputs
	OutputPath  string `json:"output_path,omitempty"`  // Bundle JSON export
	MetricsPath string `json:"metrics_path,omitempty"` // Prometheus textfile
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		DataPath:        DefaultDataPath,
		FieldConfigPath: DefaultFieldConfigPath,
		BatchSize:       DefaultBatchSize,
		Workers:         DefaultWorkers,
		LogLevel:        DefaultLogLevel,
	}
}

// LoadSettings loads settings from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &s, nil
}

// ApplyEnv overrides fields from ETL_* variables found through lookup.
// DATABASE_URL is honored when ETL_DATABASE_URL is not set.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config error: %s%s must be an integer: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config error: %s%s must be a boolean: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("DATA_PATH", &s.DataPath)
	str("FIELD_CONFIG_PATH", &s.FieldConfigPath)
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		s.DatabaseURL = v
	}
	str("DATABASE_URL", &s.DatabaseURL)
	str("LOG_LEVEL", &s.LogLevel)
	str("OUTPUT_PATH", &s.OutputPath)
	str("METRICS_PATH", &s.MetricsPath)

	return errors.Join(
		num("BATCH_SIZE", &s.BatchSize),
		num("WORKERS", &s.Workers),
		flag("ECHO_SQL", &s.EchoSQL),
		flag("LOG_JSON", &s.LogJSON),
	)
}

var validate = validator.New()

// Validate checks that the settings have valid values.
// Required inputs are checked by the commands that need them.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonName(fe.StructField())
		switch fe.Tag() {
		case "gte":
			msgs = append(msgs, fmt.Sprintf("'%s' must be at least %s", name, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("'%s' must be one of: %s", name, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("'%s' failed %s", name, fe.Tag()))
		}
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

func jsonName(field string) string {
	switch field {
	case "BatchSize":
		return "batch_size"
	case "Workers":
		return "workers"
	case "LogLevel":
		return "log_level"
	default:
		return field
	}
}

// MergeWithDefaults returns new Settings with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (s *Settings) MergeWithDefaults(defaults Settings) Settings {
	result := *s

	// String fields: use default if empty
	if result.DataPath == "" {
		result.DataPath = defaults.DataPath
	}
	if result.FieldConfigPath == "" {
		result.FieldConfigPath = defaults.FieldConfigPath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.OutputPath == "" {
		result.OutputPath = defaults.OutputPath
	}
	if result.MetricsPath == "" {
		result.MetricsPath = defaults.MetricsPath
	}

	// Int fields: use default if zero
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// RedactedDatabaseURL returns the database URL with any password masked,
// for logging.
func (s *Settings) RedactedDatabaseURL() string {
	u, err := url.Parse(s.DatabaseURL)
	if err != nil {
		return "<unparseable database url>"
	}
	return u.Redacted()
}
