package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/property-etl/internal/config"
)

func newFlagCommand(t *testing.T, args ...string) (*cobra.Command, *settingsFlags) {
	t.Helper()
	f := &settingsFlags{}
	cmd := &cobra.Command{Use: "test"}
	bindInputFlags(cmd, f)
	bindDatabaseFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestResolveSettings_Defaults(t *testing.T) {
	cmd, f := newFlagCommand(t)

	s, err := f.resolveSettings(cmd, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), s)
}

func TestResolveSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"data_path": "from-file.json",
		"field_config_path": "file-fields.csv",
		"batch_size": 50,
		"workers": 2
	}`), 0o644))

	cmd, f := newFlagCommand(t, "--config", configPath, "--workers", "6", "--echo-sql")
	s, err := f.resolveSettings(cmd, envMap(map[string]string{
		"ETL_BATCH_SIZE": "75",
		"ETL_WORKERS":    "3",
		"DATABASE_URL":   "postgres://env/db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-file.json", s.DataPath)
	assert.Equal(t, "file-fields.csv", s.FieldConfigPath)
	assert.Equal(t, 75, s.BatchSize, "env overrides file")
	assert.Equal(t, 6, s.Workers, "flag overrides env")
	assert.True(t, s.EchoSQL)
	assert.Equal(t, "postgres://env/db", s.DatabaseURL)
	assert.Equal(t, config.DefaultLogLevel, s.LogLevel)
}

func TestResolveSettings_UnsetFlagsDoNotOverride(t *testing.T) {
	cmd, f := newFlagCommand(t)
	s, err := f.resolveSettings(cmd, envMap(map[string]string{"ETL_DATA_PATH": "env.json"}))
	require.NoError(t, err)
	assert.Equal(t, "env.json", s.DataPath)
}

func TestResolveSettings_InvalidValues(t *testing.T) {
	cmd, f := newFlagCommand(t, "--batch-size", "-1")
	_, err := f.resolveSettings(cmd, envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'batch_size' must be at least 1")

	cmd, f = newFlagCommand(t, "--log-level", "loud")
	_, err = f.resolveSettings(cmd, envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	cmd, f = newFlagCommand(t)
	_, err = f.resolveSettings(cmd, envMap(map[string]string{"ETL_WORKERS": "many"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ETL_WORKERS must be an integer")
}

func TestResolveSettings_MissingConfigFile(t *testing.T) {
	cmd, f := newFlagCommand(t, "--config", filepath.Join(t.TempDir(), "missing.json"))
	_, err := f.resolveSettings(cmd, envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
