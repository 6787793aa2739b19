package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "mean", cfg.Dataset.Aggregation)
	assert.Equal(t, 4, cfg.Dataset.Workers)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  format: json
dataset:
  aggregation: sum
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output, "unset file values keep defaults")
	assert.Equal(t, "sum", cfg.Dataset.Aggregation)
	assert.Equal(t, 8, cfg.Dataset.Workers)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mean", cfg.Dataset.Aggregation)
}

func TestLoad_EnvBeatsFileBeatsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
dataset:
  aggregation: sum
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("WBDCLI_DATASET_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Dataset.Workers, "env overrides file")
	assert.Equal(t, "sum", cfg.Dataset.Aggregation, "file value survives when its env var is unset")
	assert.Equal(t, "info", cfg.Logging.Level, "defaults fill everything else")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WBDCLI_DATASET_AGGREGATION", "sum")
	t.Setenv("WBDCLI_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sum", cfg.Dataset.Aggregation)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad aggregation mode",
			content: `
dataset:
  aggregation: median
`,
		},
		{
			name: "bad log level",
			content: `
logging:
  level: loud
`,
		},
		{
			name: "workers out of range",
			content: `
dataset:
  workers: 500
`,
		},
		{
			name:    "malformed yaml",
			content: "dataset: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
