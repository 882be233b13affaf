package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cml.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1000, cfg.Output.MaxDirs)
	require.Equal(t, "output_", cfg.Output.Prefix)
	require.Equal(t, 15.0, cfg.Telemetry.Interval)
	require.Equal(t, "EPSG:2039", cfg.Metadata.Projection)
	require.True(t, cfg.Stages.Availability)

	lvl, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, lvl)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
[input]
rawdata_dir = "/data/raw"
selected_links = "links.txt"

[output]
root = "/tmp/out"
sqlite = true

[stages]
availability = false

[metadata]
projection = "EPSG:32636"

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/raw", cfg.Input.RawdataDir)
	require.Equal(t, "links.txt", cfg.Input.SelectedLinks)
	require.Equal(t, []string{".txt"}, cfg.Input.RawdataExtensions)
	require.Equal(t, "/tmp/out", cfg.Output.Root)
	require.True(t, cfg.Output.CSV)
	require.True(t, cfg.Output.SQLite)
	require.False(t, cfg.Stages.Availability)
	require.True(t, cfg.Stages.Metadata)
	require.Equal(t, "EPSG:32636", cfg.Metadata.Projection)
	require.Equal(t, "cellcom", cfg.Metadata.Provider)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, body, want string
	}{
		{"bad toml", "[output\nroot=", ""},
		{"empty root", "[output]\nroot = \"\"", "output.root"},
		{"max dirs", "[output]\nmax_dirs = 0", "output.max_dirs"},
		{"no sinks", "[output]\ncsv = false", "at least one"},
		{"interval", "[telemetry]\ninterval = -1", "telemetry.interval"},
		{"projection", "[metadata]\nprojection = \"EPSG:4326\"", "metadata.projection"},
		{"projection codes", "[metadata]\nprojection = \"EPSG:4326\"", "EPSG:2039, EPSG:32636"},
		{"level", "[logging]\nlevel = \"loud\"", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
