package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/revise/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, unknown, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.toml", `
[logger]
log_level = "debug"
disabled_components = ["store"]

[merge]
granularity = "word"
workers = 8
strict_record = true

[display]
theme = "Light"

[explain]
cache_dir = "/tmp/explain"
`)

	cfg, unknown, err := config.Load(path)

	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, []string{"store"}, cfg.Logger.DisabledComponents)
	assert.Equal(t, "word", cfg.Merge.Granularity)
	assert.Equal(t, 8, cfg.Merge.Workers)
	assert.True(t, cfg.Merge.StrictRecord)
	assert.Equal(t, "light", cfg.Display.Theme)
	assert.Equal(t, config.DefaultContextBytes, cfg.Display.Context)
	assert.Equal(t, config.DefaultPreviewRunes, cfg.Display.Preview)
	assert.Equal(t, config.DefaultModel, cfg.Explain.Model)
	assert.Equal(t, "/tmp/explain", cfg.Explain.CacheDir)
}

func TestLoad_ReportsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.toml", "[merge]\nworkers = 2\ncolour = true\n")

	_, unknown, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"merge.colour"}, unknown)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: "[merge\n", wantErr: "parse"},
		{name: "granularity", content: "[merge]\ngranularity = \"paragraph\"\n", wantErr: "unknown granularity"},
		{name: "workers", content: "[merge]\nworkers = -1\n", wantErr: "merge.workers"},
		{name: "theme", content: "[display]\ntheme = \"solarized\"\n", wantErr: "display.theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := config.Load(writeFile(t, "config.toml", tt.content))

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	cfg, _, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "sentence", cfg.Merge.Granularity)
	assert.Equal(t, config.DefaultWorkers, cfg.Merge.Workers)
}
