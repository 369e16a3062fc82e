// Package config loads revise settings from TOML and merge jobs from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/revise/annotate"
	"github.com/fwojciec/revise/gemini"
	"github.com/fwojciec/revise/logger"
	"github.com/fwojciec/revise/tokenize"
)

const (
	// AppName names the per-user config and cache directories.
	AppName = "revise"
	// DefaultConfigFileName is looked up under the user config directory.
	DefaultConfigFileName = "config.toml"

	DefaultWorkers      = 4
	DefaultTheme        = "dark"
	DefaultContextBytes = annotate.ContextBytes
	DefaultPreviewRunes = annotate.PreviewRunes
	DefaultModel        = gemini.DefaultModel
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger"`
	Merge   MergeConfig   `toml:"merge"`
	Display DisplayConfig `toml:"display"`
	Explain ExplainConfig `toml:"explain"`
}

// MergeConfig controls merge runs.
type MergeConfig struct {
	Granularity string `toml:"granularity"`
	Workers     int    `toml:"workers"`
	// StrictRecord makes a malformed conflict record an error instead of a warning.
	StrictRecord bool `toml:"strict_record"`
}

// DisplayConfig controls conflict display in the terminal.
type DisplayConfig struct {
	Theme   string `toml:"theme"`
	Context int    `toml:"context"`
	Preview int    `toml:"preview"`
}

// ExplainConfig controls the optional conflict explainer.
type ExplainConfig struct {
	Model    string `toml:"model"`
	CacheDir string `toml:"cache_dir"`
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Merge: MergeConfig{
			Granularity: tokenize.Default,
			Workers:     DefaultWorkers,
		},
		Display: DisplayConfig{
			Theme:   DefaultTheme,
			Context: DefaultContextBytes,
			Preview: DefaultPreviewRunes,
		},
		Explain: ExplainConfig{Model: DefaultModel},
	}
}

// DefaultPath returns the per-user config file path, or "" if the user
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults. Unknown keys are returned so the caller can warn about them.
func Load(path string) (*Config, []string, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil, nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil, nil
		}
		return nil, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, unknown, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, unknown, nil
}

// Validate rejects values no merge could run with and resets blank ones to defaults.
func (c *Config) Validate() error {
	defaults := NewDefaultConfig()

	c.Merge.Granularity = strings.TrimSpace(c.Merge.Granularity)
	if c.Merge.Granularity == "" {
		c.Merge.Granularity = defaults.Merge.Granularity
	}
	if _, err := tokenize.Lookup(c.Merge.Granularity); err != nil {
		return err
	}
	if c.Merge.Workers < 0 {
		return fmt.Errorf("merge.workers must not be negative, got %d", c.Merge.Workers)
	}
	if c.Merge.Workers == 0 {
		c.Merge.Workers = defaults.Merge.Workers
	}

	switch strings.ToLower(c.Display.Theme) {
	case "":
		c.Display.Theme = defaults.Display.Theme
	case "dark", "light":
		c.Display.Theme = strings.ToLower(c.Display.Theme)
	default:
		return fmt.Errorf("display.theme must be dark or light, got %q", c.Display.Theme)
	}
	if c.Display.Context <= 0 {
		c.Display.Context = defaults.Display.Context
	}
	if c.Display.Preview <= 0 {
		c.Display.Preview = defaults.Display.Preview
	}

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Explain.Model == "" {
		c.Explain.Model = defaults.Explain.Model
	}
	return nil
}
