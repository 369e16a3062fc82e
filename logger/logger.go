// Package logger builds the structured loggers used across revise.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ComponentKey is the attribute that names the subsystem a record came from.
const ComponentKey = "component"

// Config holds all settings for the logger.
type Config struct {
	// LogLevel specifies the minimum level to log ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`

	// LogFilePath is the output log file. Empty or "-" means stderr.
	LogFilePath string `toml:"log_file"`

	// DisabledComponents drops records whose component attribute is listed.
	DisabledComponents []string `toml:"disabled_components"`
}

// NewConfig creates a new Config with default values.
func NewConfig() Config {
	return Config{LogLevel: "info"}
}

// Level parses LogLevel. Unknown names fall back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger configured by cfg. The returned close function
// releases the log file, if one was opened.
func New(cfg Config) (*slog.Logger, func() error, error) {
	if cfg.LogFilePath == "" || cfg.LogFilePath == "-" {
		return NewWithWriter(cfg, os.Stderr), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.LogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return NewWithWriter(cfg, f), f.Close, nil
}

// NewWithWriter returns a text logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if disabled := toSet(cfg.DisabledComponents); disabled != nil {
		h = &filteringHandler{base: h, disabled: disabled}
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Component returns l tagged with a component attribute.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(ComponentKey, name)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item != "" {
			set[strings.ToLower(item)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// filteringHandler drops records from disabled components. The component
// may arrive with the record or from WithAttrs.
type filteringHandler struct {
	base      slog.Handler
	disabled  map[string]struct{}
	component string
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if _, off := h.disabled[h.component]; off {
		return false
	}
	return h.base.Enabled(ctx, level)
}

func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == ComponentKey {
			component = strings.ToLower(a.Value.String())
			return false
		}
		return true
	})
	if _, off := h.disabled[component]; off {
		return nil
	}
	return h.base.Handle(ctx, r)
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	for _, a := range attrs {
		if a.Key == ComponentKey {
			component = strings.ToLower(a.Value.String())
		}
	}
	return &filteringHandler{base: h.base.WithAttrs(attrs), disabled: h.disabled, component: component}
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{base: h.base.WithGroup(name), disabled: h.disabled, component: h.component}
}
