// Package log builds the slog loggers used by skillguard binaries.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config describes a logger. Zero values select info level text output on stderr.
type Config struct {
	Level  string    `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string    `yaml:"format" json:"format" validate:"omitempty,oneof=text json"`
	Output io.Writer `yaml:"-" json:"-"`
}

// HandlerOption configures handler construction.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	addSource bool
	attrs     []slog.Attr
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithAttrs attaches attributes to every record.
func WithAttrs(attrs ...slog.Attr) HandlerOption {
	return func(c *handlerConfig) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// ParseLevel maps a level name to its slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewHandler builds the slog.Handler described by cfg.
func NewHandler(cfg Config, opts ...HandlerOption) (slog.Handler, error) {
	hc := handlerConfig{}
	for _, opt := range opts {
		opt(&hc)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: level, AddSource: hc.addSource}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		h = slog.NewTextHandler(out, ho)
	case FormatJSON:
		h = slog.NewJSONHandler(out, ho)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	if len(hc.attrs) > 0 {
		h = h.WithAttrs(hc.attrs)
	}
	return h, nil
}

// New builds a *slog.Logger described by cfg.
func New(cfg Config, opts ...HandlerOption) (*slog.Logger, error) {
	h, err := NewHandler(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
