// Package log builds the slog loggers used by kernelbridge hosts and the CLI.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Option configures New.
type Option func(*handlerConfig)

type handlerConfig struct {
	w         io.Writer
	level     slog.Level
	addSource bool
	json      bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		w:     os.Stderr,
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) Option {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) Option {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithWriter sets the destination. The default is stderr.
func WithWriter(w io.Writer) Option {
	return func(c *handlerConfig) {
		if w != nil {
			c.w = w
		}
	}
}

// WithJSON switches from text to JSON lines.
func WithJSON(enabled bool) Option {
	return func(c *handlerConfig) {
		c.json = enabled
	}
}

// New creates a logger with the given options.
func New(opts ...Option) *slog.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ho := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	if cfg.json {
		return slog.New(slog.NewJSONHandler(cfg.w, ho))
	}
	return slog.New(slog.NewTextHandler(cfg.w, ho))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
