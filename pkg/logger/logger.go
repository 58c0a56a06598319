// Package logger configures the application-wide structured logger. All
// packages log through log/slog; this package owns handler construction so
// that the server and the worker produce identical output.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures the logger.
type Options struct {
	// Level is the minimum level, one of debug, info, warn, error.
	Level string

	// Format is "json" or "text".
	Format string

	// Output defaults to stdout.
	Output io.Writer

	// AddSource includes the file:line of the call site.
	AddSource bool
}

// DefaultOptions returns sensible defaults for production.
func DefaultOptions() Options {
	return Options{
		Level:  "info",
		Format: "json",
		Output: os.Stdout,
	}
}

// ParseLevel parses a level string, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a slog.Logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "text" {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	}
	return slog.New(handler)
}

// Setup creates a logger and installs it as the slog default.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}
