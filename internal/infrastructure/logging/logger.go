package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/argentmirror/argent-core/internal/infrastructure/config"
)

// Logger wraps slog.Logger with Argent-specific functionality.
//
// It provides structured logging with default fields and level-based
// filtering. All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger with the specified configuration.
//
// It configures the output format (JSON or text), the level filter, the
// output destination, and the default service/version fields attached to
// every entry.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "argent"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error.
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	apiLogger := logger.With("component", "api")
//	apiLogger.Info("listening") // Includes component=api
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default creates a default logger for use before configuration is loaded.
//
// It outputs to stdout in JSON format at info level and should only be
// used during early startup.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
