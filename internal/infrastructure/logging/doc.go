// Package logging provides structured logging for Argent Core.
//
// This package wraps Go's standard log/slog package so every component
// logs in the same structured form.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Error("failed to connect", "error", err)
//
// Never log secrets, tokens, or API keys. Truncate identifying values:
//
//	logger.Info("API key used", "key_prefix", key[:8]+"...")
package logging
