// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs in JSON format for machine parsing.
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format.
	FormatText Format = "text"
)

// LevelTrace is more verbose than Debug, used for full command output.
const LevelTrace = slog.Level(-8)

// Standard field keys for structured logging.
const (
	// OperationKey is the field key for operation names.
	OperationKey = "operation"
	// RequestIDKey is the field key for per-call request identifiers.
	RequestIDKey = "request_id"
	// TransportKey is the field key for the transport a call arrived on.
	TransportKey = "transport"
	// OutcomeKey is the field key for classified call outcomes.
	OutcomeKey = "outcome"
	// ExitCodeKey is the field key for subprocess exit codes.
	ExitCodeKey = "exit_code"
	// DurationKey is the field key for duration in milliseconds.
	DurationKey = "duration_ms"
	// EventKey is the field key for event types.
	EventKey = "event"
)

// Config holds the logging configuration.
type Config struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Default: info
	Level string

	// Format sets the output format (json, text).
	// Default: json
	Format Format

	// Output is the writer for log output. Stdout is reserved for the MCP
	// stdio transport, so this must never be os.Stdout when serving stdio.
	// Default: os.Stderr
	Output io.Writer

	// AddSource adds source file and line information to logs.
	AddSource bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

// New creates a new structured logger from the given configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a string level to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// WithComponent returns a new logger with a component name field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithOperation returns a new logger scoped to a single operation call.
func WithOperation(logger *slog.Logger, operation, requestID string) *slog.Logger {
	return logger.With(
		slog.String(OperationKey, operation),
		slog.String(RequestIDKey, requestID),
	)
}

// Error creates an error attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// SanitizeSecret completely redacts a secret value.
func SanitizeSecret(string) string {
	return "[REDACTED]"
}

// Trace logs a message at trace level.
func Trace(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	ctx := context.Background()
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
}
