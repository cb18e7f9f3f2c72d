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
	"log/slog"
	"time"
)

// CallRequest describes an operation call for logging purposes.
type CallRequest struct {
	// Operation is the requested operation name.
	Operation string

	// RequestID is the unique ID for this call.
	RequestID string

	// Transport is where the call came from ("stdio", "http", "cli").
	Transport string
}

// CallResult describes how an operation call ended.
type CallResult struct {
	// Outcome is the classified result ("success", "command_failure", ...).
	Outcome string

	// Duration is how long the call took.
	Duration time.Duration
}

func (r *CallRequest) attrs() []any {
	attrs := []any{OperationKey, r.Operation}
	if r.RequestID != "" {
		attrs = append(attrs, RequestIDKey, r.RequestID)
	}
	if r.Transport != "" {
		attrs = append(attrs, TransportKey, r.Transport)
	}
	return attrs
}

// LogCallStart logs an incoming operation call.
func LogCallStart(logger *slog.Logger, req *CallRequest) {
	attrs := append([]any{EventKey, "call_start"}, req.attrs()...)
	logger.Debug("operation call received", attrs...)
}

// LogCallEnd logs a completed operation call. Successful calls log at info;
// anything else logs at warn.
func LogCallEnd(logger *slog.Logger, req *CallRequest, res *CallResult) {
	attrs := append([]any{EventKey, "call_end"}, req.attrs()...)
	attrs = append(attrs,
		OutcomeKey, res.Outcome,
		DurationKey, res.Duration.Milliseconds(),
	)

	level := slog.LevelInfo
	message := "operation call completed"
	if res.Outcome != "success" {
		level = slog.LevelWarn
		message = "operation call failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}

// CallMiddleware wraps operation calls with start/end logging.
type CallMiddleware struct {
	logger *slog.Logger
}

// NewCallMiddleware creates a new call logging middleware.
func NewCallMiddleware(logger *slog.Logger) *CallMiddleware {
	return &CallMiddleware{logger: logger}
}

// Handle logs req, runs handler, and logs the outcome it reports.
func (m *CallMiddleware) Handle(req *CallRequest, handler func() (outcome string)) {
	start := time.Now()
	LogCallStart(m.logger, req)
	outcome := handler()
	LogCallEnd(m.logger, req, &CallResult{
		Outcome:  outcome,
		Duration: time.Since(start),
	})
}
