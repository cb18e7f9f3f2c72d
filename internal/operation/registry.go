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

package operation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tombee/helm-mcp/internal/log"
)

const tracerName = "github.com/tombee/helm-mcp/internal/operation"

// unknownLabel is the metrics label used for names that are not registered.
const unknownLabel = "unknown"

// Options configures a Registry.
type Options struct {
	// Logger receives per-call logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Classify maps a handler's result text onto an outcome label for logs
	// and metrics. Defaults to "success" for everything.
	Classify func(text string) string
}

// Registry is an immutable set of operations keyed by name.
type Registry struct {
	entries  map[string]Entry
	names    []string
	logger   *slog.Logger
	calls    *log.CallMiddleware
	classify func(string) string
}

// NewRegistry builds a registry from entries. Names must be unique.
func NewRegistry(opts Options, entries ...Entry) (*Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classify := opts.Classify
	if classify == nil {
		classify = func(string) string { return "success" }
	}

	r := &Registry{
		entries:  make(map[string]Entry, len(entries)),
		names:    make([]string, 0, len(entries)),
		logger:   log.WithComponent(logger, "operation"),
		classify: classify,
	}
	r.calls = log.NewCallMiddleware(r.logger)

	for _, e := range entries {
		name := e.Descriptor.Name
		if e.invoke == nil {
			return nil, fmt.Errorf("operation %q was not created with Define", name)
		}
		if _, dup := r.entries[name]; dup {
			return nil, fmt.Errorf("duplicate operation %q", name)
		}
		r.entries[name] = e
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	return r, nil
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.names)
}

// List returns every descriptor, sorted by name.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.entries[name].Descriptor)
	}
	return out
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Descriptor{}, false
	}
	return e.Descriptor, true
}

// Dispatch runs the named operation and always returns a text result.
// Failures to run the handler at all are rendered with ErrorPrefix.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) string {
	text, err := r.Call(ctx, name, params)
	if err != nil {
		return err.Text()
	}
	return text
}

// Call runs the named operation. A non-nil *Error means the handler did not
// produce a result; otherwise text is whatever the handler returned.
func (r *Registry) Call(ctx context.Context, name string, params map[string]any) (text string, err *Error) {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = WithRequestID(ctx, requestID)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "operation.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation.name", name),
		attribute.String("operation.request_id", requestID),
	)

	label := name
	entry, ok := r.entries[name]
	if !ok {
		label = unknownLabel
	}

	req := &log.CallRequest{
		Operation: name,
		RequestID: requestID,
		Transport: TransportFromContext(ctx),
	}

	start := time.Now()
	r.calls.Handle(req, func() string {
		if !ok {
			err = unknownOperation(name)
		} else {
			text, err = r.invoke(ctx, entry, params)
		}

		var outcome string
		if err != nil {
			outcome = string(err.Type)
			span.SetStatus(codes.Error, err.Error())
		} else {
			outcome = r.classify(text)
		}
		span.SetAttributes(attribute.String("operation.outcome", outcome))
		recordCall(label, outcome, time.Since(start))
		return outcome
	})

	return text, err
}

func (r *Registry) invoke(ctx context.Context, entry Entry, params map[string]any) (text string, err *Error) {
	name := entry.Descriptor.Name

	defer func() {
		if rec := recover(); rec != nil {
			log.WithOperation(r.logger, name, RequestIDFromContext(ctx)).Error("operation handler panicked",
				slog.Any("panic", rec),
			)
			text = ""
			err = &Error{
				Type:      ErrorTypeHandlerPanic,
				Operation: name,
				Message:   fmt.Sprintf("operation %s panicked: %v", name, rec),
			}
		}
	}()

	if params == nil {
		params = map[string]any{}
	}

	out, bindErr := entry.invoke(ctx, params)
	if bindErr != nil {
		return "", invalidParams(name, bindErr)
	}
	return out, nil
}

