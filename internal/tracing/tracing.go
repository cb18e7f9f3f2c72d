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


// Package tracing configures the OpenTelemetry tracer provider used for
// operation dispatch and helm execution spans.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config configures the tracer provider.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Exporter selects where spans go. Empty or "none" disables tracing.
	Exporter string

	// Endpoint is the OTLP collector endpoint.
	Endpoint string

	// Insecure disables TLS to the collector (for development only).
	Insecure bool

	// SampleRatio is the fraction of root spans sampled. Zero samples nothing.
	SampleRatio float64

	// Writer receives stdout exporter output (default: os.Stderr, since
	// stdout carries the MCP stdio transport).
	Writer io.Writer
}

// Provider owns the installed tracer provider.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup builds the configured exporter and installs a global tracer
// provider. With no exporter, the global no-op provider is left in place.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Exporter == "" || cfg.Exporter == ExporterNone {
		return &Provider{}, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Schemaless avoids conflicts when merging with the default resource.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

// Enabled reports whether spans are being exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Shutdown flushes any pending spans and releases resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

func writerOrStderr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}
