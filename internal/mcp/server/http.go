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


package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tombee/helm-mcp/internal/log"
	"github.com/tombee/helm-mcp/internal/operation"
)

// Endpoint paths served by the HTTP transport.
const (
	MCPPath     = "/mcp"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// HTTPConfig configures the streamable HTTP transport.
type HTTPConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080".
	Addr string

	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string

	// Auth requires a bearer token on the MCP endpoint when enabled.
	Auth AuthConfig
}

// Handler returns the HTTP router: the MCP endpoint plus health and metrics.
func (s *Server) Handler(config HTTPConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if len(config.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: config.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version"},
			ExposedHeaders: []string{"Mcp-Session-Id"},
			MaxAge:         300,
		}))
	}

	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(MCPPath),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			ctx = operation.WithTransport(ctx, TransportHTTP)
			if id := middleware.GetReqID(r.Context()); id != "" {
				ctx = operation.WithRequestID(ctx, id)
			}
			return ctx
		}),
	)

	if config.Auth.Enabled() {
		r.With(s.requireToken(config.Auth)).Handle(MCPPath, streamable)
	} else {
		r.Handle(MCPPath, streamable)
	}
	r.Get(HealthPath, s.handleHealth)
	r.Handle(MetricsPath, promhttp.Handler())

	return r
}

// handleHealth reports liveness and the number of exposed tools.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"name":    s.name,
		"version": s.version,
		"tools":   s.registry.Len(),
	})
}

// ServeHTTP serves the HTTP transport until ctx is cancelled, then shuts the
// listener down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, config HTTPConfig) error {
	if config.Addr == "" {
		return errors.New("listen address is required")
	}

	srv := &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(config),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server",
			slog.String("version", s.version),
			slog.String(log.TransportKey, TransportHTTP),
			slog.String("addr", config.Addr),
			slog.Int("tools", s.registry.Len()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("MCP HTTP server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down MCP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown MCP HTTP server: %w", err)
	}
	return nil
}
