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

// Package server implements an MCP server that exposes registered operations as tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/helm-mcp/internal/log"
	"github.com/tombee/helm-mcp/internal/operation"
)

// Transport names recorded on the request context.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const instructions = "Each tool runs one helm command and returns its output as text. " +
	"Failed commands are reported as tool errors carrying helm's own message."

// Server wraps the MCP server and exposes registry operations as tools.
type Server struct {
	mcpServer   *server.MCPServer
	registry    *operation.Registry
	name        string
	version     string
	rateLimiter *RateLimiter
	isFailure   func(string) bool
	logger      *slog.Logger
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "helm-mcp")
	Name string

	// Version is the server version (default: "dev")
	Version string

	// Registry provides the operations exposed as tools. Required.
	Registry *operation.Registry

	// CallsPerMinute caps tool calls across all tools. Zero disables the limit.
	CallsPerMinute int

	// IsFailure reports whether a result text should be flagged as a tool
	// error. Defaults to matching the dispatch error prefix.
	IsFailure func(text string) bool

	// Logger receives server logs. It must not write to stdout when serving stdio.
	Logger *slog.Logger
}

// NewServer creates a new MCP server instance with one tool per operation.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Registry == nil {
		return nil, errors.New("operation registry is required")
	}
	if config.Name == "" {
		config.Name = "helm-mcp"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.CallsPerMinute < 0 {
		return nil, fmt.Errorf("invalid calls per minute: %d", config.CallsPerMinute)
	}
	if config.IsFailure == nil {
		config.IsFailure = func(text string) bool {
			return strings.HasPrefix(text, operation.ErrorPrefix)
		}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(config.Name, config.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	s := &Server{
		mcpServer:   mcpServer,
		registry:    config.Registry,
		name:        config.Name,
		version:     config.Version,
		rateLimiter: NewRateLimiter(config.CallsPerMinute),
		isFailure:   config.IsFailure,
		logger:      log.WithComponent(logger, "mcp"),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// SetCallsPerMinute changes the tool call limit of a running server.
func (s *Server) SetCallsPerMinute(callsPerMinute int) error {
	if callsPerMinute < 0 {
		return fmt.Errorf("invalid calls per minute: %d", callsPerMinute)
	}
	s.rateLimiter.SetCallsPerMinute(callsPerMinute)
	s.logger.Info("rate limit updated", slog.Int("calls_per_minute", callsPerMinute))
	return nil
}

// registerTools adds a tool for every operation in the registry.
func (s *Server) registerTools() error {
	descriptors := s.registry.List()
	tools := make([]server.ServerTool, 0, len(descriptors))
	for _, desc := range descriptors {
		tool, err := toolFor(desc)
		if err != nil {
			return err
		}
		tools = append(tools, server.ServerTool{
			Tool:    tool,
			Handler: s.toolHandler(desc.Name),
		})
	}
	s.mcpServer.AddTools(tools...)

	s.logger.Debug("registered tools", slog.Int("count", len(tools)))
	return nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run serves MCP over stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server",
		slog.String("version", s.version),
		slog.String(log.TransportKey, TransportStdio),
		slog.Int("tools", s.registry.Len()),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		return operation.WithTransport(ctx, TransportStdio)
	})

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}

	s.logger.Info("MCP server stopped")
	return nil
}

// toolHandler routes a tool call to the registry and maps the result text
// onto an MCP result. Failures are returned as tool errors, never as Go errors.
func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() {
			s.logger.Warn("tool call rate limited", slog.String(log.OperationKey, name))
			return mcp.NewToolResultError(operation.ErrorPrefix + ": rate limit exceeded, try again later"), nil
		}

		args := request.GetArguments()
		if args == nil && request.Params.Arguments != nil {
			return mcp.NewToolResultError(operation.ErrorPrefix + ": arguments must be an object"), nil
		}

		if operation.TransportFromContext(ctx) == "" {
			ctx = operation.WithTransport(ctx, TransportStdio)
		}

		text := s.registry.Dispatch(ctx, name, args)
		if s.isFailure(text) {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}
