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


// Package serve implements the serve command, which runs the MCP server.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/config"
	"github.com/tombee/helm-mcp/internal/helm"
	"github.com/tombee/helm-mcp/internal/mcp/server"
	"github.com/tombee/helm-mcp/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	transport      string
	addr           string
	callsPerMinute int
	corsOrigins    []string
	watchConfig    bool
}

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the helm MCP server",
		Long: `Start the helm MCP (Model Context Protocol) server.

Every helm operation is exposed as a tool: installs, upgrades, releases,
repositories, charts, plugins and registries. Each call runs exactly one helm
command and returns its output. Failed commands come back as tool errors
carrying helm's own message.

The server runs in stdio mode by default, which is suitable for integration
with AI assistants via their MCP configuration:

  {
    "mcpServers": {
      "helm": {
        "command": "helm-mcp",
        "args": ["serve"]
      }
    }
  }

Use --transport http to serve streamable HTTP on /mcp instead, with /healthz
and /metrics alongside. Set server.auth.secret (or HELM_MCP_AUTH_SECRET) to
require a bearer JWT on /mcp; 'helm-mcp token' mints one.

With --watch-config, edits to server.calls_per_minute in the config file
take effect without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "Transport to serve (stdio, http); overrides server.transport")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address for the http transport; overrides server.addr")
	cmd.Flags().IntVar(&opts.callsPerMinute, "calls-per-minute", -1, "Tool call rate limit, 0 for none; overrides server.calls_per_minute")
	cmd.Flags().StringSliceVar(&opts.corsOrigins, "cors-origin", nil, "Allowed CORS origin for the http transport (repeatable)")
	cmd.Flags().BoolVar(&opts.watchConfig, "watch-config", false, "Apply rate limit changes from the config file while running")

	_ = cmd.RegisterFlagCompletionFunc("transport", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{
			config.TransportStdio + "\tJSON-RPC over stdin/stdout",
			config.TransportHTTP + "\tStreamable HTTP",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// applyFlags overlays command-line flags on the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) error {
	if cmd.Flags().Changed("transport") {
		cfg.Server.Transport = opts.transport
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = opts.addr
	}
	if cmd.Flags().Changed("calls-per-minute") {
		cfg.Server.CallsPerMinute = opts.callsPerMinute
	}
	if cmd.Flags().Changed("cors-origin") {
		cfg.Server.CORSOrigins = opts.corsOrigins
	}
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, opts options) error {
	rt, err := shared.NewRuntime(shared.RuntimeOptions{})
	if err != nil {
		return err
	}
	cfg := rt.Config
	logger := rt.Logger

	if err := applyFlags(cmd, cfg, opts); err != nil {
		return shared.NewUsageError("invalid server flags", err)
	}

	versionStr, _, _ := shared.GetVersion()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    cfg.Server.Name,
		ServiceVersion: versionStr,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return shared.NewUsageError("failed to set up tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	srv, err := server.NewServer(server.ServerConfig{
		Name:           cfg.Server.Name,
		Version:        versionStr,
		Registry:       rt.Registry,
		CallsPerMinute: cfg.Server.CallsPerMinute,
		IsFailure:      helm.IsFailure,
		Logger:         logger,
	})
	if err != nil {
		return shared.NewFailureError("failed to create MCP server", err)
	}

	if opts.watchConfig {
		if cmd.Flags().Changed("calls-per-minute") {
			logger.Warn("--calls-per-minute is set; config file changes will not override it")
		} else if path := configFilePath(); path != "" {
			w, err := config.NewWatcher(config.WatcherConfig{
				Path:   path,
				Logger: logger,
				OnChange: func(next *config.Config) {
					if err := srv.SetCallsPerMinute(next.Server.CallsPerMinute); err != nil {
						logger.Warn("ignoring rate limit change", slog.Any("error", err))
					}
				},
			})
			if err != nil {
				return shared.NewFailureError("failed to watch config file", err)
			}
			defer w.Close()
		} else {
			logger.Warn("no config file to watch")
		}
	}

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		err = srv.ServeHTTP(ctx, server.HTTPConfig{
			Addr:        cfg.Server.Addr,
			CORSOrigins: cfg.Server.CORSOrigins,
			Auth:        authConfig(cfg.Server.Auth),
		})
	default:
		err = srv.Run(ctx)
	}
	if err != nil {
		return shared.NewFailureError(fmt.Sprintf("%s transport failed", cfg.Server.Transport), err)
	}
	return nil
}

// authConfig converts the configured auth section for the HTTP transport.
func authConfig(cfg config.AuthConfig) server.AuthConfig {
	auth := server.AuthConfig{
		Issuer:    cfg.Issuer,
		Audience:  cfg.Audience,
		ClockSkew: time.Minute,
	}
	if cfg.Secret != "" {
		auth.Secret = []byte(cfg.Secret)
	}
	return auth
}

// configFilePath returns the config file in effect, or "" when running on
// defaults alone.
func configFilePath() string {
	if path := shared.GetConfigPath(); path != "" {
		return path
	}
	path, err := config.ConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
