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


package shared

import (
	"io"
	"log/slog"
	"os"

	"github.com/tombee/helm-mcp/internal/config"
	"github.com/tombee/helm-mcp/internal/credentials"
	"github.com/tombee/helm-mcp/internal/helm"
	"github.com/tombee/helm-mcp/internal/log"
	"github.com/tombee/helm-mcp/internal/operation"
)

// Runtime is the wiring shared by commands that dispatch operations.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *operation.Registry
}

// RuntimeOptions customizes NewRuntime.
type RuntimeOptions struct {
	// Executor replaces the subprocess executor, e.g. helm.DryRunExecutor.
	Executor helm.Executor

	// LogOutput receives logs (default: os.Stderr).
	LogOutput io.Writer
}

// NewRuntime loads configuration and builds the logger and operation
// registry from it.
func NewRuntime(opts RuntimeOptions) (*Runtime, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewUsageError("failed to load configuration", err).
			WithSuggestion("check the file passed to --config or the HELM_MCP_* environment variables")
	}

	logger := NewLogger(cfg.Log, opts.LogOutput)

	exec := opts.Executor
	if exec == nil {
		exec = helm.NewExecutor(helm.ExecutorConfig{
			WorkingDir: cfg.Helm.WorkingDir,
			Env:        cfg.Helm.Environ(),
			Timeout:    cfg.Helm.Timeout,
			Logger:     logger,
		})
	}

	regOpts := helm.RegistryOptions{Logger: logger}
	if cfg.Credentials.Keyring {
		regOpts.Passwords = credentials.NewKeychain()
	}

	reg, err := helm.NewRegistry(helm.NewClient(cfg.Helm.Binary, exec), regOpts)
	if err != nil {
		return nil, NewFailureError("failed to build operation registry", err)
	}

	return &Runtime{Config: cfg, Logger: logger, Registry: reg}, nil
}

// NewLogger builds the process logger from configuration and the global
// --verbose and --quiet flags. Logs never go to stdout.
func NewLogger(cfg config.LogConfig, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	switch {
	case GetVerbose():
		level = "debug"
	case GetQuiet():
		level = "error"
	}

	return log.New(&log.Config{
		Level:     level,
		Format:    log.Format(cfg.Format),
		Output:    output,
		AddSource: cfg.AddSource,
	})
}
