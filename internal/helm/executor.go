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

package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tombee/helm-mcp/internal/log"
)

// Result prefixes. Callers match on these to tell a helm-reported failure
// apart from a failure to run helm at all. InvalidInputPrefix marks input
// rejected before helm runs; it is specific enough that helm's own stdout
// never starts with it.
const (
	CommandFailurePrefix  = "Error executing command"
	UnexpectedErrorPrefix = "Unexpected error"
	InvalidInputPrefix    = "Invalid shell:"
)

// waitDelay bounds how long a timed-out command's output is drained.
const waitDelay = time.Second

// Outcome classifies an execution result string.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeCommandFailure Outcome = "command_failure"
	OutcomeLocalError     Outcome = "local_error"
	OutcomeInvalidInput   Outcome = "invalid_input"
)

// Classify maps a result string onto its outcome by prefix.
func Classify(text string) Outcome {
	switch {
	case strings.HasPrefix(text, CommandFailurePrefix):
		return OutcomeCommandFailure
	case strings.HasPrefix(text, UnexpectedErrorPrefix):
		return OutcomeLocalError
	case strings.HasPrefix(text, InvalidInputPrefix):
		return OutcomeInvalidInput
	default:
		return OutcomeSuccess
	}
}

// IsFailure reports whether a result string describes any kind of failure.
func IsFailure(text string) bool {
	return Classify(text) != OutcomeSuccess
}

// Executor runs an argument vector and returns a single text result.
type Executor interface {
	Execute(ctx context.Context, argv []string) string
}

// ExecutorConfig configures a CommandExecutor.
type ExecutorConfig struct {
	// WorkingDir is the directory the subprocess runs in. Empty inherits ours.
	WorkingDir string

	// Env holds extra KEY=VALUE entries appended to the inherited environment.
	Env []string

	// Timeout bounds the subprocess. Zero means no limit.
	Timeout time.Duration

	// Logger receives command lifecycle logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// CommandExecutor spawns argv directly, without a shell.
type CommandExecutor struct {
	config ExecutorConfig
	logger *slog.Logger
}

// NewExecutor creates a CommandExecutor.
func NewExecutor(config ExecutorConfig) *CommandExecutor {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandExecutor{
		config: config,
		logger: log.WithComponent(logger, "executor"),
	}
}

// Execute runs argv to completion and renders the outcome as text.
//
// The caller's context carries tracing only. Cancelling it does not stop a
// running subprocess; only ExecutorConfig.Timeout does.
func (e *CommandExecutor) Execute(ctx context.Context, argv []string) string {
	_, span := otel.Tracer(tracerName).Start(ctx, "helm.execute")
	defer span.End()

	if len(argv) == 0 {
		span.SetStatus(codes.Error, "empty command")
		return UnexpectedErrorPrefix + ": empty command"
	}
	span.SetAttributes(attribute.String("helm.command", DisplayCommand(argv)))

	cmd, cancel := e.command(argv)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running command", slog.String("command", DisplayCommand(argv)))

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	log.Trace(e.logger, "command output",
		slog.String("stdout", stdout.String()),
		slog.String("stderr", stderr.String()),
	)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			span.SetAttributes(attribute.Int("helm.exit_code", code))
			span.SetStatus(codes.Error, "non-zero exit")
			e.logger.Info("command failed",
				slog.String("command", DisplayCommand(argv)),
				slog.Int(log.ExitCodeKey, code),
				slog.Int64(log.DurationKey, duration.Milliseconds()),
			)
			return commandFailure(stdout.String(), stderr.String(), code)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("command could not be run",
			slog.String("command", DisplayCommand(argv)),
			log.Error(err),
		)
		return fmt.Sprintf("%s: %v", UnexpectedErrorPrefix, err)
	}

	span.SetAttributes(attribute.Int("helm.exit_code", 0))
	e.logger.Info("command completed",
		slog.String("command", DisplayCommand(argv)),
		slog.Int(log.ExitCodeKey, 0),
		slog.Int64(log.DurationKey, duration.Milliseconds()),
	)

	out := strings.TrimRight(stdout.String(), " \t\r\n")
	if out == "" {
		out = strings.TrimRight(stderr.String(), " \t\r\n")
	}
	return out
}

// command builds the exec.Cmd for argv along with its cleanup function.
func (e *CommandExecutor) command(argv []string) (*exec.Cmd, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})

	var cmd *exec.Cmd
	if e.config.Timeout > 0 {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), e.config.Timeout)
		cmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
		// Grandchildren may hold the output pipes open after the kill.
		cmd.WaitDelay = waitDelay
	} else {
		cmd = exec.Command(argv[0], argv[1:]...)
	}

	if e.config.WorkingDir != "" {
		cmd.Dir = e.config.WorkingDir
	}
	if len(e.config.Env) > 0 {
		cmd.Env = append(os.Environ(), e.config.Env...)
	}

	return cmd, cancel
}

// commandFailure renders a non-zero exit. stderr wins; stdout is used when
// helm reported nothing on stderr.
func commandFailure(stdout, stderr string, code int) string {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = strings.TrimSpace(stdout)
	}
	if detail == "" {
		return fmt.Sprintf("%s: (no output) (exit code %d)", CommandFailurePrefix, code)
	}
	return fmt.Sprintf("%s: %s (exit code %d)", CommandFailurePrefix, detail, code)
}

// DryRunExecutor renders argv as a shell-quoted command line instead of
// running it.
type DryRunExecutor struct{}

// Execute implements Executor.
func (DryRunExecutor) Execute(_ context.Context, argv []string) string {
	if len(argv) == 0 {
		return UnexpectedErrorPrefix + ": empty command"
	}
	return DisplayCommand(argv)
}
