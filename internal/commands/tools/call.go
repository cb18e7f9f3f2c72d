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


package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/helm"
	"github.com/tombee/helm-mcp/internal/operation"
)

func newCallCommand() *cobra.Command {
	var (
		params string
		jq     string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "call <operation>",
		Short: "Run one operation and print its result",
		Long: `Run one operation and print its result text.

Parameters are given as a JSON object, inline or on stdin with --params -.
set_values takes a list of path=value strings, applied in order. An object
is accepted too and keeps its key order here.

Examples:
  helm-mcp tools call helm_list --params '{"namespace": "default"}'
  helm-mcp tools call helm_install --dry-run \
    --params '{"release_name": "web", "chart": "nginx", "repo": "bitnami", "set_values": ["replicaCount=2"]}'

With --dry-run the helm command line is printed instead of run.

--jq filters a JSON result, e.g. from an operation called with output json:
  helm-mcp tools call helm_list --params '{"output": "json"}' --jq '.[].name'`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeToolNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args[0], params, jq, dryRun)
		},
	}

	cmd.Flags().StringVarP(&params, "params", "p", "", "Parameters as a JSON object, or - to read from stdin")
	cmd.Flags().StringVar(&jq, "jq", "", "jq expression applied to a JSON result")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the helm command line instead of running it")

	return cmd
}

func runCall(cmd *cobra.Command, name, rawParams, jq string, dryRun bool) error {
	var opts shared.RuntimeOptions
	if dryRun {
		opts.Executor = helm.DryRunExecutor{}
	}
	rt, err := shared.NewRuntime(opts)
	if err != nil {
		return err
	}

	if _, ok := rt.Registry.Lookup(name); !ok {
		return unknownOperation(name)
	}

	params, err := parseParams(rawParams, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var filter *gojq.Code
	if jq != "" && !dryRun {
		if filter, err = compileJQ(jq); err != nil {
			return shared.NewUsageError("invalid --jq expression", err)
		}
	}

	ctx := operation.WithTransport(cmd.Context(), "cli")
	text := rt.Registry.Dispatch(ctx, name, params)
	failed := helm.IsFailure(text)

	if filter != nil && !failed {
		if text, err = applyJQ(ctx, filter, text); err != nil {
			return shared.NewFailureError("failed to apply --jq", err)
		}
	}

	w := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSON(w, struct {
			shared.JSONResponse
			Operation string `json:"operation"`
			Outcome   string `json:"outcome"`
			Result    string `json:"result"`
		}{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "tools call", Success: !failed},
			Operation:    name,
			Outcome:      string(helm.Classify(text)),
			Result:       text,
		}); err != nil {
			return err
		}
	} else if text != "" {
		fmt.Fprintln(w, text)
	}

	if failed {
		// The result text is the error report; exit non-zero without repeating it.
		return &shared.ExitError{Code: shared.ExitFailure}
	}
	return nil
}

// parseParams decodes a JSON object of parameters. Values stay raw JSON so
// the binder sees object key order.
func parseParams(raw string, stdin io.Reader) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, shared.NewFailureError("failed to read parameters from stdin", err)
		}
		raw = strings.TrimSpace(string(data))
	}
	if raw == "" {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, shared.NewUsageError("--params must be a JSON object", err)
	}

	params := make(map[string]any, len(fields))
	for k, v := range fields {
		params[k] = v
	}
	return params, nil
}

func compileJQ(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}
	return code, nil
}

// applyJQ runs code over a JSON result. String results print raw, anything
// else as compact JSON, one per line.
func applyJQ(ctx context.Context, code *gojq.Code, text string) (string, error) {
	var input any
	if err := json.Unmarshal([]byte(text), &input); err != nil {
		return "", fmt.Errorf("result is not JSON: %w", err)
	}

	var lines []string
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return "", err
		}
		if s, isString := v.(string); isString {
			lines = append(lines, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n"), nil
}
