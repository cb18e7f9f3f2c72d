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
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/helm"
	"github.com/tombee/helm-mcp/internal/operation"
)

// Output formats for list and describe.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutput(output string) error {
	switch output {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return shared.NewUsageError(fmt.Sprintf("invalid output format %q (must be text, json or yaml)", output), nil)
}

// effectiveOutput lets the global --json flag win over the default text output.
func effectiveOutput(output string) string {
	if shared.GetJSON() && output == outputText {
		return outputJSON
	}
	return output
}

func newListCommand() *cobra.Command {
	var (
		family string
		match  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output = effectiveOutput(output)
			if err := validateOutput(output); err != nil {
				return err
			}
			if match != "" && !doublestar.ValidatePattern(match) {
				return shared.NewUsageError(fmt.Sprintf("invalid --match pattern %q", match), nil)
			}
			rt, err := shared.NewRuntime(shared.RuntimeOptions{Executor: helm.DryRunExecutor{}})
			if err != nil {
				return err
			}
			return runList(cmd.OutOrStdout(), filterDescriptors(rt.Registry.List(), family, match), family != "" || match != "", output)
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "Only list operations in this family (e.g. release, repository)")
	cmd.Flags().StringVar(&match, "match", "", "Only list operations whose name matches this glob (e.g. 'helm_get_*')")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}

// filterDescriptors keeps descriptors in family whose names match the glob.
// Empty filters match everything.
func filterDescriptors(descriptors []operation.Descriptor, family, match string) []operation.Descriptor {
	var out []operation.Descriptor
	for _, d := range descriptors {
		if family != "" && d.Family != family {
			continue
		}
		if match != "" {
			if ok, err := doublestar.Match(match, d.Name); err != nil || !ok {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func runList(w io.Writer, descriptors []operation.Descriptor, filtered bool, output string) error {
	if filtered && len(descriptors) == 0 {
		return shared.NewUsageError("no operations match the given filters", nil).
			WithSuggestion("run 'helm-mcp tools list' without --family or --match")
	}

	views := make([]toolView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, viewOf(d, false))
	}

	switch output {
	case outputJSON:
		return shared.EmitJSON(w, struct {
			shared.JSONResponse
			Tools []toolView `json:"tools"`
		}{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "tools list", Success: true},
			Tools:        views,
		})
	case outputYAML:
		return writeYAML(w, views)
	}

	// Group by family, families in first-seen order of the sorted list.
	var families []string
	byFamily := make(map[string][]toolView)
	for _, v := range views {
		if _, ok := byFamily[v.Family]; !ok {
			families = append(families, v.Family)
		}
		byFamily[v.Family] = append(byFamily[v.Family], v)
	}

	for i, f := range families {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, shared.Header.Render(strings.ToUpper(f)))
		for _, v := range byFamily[f] {
			line := shared.ToolName.Render(v.Name) + " " + v.Title
			if v.ReadOnly {
				line += " " + shared.RenderBadge("read-only", false)
			}
			if v.Destructive {
				line += " " + shared.RenderBadge("destructive", true)
			}
			fmt.Fprintln(w, "  "+line)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, shared.RenderLabel(fmt.Sprintf("%d operations", len(views))))
	return nil
}

func newDescribeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "describe <operation>",
		Short:             "Show an operation's parameters",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeToolNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			output = effectiveOutput(output)
			if err := validateOutput(output); err != nil {
				return err
			}
			rt, err := shared.NewRuntime(shared.RuntimeOptions{Executor: helm.DryRunExecutor{}})
			if err != nil {
				return err
			}
			desc, ok := rt.Registry.Lookup(args[0])
			if !ok {
				return unknownOperation(args[0])
			}
			return runDescribe(cmd.OutOrStdout(), desc, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}

func runDescribe(w io.Writer, desc operation.Descriptor, output string) error {
	view := viewOf(desc, true)

	switch output {
	case outputJSON:
		return shared.EmitJSON(w, view)
	case outputYAML:
		return writeYAML(w, view)
	}

	fmt.Fprintln(w, shared.Header.Render(view.Name)+"  "+view.Title)
	fmt.Fprintln(w, view.Description)
	fmt.Fprintln(w)

	if len(view.Params) == 0 {
		fmt.Fprintln(w, shared.RenderLabel("No parameters."))
		return nil
	}

	fmt.Fprintln(w, shared.Bold.Render("Parameters:"))
	for _, p := range view.Params {
		var notes []string
		if p.Required {
			notes = append(notes, "required")
		}
		if p.Default != nil {
			notes = append(notes, fmt.Sprintf("default %v", p.Default))
		}
		if len(p.Enum) > 0 {
			notes = append(notes, "one of "+strings.Join(p.Enum, ", "))
		}

		line := fmt.Sprintf("  %s %s", shared.ToolName.Render(p.Name), shared.RenderLabel(p.Type))
		if len(notes) > 0 {
			line += " " + shared.RenderLabel("("+strings.Join(notes, "; ")+")")
		}
		fmt.Fprintln(w, line)
		if p.Description != "" {
			fmt.Fprintln(w, "      "+p.Description)
		}
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func unknownOperation(name string) error {
	return shared.NewUsageError(fmt.Sprintf("unknown operation %q", name), nil).
		WithSuggestion("run 'helm-mcp tools list' to see available operations")
}
