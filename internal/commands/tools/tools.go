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


// Package tools implements the tools command, which lists, describes and
// calls operations from the command line over the same registry the MCP
// server uses.
package tools

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/helm"
	"github.com/tombee/helm-mcp/internal/operation"
)

// NewCommand creates the tools command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List, describe and call helm operations",
		Long: `Work with the helm operations exposed by the MCP server without an MCP client.

'tools call' dispatches through the same registry, parameter binding and
result contract as a tool call over MCP.`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newDescribeCommand())
	cmd.AddCommand(newCallCommand())

	return cmd
}

// completeToolNames completes operation names for positional arguments.
func completeToolNames(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	entries := helm.Operations(helm.NewClient(helm.DefaultBinary, helm.DryRunExecutor{}), nil)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Descriptor.Name+"\t"+e.Descriptor.Title)
	}
	sort.Strings(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}

// toolView is the serialized form of a descriptor.
type toolView struct {
	Name        string      `json:"name" yaml:"name"`
	Title       string      `json:"title" yaml:"title"`
	Family      string      `json:"family" yaml:"family"`
	Description string      `json:"description" yaml:"description"`
	ReadOnly    bool        `json:"read_only" yaml:"read_only"`
	Destructive bool        `json:"destructive" yaml:"destructive"`
	Params      []paramView `json:"params,omitempty" yaml:"params,omitempty"`
}

type paramView struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Required    bool     `json:"required" yaml:"required"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

func viewOf(d operation.Descriptor, withParams bool) toolView {
	v := toolView{
		Name:        d.Name,
		Title:       d.Title,
		Family:      d.Family,
		Description: d.Description,
		ReadOnly:    d.ReadOnly,
		Destructive: d.Destructive,
	}
	if withParams {
		for _, p := range d.Params {
			v.Params = append(v.Params, paramView{
				Name:        p.Name,
				Type:        string(p.Type),
				Required:    p.Required,
				Default:     p.Default,
				Enum:        p.Enum,
				Description: p.Description,
			})
		}
	}
	return v
}
