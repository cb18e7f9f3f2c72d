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


package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/commands/completion"
	"github.com/tombee/helm-mcp/internal/commands/credentials"
	"github.com/tombee/helm-mcp/internal/commands/serve"
	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/commands/token"
	"github.com/tombee/helm-mcp/internal/commands/tools"
	versioncmd "github.com/tombee/helm-mcp/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for helm-mcp
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "helm-mcp",
		Short: "helm-mcp - Helm operations as MCP tools",
		Long: `helm-mcp exposes the helm command line as Model Context Protocol tools.

Each tool builds a helm command from named parameters, runs the helm binary
and returns its output as text. Run 'helm-mcp serve' to start the server on
stdio, or 'helm-mcp tools list' to see the available operations.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/helm-mcp/config.yaml)")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	return cmd
}

// NewCommandTree creates the root command with every subcommand attached.
func NewCommandTree() *cobra.Command {
	root := NewRootCommand()

	root.AddCommand(serve.NewCommand())
	root.AddCommand(tools.NewCommand())
	root.AddCommand(credentials.NewCommand())
	root.AddCommand(token.NewCommand())
	root.AddCommand(completion.NewCommand())
	root.AddCommand(versioncmd.NewVersionCommand())

	return root
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
