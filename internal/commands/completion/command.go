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


// Package completion generates shell completion scripts for the helm-mcp CLI.
package completion

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the completion command for generating shell completion scripts.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for helm-mcp.

Operation names complete for 'tools describe' and 'tools call'.

Bash:
  $ source <(helm-mcp completion bash)

  # To load completions for each session:
  $ helm-mcp completion bash > ~/.local/share/bash-completion/completions/helm-mcp

Zsh:
  # If shell completion is not already enabled, run once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ helm-mcp completion zsh > "${fpath[1]}/_helm-mcp"

Fish:
  $ helm-mcp completion fish > ~/.config/fish/completions/helm-mcp.fish

PowerShell:
  helm-mcp completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE:                  runCompletion,
	}

	return cmd
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return cmd.Root().GenBashCompletionV2(out, true)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	}
	return nil
}
