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


// Package version implements the version command.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/helm"
)

// VersionInfo contains version metadata
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`

	// Helm is the configured helm binary's reported version, when requested.
	Helm string `json:"helm,omitempty"`
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var withHelm bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version, commit hash, and build date for helm-mcp.

With --helm, also run the configured helm binary and report its version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, withHelm)
		},
	}

	cmd.Flags().BoolVar(&withHelm, "helm", false, "Also report the version of the configured helm binary")

	return cmd
}

func runVersion(cmd *cobra.Command, withHelm bool) error {
	v, c, b := shared.GetVersion()

	info := VersionInfo{
		Version:   v,
		Commit:    c,
		BuildDate: b,
	}

	if withHelm {
		rt, err := shared.NewRuntime(shared.RuntimeOptions{})
		if err != nil {
			return err
		}
		info.Helm = rt.Registry.Dispatch(cmd.Context(), "helm_version", nil)
		if helm.IsFailure(info.Helm) {
			return shared.NewFailureError("failed to query helm version", nil).
				WithSuggestion(info.Helm)
		}
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), info)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "helm-mcp version %s\n", info.Version)
	fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  build date: %s\n", info.BuildDate)
	if info.Helm != "" {
		fmt.Fprintf(w, "  helm:       %s\n", info.Helm)
	}

	return nil
}
