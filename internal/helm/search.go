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
	"context"
)

type SearchRepoOptions struct {
	Keyword  string `param:"keyword,required" desc:"Search term"`
	Version  string `param:"version" desc:"Chart version constraint"`
	Versions bool   `param:"versions" desc:"Show every version, not only the latest"`
	Regexp   bool   `param:"regexp" desc:"Treat the keyword as a regular expression"`
	Devel    bool   `param:"devel" desc:"Include development versions"`
	Output   string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

// SearchRepo searches the locally configured repositories.
func (c *Client) SearchRepo(ctx context.Context, opts SearchRepoOptions) string {
	return c.run(ctx, c.command("search", "repo").
		positional(opts.Keyword).
		flag("--version", opts.Version).
		boolFlag("--versions", opts.Versions).
		boolFlag("--regexp", opts.Regexp).
		boolFlag("--devel", opts.Devel).
		flag("--output", opts.Output))
}

type SearchHubOptions struct {
	Keyword     string `param:"keyword,required" desc:"Search term"`
	Endpoint    string `param:"endpoint" desc:"Hub instance to query"`
	MaxColWidth int    `param:"max_col_width" desc:"Maximum column width for table output"`
	ListRepoURL bool   `param:"list_repo_url" desc:"Print the chart repository URL"`
	Output      string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

// SearchHub searches Artifact Hub or another hub instance.
func (c *Client) SearchHub(ctx context.Context, opts SearchHubOptions) string {
	return c.run(ctx, c.command("search", "hub").
		positional(opts.Keyword).
		flag("--endpoint", opts.Endpoint).
		intFlag("--max-col-width", opts.MaxColWidth).
		boolFlag("--list-repo-url", opts.ListRepoURL).
		flag("--output", opts.Output))
}
