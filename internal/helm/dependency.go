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

// DependencyOptions is shared by dependency build and update.
type DependencyOptions struct {
	ChartPath   string `param:"chart_path,required" desc:"Path to the chart directory"`
	Keyring     string `param:"keyring" desc:"Keyring containing public keys"`
	SkipRefresh bool   `param:"skip_refresh" desc:"Do not refresh the local repository cache"`
	Verify      bool   `param:"verify" desc:"Verify the packages against signatures"`
}

type DependencyListOptions struct {
	ChartPath string `param:"chart_path,required" desc:"Path to the chart directory"`
}

// DependencyBuild rebuilds charts/ from Chart.lock.
func (c *Client) DependencyBuild(ctx context.Context, opts DependencyOptions) string {
	return c.run(ctx, c.dependency("build", opts))
}

// DependencyUpdate refreshes charts/ from Chart.yaml.
func (c *Client) DependencyUpdate(ctx context.Context, opts DependencyOptions) string {
	return c.run(ctx, c.dependency("update", opts))
}

// DependencyList lists a chart's dependencies and their status.
func (c *Client) DependencyList(ctx context.Context, opts DependencyListOptions) string {
	return c.run(ctx, c.command("dependency", "list").positional(opts.ChartPath))
}

func (c *Client) dependency(sub string, opts DependencyOptions) *args {
	return c.command("dependency", sub).
		positional(opts.ChartPath).
		flag("--keyring", opts.Keyring).
		boolFlag("--skip-refresh", opts.SkipRefresh).
		boolFlag("--verify", opts.Verify)
}
