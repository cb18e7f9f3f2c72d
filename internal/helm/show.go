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

// ShowOptions is shared by every "show" subcommand.
type ShowOptions struct {
	Chart   string `param:"chart,required" desc:"Chart name, repo/name reference, path or URL"`
	Repo    string `param:"repo" desc:"Repository to prefix the chart name with"`
	Version string `param:"version" desc:"Chart version constraint"`
	Devel   bool   `param:"devel" desc:"Include development versions"`
}

// ShowAll shows every piece of chart information.
func (c *Client) ShowAll(ctx context.Context, opts ShowOptions) string {
	return c.run(ctx, c.show("all", opts))
}

// ShowChart shows the chart definition.
func (c *Client) ShowChart(ctx context.Context, opts ShowOptions) string {
	return c.run(ctx, c.show("chart", opts))
}

// ShowCRDs shows the chart's custom resource definitions.
func (c *Client) ShowCRDs(ctx context.Context, opts ShowOptions) string {
	return c.run(ctx, c.show("crds", opts))
}

// ShowReadme shows the chart's README.
func (c *Client) ShowReadme(ctx context.Context, opts ShowOptions) string {
	return c.run(ctx, c.show("readme", opts))
}

// ShowValues shows the chart's default values.
func (c *Client) ShowValues(ctx context.Context, opts ShowOptions) string {
	return c.run(ctx, c.show("values", opts))
}

func (c *Client) show(sub string, opts ShowOptions) *args {
	return c.command("show", sub).
		positional(ChartRef(opts.Chart, opts.Repo)).
		flag("--version", opts.Version).
		boolFlag("--devel", opts.Devel)
}
