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

type PluginInstallOptions struct {
	Source  string `param:"source,required" desc:"Plugin URL or local path"`
	Version string `param:"version" desc:"Plugin version constraint"`
}

// PluginInstall installs a helm plugin.
func (c *Client) PluginInstall(ctx context.Context, opts PluginInstallOptions) string {
	return c.run(ctx, c.command("plugin", "install").
		positional(opts.Source).
		flag("--version", opts.Version))
}

type PluginListOptions struct{}

// PluginList lists installed plugins.
func (c *Client) PluginList(ctx context.Context, _ PluginListOptions) string {
	return c.run(ctx, c.command("plugin", "list"))
}

// PluginNameOptions names an installed plugin.
type PluginNameOptions struct {
	Name string `param:"name,required" desc:"Plugin name"`
}

// PluginUninstall removes a plugin.
func (c *Client) PluginUninstall(ctx context.Context, opts PluginNameOptions) string {
	return c.run(ctx, c.command("plugin", "uninstall").positional(opts.Name))
}

// PluginUpdate updates a plugin.
func (c *Client) PluginUpdate(ctx context.Context, opts PluginNameOptions) string {
	return c.run(ctx, c.command("plugin", "update").positional(opts.Name))
}
