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

// GetOptions selects a release revision for the "get" subcommands.
type GetOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace of the release"`
	Revision    int    `param:"revision" desc:"Release revision; latest when omitted"`
}

type GetMetadataOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace of the release"`
	Revision    int    `param:"revision" desc:"Release revision; latest when omitted"`
	Output      string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

type GetValuesOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace of the release"`
	Revision    int    `param:"revision" desc:"Release revision; latest when omitted"`
	AllValues   bool   `param:"all_values" desc:"Dump all computed values, not only user-supplied ones"`
	Output      string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

// GetAll shows all information about a release.
func (c *Client) GetAll(ctx context.Context, opts GetOptions) string {
	return c.run(ctx, c.get("all", opts))
}

// GetHooks shows a release's hooks.
func (c *Client) GetHooks(ctx context.Context, opts GetOptions) string {
	return c.run(ctx, c.get("hooks", opts))
}

// GetManifest shows a release's rendered manifest.
func (c *Client) GetManifest(ctx context.Context, opts GetOptions) string {
	return c.run(ctx, c.get("manifest", opts))
}

// GetNotes shows a release's notes.
func (c *Client) GetNotes(ctx context.Context, opts GetOptions) string {
	return c.run(ctx, c.get("notes", opts))
}

// GetMetadata shows a release's metadata.
func (c *Client) GetMetadata(ctx context.Context, opts GetMetadataOptions) string {
	a := c.get("metadata", GetOptions{
		ReleaseName: opts.ReleaseName,
		Namespace:   opts.Namespace,
		Revision:    opts.Revision,
	})
	return c.run(ctx, a.flag("--output", opts.Output))
}

// GetValues shows a release's values.
func (c *Client) GetValues(ctx context.Context, opts GetValuesOptions) string {
	a := c.get("values", GetOptions{
		ReleaseName: opts.ReleaseName,
		Namespace:   opts.Namespace,
		Revision:    opts.Revision,
	})
	return c.run(ctx, a.
		boolFlag("--all", opts.AllValues).
		flag("--output", opts.Output))
}

func (c *Client) get(sub string, opts GetOptions) *args {
	return c.command("get", sub).
		positional(opts.ReleaseName).
		flag("--namespace", opts.Namespace).
		intFlag("--revision", opts.Revision)
}
