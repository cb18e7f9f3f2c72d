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

type RepoAddOptions struct {
	Name                  string `param:"name,required" desc:"Local name for the repository"`
	URL                   string `param:"url,required" desc:"Repository URL"`
	Username              string `param:"username" desc:"Repository username"`
	Password              string `param:"password" desc:"Repository password"`
	ForceUpdate           bool   `param:"force_update" desc:"Replace the repository if it already exists"`
	InsecureSkipTLSVerify bool   `param:"insecure_skip_tls_verify" desc:"Skip TLS certificate checks"`
}

// RepoAdd adds a chart repository.
func (c *Client) RepoAdd(ctx context.Context, opts RepoAddOptions) string {
	return c.run(ctx, c.command("repo", "add").
		positional(opts.Name, opts.URL).
		flag("--username", opts.Username).
		flag("--password", opts.Password).
		boolFlag("--force-update", opts.ForceUpdate).
		boolFlag("--insecure-skip-tls-verify", opts.InsecureSkipTLSVerify))
}

type RepoRemoveOptions struct {
	Name string `param:"name,required" desc:"Name of the repository to remove"`
}

// RepoRemove removes a chart repository.
func (c *Client) RepoRemove(ctx context.Context, opts RepoRemoveOptions) string {
	return c.run(ctx, c.command("repo", "remove").positional(opts.Name))
}

type RepoListOptions struct {
	Output string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

// RepoList lists configured repositories.
func (c *Client) RepoList(ctx context.Context, opts RepoListOptions) string {
	return c.run(ctx, c.command("repo", "list").flag("--output", opts.Output))
}

type RepoUpdateOptions struct {
	Names []string `param:"names" desc:"Repositories to update; all when omitted"`
}

// RepoUpdate refreshes repository indexes.
func (c *Client) RepoUpdate(ctx context.Context, opts RepoUpdateOptions) string {
	return c.run(ctx, c.command("repo", "update").positional(opts.Names...))
}

type RepoIndexOptions struct {
	Directory string `param:"directory,required" desc:"Directory containing packaged charts"`
	URL       string `param:"url" desc:"URL of the chart repository"`
	Merge     string `param:"merge" desc:"Existing index to merge into the generated one"`
}

// RepoIndex generates an index file for a directory of charts.
func (c *Client) RepoIndex(ctx context.Context, opts RepoIndexOptions) string {
	return c.run(ctx, c.command("repo", "index").
		positional(opts.Directory).
		flag("--url", opts.URL).
		flag("--merge", opts.Merge))
}
