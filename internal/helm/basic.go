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
	"fmt"
	"slices"
	"strings"
)

// CompletionShells are the shells helm can generate completion scripts for.
var CompletionShells = []string{"bash", "fish", "powershell", "zsh"}

type CompletionOptions struct {
	Shell string `param:"shell,required" desc:"Shell to generate the completion script for (bash, fish, powershell, zsh)"`
}

// Completion generates a shell completion script. The shell is checked
// before anything runs because helm's own message for a bad shell is poor.
func (c *Client) Completion(ctx context.Context, opts CompletionOptions) string {
	if !slices.Contains(CompletionShells, opts.Shell) {
		return fmt.Sprintf("%s %s. Valid shells are: %s",
			InvalidInputPrefix, opts.Shell, strings.Join(CompletionShells, ", "))
	}
	return c.run(ctx, c.command("completion").positional(opts.Shell))
}

type CreateOptions struct {
	Name    string `param:"name,required" desc:"Name (and directory) of the chart to create"`
	Starter string `param:"starter" desc:"Name or absolute path of a starter scaffold"`
}

// Create scaffolds a new chart directory.
func (c *Client) Create(ctx context.Context, opts CreateOptions) string {
	return c.run(ctx, c.command("create").
		positional(opts.Name).
		flag("--starter", opts.Starter))
}

type EnvOptions struct{}

// Env prints helm's client environment.
func (c *Client) Env(ctx context.Context, _ EnvOptions) string {
	return c.run(ctx, c.command("env"))
}

type VersionOptions struct{}

// Version prints the short helm client version.
func (c *Client) Version(ctx context.Context, _ VersionOptions) string {
	return c.run(ctx, c.command("version", "--short"))
}

type VerifyOptions struct {
	Path    string `param:"path,required" desc:"Path to the packaged chart archive"`
	Keyring string `param:"keyring" desc:"Keyring containing public keys"`
}

// Verify checks a packaged chart's signature and provenance.
func (c *Client) Verify(ctx context.Context, opts VerifyOptions) string {
	return c.run(ctx, c.command("verify").
		positional(opts.Path).
		flag("--keyring", opts.Keyring))
}
