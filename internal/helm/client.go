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

// Package helm translates typed operation options into helm command lines
// and runs them through an Executor.
//
// Every builder fixes its own subcommand path, appends flags only for
// parameters that were actually set, and returns the Executor's text result
// unchanged. Builders never touch the filesystem or network themselves.
package helm

import (
	"context"
)

const tracerName = "github.com/tombee/helm-mcp/internal/helm"

// DefaultBinary is the helm executable looked up on PATH.
const DefaultBinary = "helm"

// Client builds helm invocations and hands them to an Executor.
type Client struct {
	binary string
	exec   Executor
}

// NewClient creates a Client. An empty binary means DefaultBinary.
func NewClient(binary string, exec Executor) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{binary: binary, exec: exec}
}

// Binary returns the helm executable this client invokes.
func (c *Client) Binary() string {
	return c.binary
}

func (c *Client) command(subcommand ...string) *args {
	return newArgs(c.binary, subcommand...)
}

func (c *Client) run(ctx context.Context, a *args) string {
	return c.exec.Execute(ctx, a.build())
}
