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


/*
Package cli provides the root command for the helm-mcp CLI.

This package creates the Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	helm-mcp
	├── serve         Run the MCP server (stdio or streamable HTTP)
	├── tools         List, describe and call operations
	├── credentials   Manage keyring passwords
	├── token         Mint a bearer token for the HTTP transport
	├── completion    Generate shell completion scripts
	└── version       Show version

# Global Flags

	--config    Config file (default: ~/.config/helm-mcp/config.yaml)
	--verbose   Debug logging
	--quiet     Errors only
	--json      JSON output where supported

Logs always go to stderr so stdout stays clean for the stdio transport.
*/
package cli
