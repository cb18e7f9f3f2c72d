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


// Package shared holds state and helpers common to helm-mcp commands.
package shared

// Persistent root flags. The root command binds them; commands read them
// through the getters below.
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	configFlag  string

	// Stamped into cmd/helm-mcp via -ldflags.
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers hands the root command the variables behind
// --verbose, --quiet, --json and --config, in that order.
func RegisterFlagPointers() (*bool, *bool, *bool, *string) {
	return &verboseFlag, &quietFlag, &jsonFlag, &configFlag
}

// SetVersion records the build stamp reported by 'helm-mcp version' and the
// MCP server's implementation info.
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVerbose reports --verbose, which lowers the log level to debug.
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet reports --quiet, which raises the log level to error.
func GetQuiet() bool {
	return quietFlag
}

// GetJSON reports --json.
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns --config. Empty means the XDG default.
func GetConfigPath() string {
	return configFlag
}

// GetVersion returns version, commit and build date.
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

func SetConfigPathForTest(path string) {
	configFlag = path
}

func SetJSONForTest(on bool) {
	jsonFlag = on
}
