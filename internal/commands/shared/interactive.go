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


package shared

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsNonInteractive reports whether prompts must be avoided: when
// HELM_MCP_NON_INTERACTIVE=true, in CI, or when stdin is not a TTY.
func IsNonInteractive() bool {
	if os.Getenv("HELM_MCP_NON_INTERACTIVE") == "true" {
		return true
	}
	if isCIEnvironment() {
		return true
	}
	return !isTerminal()
}

// isCIEnvironment checks for common CI environment variables.
func isCIEnvironment() bool {
	ciVars := []string{
		"CI",             // Generic CI indicator
		"GITHUB_ACTIONS", // GitHub Actions
		"GITLAB_CI",      // GitLab CI
		"CIRCLECI",       // CircleCI
		"JENKINS_HOME",   // Jenkins
	}

	for _, envVar := range ciVars {
		value := os.Getenv(envVar)
		if value == "true" || value == "1" {
			return true
		}
		// JENKINS_HOME is set to a path, just check if it exists
		if envVar == "JENKINS_HOME" && value != "" {
			return true
		}
	}

	return false
}

// isTerminal checks if stdin is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret reads a secret from stdin. Piped input is read to EOF and
// trimmed; a terminal gets a hidden prompt on stderr.
func ReadSecret(prompt string) (string, error) {
	if !isTerminal() {
		return readPiped(os.Stdin)
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // New line after hidden input
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func readPiped(r io.Reader) (string, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
