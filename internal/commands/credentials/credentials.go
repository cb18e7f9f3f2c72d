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


// Package credentials implements the credentials command, which manages the
// registry and repository passwords helm-mcp reads from the OS keyring.
package credentials

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/credentials"
)

// Store is the subset of the keychain the commands use.
type Store interface {
	Set(endpoint, username, password string) error
	Delete(endpoint, username string) error
}

// NewCommand creates the credentials command group
func NewCommand() *cobra.Command {
	return newCommand(credentials.NewKeychain(), shared.ReadSecret)
}

func newCommand(store Store, readSecret func(prompt string) (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage passwords stored in the OS keyring",
		Long: `Store or remove passwords for helm registries and chart repositories.

When credentials.keyring is enabled in the configuration, helm_registry_login
and helm_repo_add read the password from the keyring if the caller omits it.
Entries are keyed by username and endpoint host.`,
	}

	cmd.AddCommand(newSetCommand(store, readSecret))
	cmd.AddCommand(newDeleteCommand(store))

	return cmd
}

func newSetCommand(store Store, readSecret func(prompt string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "set <endpoint> <username>",
		Short: "Store a password",
		Long: `Store a password for username at endpoint.

The password is read from stdin when piped, otherwise prompted for without echo:
  echo "$TOKEN" | helm-mcp credentials set oci://ghcr.io octocat`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, username := args[0], args[1]
			if credentials.Host(endpoint) == "" {
				return shared.NewUsageError(fmt.Sprintf("endpoint %q has no host", endpoint), nil)
			}

			password, err := readSecret(fmt.Sprintf("Password for %s: ", credentials.Account(username, endpoint)))
			if err != nil {
				return shared.NewFailureError("failed to read password", err)
			}
			if password == "" {
				return shared.NewUsageError("password cannot be empty", nil)
			}

			if err := store.Set(endpoint, username, password); err != nil {
				return keyringError("failed to store password", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Stored password for "+credentials.Account(username, endpoint)))
			return nil
		},
	}
}

func newDeleteCommand(store Store) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <endpoint> <username>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored password",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, username := args[0], args[1]
			if err := store.Delete(endpoint, username); err != nil {
				return keyringError("failed to delete password", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Deleted password for "+credentials.Account(username, endpoint)))
			return nil
		},
	}
}

func keyringError(msg string, err error) error {
	exitErr := shared.NewFailureError(msg, err)
	switch {
	case errors.Is(err, credentials.ErrNotFound):
		return exitErr.WithSuggestion("no password is stored for that username and endpoint")
	case errors.Is(err, credentials.ErrUnavailable):
		return exitErr.WithSuggestion("unlock the OS keyring or disable credentials.keyring")
	}
	return exitErr
}
