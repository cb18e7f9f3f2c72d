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

// Package credentials looks up registry and repository passwords in the
// operating system keychain.
//
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
package credentials

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service is the keychain service name entries are stored under.
const Service = "helm-mcp"

var (
	// ErrNotFound indicates no password is stored for the account.
	ErrNotFound = errors.New("credential not found")

	// ErrUnavailable indicates the keychain is locked or inaccessible.
	ErrUnavailable = errors.New("keychain unavailable")
)

// Keychain stores passwords keyed by "<username>@<host>".
type Keychain struct {
	service string
}

// NewKeychain creates a Keychain using Service.
func NewKeychain() *Keychain {
	return &Keychain{service: Service}
}

// Account returns the keychain account for a username at an endpoint. The
// endpoint may be a bare host, host/path, or any URL; only its host is used.
func Account(username, endpoint string) string {
	return username + "@" + Host(endpoint)
}

// Host extracts the lowercase host[:port] from an endpoint.
func Host(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if strings.Contains(endpoint, "://") {
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			return strings.ToLower(u.Host)
		}
	}
	host, _, _ := strings.Cut(endpoint, "/")
	return strings.ToLower(host)
}

// Password returns the stored password for username at endpoint.
func (k *Keychain) Password(endpoint, username string) (string, error) {
	account := Account(username, endpoint)
	value, err := keyring.Get(k.service, account)
	if err != nil {
		return "", wrap(err, account)
	}
	return value, nil
}

// Set stores a password for username at endpoint.
func (k *Keychain) Set(endpoint, username, password string) error {
	if username == "" || Host(endpoint) == "" {
		return fmt.Errorf("username and host are required")
	}
	account := Account(username, endpoint)
	if err := keyring.Set(k.service, account, password); err != nil {
		return wrap(err, account)
	}
	return nil
}

// Delete removes the password for username at endpoint.
func (k *Keychain) Delete(endpoint, username string) error {
	account := Account(username, endpoint)
	if err := keyring.Delete(k.service, account); err != nil {
		return wrap(err, account)
	}
	return nil
}

func wrap(err error, account string) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if isUnavailableError(err) {
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	return fmt.Errorf("keychain error: %w", err)
}

// isUnavailableError checks if an error indicates the keychain is locked or
// inaccessible.
func isUnavailableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
