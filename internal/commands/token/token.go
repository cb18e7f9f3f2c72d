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


// Package token implements the token command, which mints bearer tokens for
// the HTTP transport.
package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/helm-mcp/internal/commands/shared"
	"github.com/tombee/helm-mcp/internal/config"
	"github.com/tombee/helm-mcp/internal/mcp/server"
)

// NewCommand creates the token command
func NewCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP transport",
		Long: `Mint an HS256 JWT signed with server.auth.secret.

Clients send it as "Authorization: Bearer <token>" on /mcp.
The secret can also come from HELM_MCP_AUTH_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(shared.GetConfigPath())
			if err != nil {
				return shared.NewUsageError("failed to load configuration", err)
			}
			if cfg.Server.Auth.Secret == "" {
				return shared.NewUsageError("server.auth.secret is not configured", nil).
					WithSuggestion("set server.auth.secret in the config file or HELM_MCP_AUTH_SECRET")
			}

			signed, err := server.GenerateToken(subject, ttl, server.AuthConfig{
				Secret:   []byte(cfg.Server.Auth.Secret),
				Issuer:   cfg.Server.Auth.Issuer,
				Audience: cfg.Server.Auth.Audience,
			})
			if err != nil {
				return shared.NewFailureError("failed to mint token", err)
			}

			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), struct {
					shared.JSONResponse
					Token     string    `json:"token"`
					Subject   string    `json:"subject"`
					ExpiresAt time.Time `json:"expires_at"`
				}{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "token", Success: true},
					Token:        signed,
					Subject:      subject,
					ExpiresAt:    time.Now().Add(ttl).UTC().Truncate(time.Second),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "helm-mcp-client", "Subject (sub claim) identifying the client")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
