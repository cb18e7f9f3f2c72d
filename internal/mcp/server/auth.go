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


package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL is used when GenerateToken is given no lifetime.
const defaultTokenTTL = 24 * time.Hour

// AuthConfig enables bearer token authentication on the MCP endpoint.
type AuthConfig struct {
	// Secret is the HS256 signing key. Authentication is off when empty.
	Secret []byte

	// Issuer is the expected iss claim, unchecked when empty.
	Issuer string

	// Audience is the expected aud claim, unchecked when empty.
	Audience string

	// ClockSkew allows for clock skew when validating exp/nbf claims.
	ClockSkew time.Duration
}

// Enabled reports whether tokens are required.
func (c AuthConfig) Enabled() bool {
	return len(c.Secret) > 0
}

// Claims are the JWT claims accepted by the MCP endpoint.
type Claims struct {
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a bearer token.
func ValidateToken(tokenString string, cfg AuthConfig) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	if !cfg.Enabled() {
		return nil, errors.New("no signing secret configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token is invalid")
	}
	return claims, nil
}

// GenerateToken signs a token for subject valid for ttl.
func GenerateToken(subject string, ttl time.Duration, cfg AuthConfig) (string, error) {
	if !cfg.Enabled() {
		return "", errors.New("no signing secret configured")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// requireToken rejects requests without a valid bearer token.
func (s *Server) requireToken(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// CORS preflight carries no credentials.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, _ := strings.Cut(r.Header.Get("Authorization"), " ")
			if !strings.EqualFold(scheme, "Bearer") {
				token = ""
			}

			_, err := ValidateToken(strings.TrimSpace(token), cfg)
			if err != nil {
				s.logger.Warn("rejected unauthenticated request",
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("reason", err.Error()),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="helm-mcp"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
