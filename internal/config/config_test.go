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


package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable loadFromEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HELM_MCP_HELM_BINARY", "HELM_MCP_HELM_TIMEOUT", "HELM_MCP_TRANSPORT",
		"HELM_MCP_ADDR", "HELM_MCP_CALLS_PER_MINUTE", "HELM_MCP_LOG_LEVEL",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE", "HELM_MCP_DEBUG",
		"HELM_MCP_TRACING_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT", "HELM_MCP_KEYRING",
		"HELM_MCP_AUTH_SECRET",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Helm.Binary != "helm" {
		t.Errorf("expected binary 'helm', got %q", cfg.Helm.Binary)
	}
	if cfg.Helm.Timeout != 0 {
		t.Errorf("expected no timeout, got %v", cfg.Helm.Timeout)
	}
	if cfg.Server.Transport != TransportStdio {
		t.Errorf("expected transport stdio, got %q", cfg.Server.Transport)
	}
	if cfg.Server.CallsPerMinute != 100 {
		t.Errorf("expected 100 calls per minute, got %d", cfg.Server.CallsPerMinute)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %q", cfg.Log.Level)
	}
	if cfg.Tracing.Exporter != ExporterNone {
		t.Errorf("expected exporter none, got %q", cfg.Tracing.Exporter)
	}
	if cfg.Credentials.Keyring {
		t.Error("expected keyring disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errText string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "empty binary",
			modify:  func(c *Config) { c.Helm.Binary = " " },
			wantErr: true,
			errText: "helm.binary",
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Helm.Timeout = -time.Second },
			wantErr: true,
			errText: "helm.timeout",
		},
		{
			name:    "missing working dir",
			modify:  func(c *Config) { c.Helm.WorkingDir = "/nonexistent/helm-mcp-dir" },
			wantErr: true,
			errText: "helm.working_dir",
		},
		{
			name:    "invalid env name",
			modify:  func(c *Config) { c.Helm.Env = map[string]string{"A=B": "c"} },
			wantErr: true,
			errText: "helm.env",
		},
		{
			name:    "unknown transport",
			modify:  func(c *Config) { c.Server.Transport = "sse" },
			wantErr: true,
			errText: "server.transport",
		},
		{
			name:    "http without addr",
			modify:  func(c *Config) { c.Server.Transport = TransportHTTP; c.Server.Addr = "" },
			wantErr: true,
			errText: "server.addr",
		},
		{
			name:    "negative rate limit",
			modify:  func(c *Config) { c.Server.CallsPerMinute = -1 },
			wantErr: true,
			errText: "server.calls_per_minute",
		},
		{
			name:   "auth secret",
			modify: func(c *Config) { c.Server.Auth.Secret = strings.Repeat("s", 32) },
		},
		{
			name:    "short auth secret",
			modify:  func(c *Config) { c.Server.Auth.Secret = "hunter2" },
			wantErr: true,
			errText: "server.auth.secret",
		},
		{
			name:    "issuer without secret",
			modify:  func(c *Config) { c.Server.Auth.Issuer = "helm-mcp" },
			wantErr: true,
			errText: "server.auth.issuer",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errText: "log.level",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errText: "log.format",
		},
		{
			name:    "otlp without endpoint",
			modify:  func(c *Config) { c.Tracing.Exporter = ExporterOTLPGRPC },
			wantErr: true,
			errText: "tracing.endpoint",
		},
		{
			name:    "unknown exporter",
			modify:  func(c *Config) { c.Tracing.Exporter = "jaeger" },
			wantErr: true,
			errText: "tracing.exporter",
		},
		{
			name:    "sample ratio out of range",
			modify:  func(c *Config) { c.Tracing.SampleRatio = 1.5 },
			wantErr: true,
			errText: "tracing.sample_ratio",
		},
		{
			name: "otlp with endpoint",
			modify: func(c *Config) {
				c.Tracing.Exporter = ExporterOTLPHTTP
				c.Tracing.Endpoint = "localhost:4318"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("expected error containing %q, got %q", tt.errText, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "config_file" {
		t.Errorf("expected ConfigError at config_file, got %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
helm:
  binary: /usr/local/bin/helm
  timeout: 2m
  env:
    KUBECONFIG: /tmp/kubeconfig
    HELM_NAMESPACE: apps
server:
  transport: http
  addr: 0.0.0.0:9090
  calls_per_minute: 30
  cors_origins:
    - https://app.example.com
log:
  level: debug
  format: text
credentials:
  keyring: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Helm.Binary != "/usr/local/bin/helm" {
		t.Errorf("binary = %q", cfg.Helm.Binary)
	}
	if cfg.Helm.Timeout != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.Helm.Timeout)
	}
	wantEnv := []string{"HELM_NAMESPACE=apps", "KUBECONFIG=/tmp/kubeconfig"}
	if got := cfg.Helm.Environ(); !reflect.DeepEqual(got, wantEnv) {
		t.Errorf("Environ() = %v, want %v", got, wantEnv)
	}
	if cfg.Server.Transport != TransportHTTP || cfg.Server.Addr != "0.0.0.0:9090" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.CallsPerMinute != 30 {
		t.Errorf("calls_per_minute = %d", cfg.Server.CallsPerMinute)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("cors_origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.Name != "helm-mcp" {
		t.Errorf("expected default name to be applied, got %q", cfg.Server.Name)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.Credentials.Keyring {
		t.Error("expected keyring enabled")
	}
	if cfg.Tracing.Exporter != ExporterNone {
		t.Errorf("expected default exporter, got %q", cfg.Tracing.Exporter)
	}
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[helm]
binary = "helm3"
timeout = "45s"

[helm.env]
KUBECONFIG = "/tmp/kc"

[server]
calls_per_minute = 0

[tracing]
exporter = "otlp-http"
endpoint = "localhost:4318"
insecure = true
sample_ratio = 0.25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Helm.Binary != "helm3" {
		t.Errorf("binary = %q", cfg.Helm.Binary)
	}
	if cfg.Helm.Timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.Helm.Timeout)
	}
	if cfg.Helm.Env["KUBECONFIG"] != "/tmp/kc" {
		t.Errorf("env = %v", cfg.Helm.Env)
	}
	if cfg.Server.CallsPerMinute != 0 {
		t.Errorf("calls_per_minute = %d, want 0", cfg.Server.CallsPerMinute)
	}
	if cfg.Tracing.Exporter != ExporterOTLPHTTP || !cfg.Tracing.Insecure || cfg.Tracing.SampleRatio != 0.25 {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		file    string
		content string
		errText string
	}{
		{"bad yaml", "config.yaml", "helm: [unterminated", "failed to parse YAML"},
		{"bad toml", "config.toml", "[helm\nbinary = ", "failed to parse TOML"},
		{"invalid value", "config.yaml", "server:\n  transport: carrier-pigeon\n", "server.transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error containing %q, got %q", tt.errText, err.Error())
			}
		})
	}
}

func TestLoad_DefaultLocation(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "helm-mcp")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("helm:\n  binary: from-xdg\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Helm.Binary != "from-xdg" {
		t.Errorf("binary = %q, want from-xdg", cfg.Helm.Binary)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HELM_MCP_HELM_BINARY", "/opt/helm")
	t.Setenv("HELM_MCP_HELM_TIMEOUT", "90s")
	t.Setenv("HELM_MCP_TRANSPORT", "HTTP")
	t.Setenv("HELM_MCP_ADDR", ":7070")
	t.Setenv("HELM_MCP_CALLS_PER_MINUTE", "5")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("HELM_MCP_TRACING_EXPORTER", "stdout")
	t.Setenv("HELM_MCP_KEYRING", "true")
	t.Setenv("HELM_MCP_AUTH_SECRET", strings.Repeat("k", 40))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Helm.Binary != "/opt/helm" {
		t.Errorf("binary = %q", cfg.Helm.Binary)
	}
	if cfg.Helm.Timeout != 90*time.Second {
		t.Errorf("timeout = %v", cfg.Helm.Timeout)
	}
	if cfg.Server.Transport != TransportHTTP || cfg.Server.Addr != ":7070" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.CallsPerMinute != 5 {
		t.Errorf("calls_per_minute = %d", cfg.Server.CallsPerMinute)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Tracing.Exporter != ExporterStdout {
		t.Errorf("exporter = %q", cfg.Tracing.Exporter)
	}
	if !cfg.Credentials.Keyring {
		t.Error("expected keyring enabled from env")
	}
	if len(cfg.Server.Auth.Secret) != 40 {
		t.Errorf("auth secret not loaded from env")
	}
}

func TestLoadFromEnv_DebugOverridesLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("HELM_MCP_LOG_LEVEL", "error")
	t.Setenv("HELM_MCP_DEBUG", "1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.AddSource {
		t.Errorf("log = %+v, want debug with source", cfg.Log)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() failed: %v", err)
	}
	if path != filepath.Join("/tmp/xdg", "helm-mcp", "config.yaml") {
		t.Errorf("ConfigPath() = %q", path)
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("boom")
	err := &ConfigError{Key: "config_file", Reason: "failed to load", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected ConfigError to unwrap to its cause")
	}
	if err.Error() != "config error at config_file: failed to load: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
