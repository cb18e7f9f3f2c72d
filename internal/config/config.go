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


// Package config loads helm-mcp configuration from a YAML or TOML file, with
// environment variable overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tombee/helm-mcp/internal/log"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Transport names accepted by server.transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Tracing exporters accepted by tracing.exporter.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config represents the complete helm-mcp configuration.
type Config struct {
	Helm        HelmConfig        `yaml:"helm" toml:"helm"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Log         LogConfig         `yaml:"log" toml:"log"`
	Tracing     TracingConfig     `yaml:"tracing" toml:"tracing"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
}

// HelmConfig configures how the helm binary is run.
type HelmConfig struct {
	// Binary is the helm executable name or path.
	// Environment: HELM_MCP_HELM_BINARY
	// Default: helm
	Binary string `yaml:"binary" toml:"binary"`

	// WorkingDir is the directory helm runs in. Empty inherits ours.
	WorkingDir string `yaml:"working_dir,omitempty" toml:"working_dir,omitempty"`

	// Timeout bounds each helm invocation. Zero means no limit.
	// Environment: HELM_MCP_HELM_TIMEOUT
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`

	// Env holds extra environment variables for helm, e.g. KUBECONFIG.
	Env map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
}

// Environ renders Env as sorted KEY=VALUE entries.
func (h HelmConfig) Environ() []string {
	if len(h.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(h.Env))
	for k, v := range h.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name reported to clients.
	Name string `yaml:"name" toml:"name"`

	// Transport is stdio or http.
	// Environment: HELM_MCP_TRANSPORT
	Transport string `yaml:"transport" toml:"transport"`

	// Addr is the listen address for the http transport.
	// Environment: HELM_MCP_ADDR
	Addr string `yaml:"addr" toml:"addr"`

	// CallsPerMinute caps tool calls. Zero disables the limit.
	// Environment: HELM_MCP_CALLS_PER_MINUTE
	CallsPerMinute int `yaml:"calls_per_minute" toml:"calls_per_minute"`

	// CORSOrigins enables CORS on the http transport for these origins.
	CORSOrigins []string `yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty"`

	// Auth requires bearer tokens on the http transport.
	Auth AuthConfig `yaml:"auth,omitempty" toml:"auth,omitempty"`
}

// minSecretLength is the shortest accepted HS256 signing secret.
const minSecretLength = 32

// AuthConfig configures JWT bearer authentication for the http transport.
type AuthConfig struct {
	// Secret is the HS256 signing key. Empty disables authentication.
	// Environment: HELM_MCP_AUTH_SECRET
	Secret string `yaml:"secret,omitempty" toml:"secret,omitempty"`

	// Issuer is the required iss claim, if set.
	Issuer string `yaml:"issuer,omitempty" toml:"issuer,omitempty"`

	// Audience is the required aud claim, if set.
	Audience string `yaml:"audience,omitempty" toml:"audience,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the log level (trace, debug, info, warn, error).
	Level string `yaml:"level" toml:"level"`

	// Format is the log format (text, json).
	Format string `yaml:"format" toml:"format"`

	// AddSource adds source file and line to log records.
	AddSource bool `yaml:"add_source" toml:"add_source"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Exporter is none, stdout, otlp-http or otlp-grpc.
	// Environment: HELM_MCP_TRACING_EXPORTER
	Exporter string `yaml:"exporter" toml:"exporter"`

	// Endpoint is the OTLP collector endpoint, e.g. localhost:4318.
	// Environment: OTEL_EXPORTER_OTLP_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure" toml:"insecure"`

	// SampleRatio is the fraction of traces sampled, 0 to 1.
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`
}

// CredentialsConfig configures credential lookup.
type CredentialsConfig struct {
	// Keyring enables reading omitted registry and repository passwords
	// from the OS keyring.
	// Environment: HELM_MCP_KEYRING
	Keyring bool `yaml:"keyring" toml:"keyring"`
}

// ConfigError describes a configuration problem.
type ConfigError struct {
	// Key is the configuration key that has the problem.
	Key string

	// Reason explains what's wrong.
	Reason string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error: %s", e.Reason)
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Helm: HelmConfig{
			Binary: "helm",
		},
		Server: ServerConfig{
			Name:           "helm-mcp",
			Transport:      TransportStdio,
			Addr:           "127.0.0.1:8080",
			CallsPerMinute: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    ExporterNone,
			SampleRatio: 1.0,
		},
	}
}

// Load loads configuration from configPath, then the environment.
//
// An empty configPath means the default location; a missing file there is
// not an error. An explicit path must exist.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		path, err := ConfigPath()
		if err == nil {
			configPath = path
		}
	}

	if configPath != "" {
		err := cfg.loadFromFile(configPath)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return nil, &ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills zero values left by a minimal config file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Helm.Binary == "" {
		c.Helm.Binary = def.Helm.Binary
	}
	if c.Server.Name == "" {
		c.Server.Name = def.Server.Name
	}
	if c.Server.Transport == "" {
		c.Server.Transport = def.Server.Transport
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = def.Tracing.Exporter
	}
}

func (c *Config) loadFromFile(path string) error {
	// Expand home directory if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	// Helm configuration
	if val := os.Getenv("HELM_MCP_HELM_BINARY"); val != "" {
		c.Helm.Binary = val
	}
	if val := os.Getenv("HELM_MCP_HELM_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Helm.Timeout = duration
		}
	}

	// Server configuration
	if val := os.Getenv("HELM_MCP_TRANSPORT"); val != "" {
		c.Server.Transport = strings.ToLower(val)
	}
	if val := os.Getenv("HELM_MCP_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("HELM_MCP_CALLS_PER_MINUTE"); val != "" {
		if calls, err := strconv.Atoi(val); err == nil {
			c.Server.CallsPerMinute = calls
		}
	}
	if val := os.Getenv("HELM_MCP_AUTH_SECRET"); val != "" {
		c.Server.Auth.Secret = val
	}

	// Log configuration
	if val := os.Getenv("HELM_MCP_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	} else if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}
	if val := os.Getenv("HELM_MCP_DEBUG"); val == "1" || strings.ToLower(val) == "true" {
		c.Log.Level = "debug"
		c.Log.AddSource = true
	}

	// Tracing configuration
	if val := os.Getenv("HELM_MCP_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}

	// Credentials configuration
	if val := os.Getenv("HELM_MCP_KEYRING"); val != "" {
		c.Credentials.Keyring = val == "1" || strings.ToLower(val) == "true"
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Helm.Binary) == "" {
		errs = append(errs, "helm.binary must not be empty")
	}
	if c.Helm.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("helm.timeout must not be negative, got %v", c.Helm.Timeout))
	}
	if c.Helm.WorkingDir != "" {
		if info, err := os.Stat(c.Helm.WorkingDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Sprintf("helm.working_dir %q is not a directory", c.Helm.WorkingDir))
		}
	}
	for k := range c.Helm.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			errs = append(errs, fmt.Sprintf("helm.env has invalid variable name %q", k))
		}
	}

	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Sprintf("server.transport must be one of [stdio, http], got %q", c.Server.Transport))
	}
	if c.Server.Transport == TransportHTTP && c.Server.Addr == "" {
		errs = append(errs, "server.addr is required for the http transport")
	}
	if c.Server.CallsPerMinute < 0 {
		errs = append(errs, fmt.Sprintf("server.calls_per_minute must not be negative, got %d", c.Server.CallsPerMinute))
	}
	if secret := c.Server.Auth.Secret; secret != "" && len(secret) < minSecretLength {
		errs = append(errs, fmt.Sprintf("server.auth.secret must be at least %d bytes", minSecretLength))
	}
	if c.Server.Auth.Secret == "" && (c.Server.Auth.Issuer != "" || c.Server.Auth.Audience != "") {
		errs = append(errs, "server.auth.issuer and server.auth.audience require server.auth.secret")
	}

	if !log.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	switch c.Tracing.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLPHTTP, ExporterOTLPGRPC:
		if c.Tracing.Endpoint == "" {
			errs = append(errs, fmt.Sprintf("tracing.endpoint is required for the %s exporter", c.Tracing.Exporter))
		}
	default:
		errs = append(errs, fmt.Sprintf("tracing.exporter must be one of [none, stdout, otlp-http, otlp-grpc], got %q", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_ratio must be between 0 and 1, got %v", c.Tracing.SampleRatio))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
