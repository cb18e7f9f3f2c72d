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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/helm-mcp/internal/helm"
	"github.com/tombee/helm-mcp/internal/log"
	"github.com/tombee/helm-mcp/internal/operation"
)

// fakeExecutor records argv and the transport seen on the context.
type fakeExecutor struct {
	mu         sync.Mutex
	result     string
	calls      [][]string
	transports []string
}

func (f *fakeExecutor) Execute(ctx context.Context, argv []string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), argv...))
	f.transports = append(f.transports, operation.TransportFromContext(ctx))
	return f.result
}

func newTestServer(t *testing.T, config ServerConfig) (*Server, *fakeExecutor) {
	t.Helper()
	exec := &fakeExecutor{result: "ok"}
	reg, err := helm.NewRegistry(helm.NewClient("helm", exec), helm.RegistryOptions{Logger: log.Discard()})
	require.NoError(t, err)

	config.Registry = reg
	config.IsFailure = helm.IsFailure
	config.Logger = log.Discard()
	s, err := NewServer(config)
	require.NoError(t, err)
	return s, exec
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func (r toolResult) text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}

// handle sends one JSON-RPC request through the server and decodes the result.
func handle(t *testing.T, s *Server, method string, params any, result any) {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	require.NotNil(t, resp)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Nil(t, envelope.Error, "unexpected JSON-RPC error: %s", raw)
	require.NoError(t, json.Unmarshal(envelope.Result, result))
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) toolResult {
	t.Helper()
	var res toolResult
	handle(t, s, "tools/call", map[string]any{"name": name, "arguments": args}, &res)
	return res
}

func TestNewServer_RequiresRegistry(t *testing.T) {
	_, err := NewServer(ServerConfig{Logger: log.Discard()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry is required")
}

func TestNewServer_InvalidCallsPerMinute(t *testing.T) {
	reg, err := operation.NewRegistry(operation.Options{Logger: log.Discard()})
	require.NoError(t, err)

	_, err = NewServer(ServerConfig{Registry: reg, CallsPerMinute: -1, Logger: log.Discard()})
	assert.Error(t, err)
}

func TestNewServer_Defaults(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{})

	assert.Equal(t, "helm-mcp", s.name)
	assert.Equal(t, "dev", s.version)
	assert.NotNil(t, s.logger)
	assert.True(t, s.rateLimiter.AllowCall())
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{Name: "test-server", Version: "1.0.0"})

	var res struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type       string                    `json:"type"`
				Properties map[string]map[string]any `json:"properties"`
				Required   []string                  `json:"required"`
			} `json:"inputSchema"`
			Annotations struct {
				Title           string `json:"title"`
				ReadOnlyHint    *bool  `json:"readOnlyHint"`
				DestructiveHint *bool  `json:"destructiveHint"`
			} `json:"annotations"`
		} `json:"tools"`
	}
	handle(t, s, "tools/list", map[string]any{}, &res)

	require.Len(t, res.Tools, 45)

	tools := make(map[string]int, len(res.Tools))
	for i, tool := range res.Tools {
		tools[tool.Name] = i
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type, tool.Name)
	}

	install := res.Tools[tools["helm_install"]]
	assert.Contains(t, install.InputSchema.Required, "chart")
	assert.NotContains(t, install.InputSchema.Required, "release_name")
	assert.Equal(t, "array", install.InputSchema.Properties["set_values"]["type"])
	assert.Equal(t, map[string]any{"type": "string"}, install.InputSchema.Properties["set_values"]["items"])
	assert.Equal(t, "array", install.InputSchema.Properties["values_files"]["type"])
	assert.Equal(t, map[string]any{"type": "string"}, install.InputSchema.Properties["values_files"]["items"])
	assert.Equal(t, "boolean", install.InputSchema.Properties["wait"]["type"])
	require.NotNil(t, install.Annotations.ReadOnlyHint)
	assert.False(t, *install.Annotations.ReadOnlyHint)

	upgrade := res.Tools[tools["helm_upgrade"]]
	assert.Equal(t, true, upgrade.InputSchema.Properties["install"]["default"])

	history := res.Tools[tools["helm_history"]]
	assert.Equal(t, "number", history.InputSchema.Properties["max"]["type"])

	status := res.Tools[tools["helm_status"]]
	assert.Equal(t, []any{"table", "json", "yaml"}, status.InputSchema.Properties["output"]["enum"])
	require.NotNil(t, status.Annotations.ReadOnlyHint)
	assert.True(t, *status.Annotations.ReadOnlyHint)

	uninstall := res.Tools[tools["helm_uninstall"]]
	require.NotNil(t, uninstall.Annotations.DestructiveHint)
	assert.True(t, *uninstall.Annotations.DestructiveHint)
	assert.NotEmpty(t, uninstall.Annotations.Title)
}

func TestToolsCall_Success(t *testing.T) {
	s, exec := newTestServer(t, ServerConfig{})

	res := callTool(t, s, "helm_install", map[string]any{
		"release_name": "web",
		"chart":        "nginx",
		"repo":         "bitnami",
		"set_values":   []any{"replicaCount=2"},
	})

	assert.False(t, res.IsError)
	assert.Equal(t, "ok", res.text())

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []string{"helm", "install", "web", "bitnami/nginx", "--set", "replicaCount=2"}, exec.calls[0])
	assert.Equal(t, []string{TransportStdio}, exec.transports)
}

// rawToolCall sends a tools/call request whose arguments are given as raw
// JSON, so object key order reaches the server exactly as written.
func rawToolCall(t *testing.T, s *Server, name, arguments string) toolResult {
	t.Helper()
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":%q,"arguments":%s}}`, name, arguments)

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(msg))
	require.NotNil(t, resp)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result toolResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Result
}

func TestToolsCall_SetValuesOrder(t *testing.T) {
	tests := []struct {
		name      string
		setValues string
		want      []string
	}{
		{
			name:      "strings keep caller order",
			setValues: `["z.key=1", "a.key=2", "z.key=3"]`,
			want:      []string{"--set", "z.key=1", "--set", "a.key=2", "--set", "z.key=3"},
		},
		{
			name:      "path value objects keep caller order",
			setValues: `[{"path": "z.key", "value": 1}, {"path": "a.key", "value": true}]`,
			want:      []string{"--set", "z.key=1", "--set", "a.key=true"},
		},
		{
			// A JSON object reaches the handler as a map, so only path order
			// can be offered.
			name:      "object fallback is sorted by path",
			setValues: `{"z.key": "1", "a.key": "2"}`,
			want:      []string{"--set", "a.key=2", "--set", "z.key=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, exec := newTestServer(t, ServerConfig{})

			res := rawToolCall(t, s, "helm_template", `{"chart": "c", "set_values": `+tt.setValues+`}`)
			require.False(t, res.IsError, res.text())

			require.Len(t, exec.calls, 1)
			assert.Equal(t, append([]string{"helm", "template", "c"}, tt.want...), exec.calls[0])
		})
	}
}

func TestToolsCall_SuccessStartingWithInvalid(t *testing.T) {
	s, exec := newTestServer(t, ServerConfig{})
	exec.result = "Invalid charts skipped: none"

	res := callTool(t, s, "helm_lint", map[string]any{"chart_path": "./c"})

	assert.False(t, res.IsError)
	assert.Equal(t, "Invalid charts skipped: none", res.text())
}

func TestToolsCall_Failures(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		result   string
		contains string
	}{
		{
			name:     "command failure",
			tool:     "helm_status",
			args:     map[string]any{"release_name": "missing"},
			result:   "Error executing command: Error: release: not found (exit code 1)",
			contains: "release: not found",
		},
		{
			name:     "local error",
			tool:     "helm_version",
			result:   "Unexpected error: exec: \"helm\": executable file not found in $PATH",
			contains: "executable file not found",
		},
		{
			name:     "unknown parameter",
			tool:     "helm_version",
			args:     map[string]any{"bogus": true},
			result:   "ok",
			contains: "invalid parameters for helm_version",
		},
		{
			name:     "missing required",
			tool:     "helm_install",
			args:     map[string]any{"release_name": "web"},
			result:   "ok",
			contains: `missing required parameter "chart"`,
		},
		{
			name:     "invalid shell",
			tool:     "helm_completion",
			args:     map[string]any{"shell": "tcsh"},
			result:   "ok",
			contains: "Invalid shell: tcsh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, exec := newTestServer(t, ServerConfig{})
			exec.result = tt.result

			res := callTool(t, s, tt.tool, tt.args)

			assert.True(t, res.IsError)
			assert.Contains(t, res.text(), tt.contains)
		})
	}
}

func TestToolsCall_RateLimited(t *testing.T) {
	s, exec := newTestServer(t, ServerConfig{CallsPerMinute: 1})

	first := callTool(t, s, "helm_version", nil)
	assert.False(t, first.IsError)

	second := callTool(t, s, "helm_version", nil)
	assert.True(t, second.IsError)
	assert.Contains(t, second.text(), "rate limit exceeded")

	assert.Len(t, exec.calls, 1)
}

func TestRateLimiter(t *testing.T) {
	var nilLimiter *RateLimiter
	assert.True(t, nilLimiter.AllowCall())

	unlimited := NewRateLimiter(0)
	for i := 0; i < 1000; i++ {
		require.True(t, unlimited.AllowCall())
	}

	limited := NewRateLimiter(3)
	assert.True(t, limited.AllowCall())
	assert.True(t, limited.AllowCall())
	assert.True(t, limited.AllowCall())
	assert.False(t, limited.AllowCall())

	limited.SetCallsPerMinute(0)
	assert.True(t, limited.AllowCall())

	unlimited.SetCallsPerMinute(1)
	assert.True(t, unlimited.AllowCall())
	assert.False(t, unlimited.AllowCall())
}

func TestSetCallsPerMinute(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{CallsPerMinute: 1})

	assert.False(t, callTool(t, s, "helm_version", nil).IsError)
	assert.True(t, callTool(t, s, "helm_version", nil).IsError)

	require.NoError(t, s.SetCallsPerMinute(0))
	for i := 0; i < 5; i++ {
		assert.False(t, callTool(t, s, "helm_version", nil).IsError)
	}

	assert.Error(t, s.SetCallsPerMinute(-1))
}

func TestHTTPHandler_Health(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{Version: "1.2.3"})
	srv := httptest.NewServer(s.Handler(HTTPConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + HealthPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, float64(45), body["tools"])
}

func TestHTTPHandler_Metrics(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{})
	callTool(t, s, "helm_env", nil)

	srv := httptest.NewServer(s.Handler(HTTPConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "helm_mcp_operation_calls_total")
}

func TestHTTPHandler_Initialize(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{Name: "test-server"})
	srv := httptest.NewServer(s.Handler(HTTPConfig{}))
	defer srv.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+MCPPath, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "test-server")
}

func TestHTTPHandler_CORS(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{})
	srv := httptest.NewServer(s.Handler(HTTPConfig{CORSOrigins: []string{"https://app.example.com"}}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+MCPPath, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServeHTTP_RequiresAddr(t *testing.T) {
	s, _ := newTestServer(t, ServerConfig{})
	err := s.ServeHTTP(context.Background(), HTTPConfig{})
	assert.Error(t, err)
}
