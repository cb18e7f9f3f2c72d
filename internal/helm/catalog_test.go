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

package helm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/helm-mcp/internal/log"
	"github.com/tombee/helm-mcp/internal/operation"
)

// recordingExecutor captures argv instead of running anything.
type recordingExecutor struct {
	mu     sync.Mutex
	calls  [][]string
	result string
}

func (r *recordingExecutor) Execute(_ context.Context, argv []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), argv...))
	return r.result
}

func (r *recordingExecutor) last(t *testing.T) []string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.calls, "executor was not called")
	return r.calls[len(r.calls)-1]
}

func (r *recordingExecutor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type stubPasswords map[string]string

func (s stubPasswords) Password(endpoint, username string) (string, error) {
	if p, ok := s[username+"@"+endpoint]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func newTestRegistry(t *testing.T, passwords PasswordSource) (*operation.Registry, *recordingExecutor) {
	t.Helper()
	rec := &recordingExecutor{result: "ok"}
	reg, err := NewRegistry(NewClient("helm", rec), RegistryOptions{
		Passwords: passwords,
		Logger:    log.Discard(),
	})
	require.NoError(t, err)
	return reg, rec
}

func TestOperations_Complete(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)

	want := []string{
		"helm_completion", "helm_create", "helm_dependency_build", "helm_dependency_list",
		"helm_dependency_update", "helm_env", "helm_get_all", "helm_get_hooks",
		"helm_get_manifest", "helm_get_metadata", "helm_get_notes", "helm_get_values",
		"helm_history", "helm_install", "helm_lint", "helm_list", "helm_package",
		"helm_plugin_install", "helm_plugin_list", "helm_plugin_uninstall", "helm_plugin_update",
		"helm_pull", "helm_push", "helm_registry_login", "helm_registry_logout",
		"helm_repo_add", "helm_repo_index", "helm_repo_list", "helm_repo_remove",
		"helm_repo_update", "helm_rollback", "helm_search_hub", "helm_search_repo",
		"helm_show_all", "helm_show_chart", "helm_show_crds", "helm_show_readme",
		"helm_show_values", "helm_status", "helm_template", "helm_test", "helm_uninstall",
		"helm_upgrade", "helm_verify", "helm_version",
	}

	var got []string
	for _, d := range reg.List() {
		got = append(got, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
		assert.NotEmpty(t, d.Family, d.Name)
		assert.False(t, d.ReadOnly && d.Destructive, "%s is both read-only and destructive", d.Name)
	}
	assert.Equal(t, want, got)
}

func TestOperations_Argv(t *testing.T) {
	tests := []struct {
		op     string
		params map[string]any
		want   []string
	}{
		// basic
		{"helm_completion", map[string]any{"shell": "zsh"}, []string{"helm", "completion", "zsh"}},
		{"helm_create", map[string]any{"name": "web"}, []string{"helm", "create", "web"}},
		{"helm_create", map[string]any{"name": "web", "starter": "base"}, []string{"helm", "create", "web", "--starter", "base"}},
		{"helm_env", nil, []string{"helm", "env"}},
		{"helm_version", nil, []string{"helm", "version", "--short"}},
		{"helm_verify", map[string]any{"path": "a.tgz", "keyring": "k.gpg"}, []string{"helm", "verify", "a.tgz", "--keyring", "k.gpg"}},

		// dependency
		{"helm_dependency_build", map[string]any{"chart_path": "./c"}, []string{"helm", "dependency", "build", "./c"}},
		{
			"helm_dependency_update",
			map[string]any{"chart_path": "./c", "keyring": "k", "skip_refresh": true, "verify": true},
			[]string{"helm", "dependency", "update", "./c", "--keyring", "k", "--skip-refresh", "--verify"},
		},
		{"helm_dependency_list", map[string]any{"chart_path": "./c"}, []string{"helm", "dependency", "list", "./c"}},

		// get
		{"helm_get_all", map[string]any{"release_name": "r"}, []string{"helm", "get", "all", "r"}},
		{"helm_get_hooks", map[string]any{"release_name": "r", "namespace": "ns"}, []string{"helm", "get", "hooks", "r", "--namespace", "ns"}},
		{"helm_get_manifest", map[string]any{"release_name": "r", "revision": 2}, []string{"helm", "get", "manifest", "r", "--revision", "2"}},
		{"helm_get_notes", map[string]any{"release_name": "r"}, []string{"helm", "get", "notes", "r"}},
		{"helm_get_metadata", map[string]any{"release_name": "r", "output": "json"}, []string{"helm", "get", "metadata", "r", "--output", "json"}},
		{
			"helm_get_values",
			map[string]any{"release_name": "r", "namespace": "ns", "all_values": true},
			[]string{"helm", "get", "values", "r", "--namespace", "ns", "--all"},
		},
		{"helm_get_values", map[string]any{"release_name": "r", "all_values": false}, []string{"helm", "get", "values", "r"}},

		// release
		{"helm_install", map[string]any{"chart": "nginx", "repo": "bitnami"}, []string{"helm", "install", "--generate-name", "bitnami/nginx"}},
		{
			"helm_install",
			map[string]any{
				"release_name":     "web",
				"chart":            "./chart",
				"namespace":        "prod",
				"create_namespace": true,
				"version":          "1.2.3",
				"values_files":     []any{"a.yaml", "b.yaml"},
				"set_values":       []any{"image.tag=2", "replicas=3"},
				"wait":             true,
				"atomic":           true,
				"timeout":          "5m0s",
				"dry_run":          true,
				"description":      "first",
			},
			[]string{
				"helm", "install", "web", "./chart", "--namespace", "prod", "--create-namespace",
				"--version", "1.2.3", "--values", "a.yaml", "--values", "b.yaml",
				"--set", "image.tag=2", "--set", "replicas=3", "--wait", "--atomic",
				"--timeout", "5m0s", "--dry-run", "--description", "first",
			},
		},
		{"helm_upgrade", map[string]any{"release_name": "web", "chart": "nginx", "repo": "bitnami"}, []string{"helm", "upgrade", "web", "bitnami/nginx", "--install"}},
		{
			"helm_upgrade",
			map[string]any{"release_name": "web", "chart": "./c", "install": false, "reuse_values": true, "force": true},
			[]string{"helm", "upgrade", "web", "./c", "--reuse-values", "--force"},
		},
		{
			"helm_uninstall",
			map[string]any{"release_name": "web", "namespace": "ns", "keep_history": true, "timeout": "1m"},
			[]string{"helm", "uninstall", "web", "--namespace", "ns", "--keep-history", "--timeout", "1m"},
		},
		{"helm_rollback", map[string]any{"release_name": "web"}, []string{"helm", "rollback", "web"}},
		{"helm_rollback", map[string]any{"release_name": "web", "revision": 3, "wait": true}, []string{"helm", "rollback", "web", "3", "--wait"}},
		{"helm_history", map[string]any{"release_name": "web", "max": 5, "output": "yaml"}, []string{"helm", "history", "web", "--max", "5", "--output", "yaml"}},
		{"helm_history", map[string]any{"release_name": "web", "max": -1}, []string{"helm", "history", "web", "--max", "-1"}},
		{"helm_status", map[string]any{"release_name": "web", "revision": -2}, []string{"helm", "status", "web", "--revision", "-2"}},
		{"helm_status", map[string]any{"release_name": "web", "show_desc": true}, []string{"helm", "status", "web", "--show-desc"}},
		{"helm_list", nil, []string{"helm", "list", "--all-namespaces"}},
		{"helm_list", map[string]any{"namespace": "ns"}, []string{"helm", "list", "--namespace", "ns"}},
		{"helm_list", map[string]any{"all_namespaces": false, "failed": true}, []string{"helm", "list", "--failed"}},
		{
			"helm_list",
			map[string]any{"all": true, "filter": "^web", "deployed": true, "pending": true, "output": "json"},
			[]string{"helm", "list", "--all-namespaces", "--all", "--filter", "^web", "--deployed", "--pending", "--output", "json"},
		},
		{"helm_test", map[string]any{"release_name": "web", "logs": true}, []string{"helm", "test", "web", "--logs"}},

		// repository
		{"helm_repo_add", map[string]any{"name": "bitnami", "url": "https://charts.bitnami.com/bitnami"}, []string{"helm", "repo", "add", "bitnami", "https://charts.bitnami.com/bitnami"}},
		{
			"helm_repo_add",
			map[string]any{"name": "r", "url": "https://x", "username": "u", "password": "p", "force_update": true, "insecure_skip_tls_verify": true},
			[]string{"helm", "repo", "add", "r", "https://x", "--username", "u", "--password", "p", "--force-update", "--insecure-skip-tls-verify"},
		},
		{"helm_repo_remove", map[string]any{"name": "r"}, []string{"helm", "repo", "remove", "r"}},
		{"helm_repo_list", nil, []string{"helm", "repo", "list"}},
		{"helm_repo_update", nil, []string{"helm", "repo", "update"}},
		{"helm_repo_update", map[string]any{"names": []any{"a", "b"}}, []string{"helm", "repo", "update", "a", "b"}},
		{"helm_repo_index", map[string]any{"directory": "/tmp/c", "url": "https://e/charts"}, []string{"helm", "repo", "index", "/tmp/c", "--url", "https://e/charts"}},

		// search
		{"helm_search_repo", map[string]any{"keyword": "nginx"}, []string{"helm", "search", "repo", "nginx"}},
		{
			"helm_search_repo",
			map[string]any{"keyword": "nginx", "version": "^1", "versions": true, "regexp": true, "devel": true, "output": "json"},
			[]string{"helm", "search", "repo", "nginx", "--version", "^1", "--versions", "--regexp", "--devel", "--output", "json"},
		},
		{
			"helm_search_hub",
			map[string]any{"keyword": "nginx", "endpoint": "https://hub", "max_col_width": 80, "list_repo_url": true},
			[]string{"helm", "search", "hub", "nginx", "--endpoint", "https://hub", "--max-col-width", "80", "--list-repo-url"},
		},

		// show
		{"helm_show_all", map[string]any{"chart": "nginx", "repo": "bitnami"}, []string{"helm", "show", "all", "bitnami/nginx"}},
		{"helm_show_chart", map[string]any{"chart": "./c"}, []string{"helm", "show", "chart", "./c"}},
		{"helm_show_crds", map[string]any{"chart": "x/y", "devel": true}, []string{"helm", "show", "crds", "x/y", "--devel"}},
		{"helm_show_readme", map[string]any{"chart": "nginx"}, []string{"helm", "show", "readme", "nginx"}},
		{"helm_show_values", map[string]any{"chart": "nginx", "version": "1.0.0"}, []string{"helm", "show", "values", "nginx", "--version", "1.0.0"}},

		// chart
		{
			"helm_package",
			map[string]any{"chart_path": "./c", "destination": "/out", "version": "1.0.0", "app_version": "2", "dependency_update": true},
			[]string{"helm", "package", "./c", "--destination", "/out", "--version", "1.0.0", "--app-version", "2", "--dependency-update"},
		},
		{
			"helm_push",
			map[string]any{"chart_package": "c.tgz", "registry_url": "oci://r/charts", "force": true, "insecure": true, "plain_http": true},
			[]string{"helm", "push", "c.tgz", "oci://r/charts", "--force", "--insecure-skip-tls-verify", "--plain-http"},
		},
		{
			"helm_pull",
			map[string]any{"chart": "nginx", "repo": "bitnami", "version": "1", "destination": "/d", "untar": true, "untar_dir": "u", "verify": true},
			[]string{"helm", "pull", "bitnami/nginx", "--version", "1", "--destination", "/d", "--untar", "--untardir", "u", "--verify"},
		},
		{
			"helm_lint",
			map[string]any{"chart_path": "./c", "set_values": []any{"image.tag=test"}, "strict": true},
			[]string{"helm", "lint", "./c", "--set", "image.tag=test", "--strict"},
		},
		{"helm_template", map[string]any{"chart": "./c"}, []string{"helm", "template", "./c"}},
		{
			"helm_template",
			map[string]any{
				"chart":        "./c",
				"release_name": "test-release",
				"namespace":    "test-namespace",
				"kube_version": "1.20.0",
				"include_crds": true,
				"show_only":    []any{"templates/a.yaml", "templates/b.yaml"},
			},
			[]string{
				"helm", "template", "test-release", "./c", "--namespace", "test-namespace",
				"--kube-version", "1.20.0", "--include-crds",
				"--show-only", "templates/a.yaml", "--show-only", "templates/b.yaml",
			},
		},

		// plugin
		{"helm_plugin_install", map[string]any{"source": "https://p", "version": "v1.0.0"}, []string{"helm", "plugin", "install", "https://p", "--version", "v1.0.0"}},
		{"helm_plugin_list", nil, []string{"helm", "plugin", "list"}},
		{"helm_plugin_uninstall", map[string]any{"name": "diff"}, []string{"helm", "plugin", "uninstall", "diff"}},
		{"helm_plugin_update", map[string]any{"name": "diff"}, []string{"helm", "plugin", "update", "diff"}},

		// registry
		{
			"helm_registry_login",
			map[string]any{"registry_url": "oci://r.example.com", "username": "u", "password": "p", "insecure": true},
			[]string{"helm", "registry", "login", "oci://r.example.com", "--username", "u", "--password", "p", "--insecure"},
		},
		{"helm_registry_logout", map[string]any{"registry_url": "oci://r.example.com"}, []string{"helm", "registry", "logout", "oci://r.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.op+"/"+strings.Join(tt.want[1:], "_"), func(t *testing.T) {
			reg, rec := newTestRegistry(t, nil)

			out := reg.Dispatch(context.Background(), tt.op, tt.params)

			assert.Equal(t, "ok", out)
			assert.Equal(t, 1, rec.count())
			assert.Equal(t, tt.want, rec.last(t))
		})
	}
}

func TestOperations_DefaultOffBooleansAbsent(t *testing.T) {
	reg, rec := newTestRegistry(t, nil)

	for _, d := range reg.List() {
		params := map[string]any{}
		for _, p := range d.Params {
			if p.Required {
				params[p.Name] = "x"
			}
		}

		reg.Dispatch(context.Background(), d.Name, params)
		if d.Name == "helm_completion" {
			continue
		}
		argv := rec.last(t)

		for _, p := range d.Params {
			if p.Type != operation.TypeBoolean || p.Default == true {
				continue
			}
			flagName := "--" + strings.ReplaceAll(p.Name, "_", "-")
			assert.NotContains(t, argv, flagName, "%s: default-off %s leaked into argv", d.Name, p.Name)
		}
	}
}

func TestOperations_RequiredPositionals(t *testing.T) {
	reg, rec := newTestRegistry(t, nil)

	out := reg.Dispatch(context.Background(), "helm_install", map[string]any{"release_name": "r"})
	assert.Contains(t, out, `Unexpected error: invalid parameters for helm_install: missing required parameter "chart"`)
	assert.Equal(t, 0, rec.count())

	out = reg.Dispatch(context.Background(), "helm_status", map[string]any{"namespace": "ns"})
	assert.Contains(t, out, `missing required parameter "release_name"`)
	assert.Equal(t, 0, rec.count())
}

func TestOperations_SetValuesOrder(t *testing.T) {
	tests := []struct {
		name   string
		values any
		want   []string
	}{
		{
			name:   "string list keeps order",
			values: []any{"z=1", "a=2", "m=3"},
			want:   []string{"--set", "z=1", "--set", "a=2", "--set", "m=3"},
		},
		{
			name: "object list keeps order",
			values: []any{
				map[string]any{"path": "z", "value": 1.0},
				map[string]any{"key": "a", "value": true},
			},
			want: []string{"--set", "z=1", "--set", "a=true"},
		},
		{
			name:   "plain map is sorted",
			values: map[string]any{"z": "1", "a": "2"},
			want:   []string{"--set", "a=2", "--set", "z=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, rec := newTestRegistry(t, nil)
			reg.Dispatch(context.Background(), "helm_template", map[string]any{"chart": "./c", "set_values": tt.values})
			argv := rec.last(t)
			assert.Equal(t, tt.want, argv[3:])
		})
	}
}

func TestOperations_InvalidShellSkipsExecutor(t *testing.T) {
	reg, rec := newTestRegistry(t, nil)

	out := reg.Dispatch(context.Background(), "helm_completion", map[string]any{"shell": "invalid"})

	assert.Contains(t, out, "Invalid shell: invalid")
	assert.Contains(t, out, "bash, fish, powershell, zsh")
	assert.Equal(t, OutcomeInvalidInput, Classify(out))
	assert.Equal(t, 0, rec.count())
}

func TestOperations_PasswordFallback(t *testing.T) {
	passwords := stubPasswords{
		"u@oci://r.example.com": "from-keychain",
		"u@https://charts.example.com": "repo-secret",
	}

	t.Run("registry login uses stored password", func(t *testing.T) {
		reg, rec := newTestRegistry(t, passwords)
		reg.Dispatch(context.Background(), "helm_registry_login", map[string]any{"registry_url": "oci://r.example.com", "username": "u"})
		assert.Equal(t, []string{"helm", "registry", "login", "oci://r.example.com", "--username", "u", "--password", "from-keychain"}, rec.last(t))
	})

	t.Run("explicit password wins", func(t *testing.T) {
		reg, rec := newTestRegistry(t, passwords)
		reg.Dispatch(context.Background(), "helm_registry_login", map[string]any{"registry_url": "oci://r.example.com", "username": "u", "password": "given"})
		assert.Contains(t, rec.last(t), "given")
	})

	t.Run("repo add uses stored password", func(t *testing.T) {
		reg, rec := newTestRegistry(t, passwords)
		reg.Dispatch(context.Background(), "helm_repo_add", map[string]any{"name": "r", "url": "https://charts.example.com", "username": "u"})
		assert.Equal(t, []string{"helm", "repo", "add", "r", "https://charts.example.com", "--username", "u", "--password", "repo-secret"}, rec.last(t))
	})

	t.Run("missing password leaves flag out", func(t *testing.T) {
		reg, rec := newTestRegistry(t, passwords)
		reg.Dispatch(context.Background(), "helm_registry_login", map[string]any{"registry_url": "oci://other", "username": "u"})
		assert.NotContains(t, rec.last(t), "--password")
	})

	t.Run("no source configured", func(t *testing.T) {
		reg, rec := newTestRegistry(t, nil)
		reg.Dispatch(context.Background(), "helm_registry_login", map[string]any{"registry_url": "oci://r.example.com", "username": "u"})
		assert.NotContains(t, rec.last(t), "--password")
	})
}

func TestChartRef(t *testing.T) {
	assert.Equal(t, "r/c", ChartRef("c", "r"))
	assert.Equal(t, "c", ChartRef("c", ""))
	assert.Equal(t, "./charts/c", ChartRef("./charts/c", ""))
	assert.Equal(t, "bitnami/nginx", ChartRef("bitnami/nginx", ""))
}

func TestNewClient_DefaultBinary(t *testing.T) {
	assert.Equal(t, "helm", NewClient("", DryRunExecutor{}).Binary())
	assert.Equal(t, "/opt/helm", NewClient("/opt/helm", DryRunExecutor{}).Binary())
}
