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
	"log/slog"

	"github.com/tombee/helm-mcp/internal/operation"
)

// Operation families.
const (
	FamilyBasic      = "basic"
	FamilyDependency = "dependency"
	FamilyGet        = "get"
	FamilyRelease    = "release"
	FamilyRepository = "repository"
	FamilySearch     = "search"
	FamilyShow       = "show"
	FamilyChart      = "chart"
	FamilyPlugin     = "plugin"
	FamilyRegistry   = "registry"
)

// PasswordSource supplies stored passwords for registry and repository
// logins when the caller omits one.
type PasswordSource interface {
	Password(endpoint, username string) (string, error)
}

// RegistryOptions configures NewRegistry.
type RegistryOptions struct {
	// Passwords, when set, fills in omitted passwords.
	Passwords PasswordSource

	// Logger receives dispatch logs.
	Logger *slog.Logger
}

// NewRegistry builds the operation registry for every helm operation.
func NewRegistry(c *Client, opts RegistryOptions) (*operation.Registry, error) {
	return operation.NewRegistry(operation.Options{
		Logger:   opts.Logger,
		Classify: func(text string) string { return string(Classify(text)) },
	}, Operations(c, opts.Passwords)...)
}

// Operations returns one entry per helm operation. passwords may be nil.
func Operations(c *Client, passwords PasswordSource) []operation.Entry {
	var entries []operation.Entry
	entries = append(entries, basicOperations(c)...)
	entries = append(entries, dependencyOperations(c)...)
	entries = append(entries, getOperations(c)...)
	entries = append(entries, releaseOperations(c)...)
	entries = append(entries, repositoryOperations(c, passwords)...)
	entries = append(entries, searchOperations(c)...)
	entries = append(entries, showOperations(c)...)
	entries = append(entries, chartOperations(c)...)
	entries = append(entries, pluginOperations(c)...)
	entries = append(entries, registryOperations(c, passwords)...)
	return entries
}

func basicOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_completion",
			Title:       "Shell completion",
			Description: "Generate the helm autocompletion script for bash, fish, powershell or zsh",
			Family:      FamilyBasic,
			ReadOnly:    true,
		}, c.Completion),
		operation.MustDefine(operation.Spec{
			Name:        "helm_create",
			Title:       "Create chart",
			Description: "Create a new chart directory with the given name",
			Family:      FamilyBasic,
		}, c.Create),
		operation.MustDefine(operation.Spec{
			Name:        "helm_env",
			Title:       "Helm environment",
			Description: "Print helm client environment information",
			Family:      FamilyBasic,
			ReadOnly:    true,
		}, c.Env),
		operation.MustDefine(operation.Spec{
			Name:        "helm_version",
			Title:       "Helm version",
			Description: "Print the helm client version",
			Family:      FamilyBasic,
			ReadOnly:    true,
		}, c.Version),
		operation.MustDefine(operation.Spec{
			Name:        "helm_verify",
			Title:       "Verify chart",
			Description: "Verify that a packaged chart is signed and valid",
			Family:      FamilyBasic,
			ReadOnly:    true,
		}, c.Verify),
	}
}

func dependencyOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_dependency_build",
			Title:       "Build dependencies",
			Description: "Rebuild a chart's charts/ directory from Chart.lock",
			Family:      FamilyDependency,
		}, c.DependencyBuild),
		operation.MustDefine(operation.Spec{
			Name:        "helm_dependency_list",
			Title:       "List dependencies",
			Description: "List the dependencies of a chart",
			Family:      FamilyDependency,
			ReadOnly:    true,
		}, c.DependencyList),
		operation.MustDefine(operation.Spec{
			Name:        "helm_dependency_update",
			Title:       "Update dependencies",
			Description: "Update a chart's charts/ directory from Chart.yaml",
			Family:      FamilyDependency,
		}, c.DependencyUpdate),
	}
}

func getOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_get_all",
			Title:       "Get release",
			Description: "Download all information for a named release",
			Family:      FamilyGet,
			ReadOnly:    true,
		}, c.GetAll),
		operation.MustDefine(operation.Spec{
			Name:        "helm_get_hooks",
			Title:       "Get release hooks",
			Description: "Download the hooks for a named release",
			Family:      FamilyGet,
			ReadOnly:    true,
		}, c.GetHooks),
		operation.MustDefine(operation.Spec{
			Name:        "helm_get_manifest",
			Title:       "Get release manifest",
			Description: "Download the manifest for a named release",
			Family:      FamilyGet,
			ReadOnly:    true,
		}, c.GetManifest),
		operation.MustDefine(operation.Spec{
			Name:        "helm_get_metadata",
			Title:       "Get release metadata",
			Description: "Fetch metadata for a named release",
			Family:      FamilyGet,
			ReadOnly:    true,
		}, c.GetMetadata),
		operation.MustDefine(operation.Spec{
			Name:        "helm_get_notes",
			Title:       "Get release notes",
			Description: "Download the notes for a named release",
			Family:      FamilyGet,
			ReadOnly:    true,
		}, c.GetNotes),
		operation.MustDefine(operation.Spec{
			Name:        "helm_get_values",
			Title:       "Get release values",
			Description: "Download the values for a named release",
			Family:      FamilyGet,
			ReadOnly:    true,
		}, c.GetValues),
	}
}

func releaseOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_install",
			Title:       "Install chart",
			Description: "Install a chart as a new release",
			Family:      FamilyRelease,
		}, c.Install),
		operation.MustDefine(operation.Spec{
			Name:        "helm_upgrade",
			Title:       "Upgrade release",
			Description: "Upgrade a release to a new chart version or configuration, installing it if missing",
			Family:      FamilyRelease,
		}, c.Upgrade),
		operation.MustDefine(operation.Spec{
			Name:        "helm_uninstall",
			Title:       "Uninstall release",
			Description: "Uninstall a release",
			Family:      FamilyRelease,
			Destructive: true,
		}, c.Uninstall),
		operation.MustDefine(operation.Spec{
			Name:        "helm_rollback",
			Title:       "Roll back release",
			Description: "Roll back a release to a previous revision",
			Family:      FamilyRelease,
			Destructive: true,
		}, c.Rollback),
		operation.MustDefine(operation.Spec{
			Name:        "helm_history",
			Title:       "Release history",
			Description: "Fetch the revision history of a release",
			Family:      FamilyRelease,
			ReadOnly:    true,
		}, c.History),
		operation.MustDefine(operation.Spec{
			Name:        "helm_status",
			Title:       "Release status",
			Description: "Display the status of a named release",
			Family:      FamilyRelease,
			ReadOnly:    true,
		}, c.Status),
		operation.MustDefine(operation.Spec{
			Name:        "helm_list",
			Title:       "List releases",
			Description: "List releases, across all namespaces unless one is given",
			Family:      FamilyRelease,
			ReadOnly:    true,
		}, c.List),
		operation.MustDefine(operation.Spec{
			Name:        "helm_test",
			Title:       "Test release",
			Description: "Run the tests for a release",
			Family:      FamilyRelease,
		}, c.Test),
	}
}

func repositoryOperations(c *Client, passwords PasswordSource) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_repo_add",
			Title:       "Add repository",
			Description: "Add a chart repository",
			Family:      FamilyRepository,
		}, func(ctx context.Context, opts RepoAddOptions) string {
			if opts.Password == "" && opts.Username != "" {
				opts.Password = lookupPassword(passwords, opts.URL, opts.Username)
			}
			return c.RepoAdd(ctx, opts)
		}),
		operation.MustDefine(operation.Spec{
			Name:        "helm_repo_remove",
			Title:       "Remove repository",
			Description: "Remove a chart repository",
			Family:      FamilyRepository,
			Destructive: true,
		}, c.RepoRemove),
		operation.MustDefine(operation.Spec{
			Name:        "helm_repo_list",
			Title:       "List repositories",
			Description: "List configured chart repositories",
			Family:      FamilyRepository,
			ReadOnly:    true,
		}, c.RepoList),
		operation.MustDefine(operation.Spec{
			Name:        "helm_repo_update",
			Title:       "Update repositories",
			Description: "Update information on available charts from chart repositories",
			Family:      FamilyRepository,
		}, c.RepoUpdate),
		operation.MustDefine(operation.Spec{
			Name:        "helm_repo_index",
			Title:       "Index repository",
			Description: "Generate an index file for a directory containing packaged charts",
			Family:      FamilyRepository,
		}, c.RepoIndex),
	}
}

func searchOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_search_repo",
			Title:       "Search repositories",
			Description: "Search configured repositories for a keyword in charts",
			Family:      FamilySearch,
			ReadOnly:    true,
		}, c.SearchRepo),
		operation.MustDefine(operation.Spec{
			Name:        "helm_search_hub",
			Title:       "Search hub",
			Description: "Search Artifact Hub or your own hub instance for charts",
			Family:      FamilySearch,
			ReadOnly:    true,
		}, c.SearchHub),
	}
}

func showOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_show_all",
			Title:       "Show chart",
			Description: "Show all information of a chart",
			Family:      FamilyShow,
			ReadOnly:    true,
		}, c.ShowAll),
		operation.MustDefine(operation.Spec{
			Name:        "helm_show_chart",
			Title:       "Show chart definition",
			Description: "Show the chart's definition",
			Family:      FamilyShow,
			ReadOnly:    true,
		}, c.ShowChart),
		operation.MustDefine(operation.Spec{
			Name:        "helm_show_crds",
			Title:       "Show chart CRDs",
			Description: "Show the chart's custom resource definitions",
			Family:      FamilyShow,
			ReadOnly:    true,
		}, c.ShowCRDs),
		operation.MustDefine(operation.Spec{
			Name:        "helm_show_readme",
			Title:       "Show chart README",
			Description: "Show the chart's README",
			Family:      FamilyShow,
			ReadOnly:    true,
		}, c.ShowReadme),
		operation.MustDefine(operation.Spec{
			Name:        "helm_show_values",
			Title:       "Show chart values",
			Description: "Show the chart's default values",
			Family:      FamilyShow,
			ReadOnly:    true,
		}, c.ShowValues),
	}
}

func chartOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_package",
			Title:       "Package chart",
			Description: "Package a chart directory into a chart archive",
			Family:      FamilyChart,
		}, c.Package),
		operation.MustDefine(operation.Spec{
			Name:        "helm_push",
			Title:       "Push chart",
			Description: "Push a chart archive to an OCI registry",
			Family:      FamilyChart,
		}, c.Push),
		operation.MustDefine(operation.Spec{
			Name:        "helm_pull",
			Title:       "Pull chart",
			Description: "Download a chart from a repository or registry",
			Family:      FamilyChart,
		}, c.Pull),
		operation.MustDefine(operation.Spec{
			Name:        "helm_lint",
			Title:       "Lint chart",
			Description: "Examine a chart for possible issues",
			Family:      FamilyChart,
			ReadOnly:    true,
		}, c.Lint),
		operation.MustDefine(operation.Spec{
			Name:        "helm_template",
			Title:       "Render templates",
			Description: "Render chart templates locally and display the output",
			Family:      FamilyChart,
			ReadOnly:    true,
		}, c.Template),
	}
}

func pluginOperations(c *Client) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_plugin_install",
			Title:       "Install plugin",
			Description: "Install a helm plugin from a URL or path",
			Family:      FamilyPlugin,
		}, c.PluginInstall),
		operation.MustDefine(operation.Spec{
			Name:        "helm_plugin_list",
			Title:       "List plugins",
			Description: "List installed helm plugins",
			Family:      FamilyPlugin,
			ReadOnly:    true,
		}, c.PluginList),
		operation.MustDefine(operation.Spec{
			Name:        "helm_plugin_uninstall",
			Title:       "Uninstall plugin",
			Description: "Uninstall a helm plugin",
			Family:      FamilyPlugin,
			Destructive: true,
		}, c.PluginUninstall),
		operation.MustDefine(operation.Spec{
			Name:        "helm_plugin_update",
			Title:       "Update plugin",
			Description: "Update a helm plugin",
			Family:      FamilyPlugin,
		}, c.PluginUpdate),
	}
}

func registryOperations(c *Client, passwords PasswordSource) []operation.Entry {
	return []operation.Entry{
		operation.MustDefine(operation.Spec{
			Name:        "helm_registry_login",
			Title:       "Registry login",
			Description: "Log in to an OCI registry",
			Family:      FamilyRegistry,
		}, func(ctx context.Context, opts RegistryLoginOptions) string {
			if opts.Password == "" {
				opts.Password = lookupPassword(passwords, opts.RegistryURL, opts.Username)
			}
			return c.RegistryLogin(ctx, opts)
		}),
		operation.MustDefine(operation.Spec{
			Name:        "helm_registry_logout",
			Title:       "Registry logout",
			Description: "Log out from an OCI registry",
			Family:      FamilyRegistry,
		}, c.RegistryLogout),
	}
}

// lookupPassword returns the stored password, or "" when there is none.
// Lookup failures are not fatal: helm reports the missing password itself.
func lookupPassword(passwords PasswordSource, endpoint, username string) string {
	if passwords == nil {
		return ""
	}
	password, err := passwords.Password(endpoint, username)
	if err != nil {
		return ""
	}
	return password
}
