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
	"strconv"
)

type InstallOptions struct {
	ReleaseName     string    `param:"release_name" desc:"Release name; a name is generated when omitted"`
	Chart           string    `param:"chart,required" desc:"Chart name, repo/name reference, path or URL"`
	Repo            string    `param:"repo" desc:"Repository to prefix the chart name with"`
	Namespace       string    `param:"namespace" desc:"Kubernetes namespace"`
	CreateNamespace bool      `param:"create_namespace" desc:"Create the namespace if it does not exist"`
	Version         string    `param:"version" desc:"Chart version constraint"`
	ValuesFiles     []string  `param:"values_files" desc:"Values files, applied in order"`
	SetValues       Overrides `param:"set_values" desc:"Value overrides as a list of path=value strings, applied in order (later entries win)"`
	Wait            bool      `param:"wait" desc:"Wait until resources are ready"`
	Atomic          bool      `param:"atomic" desc:"Roll back the install on failure"`
	Timeout         string    `param:"timeout" desc:"Time to wait for any individual Kubernetes operation, e.g. 5m0s"`
	DryRun          bool      `param:"dry_run" desc:"Simulate the install"`
	Description     string    `param:"description" desc:"Custom release description"`
}

// Install installs a chart as a new release.
func (c *Client) Install(ctx context.Context, opts InstallOptions) string {
	a := c.command("install")
	if opts.ReleaseName != "" {
		a.positional(opts.ReleaseName)
	} else {
		a.boolFlag("--generate-name", true)
	}
	return c.run(ctx, a.
		positional(ChartRef(opts.Chart, opts.Repo)).
		flag("--namespace", opts.Namespace).
		boolFlag("--create-namespace", opts.CreateNamespace).
		flag("--version", opts.Version).
		repeated("--values", opts.ValuesFiles).
		sets(opts.SetValues).
		boolFlag("--wait", opts.Wait).
		boolFlag("--atomic", opts.Atomic).
		flag("--timeout", opts.Timeout).
		boolFlag("--dry-run", opts.DryRun).
		flag("--description", opts.Description))
}

type UpgradeOptions struct {
	ReleaseName     string    `param:"release_name,required" desc:"Name of the release"`
	Chart           string    `param:"chart,required" desc:"Chart name, repo/name reference, path or URL"`
	Repo            string    `param:"repo" desc:"Repository to prefix the chart name with"`
	Install         bool      `param:"install" desc:"Install the release if it does not exist" default:"true"`
	Namespace       string    `param:"namespace" desc:"Kubernetes namespace"`
	CreateNamespace bool      `param:"create_namespace" desc:"Create the namespace if it does not exist (with install)"`
	Version         string    `param:"version" desc:"Chart version constraint"`
	ValuesFiles     []string  `param:"values_files" desc:"Values files, applied in order"`
	SetValues       Overrides `param:"set_values" desc:"Value overrides as a list of path=value strings, applied in order (later entries win)"`
	ReuseValues     bool      `param:"reuse_values" desc:"Reuse the last release's values and merge overrides"`
	ResetValues     bool      `param:"reset_values" desc:"Reset values to the chart's defaults"`
	Wait            bool      `param:"wait" desc:"Wait until resources are ready"`
	Atomic          bool      `param:"atomic" desc:"Roll back the upgrade on failure"`
	Timeout         string    `param:"timeout" desc:"Time to wait for any individual Kubernetes operation, e.g. 5m0s"`
	DryRun          bool      `param:"dry_run" desc:"Simulate the upgrade"`
	Force           bool      `param:"force" desc:"Force resource updates through replacement"`
}

// Upgrade upgrades a release, installing it first when Install is set.
func (c *Client) Upgrade(ctx context.Context, opts UpgradeOptions) string {
	return c.run(ctx, c.command("upgrade").
		positional(opts.ReleaseName, ChartRef(opts.Chart, opts.Repo)).
		boolFlag("--install", opts.Install).
		flag("--namespace", opts.Namespace).
		boolFlag("--create-namespace", opts.CreateNamespace).
		flag("--version", opts.Version).
		repeated("--values", opts.ValuesFiles).
		sets(opts.SetValues).
		boolFlag("--reuse-values", opts.ReuseValues).
		boolFlag("--reset-values", opts.ResetValues).
		boolFlag("--wait", opts.Wait).
		boolFlag("--atomic", opts.Atomic).
		flag("--timeout", opts.Timeout).
		boolFlag("--dry-run", opts.DryRun).
		boolFlag("--force", opts.Force))
}

type UninstallOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace"`
	KeepHistory bool   `param:"keep_history" desc:"Keep the release history"`
	DryRun      bool   `param:"dry_run" desc:"Simulate the uninstall"`
	Wait        bool   `param:"wait" desc:"Wait until all resources are deleted"`
	Timeout     string `param:"timeout" desc:"Time to wait for any individual Kubernetes operation, e.g. 5m0s"`
}

// Uninstall removes a release.
func (c *Client) Uninstall(ctx context.Context, opts UninstallOptions) string {
	return c.run(ctx, c.command("uninstall").
		positional(opts.ReleaseName).
		flag("--namespace", opts.Namespace).
		boolFlag("--keep-history", opts.KeepHistory).
		boolFlag("--dry-run", opts.DryRun).
		boolFlag("--wait", opts.Wait).
		flag("--timeout", opts.Timeout))
}

type RollbackOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Revision    int    `param:"revision" desc:"Revision to roll back to; the previous one when omitted"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace"`
	Wait        bool   `param:"wait" desc:"Wait until resources are ready"`
	DryRun      bool   `param:"dry_run" desc:"Simulate the rollback"`
	Force       bool   `param:"force" desc:"Force resource updates through replacement"`
	Timeout     string `param:"timeout" desc:"Time to wait for any individual Kubernetes operation, e.g. 5m0s"`
}

// Rollback rolls a release back to an earlier revision.
func (c *Client) Rollback(ctx context.Context, opts RollbackOptions) string {
	a := c.command("rollback").positional(opts.ReleaseName)
	if opts.Revision != 0 {
		a.positional(strconv.Itoa(opts.Revision))
	}
	return c.run(ctx, a.
		flag("--namespace", opts.Namespace).
		boolFlag("--wait", opts.Wait).
		boolFlag("--dry-run", opts.DryRun).
		boolFlag("--force", opts.Force).
		flag("--timeout", opts.Timeout))
}

type HistoryOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace"`
	Max         int    `param:"max" desc:"Maximum number of revisions to include"`
	Output      string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

// History lists a release's revisions.
func (c *Client) History(ctx context.Context, opts HistoryOptions) string {
	return c.run(ctx, c.command("history").
		positional(opts.ReleaseName).
		flag("--namespace", opts.Namespace).
		intFlag("--max", opts.Max).
		flag("--output", opts.Output))
}

type StatusOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace"`
	Revision    int    `param:"revision" desc:"Release revision; latest when omitted"`
	Output      string `param:"output" desc:"Output format" enum:"table|json|yaml"`
	ShowDesc    bool   `param:"show_desc" desc:"Show the release description"`
}

// Status shows a release's status.
func (c *Client) Status(ctx context.Context, opts StatusOptions) string {
	return c.run(ctx, c.command("status").
		positional(opts.ReleaseName).
		flag("--namespace", opts.Namespace).
		intFlag("--revision", opts.Revision).
		flag("--output", opts.Output).
		boolFlag("--show-desc", opts.ShowDesc))
}

type ListOptions struct {
	Namespace     string `param:"namespace" desc:"List releases in this namespace only"`
	AllNamespaces bool   `param:"all_namespaces" desc:"List releases across all namespaces; ignored when namespace is set" default:"true"`
	All           bool   `param:"all" desc:"Show releases in every state"`
	Filter        string `param:"filter" desc:"Regular expression applied to release names"`
	Deployed      bool   `param:"deployed" desc:"Show deployed releases"`
	Failed        bool   `param:"failed" desc:"Show failed releases"`
	Pending       bool   `param:"pending" desc:"Show pending releases"`
	Output        string `param:"output" desc:"Output format" enum:"table|json|yaml"`
}

// List lists releases. A namespace takes precedence over AllNamespaces
// since helm rejects the combination.
func (c *Client) List(ctx context.Context, opts ListOptions) string {
	a := c.command("list")
	if opts.Namespace != "" {
		a.flag("--namespace", opts.Namespace)
	} else {
		a.boolFlag("--all-namespaces", opts.AllNamespaces)
	}
	return c.run(ctx, a.
		boolFlag("--all", opts.All).
		flag("--filter", opts.Filter).
		boolFlag("--deployed", opts.Deployed).
		boolFlag("--failed", opts.Failed).
		boolFlag("--pending", opts.Pending).
		flag("--output", opts.Output))
}

type TestOptions struct {
	ReleaseName string `param:"release_name,required" desc:"Name of the release"`
	Namespace   string `param:"namespace" desc:"Kubernetes namespace"`
	Logs        bool   `param:"logs" desc:"Dump the logs from test pods"`
	Timeout     string `param:"timeout" desc:"Time to wait for any individual Kubernetes operation, e.g. 5m0s"`
}

// Test runs a release's test hooks.
func (c *Client) Test(ctx context.Context, opts TestOptions) string {
	return c.run(ctx, c.command("test").
		positional(opts.ReleaseName).
		flag("--namespace", opts.Namespace).
		boolFlag("--logs", opts.Logs).
		flag("--timeout", opts.Timeout))
}
