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
)

type PackageOptions struct {
	ChartPath        string `param:"chart_path,required" desc:"Path to the chart directory"`
	Destination      string `param:"destination" desc:"Directory to write the archive to"`
	Version          string `param:"version" desc:"Override the chart version"`
	AppVersion       string `param:"app_version" desc:"Override the chart appVersion"`
	DependencyUpdate bool   `param:"dependency_update" desc:"Update dependencies before packaging"`
}

// Package archives a chart directory.
func (c *Client) Package(ctx context.Context, opts PackageOptions) string {
	return c.run(ctx, c.command("package").
		positional(opts.ChartPath).
		flag("--destination", opts.Destination).
		flag("--version", opts.Version).
		flag("--app-version", opts.AppVersion).
		boolFlag("--dependency-update", opts.DependencyUpdate))
}

type PushOptions struct {
	ChartPackage string `param:"chart_package,required" desc:"Path to the packaged chart archive"`
	RegistryURL  string `param:"registry_url,required" desc:"Destination, e.g. oci://registry.example.com/charts"`
	Force        bool   `param:"force" desc:"Overwrite an existing version"`
	Insecure     bool   `param:"insecure" desc:"Skip TLS certificate checks"`
	PlainHTTP    bool   `param:"plain_http" desc:"Use plain HTTP instead of HTTPS"`
}

// Push uploads a packaged chart to an OCI registry.
func (c *Client) Push(ctx context.Context, opts PushOptions) string {
	return c.run(ctx, c.command("push").
		positional(opts.ChartPackage, opts.RegistryURL).
		boolFlag("--force", opts.Force).
		boolFlag("--insecure-skip-tls-verify", opts.Insecure).
		boolFlag("--plain-http", opts.PlainHTTP))
}

type PullOptions struct {
	Chart       string `param:"chart,required" desc:"Chart name, repo/name reference or URL"`
	Repo        string `param:"repo" desc:"Repository to prefix the chart name with"`
	Version     string `param:"version" desc:"Chart version constraint"`
	Destination string `param:"destination" desc:"Directory to write the chart to"`
	Untar       bool   `param:"untar" desc:"Unpack the chart after downloading"`
	UntarDir    string `param:"untar_dir" desc:"Directory to unpack into (with untar)"`
	Verify      bool   `param:"verify" desc:"Verify the package before using it"`
	Devel       bool   `param:"devel" desc:"Include development versions"`
}

// Pull downloads a chart.
func (c *Client) Pull(ctx context.Context, opts PullOptions) string {
	return c.run(ctx, c.command("pull").
		positional(ChartRef(opts.Chart, opts.Repo)).
		flag("--version", opts.Version).
		flag("--destination", opts.Destination).
		boolFlag("--untar", opts.Untar).
		flag("--untardir", opts.UntarDir).
		boolFlag("--verify", opts.Verify).
		boolFlag("--devel", opts.Devel))
}

type LintOptions struct {
	ChartPath   string    `param:"chart_path,required" desc:"Path to the chart directory"`
	ValuesFiles []string  `param:"values_files" desc:"Values files, applied in order"`
	SetValues   Overrides `param:"set_values" desc:"Value overrides as a list of path=value strings, applied in order (later entries win)"`
	Strict      bool      `param:"strict" desc:"Fail on warnings"`
	Quiet       bool      `param:"quiet" desc:"Print only warnings and errors"`
}

// Lint checks a chart for problems.
func (c *Client) Lint(ctx context.Context, opts LintOptions) string {
	return c.run(ctx, c.command("lint").
		positional(opts.ChartPath).
		repeated("--values", opts.ValuesFiles).
		sets(opts.SetValues).
		boolFlag("--strict", opts.Strict).
		boolFlag("--quiet", opts.Quiet))
}

type TemplateOptions struct {
	Chart       string    `param:"chart,required" desc:"Chart name, repo/name reference, path or URL"`
	ReleaseName string    `param:"release_name" desc:"Release name used while rendering"`
	Repo        string    `param:"repo" desc:"Repository to prefix the chart name with"`
	Namespace   string    `param:"namespace" desc:"Namespace used while rendering"`
	Version     string    `param:"version" desc:"Chart version constraint"`
	ValuesFiles []string  `param:"values_files" desc:"Values files, applied in order"`
	SetValues   Overrides `param:"set_values" desc:"Value overrides as a list of path=value strings, applied in order (later entries win)"`
	KubeVersion string    `param:"kube_version" desc:"Kubernetes version used for capabilities"`
	IncludeCRDs bool      `param:"include_crds" desc:"Include CRDs in the output"`
	ShowOnly    []string  `param:"show_only" desc:"Only render these templates"`
}

// Template renders a chart locally.
func (c *Client) Template(ctx context.Context, opts TemplateOptions) string {
	a := c.command("template")
	if opts.ReleaseName != "" {
		a.positional(opts.ReleaseName)
	}
	return c.run(ctx, a.
		positional(ChartRef(opts.Chart, opts.Repo)).
		flag("--namespace", opts.Namespace).
		flag("--version", opts.Version).
		repeated("--values", opts.ValuesFiles).
		sets(opts.SetValues).
		flag("--kube-version", opts.KubeVersion).
		boolFlag("--include-crds", opts.IncludeCRDs).
		repeated("--show-only", opts.ShowOnly))
}
