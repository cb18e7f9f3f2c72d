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

type RegistryLoginOptions struct {
	RegistryURL string `param:"registry_url,required" desc:"Registry host, e.g. oci://registry.example.com"`
	Username    string `param:"username,required" desc:"Registry username"`
	Password    string `param:"password" desc:"Registry password; read from the OS keyring when omitted and enabled"`
	Insecure    bool   `param:"insecure" desc:"Allow connections to registries without valid TLS"`
}

// RegistryLogin authenticates against an OCI registry. The password is
// passed as a discrete token and masked in logs.
func (c *Client) RegistryLogin(ctx context.Context, opts RegistryLoginOptions) string {
	return c.run(ctx, c.command("registry", "login").
		positional(opts.RegistryURL).
		flag("--username", opts.Username).
		flag("--password", opts.Password).
		boolFlag("--insecure", opts.Insecure))
}

type RegistryLogoutOptions struct {
	RegistryURL string `param:"registry_url,required" desc:"Registry host"`
}

// RegistryLogout removes stored credentials for a registry.
func (c *Client) RegistryLogout(ctx context.Context, opts RegistryLogoutOptions) string {
	return c.run(ctx, c.command("registry", "logout").positional(opts.RegistryURL))
}
