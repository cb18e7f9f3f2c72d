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

// Package operation provides the registry that maps operation names to
// handlers and binds caller parameters onto typed options structs.
//
// An operation is declared once with Define, which reflects its parameter
// schema from the options struct's field tags:
//
//	type StatusOptions struct {
//	    Release   string `param:"release_name,required" desc:"Release to inspect"`
//	    Namespace string `param:"namespace" desc:"Kubernetes namespace"`
//	    Revision  int    `param:"revision" desc:"Revision to show"`
//	}
//
// Supported tags:
//   - param:   parameter name, optionally followed by ",required"
//   - desc:    human-readable description
//   - default: default value used when the parameter is omitted
//   - enum:    "|"-separated list of accepted values
//
// Entries are collected into an immutable Registry with NewRegistry. Every
// call goes through Registry.Dispatch, which always returns a single string:
// the handler's output, or a description of why the handler never ran,
// prefixed with ErrorPrefix.
//
// Transports (MCP, CLI) share the same Registry, so parameter validation and
// defaults behave identically regardless of how an operation is invoked.
package operation
