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
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/helm-mcp/internal/operation"
)

// toolFor builds the MCP tool definition for an operation descriptor.
func toolFor(desc operation.Descriptor) (mcp.Tool, error) {
	opts := []mcp.ToolOption{
		mcp.WithDescription(desc.Description),
		mcp.WithReadOnlyHintAnnotation(desc.ReadOnly),
		mcp.WithDestructiveHintAnnotation(desc.Destructive),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	if desc.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(desc.Title))
	}
	if desc.ReadOnly {
		opts = append(opts, mcp.WithIdempotentHintAnnotation(true))
	}

	for _, p := range desc.Params {
		prop, err := propertyFor(p)
		if err != nil {
			return mcp.Tool{}, fmt.Errorf("tool %s: %w", desc.Name, err)
		}
		opts = append(opts, prop)
	}

	return mcp.NewTool(desc.Name, opts...), nil
}

// propertyFor maps one parameter onto an input schema property.
func propertyFor(p operation.Param) (mcp.ToolOption, error) {
	var props []mcp.PropertyOption
	if p.Description != "" {
		props = append(props, mcp.Description(p.Description))
	}
	if p.Required {
		props = append(props, mcp.Required())
	}

	switch p.Type {
	case operation.TypeString:
		if len(p.Enum) > 0 {
			props = append(props, mcp.Enum(p.Enum...))
		}
		if def, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(def))
		}
		return mcp.WithString(p.Name, props...), nil

	case operation.TypeBoolean:
		if def, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(def))
		}
		return mcp.WithBoolean(p.Name, props...), nil

	case operation.TypeInteger:
		if def, ok := p.Default.(int); ok {
			props = append(props, mcp.DefaultNumber(float64(def)))
		}
		return mcp.WithNumber(p.Name, props...), nil

	case operation.TypeStringList:
		props = append(props, mcp.WithStringItems())
		if def, ok := p.Default.([]string); ok {
			props = append(props, mcp.DefaultArray(def))
		}
		return mcp.WithArray(p.Name, props...), nil

	default:
		return nil, fmt.Errorf("param %q has unsupported type %q", p.Name, p.Type)
	}
}
