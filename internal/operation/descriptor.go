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

package operation

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ParamType is the JSON-schema type advertised for a parameter.
type ParamType string

const (
	TypeString     ParamType = "string"
	TypeBoolean    ParamType = "boolean"
	TypeInteger    ParamType = "integer"
	TypeStringList ParamType = "array"
)

// Typed lets a custom field type advertise its parameter type.
type Typed interface {
	ParamType() ParamType
}

// Decoder lets a custom field type decode a raw parameter value itself.
// It is implemented on the pointer receiver.
type Decoder interface {
	DecodeParam(value any) error
}

// Param describes one named parameter of an operation.
type Param struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool

	// Default is the typed default (string, bool, int or []string), nil if none.
	Default any

	// Enum restricts string values when non-empty.
	Enum []string

	field int
}

// Spec is the static metadata of an operation.
type Spec struct {
	// Name is the unique operation name, e.g. "helm_install".
	Name string

	// Title is a short human-readable label.
	Title string

	// Description is shown to tool clients.
	Description string

	// Family groups related operations, e.g. "release" or "repository".
	Family string

	// ReadOnly marks operations that never change cluster or local state.
	ReadOnly bool

	// Destructive marks operations that remove or overwrite state.
	Destructive bool
}

// Descriptor is an operation's metadata plus its parameter schema.
type Descriptor struct {
	Spec
	Params []Param
}

// Param returns the named parameter.
func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Entry is a registrable operation: descriptor plus bound handler.
type Entry struct {
	Descriptor Descriptor
	invoke     func(ctx context.Context, params map[string]any) (string, error)
}

// Define builds an Entry for handler, reflecting parameters from the options
// type T, which must be a struct.
func Define[T any](spec Spec, handler func(ctx context.Context, opts T) string) (Entry, error) {
	if spec.Name == "" {
		return Entry{}, fmt.Errorf("operation name is required")
	}
	if handler == nil {
		return Entry{}, fmt.Errorf("operation %s: handler is required", spec.Name)
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	params, err := describe(typ)
	if err != nil {
		return Entry{}, fmt.Errorf("operation %s: %w", spec.Name, err)
	}

	desc := Descriptor{Spec: spec, Params: params}
	return Entry{
		Descriptor: desc,
		invoke: func(ctx context.Context, raw map[string]any) (string, error) {
			var opts T
			if err := bind(desc.Params, raw, reflect.ValueOf(&opts).Elem()); err != nil {
				return "", err
			}
			return handler(ctx, opts), nil
		},
	}, nil
}

// MustDefine is like Define but panics on error. Options structs are static,
// so a failure here is a programming error.
func MustDefine[T any](spec Spec, handler func(ctx context.Context, opts T) string) Entry {
	e, err := Define(spec, handler)
	if err != nil {
		panic(err)
	}
	return e
}

var (
	typedType   = reflect.TypeOf((*Typed)(nil)).Elem()
	decoderType = reflect.TypeOf((*Decoder)(nil)).Elem()
)

func describe(typ reflect.Type) ([]Param, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("options type %s is not a struct", typ)
	}

	var params []Param
	seen := make(map[string]bool)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("param")
		if !ok || tag == "-" {
			continue
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("field %s is tagged but unexported", field.Name)
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			return nil, fmt.Errorf("field %s has an empty param name", field.Name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate param %q", name)
		}
		seen[name] = true

		ptype, err := fieldType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}

		p := Param{
			Name:        name,
			Description: field.Tag.Get("desc"),
			Type:        ptype,
			Required:    opts == "required",
			field:       i,
		}

		if enum := field.Tag.Get("enum"); enum != "" {
			if ptype != TypeString {
				return nil, fmt.Errorf("param %q: enum is only supported on strings", name)
			}
			p.Enum = strings.Split(enum, "|")
		}

		if def, ok := field.Tag.Lookup("default"); ok {
			if p.Required {
				return nil, fmt.Errorf("param %q: required params cannot have a default", name)
			}
			p.Default, err = parseDefault(ptype, def)
			if err != nil {
				return nil, fmt.Errorf("param %q: %w", name, err)
			}
		}

		params = append(params, p)
	}

	return params, nil
}

func fieldType(t reflect.Type) (ParamType, error) {
	if t.Implements(typedType) {
		if !reflect.PointerTo(t).Implements(decoderType) {
			return "", fmt.Errorf("type %s implements Typed but not Decoder", t)
		}
		return reflect.Zero(t).Interface().(Typed).ParamType(), nil
	}

	switch t.Kind() {
	case reflect.String:
		return TypeString, nil
	case reflect.Bool:
		return TypeBoolean, nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		return TypeInteger, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return TypeStringList, nil
		}
	}
	return "", fmt.Errorf("unsupported field type %s", t)
}

func parseDefault(ptype ParamType, def string) (any, error) {
	switch ptype {
	case TypeString:
		return def, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(def)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean default %q", def)
		}
		return b, nil
	case TypeInteger:
		n, err := strconv.Atoi(def)
		if err != nil {
			return nil, fmt.Errorf("invalid integer default %q", def)
		}
		return n, nil
	case TypeStringList:
		if def == "" {
			return []string{}, nil
		}
		return strings.Split(def, ","), nil
	default:
		return nil, fmt.Errorf("defaults are not supported for %s params", ptype)
	}
}
