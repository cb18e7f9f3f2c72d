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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// bind copies raw parameter values onto the fields of dst, applying
// defaults and rejecting unknown or malformed parameters.
func bind(params []Param, raw map[string]any, dst reflect.Value) error {
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.Name] = true
	}

	var unknown []string
	for name := range raw {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown parameter(s): %s", strings.Join(unknown, ", "))
	}

	for _, p := range params {
		field := dst.Field(p.field)

		value, present := raw[p.Name]
		if msg, ok := value.(json.RawMessage); ok && isJSONNull(msg) {
			present = false
		}
		if !present || value == nil {
			if p.Required {
				return fmt.Errorf("missing required parameter %q", p.Name)
			}
			if p.Default != nil {
				if err := assign(field, p, p.Default); err != nil {
					return err
				}
			}
			continue
		}

		if err := assign(field, p, value); err != nil {
			return err
		}
		if p.Required && field.Kind() == reflect.String && field.String() == "" {
			return fmt.Errorf("missing required parameter %q", p.Name)
		}
	}

	return nil
}

func assign(field reflect.Value, p Param, value any) error {
	if field.CanAddr() {
		if dec, ok := field.Addr().Interface().(Decoder); ok {
			if err := dec.DecodeParam(value); err != nil {
				return fmt.Errorf("parameter %q: %w", p.Name, err)
			}
			return nil
		}
	}

	if raw, ok := value.(json.RawMessage); ok {
		decoded, err := decodeRaw(raw)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		value = decoded
	}

	switch field.Kind() {
	case reflect.String:
		s, err := toString(value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return fmt.Errorf("parameter %q must be one of %s, got %q", p.Name, strings.Join(p.Enum, ", "), s)
		}
		field.SetString(s)

	case reflect.Bool:
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("parameter %q: %d is out of range", p.Name, n)
		}
		field.SetInt(n)

	case reflect.Slice:
		list, err := toStringList(value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		field.Set(reflect.ValueOf(list).Convert(field.Type()))

	default:
		return fmt.Errorf("parameter %q: unsupported field kind %s", p.Name, field.Kind())
	}

	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeRaw(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", value)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return false, fmt.Errorf("expected a boolean, got string %q", v)
	default:
		return false, fmt.Errorf("expected a boolean, got %T", value)
	}
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
		if v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("integer %v is out of range", v)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %s", v)
		}
		return n, nil
	case string:
		return 0, fmt.Errorf("expected an integer, got string %q", v)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func toStringList(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v), nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, err := toString(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", value)
	}
}
