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
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tombee/helm-mcp/internal/operation"
)

// Override is a single dotted-path value override.
type Override struct {
	Path  string
	Value string
}

// String renders the override in helm's path=value form.
func (o Override) String() string {
	return o.Path + "=" + o.Value
}

// Overrides is an ordered list of value overrides. Order is significant:
// helm applies --set values last-wins.
//
// The advertised form is an array of "path=value" strings, since a JSON
// object loses its key order once a transport decodes it into a map. Objects
// are still accepted: raw JSON keeps its key order, a decoded map is sorted
// by path.
type Overrides []Override

// ParamType implements operation.Typed.
func (Overrides) ParamType() operation.ParamType {
	return operation.TypeStringList
}

// UnmarshalJSON decodes a JSON array of "path=value" strings or
// {"path": ..., "value": ...} objects, or a JSON object (keeping key order).
func (o *Overrides) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		*o = nil
		return nil
	case strings.HasPrefix(trimmed, "{"):
		om := orderedmap.New[string, any]()
		if err := om.UnmarshalJSON(data); err != nil {
			return err
		}
		return o.DecodeParam(om)
	default:
		var list []any
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("overrides must be an object or an array: %w", err)
		}
		return o.DecodeParam(list)
	}
}

// DecodeParam implements operation.Decoder.
//
// Ordered inputs keep their order. A plain Go map has already lost the
// caller's order, so its entries are sorted by path to stay deterministic.
func (o *Overrides) DecodeParam(value any) error {
	var out Overrides

	switch v := value.(type) {
	case nil:
	case Overrides:
		out = append(out, v...)
	case json.RawMessage:
		return o.UnmarshalJSON(v)
	case *orderedmap.OrderedMap[string, any]:
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			s, err := scalarString(pair.Key, pair.Value)
			if err != nil {
				return err
			}
			out = append(out, Override{Path: pair.Key, Value: s})
		}
	case map[string]any:
		for _, path := range sortedKeys(v) {
			s, err := scalarString(path, v[path])
			if err != nil {
				return err
			}
			out = append(out, Override{Path: path, Value: s})
		}
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, path := range keys {
			out = append(out, Override{Path: path, Value: v[path]})
		}
	case []string:
		for _, item := range v {
			ov, err := parseAssignment(item)
			if err != nil {
				return err
			}
			out = append(out, ov)
		}
	case []any:
		for i, item := range v {
			ov, err := overrideFromItem(item)
			if err != nil {
				return fmt.Errorf("override %d: %w", i, err)
			}
			out = append(out, ov)
		}
	case string:
		if v != "" {
			ov, err := parseAssignment(v)
			if err != nil {
				return err
			}
			out = append(out, ov)
		}
	default:
		return fmt.Errorf("overrides must be an object or an array, got %T", value)
	}

	*o = out
	return nil
}

func overrideFromItem(item any) (Override, error) {
	switch v := item.(type) {
	case string:
		return parseAssignment(v)
	case map[string]any:
		path, _ := v["path"].(string)
		if path == "" {
			path, _ = v["key"].(string)
		}
		if path == "" {
			return Override{}, fmt.Errorf("object override needs a \"path\"")
		}
		s, err := scalarString(path, v["value"])
		if err != nil {
			return Override{}, err
		}
		return Override{Path: path, Value: s}, nil
	default:
		return Override{}, fmt.Errorf("expected \"path=value\" string or object, got %T", item)
	}
}

func parseAssignment(s string) (Override, error) {
	path, value, ok := strings.Cut(s, "=")
	if !ok || path == "" {
		return Override{}, fmt.Errorf("override %q must have the form path=value", s)
	}
	return Override{Path: path, Value: value}, nil
}

func scalarString(path string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("value for %q must be a scalar, got %T", path, value)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
