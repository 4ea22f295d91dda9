package document

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/node"
)

func decodeYAML(data []byte) (Value, error) {
	var out any
	if err := yaml.UnmarshalWithOptions(data, &out, yaml.UseOrderedMap()); err != nil {
		return Value{}, errors.Wrap(errors.ErrCodeMalformedDocument, err, "invalid YAML document")
	}
	return fromAny(out), nil
}

// fromAny converts decoded YAML or TOML values. Ordered maps keep source
// order; plain maps are sorted by key.
func fromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case yaml.MapSlice:
		v := NewKeyed()
		for _, item := range t {
			v.Fields = append(v.Fields, Field{Key: keyString(item.Key), Value: fromAny(item.Value)})
		}
		return v
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		v := NewKeyed()
		for _, k := range keys {
			v.Fields = append(v.Fields, Field{Key: k, Value: fromAny(t[k])})
		}
		return v
	case []any:
		v := NewPositional()
		for _, item := range t {
			v.Items = append(v.Items, fromAny(item))
		}
		return v
	case []map[string]any:
		v := NewPositional()
		for _, item := range t {
			v.Items = append(v.Items, fromAny(item))
		}
		return v
	case bool:
		return NewScalar(strconv.FormatBool(t), node.Bool)
	case string:
		return NewScalar(t, node.String)
	case int:
		return NewScalar(strconv.Itoa(t), node.Number)
	case int64:
		return NewScalar(strconv.FormatInt(t, 10), node.Number)
	case uint64:
		return NewScalar(strconv.FormatUint(t, 10), node.Number)
	case float64:
		return NewScalar(formatFloat(t), node.Number)
	case time.Time:
		return NewScalar(t.Format(time.RFC3339Nano), node.String)
	default:
		return NewScalar(fmt.Sprint(t), node.String)
	}
}

func keyString(k any) string {
	if k == nil {
		return "null"
	}
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func encodeYAML(v Value) ([]byte, error) {
	out, err := yaml.Marshal(toYAML(v))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode YAML")
	}
	return out, nil
}

func toYAML(v Value) any {
	switch v.Kind {
	case KindKeyed:
		m := make(yaml.MapSlice, 0, len(v.Fields))
		for _, f := range v.Fields {
			m = append(m, yaml.MapItem{Key: f.Key, Value: toYAML(f.Value)})
		}
		return m
	case KindPositional:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, toYAML(item))
		}
		return items
	}
	return typedScalar(v)
}

// typedScalar converts a scalar to the Go value a YAML or TOML encoder emits
// unquoted. Text that does not parse as its declared type stays a string.
func typedScalar(v Value) any {
	switch v.Type {
	case node.Null:
		return nil
	case node.Bool:
		if v.Text == "true" || v.Text == "false" {
			return v.Text == "true"
		}
	case node.Number:
		// Only canonical integer text; "-0" or "+1" would lose its spelling.
		if i, err := strconv.ParseInt(v.Text, 10, 64); err == nil && strconv.FormatInt(i, 10) == v.Text {
			return i
		}
		if u, err := strconv.ParseUint(v.Text, 10, 64); err == nil && strconv.FormatUint(u, 10) == v.Text {
			return u
		}
		if f, err := strconv.ParseFloat(v.Text, 64); err == nil {
			return f
		}
	}
	return v.Text
}
