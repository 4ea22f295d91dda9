package document

import (
	"bytes"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/node"
)

func decodeTOML(data []byte) (Value, error) {
	var m map[string]any
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return Value{}, errors.Wrap(errors.ErrCodeMalformedDocument, err, "invalid TOML document")
	}
	// A dotted key or nested header also places each of its parent tables.
	order := make(map[string]int)
	for i, k := range md.Keys() {
		for j := 1; j <= len(k); j++ {
			p := strings.Join(k[:j], "\x00")
			if _, ok := order[p]; !ok {
				order[p] = i
			}
		}
	}
	return tomlValue(m, nil, order), nil
}

// tomlValue converts a decoded TOML value at key path. Table keys are
// ordered by their first appearance in the source, as reported by the
// decoder metadata; keys it does not report sort after, by name.
func tomlValue(x any, path []string, order map[string]int) Value {
	switch t := x.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		rank := func(k string) (int, bool) {
			i, ok := order[strings.Join(append(path[:len(path):len(path)], k), "\x00")]
			return i, ok
		}
		sort.SliceStable(keys, func(i, j int) bool {
			ri, oki := rank(keys[i])
			rj, okj := rank(keys[j])
			switch {
			case oki && okj:
				return ri < rj
			case oki != okj:
				return oki
			}
			return keys[i] < keys[j]
		})
		v := NewKeyed()
		for _, k := range keys {
			v.Fields = append(v.Fields, Field{Key: k, Value: tomlValue(t[k], append(path[:len(path):len(path)], k), order)})
		}
		return v
	case []map[string]any:
		v := NewPositional()
		for _, item := range t {
			v.Items = append(v.Items, tomlValue(item, path, order))
		}
		return v
	case []any:
		v := NewPositional()
		for _, item := range t {
			v.Items = append(v.Items, tomlValue(item, path, order))
		}
		return v
	}
	return fromAny(x)
}

// encodeTOML writes v keeping field order. Values go inline as key = value
// lines; only the trailing run of tables and arrays of tables in each table
// becomes [section] and [[section]] blocks, since TOML places those after
// all plain keys.
func encodeTOML(v Value) ([]byte, error) {
	if v.Kind != KindKeyed {
		return nil, errors.New(errors.ErrCodeUnsupported, "TOML documents must have a keyed root, got %s", v.Kind)
	}
	var w tomlWriter
	if err := w.table(nil, "", v); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

type tomlWriter struct {
	buf bytes.Buffer
}

// table writes the body of the table at keys. where is the node path used
// in error messages.
func (w *tomlWriter) table(keys []string, where string, v Value) error {
	if err := uniqueKeys(where, v); err != nil {
		return err
	}
	split := len(v.Fields)
	for split > 0 && isTOMLSection(v.Fields[split-1].Value) {
		split--
	}

	for _, f := range v.Fields[:split] {
		s, err := inlineTOML(f.Value, where+"/"+f.Key)
		if err != nil {
			return err
		}
		w.buf.WriteString(tomlKey(f.Key) + " = " + s + "\n")
	}
	for _, f := range v.Fields[split:] {
		sub := append(keys[:len(keys):len(keys)], f.Key)
		at := where + "/" + f.Key
		if f.Value.Kind == KindKeyed {
			w.header("[", sub, "]")
			if err := w.table(sub, at, f.Value); err != nil {
				return err
			}
			continue
		}
		for i, item := range f.Value.Items {
			w.header("[[", sub, "]]")
			if err := w.table(sub, at+"/"+node.IndexLabel(i), item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *tomlWriter) header(open string, keys []string, close string) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = tomlKey(k)
	}
	w.buf.WriteString(open + strings.Join(quoted, ".") + close + "\n")
}

// isTOMLSection reports whether v can be written as a table header block.
func isTOMLSection(v Value) bool {
	switch v.Kind {
	case KindKeyed:
		return true
	case KindPositional:
		if len(v.Items) == 0 {
			return false
		}
		for _, item := range v.Items {
			if item.Kind != KindKeyed {
				return false
			}
		}
		return true
	}
	return false
}

func uniqueKeys(where string, v Value) error {
	seen := make(map[string]bool, len(v.Fields))
	for _, f := range v.Fields {
		if seen[f.Key] {
			return errors.New(errors.ErrCodeUnsupported, "%s/%s: duplicate key cannot be written as TOML", where, f.Key)
		}
		seen[f.Key] = true
	}
	return nil
}

func inlineTOML(v Value, where string) (string, error) {
	switch v.Kind {
	case KindKeyed:
		if err := uniqueKeys(where, v); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			s, err := inlineTOML(f.Value, where+"/"+f.Key)
			if err != nil {
				return "", err
			}
			parts = append(parts, tomlKey(f.Key)+" = "+s)
		}
		if len(parts) == 0 {
			return "{}", nil
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case KindPositional:
		parts := make([]string, 0, len(v.Items))
		for i, item := range v.Items {
			s, err := inlineTOML(item, where+"/"+node.IndexLabel(i))
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	}
	if v.Type == node.Null {
		if where == "" {
			where = "/"
		}
		return "", errors.New(errors.ErrCodeUnsupported, "%s: TOML has no null value", where)
	}
	return tomlScalar(typedScalar(v), where)
}

// tomlScalar formats one scalar with the TOML encoder, which handles string
// escapes and the float spellings (inf, nan, 1.0).
func tomlScalar(x any, where string) (string, error) {
	out, err := toml.Marshal(map[string]any{"v": x})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnsupported, err, "%s: encode TOML value", where)
	}
	s := strings.TrimSuffix(string(out), "\n")
	if !strings.HasPrefix(s, "v = ") {
		return "", errors.New(errors.ErrCodeInternal, "%s: unexpected TOML scalar %q", where, s)
	}
	return strings.TrimPrefix(s, "v = "), nil
}

func isBareKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func tomlKey(k string) string {
	if isBareKey(k) {
		return k
	}
	s, err := tomlScalar(k, "")
	if err != nil {
		return `"` + k + `"`
	}
	return s
}
