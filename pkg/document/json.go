package document

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/matzehuels/fetchtree/pkg/errors"
	"github.com/matzehuels/fetchtree/pkg/node"
)

func decodeJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, errors.New(errors.ErrCodeMalformedDocument, "invalid JSON document")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// fromResult walks a gjson result. ForEach yields object members in source
// order, which encoding/json maps would lose.
func fromResult(r gjson.Result) Value {
	switch {
	case r.IsObject():
		v := NewKeyed()
		r.ForEach(func(key, val gjson.Result) bool {
			v.Fields = append(v.Fields, Field{Key: key.String(), Value: fromResult(val)})
			return true
		})
		return v
	case r.IsArray():
		v := NewPositional()
		r.ForEach(func(_, val gjson.Result) bool {
			v.Items = append(v.Items, fromResult(val))
			return true
		})
		return v
	}

	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.True, gjson.False:
		return NewScalar(r.Raw, node.Bool)
	case gjson.Number:
		return NewScalar(r.Raw, node.Number)
	default:
		return NewScalar(r.Str, node.String)
	}
}

func encodeJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return pretty.Pretty(buf.Bytes()), nil
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindKeyed:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindPositional:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	switch {
	case v.Type == node.Null:
		buf.WriteString("null")
	case v.Type == node.Bool && (v.Text == "true" || v.Text == "false"):
		buf.WriteString(v.Text)
	case v.Type == node.Number && jsonNumber.MatchString(v.Text):
		buf.WriteString(v.Text)
	default:
		// Non-JSON numbers (NaN, Inf, hex) and odd booleans fall back to text.
		return writeJSONString(buf, v.Text)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode string")
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
