package document

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/fetchtree/pkg/errors"
)

// Format names a serialized document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats in sniffing order.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

var extToFormat = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when serving the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// ParseFormat resolves a user supplied format name. Matching is case
// insensitive and accepts "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want json, yaml or toml)", s)
}

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, bool) {
	f, ok := extToFormat[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimInput(data []byte) []byte {
	return bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
}

// Decode parses data in the given format.
// Failures carry [errors.ErrCodeMalformedDocument].
func Decode(data []byte, f Format) (Value, error) {
	data = trimInput(data)
	if len(data) == 0 {
		return Value{}, errors.New(errors.ErrCodeMalformedDocument, "empty %s document", f)
	}
	switch f {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	}
	return Value{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// Sniff guesses the format of data and decodes it. The result must be a
// collection: a bare scalar is ambiguous without a declared format.
func Sniff(data []byte) (Value, Format, error) {
	trimmed := trimInput(data)
	if len(trimmed) == 0 {
		return Value{}, "", errors.New(errors.ErrCodeMalformedDocument, "empty document")
	}
	if gjson.ValidBytes(trimmed) {
		v, err := decodeJSON(trimmed)
		if err != nil {
			return Value{}, "", err
		}
		if !v.IsCollection() {
			return Value{}, "", errors.New(errors.ErrCodeMalformedDocument, "document is a bare JSON scalar; pass the format explicitly")
		}
		return v, FormatJSON, nil
	}
	// Only comments and blank lines decode to an empty table.
	if v, err := decodeTOML(trimmed); err == nil {
		return v, FormatTOML, nil
	}
	if c := trimmed[0]; c == '{' || c == '[' {
		// Broken JSON; YAML flow syntax would otherwise accept some of it.
		return Value{}, "", errors.New(errors.ErrCodeMalformedDocument, "invalid JSON document")
	}
	v, err := decodeYAML(trimmed)
	if err != nil {
		return Value{}, "", err
	}
	if !v.IsCollection() {
		return Value{}, "", errors.New(errors.ErrCodeMalformedDocument, "document is a bare scalar of unknown format")
	}
	return v, FormatYAML, nil
}

// Encode serializes v in the given format.
func Encode(v Value, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return encodeJSON(v)
	case FormatYAML:
		return encodeYAML(v)
	case FormatTOML:
		return encodeTOML(v)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}
