// Package document converts between serialized documents and node trees.
//
// # Overview
//
// Parsing goes through an intermediate tagged variant, [Value], which is
// either a scalar, a keyed collection (ordered key/value fields) or a
// positional collection (ordered items). Codecs turn bytes into a Value and
// back; [Build] turns a Value into a [node.Node] tree and [Flatten] inverts it.
//
//	bytes --Decode--> Value --Build--> *node.Node
//	bytes <--Encode-- Value <--Flatten-- *node.Node
//
// # Formats
//
// Three formats are supported: [FormatJSON], [FormatYAML] and [FormatTOML].
// Without an explicit format the content is sniffed with [Sniff]. File
// extensions never pick the parser, so a file and its bytes decode alike:
//
//   - content that is valid JSON is JSON
//   - otherwise TOML is tried, then YAML
//   - a sniffed document must be a collection; bare scalars are only
//     accepted when the format is known up front
//
// # Scalar Text
//
// Leaf values are stored as text together with a [node.ValueType]:
//
//   - JSON numbers keep their literal text ("1.50" stays "1.50")
//   - YAML and TOML numbers use Go's shortest formatting
//   - booleans are "true" and "false"
//   - null is "null" with type [node.Null]
//   - TOML date-times become RFC 3339 strings
//
// Array elements are titled with [node.IndexLabel] ("[0]", "[1]", ...).
//
// # Ordering
//
// Keyed collections keep source order for all three decoders. The JSON and
// YAML encoders write fields in tree order; the TOML encoder sorts keys and
// rejects trees that TOML cannot express (a non-keyed root, or null values).
package document
