package document

import (
	"github.com/matzehuels/fetchtree/pkg/node"
)

// Build converts a document value into a node tree. The root is untitled.
//
// Scalars become leaves, keyed collections become nodes with one child per
// field (titled by key, in source order), and positional collections become
// array nodes with one child per item.
func Build(v Value) *node.Node {
	return build("", v)
}

func build(title string, v Value) *node.Node {
	switch v.Kind {
	case KindKeyed:
		children := make([]*node.Node, len(v.Fields))
		for i, f := range v.Fields {
			children[i] = build(f.Key, f.Value)
		}
		return node.NewObject(title, children...)
	case KindPositional:
		children := make([]*node.Node, len(v.Items))
		for i, item := range v.Items {
			children[i] = build("", item)
		}
		return node.NewArray(title, children...)
	default:
		return node.NewLeaf(title, v.Text, v.Type)
	}
}

// Flatten converts a node tree back into a document value. The tree is
// validated first; a shape violation is returned as an
// [errors.ErrCodeInvariantViolation] error and nothing is converted.
func Flatten(root *node.Node) (Value, error) {
	if err := node.Validate(root); err != nil {
		return Value{}, err
	}
	return flatten(root), nil
}

func flatten(n *node.Node) Value {
	switch {
	case n.IsLeaf:
		return NewScalar(n.Value, n.Type)
	case n.IsArray:
		items := make([]Value, len(n.Children))
		for i, c := range n.Children {
			items[i] = flatten(c)
		}
		return NewPositional(items...)
	default:
		fields := make([]Field, len(n.Children))
		for i, c := range n.Children {
			fields[i] = Field{Key: c.Title, Value: flatten(c)}
		}
		return NewKeyed(fields...)
	}
}

// Parse decodes data in format f and builds its tree.
func Parse(data []byte, f Format) (*node.Node, error) {
	v, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	return Build(v), nil
}

// Serialize flattens root and encodes it in format f.
func Serialize(root *node.Node, f Format) ([]byte, error) {
	v, err := Flatten(root)
	if err != nil {
		return nil, err
	}
	return Encode(v, f)
}
