package node

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the scalar kind of a leaf node. The textual Value is what
// consumers display; the type lets exporters re-emit a typed scalar.
type ValueType int

const (
	// String is the zero value so hand-built leaves default to text.
	String ValueType = iota
	Number
	Bool
	Null
)

var valueTypeNames = [...]string{
	String: "string",
	Number: "number",
	Bool:   "bool",
	Null:   "null",
}

// String returns the lower-case name of the type.
func (t ValueType) String() string {
	if t < 0 || int(t) >= len(valueTypeNames) {
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
	return valueTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ValueType) UnmarshalText(b []byte) error {
	for i, name := range valueTypeNames {
		if name == string(b) {
			*t = ValueType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown value type %q", b)
}

// Node is one element of a hierarchical document.
//
// The zero value is a leaf-less, child-less internal node which is not valid;
// use the constructors.
type Node struct {
	Title       string    `json:"title"`
	Value       string    `json:"value,omitempty"`
	Type        ValueType `json:"type,omitempty"`
	Children    []*Node   `json:"children,omitempty"`
	IsLeaf      bool      `json:"isLeaf"`
	IsArray     bool      `json:"isArray,omitempty"`
	ObjectCount int       `json:"objectCount"`
}

// IndexLabel returns the synthesized title of the i-th element of a
// positional collection.
func IndexLabel(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// NewLeaf creates a scalar node.
func NewLeaf(title, value string, typ ValueType) *Node {
	return &Node{Title: title, Value: value, Type: typ, IsLeaf: true}
}

// NewObject creates a keyed collection node. Children keep the order given
// and are titled by their keys.
func NewObject(title string, children ...*Node) *Node {
	n := &Node{Title: title, Children: children}
	n.ObjectCount = len(children)
	return n
}

// NewArray creates a positional collection node. Children are relabelled
// with their [IndexLabel].
func NewArray(title string, children ...*Node) *Node {
	for i, c := range children {
		if c != nil {
			c.Title = IndexLabel(i)
		}
	}
	n := &Node{Title: title, Children: children, IsArray: true}
	n.ObjectCount = len(children)
	return n
}

// Append adds a child to an internal node, keeping ObjectCount and array
// labels consistent. It panics when called on a leaf.
func (n *Node) Append(child *Node) {
	if n.IsLeaf {
		panic("node: Append on leaf " + strconv.Quote(n.Title))
	}
	if n.IsArray {
		child.Title = IndexLabel(len(n.Children))
	}
	n.Children = append(n.Children, child)
	n.ObjectCount = len(n.Children)
}

// Child returns the first direct child with the given title, or nil.
func (n *Node) Child(title string) *Node {
	for _, c := range n.Children {
		if c.Title == title {
			return c
		}
	}
	return nil
}

// Find resolves a slash-separated path of titles relative to n. The empty
// path resolves to n itself. Array elements are addressed by their index
// label or by the bare index ("items/0" and "items/[0]" are equivalent).
func (n *Node) Find(path string) *Node {
	cur := n
	path = strings.Trim(path, "/")
	if path == "" {
		return cur
	}
	for _, seg := range strings.Split(path, "/") {
		if cur == nil || cur.IsLeaf {
			return nil
		}
		if cur.IsArray {
			if i, err := strconv.Atoi(seg); err == nil {
				seg = IndexLabel(i)
			}
		}
		cur = cur.Child(seg)
	}
	return cur
}

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	dst := *n
	if n.Children != nil {
		dst.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			dst.Children[i] = c.Clone()
		}
	}
	return &dst
}

// Equal reports whether two trees have the same shape, titles, values and
// scalar types.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Title != b.Title || a.IsLeaf != b.IsLeaf || a.IsArray != b.IsArray ||
		a.ObjectCount != b.ObjectCount || len(a.Children) != len(b.Children) {
		return false
	}
	if a.IsLeaf && (a.Value != b.Value || a.Type != b.Type) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// String renders a compact one-line description, e.g. `b [2]` or `a = 1`.
func (n *Node) String() string {
	title := n.Title
	if title == "" {
		title = "(root)"
	}
	switch {
	case n.IsLeaf:
		return title + " = " + n.Value
	case n.IsArray:
		return fmt.Sprintf("%s [%d]", title, n.ObjectCount)
	default:
		return fmt.Sprintf("%s {%d}", title, n.ObjectCount)
	}
}
