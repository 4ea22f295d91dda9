package document

import (
	"github.com/matzehuels/fetchtree/pkg/node"
)

// Kind tags the variant held by a [Value].
type Kind int

const (
	KindScalar Kind = iota
	KindKeyed
	KindPositional
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindKeyed:
		return "keyed"
	case KindPositional:
		return "positional"
	}
	return "unknown"
}

// Value is one element of a parsed document.
//
// Only the fields matching Kind are meaningful: Type and Text for scalars,
// Fields for keyed collections and Items for positional collections.
type Value struct {
	Kind   Kind
	Type   node.ValueType
	Text   string
	Fields []Field
	Items  []Value
}

// Field is one entry of a keyed collection.
type Field struct {
	Key   string
	Value Value
}

// NewScalar returns a scalar value.
func NewScalar(text string, typ node.ValueType) Value {
	return Value{Kind: KindScalar, Type: typ, Text: text}
}

// Null returns the null scalar.
func Null() Value {
	return NewScalar("null", node.Null)
}

// NewKeyed returns a keyed collection with the given fields in order.
func NewKeyed(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{Kind: KindKeyed, Fields: fields}
}

// NewPositional returns a positional collection.
func NewPositional(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindPositional, Items: items}
}

// IsCollection reports whether v is keyed or positional.
func (v Value) IsCollection() bool {
	return v.Kind == KindKeyed || v.Kind == KindPositional
}
