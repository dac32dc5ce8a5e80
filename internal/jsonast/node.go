package jsonast

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// Kind identifies the JSON type of a node.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBoolean
	KindNull
)

var kindNames = [...]string{
	KindObject:  "object",
	KindArray:   "array",
	KindString:  "string",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindNull:    "null",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is a parsed JSON value. Start is the offset of its first byte and End
// the offset just past its last byte. Raw is src[Start:End] and shares the
// parsed buffer; callers must not modify it.
type Node struct {
	Kind  Kind
	Start int
	End   int
	Raw   []byte

	// Properties holds object members in source order.
	Properties []Property
	// Elements holds array items in source order.
	Elements []*Node
}

// Property is one object member. Start is the offset of the opening quote of
// the key and End is the end offset of the value.
type Property struct {
	Key   string
	Value *Node
	Start int
	End   int
}

// Parse parses src and returns the root node.
func Parse(src []byte) (*Node, error) {
	v, err := hujson.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return convert(src, &v)
}

// Lookup returns the last property named key. Standard JSON decoding keeps the
// last duplicate, so this does too.
func (n *Node) Lookup(key string) (Property, bool) {
	for i := len(n.Properties) - 1; i >= 0; i-- {
		if n.Properties[i].Key == key {
			return n.Properties[i], true
		}
	}
	return Property{}, false
}

// ClosingOffset returns the offset of the closing '}' or ']' of a container.
func (n *Node) ClosingOffset() int {
	return n.End - 1
}

func convert(src []byte, v *hujson.Value) (*Node, error) {
	n := &Node{
		Start: v.StartOffset,
		End:   v.EndOffset,
	}
	if n.Start < 0 || n.End > len(src) || n.Start > n.End {
		return nil, fmt.Errorf("parsing JSON: bad offsets [%d, %d)", n.Start, n.End)
	}
	n.Raw = src[n.Start:n.End:n.End]

	switch val := v.Value.(type) {
	case *hujson.Object:
		n.Kind = KindObject
		n.Properties = make([]Property, 0, len(val.Members))
		for i := range val.Members {
			m := &val.Members[i]
			var key string
			if err := json.Unmarshal(m.Name.Value.(hujson.Literal), &key); err != nil {
				return nil, fmt.Errorf("decoding key at offset %d: %w", m.Name.StartOffset, err)
			}
			child, err := convert(src, &m.Value)
			if err != nil {
				return nil, err
			}
			n.Properties = append(n.Properties, Property{
				Key:   key,
				Value: child,
				Start: m.Name.StartOffset,
				End:   m.Value.EndOffset,
			})
		}
	case *hujson.Array:
		n.Kind = KindArray
		n.Elements = make([]*Node, 0, len(val.Elements))
		for i := range val.Elements {
			child, err := convert(src, &val.Elements[i])
			if err != nil {
				return nil, err
			}
			n.Elements = append(n.Elements, child)
		}
	case hujson.Literal:
		n.Kind = literalKind(val)
	default:
		return nil, fmt.Errorf("parsing JSON: unexpected value %T at offset %d", v.Value, v.StartOffset)
	}
	return n, nil
}

func literalKind(lit hujson.Literal) Kind {
	if len(lit) == 0 {
		return KindNull
	}
	switch lit[0] {
	case '"':
		return KindString
	case 't', 'f':
		return KindBoolean
	case 'n':
		return KindNull
	default:
		return KindNumber
	}
}
