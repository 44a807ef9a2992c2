package ppm

import "fmt"

// Value is a field value: either a scalar or a reference to a node. The zero
// Value is the nil scalar.
type Value struct {
	scalar any
	node   *Node
}

// Scalar wraps a non pointer value. Passing a *Node here stores it as an
// opaque scalar with no link bookkeeping; use Ref for edges.
func Scalar(v any) Value { return Value{scalar: v} }

// Ref wraps a pointer to n. Ref(nil) is the nil scalar.
func Ref(n *Node) Value { return Value{node: n} }

// Nil is the nil scalar, used to clear a pointer field.
func Nil() Value { return Value{} }

func (v Value) IsRef() bool { return v.node != nil }

func (v Value) IsNil() bool { return v.node == nil && v.scalar == nil }

// Node returns the referenced node, or nil for a scalar.
func (v Value) Node() *Node { return v.node }

// Scalar returns the scalar payload, or nil for a Ref.
func (v Value) Scalar() any { return v.scalar }

// Int returns the scalar as an int when it holds one of Go's integer kinds.
func (v Value) Int() (int, bool) {
	switch x := v.scalar.(type) {
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		return int(x), true
	}
	return 0, false
}

// refersTo is true when v is a Ref to exactly n.
func (v Value) refersTo(n *Node) bool { return v.node != nil && v.node == n }

func (v Value) String() string {
	if v.node != nil {
		return "&" + v.node.String()
	}
	return fmt.Sprintf("%v", v.scalar)
}
