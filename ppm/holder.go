package ppm

import "fmt"

// Holder is a scoped reference to a node for the duration of a compound
// operation. If the node is cloned while the holder is registered, the
// holder is moved onto the clone, so Node() always returns the instance that
// accepts writes.
//
//	h := ppm.Acquire(n)
//	defer h.Release()
type Holder struct {
	node *Node
}

// Acquire registers a holder on n's latest instance.
func Acquire(n *Node) *Holder {
	n = n.Latest()
	h := &Holder{node: n}
	n.registerHolder(h)
	return h
}

// Node returns the current referent, or nil once released.
func (h *Holder) Node() *Node { return h.node }

// Release deregisters the holder. It is safe to call more than once.
func (h *Holder) Release() {
	if h.node == nil {
		return
	}
	delete(h.node.holders, h)
	h.node = nil
}

// SetField writes through the current referent.
func (h *Holder) SetField(field string, v Value) (Revision, error) {
	if h.node == nil {
		return Revision{}, fmt.Errorf("%w: set %s", ErrReleasedHolder, field)
	}
	return h.node.SetField(field, v)
}

// Current reads the latest value of field on the current referent.
func (h *Holder) Current(field string) (Value, error) {
	if h.node == nil {
		return Value{}, fmt.Errorf("%w: read %s", ErrReleasedHolder, field)
	}
	v, ok := h.node.Current(field)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q on %s", ErrMissingField, field, h.node)
	}
	return v, nil
}

func (n *Node) registerHolder(h *Holder) {
	if n.holders == nil {
		n.holders = make(map[*Holder]struct{})
	}
	n.holders[h] = struct{}{}
}

// HolderCount returns the number of holders registered on this instance.
func (n *Node) HolderCount() int { return len(n.holders) }
