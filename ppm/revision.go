package ppm

import (
	"fmt"
	"sort"
)

// Revision is an immutable (node, version) handle for reading a node as it
// was at version. It does not own the node.
type Revision struct {
	node    *Node
	version Version
}

// NewRevision returns a handle reading n at version v.
func NewRevision(n *Node, v Version) Revision {
	return Revision{node: n, version: v}
}

// Latest returns a handle reading n's newest instance at the context's
// current version.
func Latest(n *Node) Revision {
	return Revision{node: n.Latest(), version: n.ctx.version}
}

func (r Revision) Version() Version { return r.version }

// Node returns the instance of the handle's node that was authoritative at
// the handle's version.
func (r Revision) Node() *Node {
	if r.node == nil {
		return nil
	}
	return r.node.at(r.version)
}

func (r Revision) IsZero() bool { return r.node == nil }

func (r Revision) String() string {
	return fmt.Sprintf("%s@v%d", r.Node(), r.version)
}

// GetField returns field as of the handle's version. Ref values are resolved
// to the instance authoritative at that version. ErrMissingField is returned
// when the field was not set at that version.
func (r Revision) GetField(field string) (Value, error) {
	n := r.Node()
	if n == nil {
		return Value{}, fmt.Errorf("%w: %q on a zero revision", ErrMissingField, field)
	}
	v, ok := n.fieldAt(field, r.version)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q on %s at v%d", ErrMissingField, field, n, r.version)
	}
	return r.resolve(v), nil
}

// Follow reads a Ref field and returns a handle on the referenced node at the
// same version.
func (r Revision) Follow(field string) (Revision, error) {
	v, err := r.GetField(field)
	if err != nil {
		return Revision{}, err
	}
	if !v.IsRef() {
		return Revision{}, fmt.Errorf("%w: %q on %s is %v", ErrNotARef, field, r.Node(), v)
	}
	return Revision{node: v.node, version: r.version}, nil
}

// Fields returns every field set at the handle's version.
func (r Revision) Fields() map[string]Value {
	n := r.Node()
	if n == nil {
		return nil
	}
	fields := n.fieldsAt(r.version)
	for k, v := range fields {
		fields[k] = r.resolve(v)
	}
	return fields
}

// FieldNames returns the sorted names of the fields set at the handle's
// version.
func (r Revision) FieldNames() []string {
	fields := r.Fields()
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r Revision) resolve(v Value) Value {
	if v.IsRef() {
		return Ref(v.node.at(r.version))
	}
	return v
}
