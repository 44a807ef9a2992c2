package ppm

import (
	"fmt"
)

// Node is a versioned record. Its state at any version is its base map
// overlaid with the log entries at or before that version.
//
// Once the log holds MaxMods entries the next write freezes the node and a
// clone takes over. The frozen node stays readable for every version it saw.
type Node struct {
	ctx  *Context
	id   uint64
	name string
	gen  uint32

	// born is the version at which this instance became authoritative.
	born Version

	base map[string]Value
	mods []Mod

	links     []Link
	backlinks []Backlink

	frozen bool
	prior  *Node
	next   *Node

	holders map[*Holder]struct{}
}

func (n *Node) ID() uint64 { return n.id }
func (n *Node) Name() string { return n.name }
func (n *Node) Generation() uint32 { return n.gen }
func (n *Node) Born() Version { return n.born }
func (n *Node) Frozen() bool { return n.frozen }
func (n *Node) Context() *Context { return n.ctx }
func (n *Node) Successor() *Node { return n.next }
func (n *Node) Predecessor() *Node { return n.prior }

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d.%d", n.name, n.id, n.gen)
}

// Latest returns the instance currently accepting writes for this node.
func (n *Node) Latest() *Node {
	for n.next != nil {
		n = n.next
	}
	return n
}

// at returns the instance in n's clone chain that was authoritative at v.
func (n *Node) at(v Version) *Node {
	for n.born > v && n.prior != nil {
		n = n.prior
	}
	for n.next != nil && n.next.born <= v {
		n = n.next
	}
	return n
}

// Mods returns a copy of the modification log.
func (n *Node) Mods() []Mod {
	return append([]Mod(nil), n.mods...)
}

// Links returns a copy of the outgoing link slots, including empty ones.
func (n *Node) Links() []Link {
	return append([]Link(nil), n.links...)
}

// Backlinks returns a copy of the incoming backlink slots, including empty
// ones.
func (n *Node) Backlinks() []Backlink {
	return append([]Backlink(nil), n.backlinks...)
}

// LinkCount returns the number of occupied outgoing link slots.
func (n *Node) LinkCount() int {
	count := 0
	for _, l := range n.links {
		if l.Occupied() {
			count++
		}
	}
	return count
}

// BacklinkCount returns the number of occupied incoming backlink slots.
func (n *Node) BacklinkCount() int {
	count := 0
	for _, b := range n.backlinks {
		if b.Occupied() {
			count++
		}
	}
	return count
}

// Current returns the latest value of field on this instance. The bool is
// false when the field was never set.
func (n *Node) Current(field string) (Value, bool) {
	return n.fieldAt(field, LatestVersion)
}

// SetField writes field on the latest version of the graph. The returned
// Revision identifies the instance and version that recorded the write.
//
// Writing to a frozen node fails with ErrFrozenNode: callers must write
// through Latest() or a Holder. A Ref value is resolved to its target's
// latest instance before it is stored.
func (n *Node) SetField(field string, v Value) (Revision, error) {
	return n.ctx.write(n, field, v)
}

// fieldAt applies the log entries at or before v over the base map. Later
// log entries win.
func (n *Node) fieldAt(field string, v Version) (Value, bool) {
	val, ok := n.base[field]
	for _, m := range n.mods {
		if m.Version > v {
			break
		}
		if m.Field == field {
			val, ok = m.Value, true
		}
	}
	return val, ok
}

func (n *Node) fieldsAt(v Version) map[string]Value {
	fields := make(map[string]Value, len(n.base))
	for k, val := range n.base {
		fields[k] = val
	}
	for _, m := range n.mods {
		if m.Version > v {
			break
		}
		fields[m.Field] = m.Value
	}
	return fields
}

func (n *Node) linkIndex(field string) int {
	for i, l := range n.links {
		if l.Occupied() && l.Field == field {
			return i
		}
	}
	return -1
}

func (n *Node) freeLink() int {
	for i, l := range n.links {
		if !l.Occupied() {
			return i
		}
	}
	return -1
}

func (n *Node) freeBacklink() int {
	for i, b := range n.backlinks {
		if !b.Occupied() {
			return i
		}
	}
	return -1
}

// relink moves the edge for field from old to v, keeping links and
// backlinks mutual. Capacity is checked before anything changes, so a
// failure leaves both ends untouched.
func (n *Node) relink(field string, old, v Value) error {
	if old.IsRef() && v.IsRef() && old.node == v.node {
		return nil
	}

	li := n.linkIndex(field)
	slot := -1
	if v.IsRef() {
		if slot = v.node.freeBacklink(); slot < 0 {
			return fmt.Errorf(
				"%w: no free backlink slot on %s for %s.%s", ErrLinkCapacityExceeded, v.node, n, field)
		}
		if li < 0 && n.freeLink() < 0 {
			return fmt.Errorf(
				"%w: no free link slot on %s for field %s", ErrLinkCapacityExceeded, n, field)
		}
	}

	if li >= 0 {
		l := n.links[li]
		l.To.backlinks[l.Slot] = Backlink{}
		n.links[li] = Link{}
	}
	if !v.IsRef() {
		return nil
	}
	if li < 0 {
		li = n.freeLink()
	}
	v.node.backlinks[slot] = Backlink{From: n, Field: field}
	n.links[li] = Link{To: v.node, Field: field, Slot: slot}
	return nil
}
