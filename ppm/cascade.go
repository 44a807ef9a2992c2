package ppm

import (
	"fmt"
)

// write records one field write and, when it overflows a log, runs the
// cascade until every predecessor of every frozen node points at that
// node's latest instance.
//
// The cascade is a worklist of frozen nodes whose predecessors still need
// retargeting. A retarget that finds the predecessor's field no longer
// referencing the frozen node is skipped, which is what terminates self
// loops and cycles.
func (c *Context) write(n *Node, field string, v Value) (Revision, error) {
	version, clone, err := c.record(n, field, v)
	if err != nil {
		return Revision{}, err
	}
	if clone == nil {
		return Revision{node: n, version: version}, nil
	}

	c.cascades++
	retargets := 0
	pending := []*Node{n}
	for len(pending) > 0 {
		old := pending[0]
		pending = pending[1:]

		for i := range old.backlinks {
			b := old.backlinks[i]
			if !b.Occupied() {
				continue
			}
			pred := b.From.Latest()
			cur, _ := pred.Current(b.Field)
			if !cur.refersTo(old) {
				continue
			}
			_, next, err := c.record(pred, b.Field, Ref(old.Latest()))
			if err != nil {
				return Revision{}, fmt.Errorf("retargeting %s.%s from %s: %w", pred, b.Field, old, err)
			}
			retargets++
			if next != nil {
				pending = append(pending, pred)
			}
		}
	}
	c.debugf("ppm cascade: %s -> %s at v%d, %d retargets, now v%d",
		n, clone, version, retargets, c.version)

	return Revision{node: clone, version: version}, nil
}

// record appends a single write to n, cloning n instead when its log is full.
// The clone, if any, is returned; its predecessors are not yet retargeted.
func (c *Context) record(n *Node, field string, v Value) (Version, *Node, error) {
	if n.frozen {
		return 0, nil, fmt.Errorf("%w: %s (write %s via %s)", ErrFrozenNode, n, field, n.Latest())
	}
	if v.IsRef() {
		v = Ref(v.node.Latest())
	}

	old, _ := n.Current(field)
	if err := n.relink(field, old, v); err != nil {
		return 0, nil, err
	}

	version := c.NextVersion()
	m := Mod{Field: field, Value: v, Version: version}
	if len(n.mods) < c.maxMods {
		n.mods = append(n.mods, m)
		c.notify(WriteEvent{Node: n, Mod: m})
		return version, nil, nil
	}

	clone := c.clone(n, m)
	c.notify(WriteEvent{Node: clone, Mod: m, Clone: true})
	return version, clone, nil
}

// clone freezes n and creates its successor. The successor's base map is n's
// flattened state with m applied on top, its log is empty, and it takes over
// n's outgoing links and registered holders.
func (c *Context) clone(n *Node, m Mod) *Node {
	clone := c.NewNode(n.name)
	clone.gen = n.gen + 1
	clone.born = m.Version
	clone.prior = n
	clone.base = n.fieldsAt(LatestVersion)
	clone.base[m.Field] = m.Value

	n.frozen = true
	n.next = clone

	for h := range n.holders {
		h.node = clone
		clone.registerHolder(h)
	}
	n.holders = nil

	// The edges keep their targets; only the owner of the forward half moves.
	copy(clone.links, n.links)
	for i := range n.links {
		n.links[i] = Link{}
	}
	for _, l := range clone.links {
		if l.Occupied() {
			l.To.backlinks[l.Slot].From = clone
		}
	}

	c.clones++
	c.debugf("ppm clone: %s frozen at v%d with %d mods, successor %s", n, m.Version, len(n.mods), clone)
	return clone
}
