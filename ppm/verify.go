package ppm

import "fmt"

// Verify checks the edge bookkeeping of the given node instances against
// their latest state:
//
//   - every occupied Link (to, field, slot) is mirrored by to's Backlink at
//     slot and the field currently holds Ref(to)
//   - every occupied Backlink (from, field) is mirrored by a Link on from
//   - the occupied Link count equals the number of fields holding a Ref
//   - a frozen instance carries no edges once its cascade completed
//
// Verify only reads. It is intended for tests and diagnostics.
func Verify(nodes ...*Node) error {
	for _, n := range nodes {
		if err := verifyNode(n); err != nil {
			return err
		}
	}
	return nil
}

func verifyNode(n *Node) error {
	if len(n.links) != n.ctx.maxLinks || len(n.backlinks) != n.ctx.maxLinks {
		return fmt.Errorf("%w: %s has %d links and %d backlinks for maxLinks %d",
			ErrBrokenLink, n, len(n.links), len(n.backlinks), n.ctx.maxLinks)
	}

	if n.frozen {
		if n.LinkCount() != 0 || n.BacklinkCount() != 0 {
			return fmt.Errorf("%w: %s has %d links and %d backlinks",
				ErrStaleFrozenNode, n, n.LinkCount(), n.BacklinkCount())
		}
		return nil
	}

	for i, l := range n.links {
		if !l.Occupied() {
			continue
		}
		if l.Slot < 0 || l.Slot >= len(l.To.backlinks) {
			return fmt.Errorf("%w: %s link %d slot %d out of range", ErrBrokenLink, n, i, l.Slot)
		}
		b := l.To.backlinks[l.Slot]
		if b.From != n || b.Field != l.Field {
			return fmt.Errorf("%w: %s.%s -> %s slot %d mirrored by (%s, %s)",
				ErrBrokenLink, n, l.Field, l.To, l.Slot, b.From, b.Field)
		}
		cur, _ := n.Current(l.Field)
		if !cur.refersTo(l.To) {
			return fmt.Errorf("%w: %s.%s links %s but holds %v",
				ErrBrokenLink, n, l.Field, l.To, cur)
		}
	}

	for i, b := range n.backlinks {
		if !b.Occupied() {
			continue
		}
		li := b.From.linkIndex(b.Field)
		if li < 0 {
			return fmt.Errorf("%w: %s backlink %d from %s.%s has no link",
				ErrBrokenLink, n, i, b.From, b.Field)
		}
		l := b.From.links[li]
		if l.To != n || l.Slot != i {
			return fmt.Errorf("%w: %s backlink %d from %s.%s but link is (%s, %d)",
				ErrBrokenLink, n, i, b.From, b.Field, l.To, l.Slot)
		}
	}

	refs := 0
	for _, v := range n.fieldsAt(LatestVersion) {
		if v.IsRef() {
			refs++
		}
	}
	if refs != n.LinkCount() {
		return fmt.Errorf("%w: %s has %d ref fields and %d links",
			ErrLinkCountMismatch, n, refs, n.LinkCount())
	}
	return nil
}
