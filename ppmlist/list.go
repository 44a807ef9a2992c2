// Package ppmlist is a circular doubly linked list built on ppm nodes. Every
// operation returns a Snapshot that keeps reading the list exactly as it was
// when the operation finished.
package ppmlist

import (
	"errors"
	"fmt"

	"github.com/forestrie/go-persistent/ppm"
)

const (
	FieldPrev = "prev"
	FieldNext = "next"
)

var (
	ErrEmptyList   = errors.New("ppmlist: list is empty")
	ErrCorruptList = errors.New("ppmlist: list structure is corrupt")
)

// List is a sentinel based circular list. The sentinel's prev and next point
// at itself when the list is empty. Elements need two link slots each way, so
// the context must allow at least two links per node.
type List struct {
	ctx  *ppm.Context
	root *ppm.Node
}

// New creates an empty list whose sentinel lives in ctx.
func New(ctx *ppm.Context) (*List, error) {
	if ctx.MaxLinks() < 2 {
		return nil, fmt.Errorf("%w: a list needs maxLinks >= 2, got %d", ppm.ErrInvalidConfig, ctx.MaxLinks())
	}
	l := &List{ctx: ctx, root: ctx.NewNode("root")}
	root := ppm.Acquire(l.root)
	defer root.Release()
	if _, err := root.SetField(FieldPrev, ppm.Ref(root.Node())); err != nil {
		return nil, err
	}
	if _, err := root.SetField(FieldNext, ppm.Ref(root.Node())); err != nil {
		return nil, err
	}
	l.root = root.Node()
	return l, nil
}

// Root returns the sentinel's current instance.
func (l *List) Root() *ppm.Node {
	l.root = l.root.Latest()
	return l.root
}

// Snapshot returns the list as of the context's current version.
func (l *List) Snapshot() Snapshot {
	return Snapshot{root: l.Root(), version: l.ctx.Version()}
}

// PushBack links n in front of the sentinel.
func (l *List) PushBack(n *ppm.Node) (Snapshot, error) {
	return l.insert(n, FieldPrev)
}

// PushFront links n behind the sentinel.
func (l *List) PushFront(n *ppm.Node) (Snapshot, error) {
	return l.insert(n, FieldNext)
}

// PopBack unlinks the last element. The returned revision reads the removed
// node as it was just before it was unlinked.
func (l *List) PopBack() (ppm.Revision, Snapshot, error) {
	return l.remove(FieldPrev)
}

// PopFront unlinks the first element.
func (l *List) PopFront() (ppm.Revision, Snapshot, error) {
	return l.remove(FieldNext)
}

func opposite(dir string) string {
	if dir == FieldPrev {
		return FieldNext
	}
	return FieldPrev
}

// insert places n between the sentinel and its neighbour in direction dir.
// For PushBack dir is prev: the sentinel's prev neighbour gets n as next.
func (l *List) insert(n *ppm.Node, dir string) (Snapshot, error) {
	back := opposite(dir)

	root := ppm.Acquire(l.Root())
	defer root.Release()
	node := ppm.Acquire(n)
	defer node.Release()

	nv, err := root.Current(dir)
	if err != nil {
		return Snapshot{}, err
	}
	if !nv.IsRef() {
		return Snapshot{}, fmt.Errorf("%w: sentinel %s is %v", ErrCorruptList, dir, nv)
	}
	neighbour := ppm.Acquire(nv.Node())
	defer neighbour.Release()

	if _, err = neighbour.SetField(back, ppm.Ref(node.Node())); err != nil {
		return Snapshot{}, err
	}
	if _, err = root.SetField(dir, ppm.Ref(node.Node())); err != nil {
		return Snapshot{}, err
	}
	if _, err = node.SetField(dir, ppm.Ref(neighbour.Node())); err != nil {
		return Snapshot{}, err
	}
	if _, err = node.SetField(back, ppm.Ref(root.Node())); err != nil {
		return Snapshot{}, err
	}

	l.root = root.Node()
	return l.Snapshot(), nil
}

// remove unlinks the sentinel's neighbour in direction dir.
func (l *List) remove(dir string) (ppm.Revision, Snapshot, error) {
	back := opposite(dir)
	start := l.ctx.Version()

	root := ppm.Acquire(l.Root())
	defer root.Release()

	nv, err := root.Current(dir)
	if err != nil {
		return ppm.Revision{}, Snapshot{}, err
	}
	if !nv.IsRef() {
		return ppm.Revision{}, Snapshot{}, fmt.Errorf("%w: sentinel %s is %v", ErrCorruptList, dir, nv)
	}
	if nv.Node() == root.Node() {
		return ppm.Revision{}, Snapshot{}, ErrEmptyList
	}
	node := ppm.Acquire(nv.Node())
	defer node.Release()
	removed := ppm.NewRevision(node.Node(), start)

	bv, err := node.Current(dir)
	if err != nil {
		return ppm.Revision{}, Snapshot{}, err
	}
	if !bv.IsRef() {
		return ppm.Revision{}, Snapshot{}, fmt.Errorf("%w: %s.%s is %v", ErrCorruptList, node.Node(), dir, bv)
	}
	beyond := ppm.Acquire(bv.Node())
	defer beyond.Release()

	if _, err = node.SetField(FieldPrev, ppm.Nil()); err != nil {
		return ppm.Revision{}, Snapshot{}, err
	}
	if _, err = node.SetField(FieldNext, ppm.Nil()); err != nil {
		return ppm.Revision{}, Snapshot{}, err
	}
	if _, err = beyond.SetField(back, ppm.Ref(root.Node())); err != nil {
		return ppm.Revision{}, Snapshot{}, err
	}
	if _, err = root.SetField(dir, ppm.Ref(beyond.Node())); err != nil {
		return ppm.Revision{}, Snapshot{}, err
	}

	l.root = root.Node()
	return removed, l.Snapshot(), nil
}
