package ppm

import "errors"

// Version identifies one field write. Version 0 is the state before any
// write; the first write is version 1.
type Version uint64

// LatestVersion reads the most recent state of a node.
const LatestVersion = ^Version(0)

var (
	ErrInvalidConfig        = errors.New("ppm: invalid context configuration")
	ErrFrozenNode           = errors.New("ppm: node is frozen")
	ErrLinkCapacityExceeded = errors.New("ppm: link capacity exceeded")
	ErrMissingField         = errors.New("ppm: field not set at version")
	ErrNotARef              = errors.New("ppm: field does not hold a node reference")
	ErrReleasedHolder       = errors.New("ppm: holder was released")

	ErrBrokenLink        = errors.New("ppm: link and backlink disagree")
	ErrLinkCountMismatch = errors.New("ppm: occupied links do not match ref fields")
	ErrStaleFrozenNode   = errors.New("ppm: frozen node still carries edges")
)

// Mod is one entry in a node's modification log.
type Mod struct {
	Field   string
	Value   Value
	Version Version
}

// Link is the forward half of a pointer edge, recorded on the source node.
// Slot is the index of the mirroring Backlink on To.
type Link struct {
	To    *Node
	Field string
	Slot  int
}

func (l Link) Occupied() bool { return l.To != nil }

// Backlink is the reverse half of a pointer edge, recorded on the target.
type Backlink struct {
	From  *Node
	Field string
}

func (b Backlink) Occupied() bool { return b.From != nil }

// WriteEvent describes one versioned write. Node is the instance that
// recorded it: the written node, or the clone that absorbed the write when
// the node's log was full.
type WriteEvent struct {
	Node  *Node
	Mod   Mod
	Clone bool
}

// WriteObserver is notified of every versioned write, in version order.
// Observers cannot fail a write; an observer that can fail must keep its own
// error state.
type WriteObserver interface {
	ObserveWrite(e WriteEvent)
}

// Stats are cumulative counters for one Context.
type Stats struct {
	Versions Version
	Nodes    uint64
	Clones   uint64
	Cascades uint64
}
