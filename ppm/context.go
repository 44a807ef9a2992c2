package ppm

import (
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
)

type Options struct {
	// MaxMods bounds the modification log of every node. Zero selects the
	// default of 2 * MaxLinks.
	MaxMods int

	Log       logger.Logger
	Observers []WriteObserver
}

type Option func(*Options)

func WithMaxMods(maxMods int) Option {
	return func(o *Options) {
		o.MaxMods = maxMods
	}
}

// WithLogger sets the logger used for cascade diagnostics. A nil logger (the
// default) disables logging.
func WithLogger(log logger.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}

// WithObserver adds an observer notified of every versioned write.
func WithObserver(obs WriteObserver) Option {
	return func(o *Options) {
		if obs != nil {
			o.Observers = append(o.Observers, obs)
		}
	}
}

// Context is the version authority shared by every node of one machine. It
// owns the fan-in/fan-out bound and the modification log bound, both fixed at
// construction.
//
// A Context is not go routine safe. See the package documentation.
type Context struct {
	id       uuid.UUID
	maxLinks int
	maxMods  int

	version Version
	nodes   uint64

	clones   uint64
	cascades uint64

	log       logger.Logger
	observers []WriteObserver
}

// NewContext creates a machine whose nodes have at most maxLinks outgoing and
// at most maxLinks incoming pointer edges.
func NewContext(maxLinks int, opts ...Option) (*Context, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if maxLinks < 1 {
		return nil, fmt.Errorf("%w: maxLinks must be >= 1, got %d", ErrInvalidConfig, maxLinks)
	}
	if o.MaxMods == 0 {
		o.MaxMods = 2 * maxLinks
	}
	if o.MaxMods <= maxLinks {
		return nil, fmt.Errorf(
			"%w: maxMods (%d) must exceed maxLinks (%d)", ErrInvalidConfig, o.MaxMods, maxLinks)
	}
	c := &Context{
		id:        uuid.New(),
		maxLinks:  maxLinks,
		maxMods:   o.MaxMods,
		log:       o.Log,
		observers: o.Observers,
	}
	c.debugf("ppm context %s: maxLinks=%d maxMods=%d", c.id, c.maxLinks, c.maxMods)
	return c, nil
}

func (c *Context) ID() uuid.UUID { return c.id }
func (c *Context) MaxLinks() int { return c.maxLinks }
func (c *Context) MaxMods() int { return c.maxMods }

// Version returns the most recently issued version, 0 before the first write.
func (c *Context) Version() Version { return c.version }

// NextVersion issues the next version. It is called exactly once per field
// write.
func (c *Context) NextVersion() Version {
	c.version++
	return c.version
}

func (c *Context) Stats() Stats {
	return Stats{
		Versions: c.version,
		Nodes:    c.nodes,
		Clones:   c.clones,
		Cascades: c.cascades,
	}
}

// NewNode creates a node with no fields. The name is only used for
// diagnostics.
func (c *Context) NewNode(name string) *Node {
	c.nodes++
	return &Node{
		ctx:       c,
		id:        c.nodes,
		name:      name,
		born:      c.version,
		base:      make(map[string]Value),
		mods:      make([]Mod, 0, c.maxMods),
		links:     make([]Link, c.maxLinks),
		backlinks: make([]Backlink, c.maxLinks),
	}
}

func (c *Context) notify(e WriteEvent) {
	for _, obs := range c.observers {
		obs.ObserveWrite(e)
	}
}

func (c *Context) debugf(format string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.Debugf(format, args...)
}
