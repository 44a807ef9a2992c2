package ppmlist

import (
	"fmt"
	"iter"

	"github.com/forestrie/go-persistent/ppm"
)

// Snapshot reads a list as it was at one version. It stays valid however the
// list is changed afterwards.
type Snapshot struct {
	root    *ppm.Node
	version ppm.Version
}

func (s Snapshot) Version() ppm.Version { return s.version }

// Root returns a handle on the sentinel at the snapshot's version.
func (s Snapshot) Root() ppm.Revision { return ppm.NewRevision(s.root, s.version) }

// All yields the elements front to back. The walk is lazy; it stops with
// ErrCorruptList if the next chain runs longer than the number of versions
// that could have built it.
func (s Snapshot) All() iter.Seq2[ppm.Revision, error] {
	return func(yield func(ppm.Revision, error) bool) {
		if s.root == nil {
			return
		}
		root := s.Root()
		sentinel := root.Node()
		cur, err := root.Follow(FieldNext)
		for steps := uint64(0); ; steps++ {
			if err != nil {
				yield(ppm.Revision{}, err)
				return
			}
			if cur.Node() == sentinel {
				return
			}
			if steps >= uint64(s.version) {
				yield(ppm.Revision{}, fmt.Errorf("%w: more than %d elements at v%d", ErrCorruptList, steps, s.version))
				return
			}
			if !yield(cur, nil) {
				return
			}
			cur, err = cur.Follow(FieldNext)
		}
	}
}

// Nodes collects All into a slice.
func (s Snapshot) Nodes() ([]ppm.Revision, error) {
	var out []ppm.Revision
	for r, err := range s.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s Snapshot) Len() (int, error) {
	nodes, err := s.Nodes()
	return len(nodes), err
}

// Values returns field for every element, front to back.
func (s Snapshot) Values(field string) ([]ppm.Value, error) {
	var out []ppm.Value
	for r, err := range s.All() {
		if err != nil {
			return nil, err
		}
		v, err := r.GetField(field)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
