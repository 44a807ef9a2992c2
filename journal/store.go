package journal

import (
	"fmt"
)

// memStore is an append only node store satisfying mmr.NodeAppender.
type memStore struct {
	nodes [][]byte
}

func (s *memStore) Get(i uint64) ([]byte, error) {
	if i >= uint64(len(s.nodes)) {
		return nil, fmt.Errorf("%w: mmr index %d, size %d", ErrIndexOutOfRange, i, len(s.nodes))
	}
	return s.nodes[i], nil
}

// Append adds value and returns the new size, which is also the index of the
// next node.
func (s *memStore) Append(value []byte) (uint64, error) {
	s.nodes = append(s.nodes, value)
	return uint64(len(s.nodes)), nil
}

func (s *memStore) size() uint64 { return uint64(len(s.nodes)) }
