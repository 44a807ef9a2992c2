// Package journal commits every versioned write of a ppm.Context to a merkle
// mountain range, so that any historical write can later be proven to be part
// of the history.
//
// The leaf for version v is at leaf index v-1:
//
//	H(v || node id || len(field) || field || CBOR(value))
//
// with H sha256 and integers as big endian uint64.
package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-merklelog/mmr"
	"github.com/forestrie/go-persistent/ppm"
)

var (
	ErrVersionNotJournaled = errors.New("journal: version not journaled")
	ErrVerifyFailed        = errors.New("journal: proof does not reach a current peak")
	ErrOutOfOrder          = errors.New("journal: write observed out of version order")
	ErrIndexOutOfRange     = errors.New("journal: mmr index out of range")
)

// Journal is a ppm.WriteObserver. Attach it with ppm.WithObserver when the
// context is created; it expects to see version 1 first.
type Journal struct {
	log    logger.Logger
	hasher hash.Hash
	store  memStore
	leaves uint64
	err    error
}

func New(log logger.Logger) *Journal {
	return &Journal{log: log, hasher: sha256.New()}
}

// HashWrite returns the leaf hash committing e.
func HashWrite(e ppm.WriteEvent) ([]byte, error) {
	value, err := ppm.EncodeValue(e.Mod.Value)
	if err != nil {
		return nil, fmt.Errorf("encoding %s.%s at v%d: %w", e.Node, e.Mod.Field, e.Mod.Version, err)
	}
	h := sha256.New()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(e.Mod.Version))
	h.Write(b[:])
	binary.BigEndian.PutUint64(b[:], e.Node.ID())
	h.Write(b[:])
	binary.BigEndian.PutUint64(b[:], uint64(len(e.Mod.Field)))
	h.Write(b[:])
	h.Write([]byte(e.Mod.Field))
	h.Write(value)
	return h.Sum(nil), nil
}

// ObserveWrite appends the leaf for e. Observers cannot fail a write, so the
// first failure is kept and reported by Err; later events are ignored.
func (j *Journal) ObserveWrite(e ppm.WriteEvent) {
	if j.err != nil {
		return
	}
	if uint64(e.Mod.Version) != j.leaves+1 {
		j.fail(fmt.Errorf("%w: got v%d, want v%d", ErrOutOfOrder, e.Mod.Version, j.leaves+1))
		return
	}
	leaf, err := HashWrite(e)
	if err != nil {
		j.fail(err)
		return
	}
	if _, err = mmr.AddHashedLeaf(&j.store, j.hasher, leaf); err != nil {
		j.fail(err)
		return
	}
	j.leaves++
}

func (j *Journal) fail(err error) {
	j.err = err
	if j.log != nil {
		j.log.Infof("journal stopped at leaf %d: %v", j.leaves, err)
	}
}

// Err returns the error that stopped the journal, if any.
func (j *Journal) Err() error { return j.err }

// Len returns the number of journaled writes.
func (j *Journal) Len() uint64 { return j.leaves }

// Size returns the mmr size, leaves and interior nodes.
func (j *Journal) Size() uint64 { return j.store.size() }

func (j *Journal) mmrIndex(v ppm.Version) (uint64, error) {
	if v == 0 || uint64(v) > j.leaves {
		return 0, fmt.Errorf("%w: v%d, journal has %d", ErrVersionNotJournaled, v, j.leaves)
	}
	return mmr.MMRIndex(uint64(v) - 1), nil
}

// LeafHash returns the stored leaf for version v.
func (j *Journal) LeafHash(v ppm.Version) ([]byte, error) {
	i, err := j.mmrIndex(v)
	if err != nil {
		return nil, err
	}
	return j.store.Get(i)
}

// Prove returns the inclusion path for version v against the current peaks.
func (j *Journal) Prove(v ppm.Version) ([][]byte, error) {
	i, err := j.mmrIndex(v)
	if err != nil {
		return nil, err
	}
	return mmr.InclusionProof(&j.store, j.store.size()-1, i)
}

// Peaks returns the current accumulator, highest peak first.
func (j *Journal) Peaks() ([][]byte, error) {
	var peaks [][]byte
	for _, pos := range mmr.Peaks(j.store.size()) {
		value, err := j.store.Get(pos - 1)
		if err != nil {
			return nil, err
		}
		peaks = append(peaks, value)
	}
	return peaks, nil
}

// Verify checks that leafHash, with proof, reproduces one of the current
// peaks at version v's leaf position.
func (j *Journal) Verify(v ppm.Version, leafHash []byte, proof [][]byte) (bool, error) {
	i, err := j.mmrIndex(v)
	if err != nil {
		return false, err
	}
	peaks, err := j.Peaks()
	if err != nil {
		return false, err
	}
	root := mmr.IncludedRoot(sha256.New(), i, leafHash, proof)
	for _, peak := range peaks {
		if bytes.Equal(root, peak) {
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: v%d", ErrVerifyFailed, v)
}
