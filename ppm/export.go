package ppm

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// FieldRecord is the exported form of one field. Ref is the referenced
// node's id and is zero for scalars.
type FieldRecord struct {
	Ref    uint64 `cbor:"1,keyasint,omitempty"`
	Scalar any    `cbor:"2,keyasint,omitempty"`
}

// NodeRecord is the exported form of one node as read at Version.
type NodeRecord struct {
	ID         uint64                 `cbor:"1,keyasint"`
	Name       string                 `cbor:"2,keyasint"`
	Generation uint32                 `cbor:"3,keyasint"`
	Version    uint64                 `cbor:"4,keyasint"`
	Fields     map[string]FieldRecord `cbor:"5,keyasint"`
}

// GraphRecord is every node reachable from Root at Version, ordered by id.
type GraphRecord struct {
	Version uint64       `cbor:"1,keyasint"`
	Root    uint64       `cbor:"2,keyasint"`
	Nodes   []NodeRecord `cbor:"3,keyasint"`
}

var (
	exportEncMode cbor.EncMode
	exportDecMode cbor.DecMode
)

func init() {
	var err error
	if exportEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if exportDecMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// Record returns the exported form of the revision.
func (r Revision) Record() NodeRecord {
	n := r.Node()
	rec := NodeRecord{
		ID:         n.id,
		Name:       n.name,
		Generation: n.gen,
		Version:    uint64(r.version),
		Fields:     make(map[string]FieldRecord),
	}
	for k, v := range r.Fields() {
		rec.Fields[k] = fieldRecord(v)
	}
	return rec
}

func fieldRecord(v Value) FieldRecord {
	if v.IsRef() {
		return FieldRecord{Ref: v.node.id}
	}
	return FieldRecord{Scalar: v.scalar}
}

// EncodeValue returns the deterministic CBOR form of a single value. Refs
// encode as the id of the referenced instance.
func EncodeValue(v Value) ([]byte, error) {
	return exportEncMode.Marshal(fieldRecord(v))
}

// Walk calls fn for the revision and every node reachable from it through
// Ref fields, read at the revision's version. Each node instance is visited
// once, breadth first. Walk stops at the first error fn returns.
func Walk(r Revision, fn func(Revision) error) error {
	seen := map[*Node]bool{r.Node(): true}
	queue := []Revision{r}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if err := fn(cur); err != nil {
			return err
		}
		fields := cur.Fields()
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			v := fields[k]
			if !v.IsRef() || seen[v.node] {
				continue
			}
			seen[v.node] = true
			queue = append(queue, NewRevision(v.node, r.version))
		}
	}
	return nil
}

// EncodeRevision renders a single revision as deterministic CBOR.
func EncodeRevision(r Revision) ([]byte, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("%w: cannot encode a zero revision", ErrMissingField)
	}
	return exportEncMode.Marshal(r.Record())
}

// EncodeGraph renders every node reachable from r as deterministic CBOR.
func EncodeGraph(r Revision) ([]byte, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("%w: cannot encode a zero revision", ErrMissingField)
	}
	g := GraphRecord{Version: uint64(r.version), Root: r.Node().id}
	err := Walk(r, func(rev Revision) error {
		g.Nodes = append(g.Nodes, rev.Record())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	return exportEncMode.Marshal(g)
}

func DecodeNodeRecord(data []byte) (NodeRecord, error) {
	var rec NodeRecord
	err := exportDecMode.Unmarshal(data, &rec)
	return rec, err
}

func DecodeGraphRecord(data []byte) (GraphRecord, error) {
	var g GraphRecord
	err := exportDecMode.Unmarshal(data, &g)
	return g, err
}
