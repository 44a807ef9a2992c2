package ppm

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeRetargetsPredecessorAcrossManyClones(t *testing.T) {
	c := newTestContext(t, 1, WithMaxMods(2))
	a := c.NewNode("a")
	b := c.NewNode("b")

	first := mustSet(t, a, "friend", Ref(b))
	for i := 0; i < 7; i++ {
		mustSet(t, b, "x", Scalar(i))
	}
	require.GreaterOrEqual(t, c.Stats().Clones, uint64(3))

	friend, err := Latest(a).Follow("friend")
	require.NoError(t, err)
	assert.Same(t, b.Latest(), friend.Node())
	assert.False(t, friend.Node().Frozen())
	assert.Equal(t, 6, mustGet(t, friend, "x").Scalar())

	// the first revision still resolves to the original b
	early, err := first.Follow("friend")
	require.NoError(t, err)
	assert.Same(t, b, early.Node())
	_, err = early.GetField("x")
	require.ErrorIs(t, err, ErrMissingField)

	require.NoError(t, Verify(a.Latest(), b.Latest()))
}

func TestCascadePredecessorViewAroundCloneVersion(t *testing.T) {
	c := newTestContext(t, 1, WithMaxMods(2))
	a := c.NewNode("a")
	b := c.NewNode("b")

	mustSet(t, a, "friend", Ref(b))
	mustSet(t, b, "x", Scalar(1))
	mustSet(t, b, "x", Scalar(2))
	cloned := mustSet(t, b, "x", Scalar(3))
	require.True(t, b.Frozen())

	for v := Version(1); v <= c.Version(); v++ {
		friend, err := NewRevision(a, v).Follow("friend")
		require.NoError(t, err)
		if v < cloned.Version() {
			assert.Same(t, b, friend.Node(), "v%d", v)
		} else {
			assert.Same(t, b.Latest(), friend.Node(), "v%d", v)
		}
	}
}

func TestCascadeSelfLoopTerminates(t *testing.T) {
	c := newTestContext(t, 2)
	root := c.NewNode("root")

	mustSet(t, root, "prev", Ref(root))
	mustSet(t, root, "next", Ref(root))
	before := mustSet(t, root, "x", Scalar(1))
	mustSet(t, root, "x", Scalar(2))
	mustSet(t, root, "x", Scalar(3))

	require.True(t, root.Frozen())
	latest := root.Latest()
	for _, field := range []string{"prev", "next"} {
		v, ok := latest.Current(field)
		require.True(t, ok)
		assert.Same(t, latest, v.Node(), field)
	}
	require.NoError(t, Verify(root, latest))

	// history before the clone still loops through the original
	self, err := before.Follow("next")
	require.NoError(t, err)
	assert.Same(t, root, self.Node())

	now, err := Latest(root).Follow("prev")
	require.NoError(t, err)
	assert.Same(t, latest, now.Node())
}

func TestCascadeTwoNodeCycle(t *testing.T) {
	c := newTestContext(t, 2, WithMaxMods(3))
	a := c.NewNode("a")
	b := c.NewNode("b")

	mustSet(t, a, "peer", Ref(b))
	mustSet(t, b, "peer", Ref(a))
	for i := 0; i < 20; i++ {
		mustSet(t, a, "x", Scalar(i))
		mustSet(t, b, "x", Scalar(-i))
		require.NoError(t, Verify(a.Latest(), b.Latest()))
	}

	peer, err := Latest(a).Follow("peer")
	require.NoError(t, err)
	assert.Same(t, b.Latest(), peer.Node())
	back, err := peer.Follow("peer")
	require.NoError(t, err)
	assert.Same(t, a.Latest(), back.Node())
	assert.Equal(t, -19, mustGet(t, peer, "x").Scalar())
}

func TestVersionsAreMonotonicAndObserved(t *testing.T) {
	rec := &eventRecorder{}
	c := newTestContext(t, 1, WithMaxMods(2), WithObserver(rec))
	a := c.NewNode("a")
	b := c.NewNode("b")

	mustSet(t, a, "friend", Ref(b))
	var last Version
	for i := 0; i < 10; i++ {
		rev := mustSet(t, b, "x", Scalar(i))
		require.Greater(t, rev.Version(), last)
		last = rev.Version()
	}

	require.Len(t, rec.events, int(c.Version()))
	clones := 0
	for i, e := range rec.events {
		assert.Equal(t, Version(i+1), e.Mod.Version)
		if e.Clone {
			clones++
			assert.Equal(t, e.Mod.Version, e.Node.Born())
		}
	}
	assert.Equal(t, int(c.Stats().Clones), clones)
	assert.Equal(t, c.Version(), c.Stats().Versions)
}

// TestRandomGraphHistory drives random scalar and pointer writes over a small
// graph and checks that every recorded version still reads back exactly as
// it was written.
func TestRandomGraphHistory(t *testing.T) {
	const (
		nodeCount = 6
		ops       = 600
		maxLinks  = 3
	)
	fields := []string{"a", "b", "c", "d"}

	c := newTestContext(t, maxLinks, WithMaxMods(maxLinks+1))
	rnd := rand.New(rand.NewSource(0))

	nodes := make([]*Node, nodeCount)
	index := make(map[*Node]int)
	for i := range nodes {
		nodes[i] = c.NewNode(fmt.Sprintf("n%d", i))
		index[nodes[i]] = i
	}

	// model[v][i][field] is the expected value of field on node i at v. Refs
	// are recorded as the logical node index, scalars as "s<int>".
	type state []map[string]string
	current := make(state, nodeCount)
	for i := range current {
		current[i] = map[string]string{}
	}
	snapshot := func() state {
		s := make(state, nodeCount)
		for i, m := range current {
			s[i] = make(map[string]string, len(m))
			for k, v := range m {
				s[i][k] = v
			}
		}
		return s
	}
	model := map[Version]state{}

	for op := 0; op < ops; op++ {
		i := rnd.Intn(nodeCount)
		field := fields[rnd.Intn(len(fields))]
		switch rnd.Intn(3) {
		case 0:
			j := rnd.Intn(nodeCount)
			_, err := nodes[i].Latest().SetField(field, Ref(nodes[j]))
			if errors.Is(err, ErrLinkCapacityExceeded) {
				continue
			}
			require.NoError(t, err)
			current[i][field] = fmt.Sprintf("n%d", j)
		case 1:
			x := rnd.Intn(1000)
			mustSet(t, nodes[i], field, Scalar(x))
			current[i][field] = fmt.Sprintf("s%d", x)
		default:
			if _, ok := current[i][field]; !ok {
				continue
			}
			mustSet(t, nodes[i], field, Nil())
			current[i][field] = "nil"
		}
		model[c.Version()] = snapshot()

		latest := make([]*Node, nodeCount)
		for k, n := range nodes {
			latest[k] = n.Latest()
			require.LessOrEqual(t, latest[k].LinkCount(), maxLinks)
			require.LessOrEqual(t, latest[k].BacklinkCount(), maxLinks)
		}
		require.NoError(t, Verify(latest...), "op %d", op)
	}
	require.Greater(t, c.Stats().Cascades, uint64(0))

	render := func(v Value) string {
		switch {
		case v.IsRef():
			return fmt.Sprintf("n%d", index[origin(v.Node())])
		case v.IsNil():
			return "nil"
		default:
			return fmt.Sprintf("s%d", v.Scalar())
		}
	}

	for v, want := range model {
		for i, n := range nodes {
			rev := NewRevision(n, v)
			got := map[string]string{}
			for k, val := range rev.Fields() {
				got[k] = render(val)
			}
			require.Equal(t, want[i], got, "node %d at v%d", i, v)
		}
	}
}
