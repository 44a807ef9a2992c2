package ppm

import (
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	events []WriteEvent
}

func (r *eventRecorder) ObserveWrite(e WriteEvent) {
	r.events = append(r.events, e)
}

func newTestContext(t *testing.T, maxLinks int, opts ...Option) *Context {
	t.Helper()
	logger.New("NOOP")
	opts = append([]Option{WithLogger(logger.Sugar.WithServiceName(t.Name()))}, opts...)
	c, err := NewContext(maxLinks, opts...)
	require.NoError(t, err)
	return c
}

// origin returns the first instance of n's clone chain, used as a stable
// identity for a logical node.
func origin(n *Node) *Node {
	for n.prior != nil {
		n = n.prior
	}
	return n
}

func mustSet(t *testing.T, n *Node, field string, v Value) Revision {
	t.Helper()
	rev, err := n.Latest().SetField(field, v)
	require.NoError(t, err)
	return rev
}

func mustGet(t *testing.T, r Revision, field string) Value {
	t.Helper()
	v, err := r.GetField(field)
	require.NoError(t, err)
	return v
}
