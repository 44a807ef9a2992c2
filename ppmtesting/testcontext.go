package ppmtesting

import (
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-persistent/ppm"
	"github.com/stretchr/testify/require"
)

type TestContext struct {
	Log logger.Logger
	Ctx *ppm.Context
	T   *testing.T
}

type TestConfig struct {
	MaxLinks int
	// MaxMods of 0 takes the context default.
	MaxMods         int
	TestLabelPrefix string
	Observers       []ppm.WriteObserver
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	t.Helper()
	c := TestContext{
		T: t,
	}
	logger.New("NOOP")
	label := cfg.TestLabelPrefix
	if label == "" {
		label = t.Name()
	}
	c.Log = logger.Sugar.WithServiceName(label)

	opts := []ppm.Option{ppm.WithLogger(c.Log)}
	if cfg.MaxMods != 0 {
		opts = append(opts, ppm.WithMaxMods(cfg.MaxMods))
	}
	for _, o := range cfg.Observers {
		opts = append(opts, ppm.WithObserver(o))
	}

	var err error
	c.Ctx, err = ppm.NewContext(cfg.MaxLinks, opts...)
	require.NoError(t, err)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// NewValueNode creates a node with its "value" field set to value.
func (c *TestContext) NewValueNode(value int) *ppm.Node {
	c.T.Helper()
	n := c.Ctx.NewNode("node")
	_, err := n.SetField("value", ppm.Scalar(value))
	require.NoError(c.T, err)
	return n
}

// RequireConsistent verifies the latest instance of every node.
func (c *TestContext) RequireConsistent(nodes ...*ppm.Node) {
	c.T.Helper()
	latest := make([]*ppm.Node, 0, len(nodes))
	for _, n := range nodes {
		latest = append(latest, n.Latest())
	}
	require.NoError(c.T, ppm.Verify(latest...))
}

// Origin returns the first instance of n's clone chain.
func Origin(n *ppm.Node) *ppm.Node {
	for n.Predecessor() != nil {
		n = n.Predecessor()
	}
	return n
}
