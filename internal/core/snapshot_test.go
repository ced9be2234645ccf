package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/psl/internal/primitives"
)

func buildPatch(t *testing.T, r *Runtime) {
	t.Helper()
	_, err := r.Create("sq", "pow_2")
	require.NoError(t, err)
	_, err = r.Create("vol", "hypot3")
	require.NoError(t, err)
	_, err = r.Create("odd", "coulomb")
	require.NoError(t, err)
	require.NoError(t, r.Connect(Connection{From: "sq", To: "vol", Inlet: 2}))

	require.NoError(t, r.Deliver(primitives.NewFloat("vol", 1, 4)))
	require.NoError(t, r.Deliver(primitives.NewFloat("sq", 0, 3)))
	require.NoError(t, r.Deliver(primitives.NewFloat("vol", 0, 2)))
}

func TestRuntime_Snapshot(t *testing.T) {
	r := NewRuntime("patch")
	buildPatch(t, r)

	snap := r.Snapshot()
	assert.Equal(t, "patch", snap.RuntimeID)
	assert.Equal(t, uint64(1), snap.Seq)
	require.Len(t, snap.Nodes, 3)
	assert.Equal(t, NodeSnapshot{ID: "sq", Selector: "pow_2", Op: "pow_2", Primary: 3, Buffer: []float64{}}, snap.Nodes[0])
	assert.Equal(t, NodeSnapshot{ID: "vol", Selector: "hypot3", Op: "hypot3", Primary: 2, Buffer: []float64{4, 9}}, snap.Nodes[1])
	assert.Equal(t, "bessel_j0", snap.Nodes[2].Op)
	assert.Equal(t, []Connection{{From: "sq", To: "vol", Inlet: 2}}, snap.Connections)
}

func TestRuntime_RestoreRoundTrip(t *testing.T) {
	src := NewRuntime("patch")
	buildPatch(t, src)
	snap := src.Snapshot()

	pub := &recordingPublisher{}
	dst := NewRuntime("patch", WithPublisher(pub))
	_, err := dst.Create("stale", "add")
	require.NoError(t, err)
	require.NoError(t, dst.Restore(snap))

	assert.Equal(t, []string{"sq", "vol", "odd"}, dst.Nodes())
	odd, ok := dst.Node("odd")
	require.True(t, ok)
	assert.True(t, odd.Fallback())

	require.NoError(t, dst.Deliver(primitives.NewBang("vol")))
	require.Len(t, pub.outputs, 1)
	assert.InDelta(t, 10.0499, pub.outputs[0].Value, 1e-4) // sqrt(4+16+81)
	assert.Equal(t, uint64(2), pub.outputs[0].Seq)

	// restored connection still routes
	require.NoError(t, dst.Deliver(primitives.NewFloat("sq", 0, 1)))
	vol, _ := dst.Node("vol")
	assert.Equal(t, []float64{4, 1}, vol.Buffer())
}

func TestRuntime_RestoreIDMismatch(t *testing.T) {
	r := NewRuntime("a")
	err := r.Restore(RuntimeSnapshot{RuntimeID: "b"})
	assert.Error(t, err)
}

func TestRuntime_RestoreFailureLeavesRuntimeUnchanged(t *testing.T) {
	r := NewRuntime("patch")
	_, err := r.Create("keep", "add")
	require.NoError(t, err)

	bad := RuntimeSnapshot{
		RuntimeID: "patch",
		Nodes: []NodeSnapshot{
			{ID: "x", Selector: "add", Buffer: []float64{1}},
			{ID: "x", Selector: "add", Buffer: []float64{1}},
		},
	}
	assert.ErrorIs(t, r.Restore(bad), ErrNodeExists)
	assert.Equal(t, []string{"keep"}, r.Nodes())

	short := RuntimeSnapshot{
		RuntimeID: "patch",
		Nodes:     []NodeSnapshot{{ID: "y", Selector: "hypot3", Buffer: []float64{1}}},
	}
	assert.Error(t, r.Restore(short))
	assert.Equal(t, []string{"keep"}, r.Nodes())
}

func TestRuntime_SaveLoad(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}

	src := NewRuntime("patch", WithPersister(p))
	buildPatch(t, src)
	require.NoError(t, src.Save(ctx))

	dst := NewRuntime("patch", WithPersister(p))
	require.NoError(t, dst.Load(ctx))
	assert.Equal(t, src.Nodes(), dst.Nodes())

	other := NewRuntime("other", WithPersister(p))
	assert.Error(t, other.Load(ctx))

	bare := NewRuntime("patch")
	assert.ErrorIs(t, bare.Save(ctx), ErrNoPersister)
	assert.ErrorIs(t, bare.Load(ctx), ErrNoPersister)
}
