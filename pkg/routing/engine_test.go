package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadnet/pkg/graph"
	"roadnet/pkg/network"
	"roadnet/pkg/network/networktest"
)

func roadEngine(t *testing.T, n *network.Network) *Engine {
	t.Helper()
	return NewEngine(graph.Build(n.State(), graph.RoadOptions()))
}

func TestShortestPathReference(t *testing.T) {
	e := roadEngine(t, networktest.Reference(t))

	path, ok, err := e.ShortestPath(context.Background(), 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []network.ID{3, 4, 5}, path.Vertices)
	assert.Equal(t, 19.0, path.Length)

	require.Len(t, path.Hops, 2)
	assert.Equal(t, Hop{From: 3, To: 4, Kind: graph.RoadEdge, Ref: 4, Weight: 12}, path.Hops[0])
	assert.Equal(t, Hop{From: 4, To: 5, Kind: graph.RoadEdge, Ref: 5, Weight: 7}, path.Hops[1])

	length, ok, err := e.ShortestPathLength(context.Background(), 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path.Length, length)
}

func TestShortestPathSameVertex(t *testing.T) {
	e := roadEngine(t, networktest.Reference(t))

	for _, v := range []network.ID{1, 3, 5} {
		path, ok, err := e.ShortestPath(context.Background(), v, v)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []network.ID{v}, path.Vertices)
		assert.Empty(t, path.Hops)
		assert.Zero(t, path.Length)

		length, ok, err := e.ShortestPathLength(context.Background(), v, v)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, length)
	}
}

func TestShortestPathDisconnected(t *testing.T) {
	e := roadEngine(t, networktest.Split(t))

	path, ok, err := e.ShortestPath(context.Background(), 10, 30)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, path.Vertices)

	length, ok, err := e.ShortestPathLength(context.Background(), 40, 20)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, length)
}

func TestShortestPathUnknownVertex(t *testing.T) {
	e := roadEngine(t, networktest.Reference(t))

	_, _, err := e.ShortestPath(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrUnknownVertex)

	_, _, err = e.ShortestPathLength(context.Background(), 99, 1)
	require.ErrorIs(t, err, ErrUnknownVertex)
}

func TestShortestPathDirected(t *testing.T) {
	n := networktest.Reference(t)
	e := NewEngine(graph.Build(n.State(), graph.Options{Directed: true}))

	path, ok, err := e.ShortestPath(context.Background(), 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []network.ID{3, 4, 5}, path.Vertices)

	_, ok, err = e.ShortestPath(context.Background(), 5, 3)
	require.NoError(t, err)
	assert.False(t, ok, "intersection 5 has no outgoing road in the directed view")
}

func TestShortestPathTieBreakIsDeterministic(t *testing.T) {
	n := network.New()
	n.RegisterIntersection(1)
	n.RegisterIntersection(2)
	require.NoError(t, n.CreateRoadWithID(20, "North", 5))
	require.NoError(t, n.CreateRoadWithID(10, "South", 5))
	for _, c := range [][2]network.ID{{1, 20}, {1, 10}, {2, 20}, {2, 10}} {
		require.NoError(t, n.ConnectIntersectionToRoad(c[0], c[1]))
	}
	e := roadEngine(t, n)

	for range 10 {
		path, ok, err := e.ShortestPath(context.Background(), 1, 2)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []network.ID{1, 10, 2}, path.Vertices)
		assert.Equal(t, 10.0, path.Length)
	}
}

func TestShortestPathContext(t *testing.T) {
	e := roadEngine(t, networktest.Reference(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := e.ShortestPath(ctx, 3, 5)
	require.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, _, err = e.ShortestPathLength(ctx, 3, 5)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShortestPathCancelledMidSearch(t *testing.T) {
	// A long chain forces more than ctxCheckInterval settled vertices.
	n := network.New(network.WithFirstRoadID(10_000))
	const length = 500
	for i := network.ID(1); i <= length; i++ {
		n.RegisterIntersection(i)
	}
	for i := network.ID(1); i < length; i++ {
		road, err := n.CreateRoad("link", 1)
		require.NoError(t, err)
		require.NoError(t, n.ConnectIntersectionToRoad(i, road))
		require.NoError(t, n.ConnectIntersectionToRoad(i+1, road))
	}
	e := roadEngine(t, n)

	_, ok, err := e.ShortestPath(context.Background(), 1, length)
	require.NoError(t, err)
	require.True(t, ok)

	ctx := &cancelAfter{Context: context.Background(), calls: 2}
	_, _, err = e.ShortestPath(ctx, 1, length)
	require.ErrorIs(t, err, context.Canceled)
}

// cancelAfter reports cancellation once Err has been called more than calls times.
type cancelAfter struct {
	context.Context
	calls int
}

func (c *cancelAfter) Err() error {
	if c.calls <= 0 {
		return context.Canceled
	}
	c.calls--
	return nil
}
