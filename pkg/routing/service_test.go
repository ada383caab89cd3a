package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadnet/pkg/network"
	"roadnet/pkg/network/networktest"
)

var _ Router = (*Service)(nil)

func TestServiceRoutingSuggestions(t *testing.T) {
	svc := NewService(networktest.Reference(t), DefaultOptions())
	ctx := context.Background()

	path, ok, err := svc.FindShortestPath(ctx, 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []network.ID{3, 4, 5}, path.Vertices)
	assert.Equal(t, 19.0, path.Length)

	names, ok, err := svc.RoutingSuggestions(ctx, 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Khaleej AlArab st", "Qarm st"}, names)
}

func TestServiceSuggestionsFollowTravelledRoad(t *testing.T) {
	// Intersection 1 lists road 2 and intersection 2 lists road 1, so
	// vertices 1 and 2 are joined twice. The search takes the shorter road.
	n := network.New()
	n.RegisterIntersection(1)
	n.RegisterIntersection(2)
	require.NoError(t, n.CreateRoadWithID(1, "Short rd", 10))
	require.NoError(t, n.CreateRoadWithID(2, "Long rd", 15))
	require.NoError(t, n.ConnectIntersectionToRoad(1, 2))
	require.NoError(t, n.ConnectIntersectionToRoad(2, 1))

	svc := NewService(n, DefaultOptions())
	ctx := context.Background()

	path, ok, err := svc.FindShortestPath(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, path.Hops, 1)
	assert.Equal(t, network.ID(1), path.Hops[0].Ref)
	assert.Equal(t, 10.0, path.Length)

	names, ok, err := svc.RoutingSuggestions(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Short rd"}, names)
}

func TestServiceNoRoute(t *testing.T) {
	svc := NewService(networktest.Split(t), DefaultOptions())
	ctx := context.Background()

	_, ok, err := svc.FindShortestPath(ctx, 10, 30)
	require.NoError(t, err)
	assert.False(t, ok)

	names, ok, err := svc.RoutingSuggestions(ctx, 10, 30)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, names)
}

func TestServiceRebuildsAfterMutation(t *testing.T) {
	n := networktest.Split(t)
	svc := NewService(n, DefaultOptions())
	ctx := context.Background()

	_, ok, err := svc.FindShortestPath(ctx, 10, 30)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, n.CreateRoadWithID(50, "Bridge", 1))
	require.NoError(t, n.ConnectIntersectionToRoad(20, 50))
	require.NoError(t, n.ConnectIntersectionToRoad(30, 50))

	path, ok, err := svc.FindShortestPath(ctx, 10, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []network.ID{10, 20, 50, 30}, path.Vertices)
	assert.Equal(t, 5.0, path.Length)

	names, ok, err := svc.RoutingSuggestions(ctx, 10, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"West rd", "Bridge"}, names)
	assert.Equal(t, n.Version(), svc.Stats().Version)
}

func TestServiceDeliveryPath(t *testing.T) {
	svc := NewService(networktest.WithHouses(t), DefaultOptions())

	route, ok, err := svc.DeliveryPath(context.Background(), 1, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []network.ID{1, 4, 5}, route.Vertices)
	assert.Equal(t, 19.0, route.Length)
	assert.Equal(t, []string{"Khaleej AlArab st", "Qarm st"}, route.Roads)
}

func TestServiceDeliveryPathUnknownHouse(t *testing.T) {
	// No houses: intersection 1 exists but is not a house.
	svc := NewService(networktest.Reference(t), DefaultOptions())

	_, _, err := svc.DeliveryPath(context.Background(), 1, 5)
	require.ErrorIs(t, err, network.ErrUnknownHouse)
}

func TestServiceDeliveryCrossesHouseEdges(t *testing.T) {
	n := network.New(network.WithFirstRoadID(100), network.WithFirstHouseID(200))
	n.RegisterIntersection(1)
	n.RegisterIntersection(2)
	road, err := n.CreateRoad("Main st", 4)
	require.NoError(t, err)
	require.NoError(t, n.ConnectIntersectionToRoad(1, road))
	require.NoError(t, n.ConnectIntersectionToRoad(2, road))
	a, err := n.CreateHouse(1)
	require.NoError(t, err)
	b, err := n.CreateHouse(2)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Delivery.HouseWeight = 0.5
	svc := NewService(n, opts)

	route, ok, err := svc.DeliveryPath(context.Background(), a, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []network.ID{a, 1, road, 2, b}, route.Vertices)
	// Road vertices are entered and left, so the road counts twice.
	assert.Equal(t, 0.5+4+4+0.5, route.Length)
	assert.Equal(t, []string{"Main st"}, route.Roads)
}

func TestServiceQueryTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.QueryTimeout = time.Nanosecond
	svc := NewService(networktest.Reference(t), opts)

	// Let the deadline lapse before the search starts.
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()
	_, _, err := svc.FindShortestPath(ctx, 3, 5)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceStatsAndScene(t *testing.T) {
	svc := NewService(networktest.WithHouses(t), DefaultOptions())

	st := svc.Stats()
	assert.Equal(t, 5, st.Intersections)
	assert.Equal(t, 5, st.Roads)
	assert.Equal(t, 5, st.Houses)
	assert.Equal(t, uint32(5), st.RoadView.Nodes)
	assert.Equal(t, uint32(10), st.RoadView.Edges)
	assert.Equal(t, uint32(20), st.DeliveryView.Edges)
	assert.False(t, st.RoadView.Directed)

	sc := svc.Scene()
	assert.Equal(t, st.Version, sc.Version)
	assert.Len(t, sc.Vertices, 5)
	assert.Len(t, sc.Edges, 10)
}

func TestServiceNearest(t *testing.T) {
	n := networktest.Reference(t)
	require.NoError(t, n.SetLocation(3, network.Point{Lat: 1.3, Lng: 103.8}))
	svc := NewService(n, DefaultOptions())

	res, err := svc.Nearest(1.3, 103.8)
	require.NoError(t, err)
	assert.Equal(t, network.ID(3), res.Intersection)

	_, err = svc.Nearest(0, 0)
	require.ErrorIs(t, err, ErrPointTooFar)
}

func TestServiceConnectivity(t *testing.T) {
	svc := NewService(networktest.Reference(t), DefaultOptions())

	rep, err := svc.Connectivity()
	require.NoError(t, err)
	assert.Equal(t, []network.ID{5}, rep.Isolated)
}
