package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"roadnet/pkg/connectivity"
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
)

// ErrMalformedPath is returned when a computed path cannot be translated into
// road names. It indicates a view that disagrees with its network state.
var ErrMalformedPath = errors.New("routing: path does not follow the network")

// Router is the query surface for intersection-to-intersection routing.
type Router interface {
	FindShortestPath(ctx context.Context, start, end network.ID) (Path, bool, error)
	RoutingSuggestions(ctx context.Context, start, end network.ID) ([]string, bool, error)
}

// Route is a path together with the names of the roads it traverses.
type Route struct {
	Path
	Roads []string
}

// Options configures a Service.
type Options struct {
	// QueryTimeout bounds every query. Zero means no deadline beyond the caller's.
	QueryTimeout time.Duration

	// MaxSnapMeters bounds Nearest. Non-positive uses DefaultMaxSnapMeters.
	MaxSnapMeters float64

	// Road and Delivery select how the two graph views are built.
	Road     graph.Options
	Delivery graph.Options

	Logger *slog.Logger
}

// DefaultOptions returns undirected road and delivery views with the default
// house weight and no query deadline.
func DefaultOptions() Options {
	return Options{
		MaxSnapMeters: DefaultMaxSnapMeters,
		Road:          graph.RoadOptions(),
		Delivery:      graph.DeliveryOptions(),
	}
}

// ViewStats describes one graph view.
type ViewStats struct {
	Nodes    uint32
	Edges    uint32
	Directed bool
}

// Stats describes the network and its current views.
type Stats struct {
	Version       uint64
	Intersections int
	Roads         int
	Houses        int
	RoadView      ViewStats
	DeliveryView  ViewStats
	Located       int
}

// views is everything derived from one network version.
type views struct {
	state    *network.State
	road     *Engine
	delivery *Engine
	snapper  *Snapper
}

// Service answers routing, delivery, and snapshot queries over a Network. It
// rebuilds its graph views whenever the network version changes, so queries
// always see a consistent topology.
type Service struct {
	net  *network.Network
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	current *views
}

// NewService creates a service over n.
func NewService(n *network.Network, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Delivery.IncludeHouses = true
	return &Service{net: n, opts: opts, log: logger}
}

// Network returns the network the service reads.
func (s *Service) Network() *network.Network {
	return s.net
}

func (s *Service) load() *views {
	version := s.net.Version()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.state.Version == version {
		return s.current
	}

	start := time.Now()
	st := s.net.State()
	v := &views{
		state:    st,
		road:     NewEngine(graph.Build(st, s.opts.Road)),
		delivery: NewEngine(graph.Build(st, s.opts.Delivery)),
		snapper:  NewSnapper(st, s.opts.MaxSnapMeters),
	}
	s.current = v
	s.log.Debug("graph views rebuilt",
		"version", st.Version,
		"road_nodes", v.road.Graph().NumNodes,
		"road_edges", v.road.Graph().NumEdges,
		"delivery_nodes", v.delivery.Graph().NumNodes,
		"delivery_edges", v.delivery.Graph().NumEdges,
		"elapsed", time.Since(start))
	return v
}

func (s *Service) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

// FindShortestPath returns the shortest path between two intersections over
// the road view. ok is false when no path exists.
func (s *Service) FindShortestPath(ctx context.Context, start, end network.ID) (Path, bool, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	return s.load().road.ShortestPath(ctx, start, end)
}

// RoutingSuggestions returns the ordered road names of the shortest path
// between two intersections.
func (s *Service) RoutingSuggestions(ctx context.Context, start, end network.ID) ([]string, bool, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	v := s.load()
	path, ok, err := v.road.ShortestPath(ctx, start, end)
	if err != nil || !ok {
		return nil, false, err
	}
	names, ok := RoadNames(v.state, path)
	if !ok {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedPath, path.Vertices)
	}
	return names, true, nil
}

// DeliveryPath returns the shortest route between two houses over the
// delivery view. Ids that are not houses return network.ErrUnknownHouse.
func (s *Service) DeliveryPath(ctx context.Context, source, destination network.ID) (Route, bool, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	v := s.load()
	for _, id := range []network.ID{source, destination} {
		if _, ok := v.state.House(id); !ok {
			return Route{}, false, fmt.Errorf("%w: %d", network.ErrUnknownHouse, id)
		}
	}

	path, ok, err := v.delivery.ShortestPath(ctx, source, destination)
	if err != nil || !ok {
		return Route{}, false, err
	}
	names, ok := RoadNames(v.state, path)
	if !ok {
		return Route{}, false, fmt.Errorf("%w: %v", ErrMalformedPath, path.Vertices)
	}
	return Route{Path: path, Roads: names}, true, nil
}

// Scene returns the visualization snapshot of the current network.
func (s *Service) Scene() *graph.Scene {
	return graph.NewScene(s.load().state)
}

// Nearest snaps a coordinate to the closest located intersection.
func (s *Service) Nearest(lat, lng float64) (SnapResult, error) {
	return s.load().snapper.Nearest(lat, lng)
}

// Connectivity inspects the network without repairing it.
func (s *Service) Connectivity() (*connectivity.Report, error) {
	return connectivity.Ensure(s.net, connectivity.ReportOnly())
}

// Stats summarizes the current network and views.
func (s *Service) Stats() Stats {
	v := s.load()
	rg, dg := v.road.Graph(), v.delivery.Graph()
	return Stats{
		Version:       v.state.Version,
		Intersections: len(v.state.Intersections),
		Roads:         len(v.state.Roads),
		Houses:        len(v.state.Houses),
		RoadView:      ViewStats{Nodes: rg.NumNodes, Edges: rg.NumEdges, Directed: rg.Directed},
		DeliveryView:  ViewStats{Nodes: dg.NumNodes, Edges: dg.NumEdges, Directed: dg.Directed},
		Located:       v.snapper.Len(),
	}
}
