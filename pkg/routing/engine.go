package routing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"roadnet/pkg/graph"
	"roadnet/pkg/network"
)

// ErrUnknownVertex is returned when a query names an id that is not a vertex
// of the graph view.
var ErrUnknownVertex = errors.New("routing: vertex not in graph view")

const noEdge = ^uint32(0) // sentinel for "no predecessor edge"

// ctxCheckInterval is how many settled vertices pass between context checks.
const ctxCheckInterval = 100

// Hop is one traversed edge of a path.
type Hop struct {
	From   network.ID
	To     network.ID
	Kind   graph.EdgeKind
	Ref    network.ID // road id or house id
	Weight float64
}

// Path is a minimum-weight vertex sequence between two vertices.
type Path struct {
	Vertices []network.ID
	Hops     []Hop
	Length   float64
}

// Engine answers shortest-path queries over one graph view. It only reads the
// view, so one Engine can serve concurrent queries.
type Engine struct {
	g *graph.Graph
}

// NewEngine creates an engine over g.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

// Graph returns the view the engine searches.
func (e *Engine) Graph() *graph.Graph {
	return e.g
}

// ShortestPath returns the minimum-weight path from source to target. ok is
// false when target is unreachable; that is a normal result, not an error.
func (e *Engine) ShortestPath(ctx context.Context, source, target network.ID) (path Path, ok bool, err error) {
	s, t, err := e.endpoints(source, target)
	if err != nil {
		return Path{}, false, err
	}

	st, err := e.search(ctx, s, t)
	if err != nil {
		return Path{}, false, err
	}
	if math.IsInf(st.dist[t], 1) {
		return Path{}, false, nil
	}

	return e.reconstruct(st, s, t), true, nil
}

// ShortestPathLength returns only the accumulated weight of the path
// ShortestPath would return.
func (e *Engine) ShortestPathLength(ctx context.Context, source, target network.ID) (float64, bool, error) {
	s, t, err := e.endpoints(source, target)
	if err != nil {
		return 0, false, err
	}

	st, err := e.search(ctx, s, t)
	if err != nil {
		return 0, false, err
	}
	if math.IsInf(st.dist[t], 1) {
		return 0, false, nil
	}
	return st.dist[t], true, nil
}

func (e *Engine) endpoints(source, target network.ID) (uint32, uint32, error) {
	s, ok := e.g.Index(source)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownVertex, source)
	}
	t, ok := e.g.Index(target)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownVertex, target)
	}
	return s, t, nil
}

// searchState holds per-query labels.
type searchState struct {
	dist     []float64
	predEdge []uint32
	settled  []bool
	pq       MinHeap
}

func newSearchState(n uint32) *searchState {
	st := &searchState{
		dist:     make([]float64, n),
		predEdge: make([]uint32, n),
		settled:  make([]bool, n),
		pq:       MinHeap{items: make([]PQItem, 0, 64)},
	}
	for i := range st.dist {
		st.dist[i] = math.Inf(1)
		st.predEdge[i] = noEdge
	}
	return st
}

// search runs label-setting Dijkstra from s and stops once t is settled or
// the frontier is exhausted.
func (e *Engine) search(ctx context.Context, s, t uint32) (*searchState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := e.g
	st := newSearchState(g.NumNodes)
	st.dist[s] = 0
	st.pq.Push(s, 0)

	iterations := 0
	for st.pq.Len() > 0 {
		item := st.pq.Pop()
		u := item.Node
		if st.settled[u] || item.Dist > st.dist[u] {
			continue // stale entry
		}
		st.settled[u] = true
		if u == t {
			break
		}

		iterations++
		if iterations%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		start, end := g.EdgesFrom(u)
		for ei := start; ei < end; ei++ {
			v := g.Head[ei]
			if st.settled[v] {
				continue
			}
			newDist := item.Dist + g.Weight[ei]
			if newDist < st.dist[v] {
				st.dist[v] = newDist
				st.predEdge[v] = ei
				st.pq.Push(v, newDist)
			}
		}
	}
	return st, nil
}

// reconstruct follows predecessor edges back from t. It needs the source of
// each edge, which CSR does not store, so it is recovered by binary search
// over FirstOut.
func (e *Engine) reconstruct(st *searchState, s, t uint32) Path {
	g := e.g
	var hops []Hop
	for v := t; v != s; {
		ei := st.predEdge[v]
		u := e.edgeSource(ei)
		hops = append(hops, Hop{
			From:   g.NodeID[u],
			To:     g.NodeID[v],
			Kind:   g.Kind[ei],
			Ref:    g.Ref[ei],
			Weight: g.Weight[ei],
		})
		v = u
	}
	// Reverse to get source → target.
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}

	vertices := make([]network.ID, 0, len(hops)+1)
	vertices = append(vertices, g.NodeID[s])
	for _, h := range hops {
		vertices = append(vertices, h.To)
	}

	return Path{
		Vertices: vertices,
		Hops:     hops,
		Length:   st.dist[t],
	}
}

// edgeSource returns the node whose adjacency range contains edge ei.
func (e *Engine) edgeSource(ei uint32) uint32 {
	lo, hi := uint32(0), e.g.NumNodes
	for lo < hi {
		mid := lo + (hi-lo)/2
		if e.g.FirstOut[mid+1] <= ei {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
