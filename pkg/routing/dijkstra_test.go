package routing

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"roadnet/pkg/graph"
	"roadnet/pkg/network"
)

func TestMinHeapOrder(t *testing.T) {
	var h MinHeap
	h.Push(4, 3)
	h.Push(2, 1)
	h.Push(7, 1)
	h.Push(1, 5)
	h.Push(3, 0)

	want := []PQItem{{3, 0}, {2, 1}, {7, 1}, {4, 3}, {1, 5}}
	for i, w := range want {
		got := h.Pop()
		if got != w {
			t.Fatalf("pop %d: got %+v, want %+v", i, got, w)
		}
	}
	if h.Len() != 0 {
		t.Fatalf("heap not empty: %d", h.Len())
	}
}

func TestMinHeapReset(t *testing.T) {
	var h MinHeap
	h.Push(1, 1)
	h.Push(2, 2)
	h.Reset()
	if h.Len() != 0 {
		t.Fatalf("Len after Reset = %d", h.Len())
	}
	h.Push(9, 0.5)
	if got := h.Pop(); got.Node != 9 {
		t.Fatalf("got %+v after Reset", got)
	}
}

// randomNetwork builds n intersections (ids 1..n) and m roads (ids n+1..n+m).
// Each road touches one or two intersections. Integer lengths keep sums exact.
func randomNetwork(t testing.TB, rng *rand.Rand, n, m int) *network.Network {
	t.Helper()
	net := network.New(network.WithFirstRoadID(network.ID(n + 1)))
	for i := 1; i <= n; i++ {
		net.RegisterIntersection(network.ID(i))
	}
	for j := 0; j < m; j++ {
		road, err := net.CreateRoad("r", float64(1+rng.IntN(20)))
		if err != nil {
			t.Fatal(err)
		}
		a := network.ID(1 + rng.IntN(n))
		if err := net.ConnectIntersectionToRoad(a, road); err != nil {
			t.Fatal(err)
		}
		if rng.IntN(4) > 0 {
			b := network.ID(1 + rng.IntN(n))
			if b != a {
				if err := net.ConnectIntersectionToRoad(b, road); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	return net
}

// bellmanFord computes exact single-source distances on g.
func bellmanFord(g *graph.Graph, source uint32) []float64 {
	dist := make([]float64, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	for range g.NumNodes {
		changed := false
		for u := uint32(0); u < g.NumNodes; u++ {
			if math.IsInf(dist[u], 1) {
				continue
			}
			start, end := g.EdgesFrom(u)
			for e := start; e < end; e++ {
				if d := dist[u] + g.Weight[e]; d < dist[g.Head[e]] {
					dist[g.Head[e]] = d
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return dist
}

// hasEdge reports whether g has an edge u→v of weight w.
func hasEdge(g *graph.Graph, u, v network.ID, w float64) bool {
	ui, ok := g.Index(u)
	if !ok {
		return false
	}
	vi, ok := g.Index(v)
	if !ok {
		return false
	}
	start, end := g.EdgesFrom(ui)
	for e := start; e < end; e++ {
		if g.Head[e] == vi && g.Weight[e] == w {
			return true
		}
	}
	return false
}

func TestEngineMatchesBellmanFord(t *testing.T) {
	ctx := context.Background()
	for _, directed := range []bool{false, true} {
		rng := rand.New(rand.NewPCG(42, 7))
		for trial := 0; trial < 20; trial++ {
			net := randomNetwork(t, rng, 12, 18)
			g := graph.Build(net.State(), graph.Options{Directed: directed})
			e := NewEngine(g)

			for s := uint32(0); s < g.NumNodes; s++ {
				ref := bellmanFord(g, s)
				for tgt := uint32(0); tgt < g.NumNodes; tgt++ {
					src, dst := g.NodeID[s], g.NodeID[tgt]

					length, ok, err := e.ShortestPathLength(ctx, src, dst)
					if err != nil {
						t.Fatal(err)
					}
					if math.IsInf(ref[tgt], 1) {
						if ok {
							t.Fatalf("directed=%v trial %d: %d→%d found, want unreachable", directed, trial, src, dst)
						}
						continue
					}
					if !ok || length != ref[tgt] {
						t.Fatalf("directed=%v trial %d: %d→%d = (%v, %v), want %v", directed, trial, src, dst, length, ok, ref[tgt])
					}

					path, ok, err := e.ShortestPath(ctx, src, dst)
					if err != nil || !ok {
						t.Fatalf("ShortestPath %d→%d: ok=%v err=%v", src, dst, ok, err)
					}
					if path.Length != length {
						t.Fatalf("%d→%d: path length %v, length query %v", src, dst, path.Length, length)
					}
					sum := 0.0
					for i, h := range path.Hops {
						if h.From != path.Vertices[i] || h.To != path.Vertices[i+1] {
							t.Fatalf("hop %d %+v does not match vertices %v", i, h, path.Vertices)
						}
						if !hasEdge(g, h.From, h.To, h.Weight) {
							t.Fatalf("hop %d %+v is not an edge of the view", i, h)
						}
						sum += h.Weight
					}
					if sum != path.Length {
						t.Fatalf("%d→%d: hop sum %v, length %v", src, dst, sum, path.Length)
					}
				}
			}
		}
	}
}

func BenchmarkShortestPath(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	net := randomNetwork(b, rng, 2000, 4000)
	g := graph.Build(net.State(), graph.RoadOptions())
	e := NewEngine(g)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := g.NodeID[rng.IntN(int(g.NumNodes))]
		d := g.NodeID[rng.IntN(int(g.NumNodes))]
		if _, _, err := e.ShortestPath(ctx, s, d); err != nil {
			b.Fatal(err)
		}
	}
}
