package graph

import (
	"slices"
	"sort"

	"roadnet/pkg/network"
)

// DefaultHouseWeight is the nominal weight of a house attachment edge. It is a
// unit, not a distance: delivery lengths that cross house edges include it.
const DefaultHouseWeight = 1.0

// Options controls how a graph view is derived from a network.
type Options struct {
	// Directed keeps only intersection→road and house→intersection edges.
	// Undirected views add the reverse of every edge.
	Directed bool

	// IncludeHouses adds one house→intersection edge per house.
	IncludeHouses bool

	// HouseWeight is the weight of house edges. Negative values fall back to
	// DefaultHouseWeight; zero is allowed.
	HouseWeight float64
}

// RoadOptions returns the options for intersection-to-intersection routing.
func RoadOptions() Options {
	return Options{HouseWeight: DefaultHouseWeight}
}

// DeliveryOptions returns the options for house-to-house delivery routing.
func DeliveryOptions() Options {
	return Options{IncludeHouses: true, HouseWeight: DefaultHouseWeight}
}

type rawEdge struct {
	from, to network.ID
	weight   float64
	kind     EdgeKind
	ref      network.ID
}

// Build creates a CSR graph view from a network snapshot.
//
// The vertex set is the union of intersection, road, and house ids in one
// integer namespace, so an intersection and a road that share a number share
// a vertex. Every entry r in an intersection i's road list yields an edge
// i→r weighted by the length of r.
func Build(s *network.State, opts Options) *Graph {
	if opts.HouseWeight < 0 {
		opts.HouseWeight = DefaultHouseWeight
	}

	// Step 1: Collect edges in network-id space.
	var edges []rawEdge
	add := func(e rawEdge) {
		edges = append(edges, e)
		if !opts.Directed {
			edges = append(edges, rawEdge{from: e.to, to: e.from, weight: e.weight, kind: e.kind, ref: e.ref})
		}
	}
	for _, in := range s.Intersections {
		for _, roadID := range in.Roads {
			road, ok := s.Road(roadID)
			if !ok {
				continue
			}
			add(rawEdge{from: in.ID, to: roadID, weight: road.Length, kind: RoadEdge, ref: roadID})
		}
	}
	if opts.IncludeHouses {
		for _, h := range s.Houses {
			add(rawEdge{from: h.ID, to: h.IntersectionID, weight: opts.HouseWeight, kind: HouseEdge, ref: h.ID})
		}
	}

	// Step 2: Collect all vertex ids and build a compact mapping.
	ids := make([]network.ID, 0, len(s.Intersections)+len(s.Roads)+len(s.Houses))
	for _, in := range s.Intersections {
		ids = append(ids, in.ID)
	}
	for _, r := range s.Roads {
		ids = append(ids, r.ID)
	}
	if opts.IncludeHouses {
		for _, h := range s.Houses {
			ids = append(ids, h.ID)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	index := make(map[network.ID]uint32, len(ids))
	for i, id := range ids {
		index[id] = uint32(i)
	}
	numNodes := uint32(len(ids))

	// Step 3: Sort edges by source node, then target, for stable adjacency order.
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})

	// Step 4: Build CSR arrays.
	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]float64, numEdges)
	kind := make([]EdgeKind, numEdges)
	ref := make([]network.ID, numEdges)

	for i, e := range edges {
		head[i] = index[e.to]
		weight[i] = e.weight
		kind[i] = e.kind
		ref[i] = e.ref
		firstOut[index[e.from]+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
		Kind:     kind,
		Ref:      ref,
		NodeID:   ids,
		Directed: opts.Directed,
		Version:  s.Version,
		index:    index,
	}
}
