package graph

import "roadnet/pkg/network"

// EdgeKind tells what an edge of the graph view stands for.
type EdgeKind uint8

const (
	// RoadEdge links an intersection to one of its roads; weight is the road length.
	RoadEdge EdgeKind = iota
	// HouseEdge links a house to its intersection; weight is the nominal house unit.
	HouseEdge
)

func (k EdgeKind) String() string {
	switch k {
	case RoadEdge:
		return "road"
	case HouseEdge:
		return "house"
	}
	return "unknown"
}

// Graph is the derived, weighted graph view of a network in CSR (Compressed
// Sparse Row) format. Vertices are compact indices 0..NumNodes-1; NodeID maps
// them back to network ids in ascending order.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []float64 // len: NumEdges

	// Edge metadata.
	Kind []EdgeKind   // len: NumEdges
	Ref  []network.ID // len: NumEdges; road id for RoadEdge, house id for HouseEdge

	NodeID []network.ID // len: NumNodes, sorted ascending

	Directed bool
	Version  uint64 // network version the view was built from

	index map[network.ID]uint32
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Index returns the compact index of a network id.
func (g *Graph) Index(id network.ID) (uint32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}
