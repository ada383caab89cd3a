package routing

import (
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
)

// ToRoadNames converts a vertex path into the ordered names of the roads it
// traverses. Each consecutive pair (u, v) is matched against the connection
// lists in s:
//
//   - v is a road of intersection u: the path enters road v.
//   - u is a road of intersection v: when u is itself an intersection the
//     hop traverses road u; otherwise it is the exit from road vertex u and
//     contributes no name.
//   - one side is a house attached to the other: a house hop, no name.
//
// Any other pair makes the path malformed. ok is false for an empty or
// malformed path.
func ToRoadNames(s *network.State, vertices []network.ID) (names []string, ok bool) {
	if len(vertices) == 0 {
		return nil, false
	}

	names = make([]string, 0, len(vertices)-1)
	for i := 1; i < len(vertices); i++ {
		u, v := vertices[i-1], vertices[i]
		name, named, valid := translateHop(s, u, v)
		if !valid {
			return nil, false
		}
		if named {
			names = append(names, name)
		}
	}
	return names, true
}

// RoadNames returns the names of the roads path traverses, taken from the
// edges the search used. Where two edges join the same pair of vertices,
// the hop's road is the one that was travelled, which ToRoadNames cannot
// tell apart. ok is false when the path does not follow s.
func RoadNames(s *network.State, path Path) (names []string, ok bool) {
	if _, ok := ToRoadNames(s, path.Vertices); !ok {
		return nil, false
	}

	names = make([]string, 0, len(path.Hops))
	for _, h := range path.Hops {
		if h.Kind != graph.RoadEdge {
			continue
		}
		// Leaving a road vertex that is not also an intersection names nothing.
		if _, ok := s.Intersection(h.From); !ok {
			continue
		}
		road, ok := s.Road(h.Ref)
		if !ok {
			return nil, false
		}
		names = append(names, road.Name)
	}
	return names, true
}

func translateHop(s *network.State, u, v network.ID) (name string, named, valid bool) {
	if from, ok := s.Intersection(u); ok && from.HasRoad(v) {
		road, ok := s.Road(v)
		if !ok {
			return "", false, false
		}
		return road.Name, true, true
	}

	if to, ok := s.Intersection(v); ok && to.HasRoad(u) {
		if _, isIntersection := s.Intersection(u); !isIntersection {
			return "", false, true
		}
		road, ok := s.Road(u)
		if !ok {
			return "", false, false
		}
		return road.Name, true, true
	}

	if h, ok := s.House(u); ok && h.IntersectionID == v {
		return "", false, true
	}
	if h, ok := s.House(v); ok && h.IntersectionID == u {
		return "", false, true
	}
	return "", false, false
}
