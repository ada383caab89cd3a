package graph

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"roadnet/pkg/network"
)

// HouseLabel is the label carried by every house attachment edge.
const HouseLabel = "House"

// SceneVertex is one vertex of the visualization snapshot. A vertex can play
// several roles when ids coincide across kinds.
type SceneVertex struct {
	ID           network.ID `json:"id"`
	Intersection bool       `json:"intersection,omitempty"`
	Road         bool       `json:"road,omitempty"`
	House        bool       `json:"house,omitempty"`
}

// SceneEdge is one labelled edge of the visualization snapshot.
type SceneEdge struct {
	From   network.ID `json:"from"`
	To     network.ID `json:"to"`
	Kind   string     `json:"kind"`
	Label  string     `json:"label"`
	Length float64    `json:"length,omitempty"`
}

// Scene is the read-only snapshot handed to an external renderer.
type Scene struct {
	Version  uint64        `json:"version"`
	Vertices []SceneVertex `json:"vertices"`
	Edges    []SceneEdge   `json:"edges"`
}

// NewScene builds the visualization snapshot of s: every intersection, road,
// and house as a vertex; one edge per road connection labelled with the
// road's name and length, and one "House" edge per house.
func NewScene(s *network.State) *Scene {
	roles := make(map[network.ID]*SceneVertex)
	vertex := func(id network.ID) *SceneVertex {
		v, ok := roles[id]
		if !ok {
			v = &SceneVertex{ID: id}
			roles[id] = v
		}
		return v
	}

	sc := &Scene{Version: s.Version}
	for _, in := range s.Intersections {
		vertex(in.ID).Intersection = true
		for _, roadID := range in.Roads {
			road, ok := s.Road(roadID)
			if !ok {
				continue
			}
			sc.Edges = append(sc.Edges, SceneEdge{
				From:   in.ID,
				To:     roadID,
				Kind:   RoadEdge.String(),
				Label:  RoadLabel(road),
				Length: road.Length,
			})
		}
	}
	for _, r := range s.Roads {
		vertex(r.ID).Road = true
	}
	for _, h := range s.Houses {
		vertex(h.ID).House = true
		sc.Edges = append(sc.Edges, SceneEdge{
			From:  h.ID,
			To:    h.IntersectionID,
			Kind:  HouseEdge.String(),
			Label: HouseLabel,
		})
	}

	sc.Vertices = make([]SceneVertex, 0, len(roles))
	for _, v := range roles {
		sc.Vertices = append(sc.Vertices, *v)
	}
	slices.SortFunc(sc.Vertices, func(a, b SceneVertex) int { return cmp.Compare(a.ID, b.ID) })
	return sc
}

// RoadLabel formats a road as "<name> (<length> km)".
func RoadLabel(r *network.Road) string {
	return fmt.Sprintf("%s (%s km)", r.Name, strconv.FormatFloat(r.Length, 'f', -1, 64))
}
