package network

import (
	"cmp"
	"slices"
)

// State is an immutable point-in-time copy of a Network. Graph views, the
// routing translator, and the visualization snapshot all read from a State so
// a query batch sees one consistent topology.
type State struct {
	Version       uint64
	Intersections []Intersection // sorted by ID
	Roads         []Road         // sorted by ID
	Houses        []House        // sorted by ID

	intersectionAt map[ID]int
	roadAt         map[ID]int
	houseAt        map[ID]int
}

// State copies the network under a read lock.
func (n *Network) State() *State {
	n.mu.RLock()
	defer n.mu.RUnlock()

	s := &State{
		Version:        n.version,
		Intersections:  make([]Intersection, 0, len(n.intersections)),
		Roads:          make([]Road, 0, len(n.roads)),
		Houses:         make([]House, 0, len(n.houses)),
		intersectionAt: make(map[ID]int, len(n.intersections)),
		roadAt:         make(map[ID]int, len(n.roads)),
		houseAt:        make(map[ID]int, len(n.houses)),
	}
	for _, in := range n.intersections {
		s.Intersections = append(s.Intersections, in.clone())
	}
	for _, r := range n.roads {
		s.Roads = append(s.Roads, *r)
	}
	for _, h := range n.houses {
		s.Houses = append(s.Houses, *h)
	}

	slices.SortFunc(s.Intersections, func(a, b Intersection) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(s.Roads, func(a, b Road) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(s.Houses, func(a, b House) int { return cmp.Compare(a.ID, b.ID) })

	for i := range s.Intersections {
		s.intersectionAt[s.Intersections[i].ID] = i
	}
	for i := range s.Roads {
		s.roadAt[s.Roads[i].ID] = i
	}
	for i := range s.Houses {
		s.houseAt[s.Houses[i].ID] = i
	}
	return s
}

// Intersection looks up an intersection by id.
func (s *State) Intersection(id ID) (*Intersection, bool) {
	i, ok := s.intersectionAt[id]
	if !ok {
		return nil, false
	}
	return &s.Intersections[i], true
}

// Road looks up a road by id.
func (s *State) Road(id ID) (*Road, bool) {
	i, ok := s.roadAt[id]
	if !ok {
		return nil, false
	}
	return &s.Roads[i], true
}

// House looks up a house by id.
func (s *State) House(id ID) (*House, bool) {
	i, ok := s.houseAt[id]
	if !ok {
		return nil, false
	}
	return &s.Houses[i], true
}
