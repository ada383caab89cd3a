package network

import (
	"fmt"
	"math"
	"slices"
	"sync"
)

// Network is the single source of truth for intersections, roads, and houses.
// It is safe for concurrent use: mutations take an exclusive lock, reads and
// State snapshots take a shared one.
type Network struct {
	mu sync.RWMutex

	intersections map[ID]*Intersection
	roads         map[ID]*Road
	houses        map[ID]*House

	nextRoadID  ID
	nextHouseID ID

	// version increments on every successful mutation so derived views can
	// tell when they are stale.
	version uint64
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithFirstRoadID sets the first id handed out by CreateRoad.
func WithFirstRoadID(id ID) Option {
	return func(n *Network) { n.nextRoadID = id }
}

// WithFirstHouseID sets the first id handed out by CreateHouse.
func WithFirstHouseID(id ID) Option {
	return func(n *Network) { n.nextHouseID = id }
}

// New creates an empty network. Road and house ids start at 1 unless
// overridden.
func New(opts ...Option) *Network {
	n := &Network{
		intersections: make(map[ID]*Intersection),
		roads:         make(map[ID]*Road),
		houses:        make(map[ID]*House),
		nextRoadID:    1,
		nextHouseID:   1,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RegisterIntersection adds an intersection. It is a no-op if the id is
// already present and reports whether the intersection was added.
func (n *Network) RegisterIntersection(id ID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.intersections[id]; ok {
		return false
	}
	n.intersections[id] = &Intersection{ID: id}
	n.version++
	return true
}

// SetLocation attaches a coordinate to an existing intersection.
func (n *Network) SetLocation(id ID, p Point) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	in, ok := n.intersections[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownIntersection, id)
	}
	in.Location = &p
	n.version++
	return nil
}

// CreateRoad allocates the next road id and stores the road.
func (n *Network) CreateRoad(name string, length float64) (ID, error) {
	if err := validLength(length); err != nil {
		return 0, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for {
		if _, taken := n.roads[n.nextRoadID]; !taken {
			break
		}
		n.nextRoadID++
	}
	id := n.nextRoadID
	n.nextRoadID++
	n.roads[id] = &Road{ID: id, Name: name, Length: length}
	n.version++
	return id, nil
}

// CreateRoadWithID stores a road under a caller-supplied id.
func (n *Network) CreateRoadWithID(id ID, name string, length float64) error {
	if err := validLength(length); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, taken := n.roads[id]; taken {
		return fmt.Errorf("%w: %d", ErrDuplicateRoad, id)
	}
	n.roads[id] = &Road{ID: id, Name: name, Length: length}
	if id >= n.nextRoadID {
		n.nextRoadID = id + 1
	}
	n.version++
	return nil
}

// CreateHouse allocates a house attached to an existing intersection. The
// house is not added to the intersection's house list; use
// ConnectHouseToIntersection for that.
func (n *Network) CreateHouse(intersectionID ID) (ID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.intersections[intersectionID]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownIntersection, intersectionID)
	}
	for {
		if _, taken := n.houses[n.nextHouseID]; !taken {
			break
		}
		n.nextHouseID++
	}
	id := n.nextHouseID
	n.nextHouseID++
	n.houses[id] = &House{ID: id, IntersectionID: intersectionID}
	n.version++
	return id, nil
}

// CreateHouseWithID stores a house under a caller-supplied id.
func (n *Network) CreateHouseWithID(id, intersectionID ID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.intersections[intersectionID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownIntersection, intersectionID)
	}
	if _, taken := n.houses[id]; taken {
		return fmt.Errorf("%w: %d", ErrDuplicateHouse, id)
	}
	n.houses[id] = &House{ID: id, IntersectionID: intersectionID}
	if id >= n.nextHouseID {
		n.nextHouseID = id + 1
	}
	n.version++
	return nil
}

// ConnectIntersectionToRoad appends road to the intersection's connection list.
func (n *Network) ConnectIntersectionToRoad(intersectionID, roadID ID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	in, ok := n.intersections[intersectionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownIntersection, intersectionID)
	}
	if _, ok := n.roads[roadID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRoad, roadID)
	}
	if in.HasRoad(roadID) {
		return fmt.Errorf("%w: intersection %d, road %d", ErrDuplicateConnection, intersectionID, roadID)
	}
	in.Roads = append(in.Roads, roadID)
	n.version++
	return nil
}

// ConnectHouseToIntersection appends house to the intersection's house list.
// The intersection must be the one the house was created at.
func (n *Network) ConnectHouseToIntersection(houseID, intersectionID ID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	h, ok := n.houses[houseID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHouse, houseID)
	}
	in, ok := n.intersections[intersectionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownIntersection, intersectionID)
	}
	if h.IntersectionID != intersectionID {
		return fmt.Errorf("%w: house %d is at %d, not %d", ErrHouseElsewhere, houseID, h.IntersectionID, intersectionID)
	}
	if slices.Contains(in.Houses, houseID) {
		return fmt.Errorf("%w: intersection %d, house %d", ErrDuplicateConnection, intersectionID, houseID)
	}
	in.Houses = append(in.Houses, houseID)
	n.version++
	return nil
}

// IsolatedIntersections returns the ids of intersections with no incident
// road, in ascending order.
func (n *Network) IsolatedIntersections() []ID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.isolatedLocked()
}

// ConnectIsolated connects every isolated intersection to roadID in a single
// step and returns the ids it connected. Nothing changes if the road does not
// exist.
func (n *Network) ConnectIsolated(roadID ID) ([]ID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.roads[roadID]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRoad, roadID)
	}
	isolated := n.isolatedLocked()
	for _, id := range isolated {
		in := n.intersections[id]
		in.Roads = append(in.Roads, roadID)
	}
	if len(isolated) > 0 {
		n.version++
	}
	return isolated, nil
}

func (n *Network) isolatedLocked() []ID {
	var ids []ID
	for id, in := range n.intersections {
		if len(in.Roads) == 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Version returns the mutation counter.
func (n *Network) Version() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.version
}

func validLength(length float64) error {
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, length)
	}
	return nil
}
