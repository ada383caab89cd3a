package network

import "slices"

// ID identifies an intersection, road, or house. The three kinds share one
// integer namespace once they are projected into a graph view.
type ID int64

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Intersection is a road junction.
type Intersection struct {
	ID       ID
	Roads    []ID   // incident road ids, in connection order
	Houses   []ID   // attached house ids, in connection order
	Location *Point // nil when the network carries no geometry
}

// HasRoad reports whether road is in the intersection's connection list.
func (i *Intersection) HasRoad(road ID) bool {
	return slices.Contains(i.Roads, road)
}

// Road is a named, weighted connection. Immutable after creation.
type Road struct {
	ID     ID
	Name   string
	Length float64
}

// House is attached to exactly one intersection. Immutable after creation.
type House struct {
	ID             ID
	IntersectionID ID
}

func (i *Intersection) clone() Intersection {
	c := Intersection{
		ID:     i.ID,
		Roads:  slices.Clone(i.Roads),
		Houses: slices.Clone(i.Houses),
	}
	if i.Location != nil {
		loc := *i.Location
		c.Location = &loc
	}
	return c
}
