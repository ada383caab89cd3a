package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"roadnet/pkg/geo"
	"roadnet/pkg/network"
)

// DefaultMaxSnapMeters bounds how far a query point may be from the
// intersection it snaps to.
const DefaultMaxSnapMeters = 500.0

// metersPerDegreeLat is the length of one degree of latitude.
const metersPerDegreeLat = 111_320.0

// ErrPointTooFar is returned when the query point is too far from any intersection.
var ErrPointTooFar = errors.New("routing: point too far from any intersection")

// SnapResult is a query point snapped to an intersection.
type SnapResult struct {
	Intersection network.ID
	Dist         float64 // meters from the query point
}

// Snapper finds the nearest located intersection using an R-tree over
// intersection coordinates. Intersections without a location are skipped.
type Snapper struct {
	tree    rtree.RTreeG[network.ID]
	loc     map[network.ID]network.Point
	maxDist float64
}

// NewSnapper indexes every located intersection of s. A non-positive maxDist
// uses DefaultMaxSnapMeters.
func NewSnapper(s *network.State, maxDist float64) *Snapper {
	if maxDist <= 0 {
		maxDist = DefaultMaxSnapMeters
	}
	sn := &Snapper{
		loc:     make(map[network.ID]network.Point),
		maxDist: maxDist,
	}
	for _, in := range s.Intersections {
		if in.Location == nil {
			continue
		}
		p := [2]float64{in.Location.Lat, in.Location.Lng}
		sn.tree.Insert(p, p, in.ID)
		sn.loc[in.ID] = *in.Location
	}
	return sn
}

// Len returns the number of indexed intersections.
func (sn *Snapper) Len() int {
	return len(sn.loc)
}

// Nearest returns the closest intersection within the snap radius. Equal
// distances resolve to the smaller id.
func (sn *Snapper) Nearest(lat, lng float64) (SnapResult, error) {
	dLat := sn.maxDist / metersPerDegreeLat
	// Longitude degrees shrink with latitude; clamp so the box stays finite near the poles.
	dLng := dLat / math.Max(math.Cos(lat*math.Pi/180), 0.01)

	// Candidates are ranked by the cheap approximation; only the winner pays
	// for Haversine.
	var best network.ID
	bestApprox := math.Inf(1)
	found := false
	sn.tree.Search(
		[2]float64{lat - dLat, lng - dLng},
		[2]float64{lat + dLat, lng + dLng},
		func(_, _ [2]float64, id network.ID) bool {
			p := sn.loc[id]
			d := geo.EquirectangularDist(lat, lng, p.Lat, p.Lng)
			if !found || d < bestApprox || (d == bestApprox && id < best) {
				best, bestApprox = id, d
				found = true
			}
			return true
		},
	)
	if !found {
		return SnapResult{}, ErrPointTooFar
	}

	p := sn.loc[best]
	d := geo.Haversine(lat, lng, p.Lat, p.Lng)
	if d > sn.maxDist {
		return SnapResult{}, ErrPointTooFar
	}
	return SnapResult{Intersection: best, Dist: d}, nil
}
