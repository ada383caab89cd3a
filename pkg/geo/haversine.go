// Package geo has the distance functions used for road lengths and snapping.
package geo

import "math"

const earthRadiusMeters = 6_371_000.0

const degToRad = math.Pi / 180

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// EquirectangularDist approximates Haversine on a flat projection around the
// mean latitude. The error stays well under 0.1% below a few kilometers, so it
// orders nearby candidates the same way Haversine does.
func EquirectangularDist(lat1, lon1, lat2, lon2 float64) float64 {
	x := (lon2 - lon1) * math.Cos((lat1+lat2)/2*degToRad) * degToRad
	y := (lat2 - lat1) * degToRad
	return math.Sqrt(x*x+y*y) * earthRadiusMeters
}
