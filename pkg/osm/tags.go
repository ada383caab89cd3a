package osm

import (
	"fmt"

	"github.com/paulmach/osm"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isDrivable reports whether a way becomes a road. Roads carry no direction,
// so oneway tags only matter for time-dependent "reversible" ways, which are
// dropped.
func isDrivable(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] || tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no" && tags.Find("oneway") != "reversible"
}

// isHouse reports whether a node or closed way stands for an addressable building.
func isHouse(tags osm.Tags) bool {
	if tags.Find("addr:housenumber") != "" {
		return true
	}
	switch tags.Find("building") {
	case "", "no":
		return false
	}
	return true
}

// roadName picks the display name of a highway way.
func roadName(w *osm.Way) string {
	if name := w.Tags.Find("name"); name != "" {
		return name
	}
	if ref := w.Tags.Find("ref"); ref != "" {
		return ref
	}
	return fmt.Sprintf("way %d", w.ID)
}
