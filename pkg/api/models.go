package api

import "roadnet/pkg/network"

// PathRequest is the JSON body for POST /api/v1/path and /api/v1/suggestions.
type PathRequest struct {
	Start *network.ID `json:"start"`
	End   *network.ID `json:"end"`
}

// HopJSON is one traversed edge in a path response.
type HopJSON struct {
	From   network.ID `json:"from"`
	To     network.ID `json:"to"`
	Kind   string     `json:"kind"`
	Ref    network.ID `json:"ref"`
	Weight float64    `json:"weight"`
}

// PathResponse is the JSON response for a successful path query.
type PathResponse struct {
	Vertices []network.ID `json:"vertices"`
	Hops     []HopJSON    `json:"hops"`
	Length   float64      `json:"length"`
}

// SuggestionsResponse is the JSON response for POST /api/v1/suggestions.
type SuggestionsResponse struct {
	Roads []string `json:"roads"`
}

// DeliveryJSON is one (source house, destination house) request.
type DeliveryJSON struct {
	Source      network.ID `json:"source"`
	Destination network.ID `json:"destination"`
}

// DeliveriesRequest is the JSON body for POST /api/v1/deliveries.
type DeliveriesRequest struct {
	Requests []DeliveryJSON `json:"requests"`
}

// DeliveryReportJSON is the outcome of one delivery request.
type DeliveryReportJSON struct {
	Index       int          `json:"index"`
	Source      network.ID   `json:"source"`
	Destination network.ID   `json:"destination"`
	Status      string       `json:"status"`
	Path        []network.ID `json:"path,omitempty"`
	Length      float64      `json:"length,omitempty"`
	Roads       []string     `json:"roads,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// DeliveriesResponse is the JSON response for POST /api/v1/deliveries.
type DeliveriesResponse struct {
	Reports []DeliveryReportJSON `json:"reports"`
}

// NearestResponse is the JSON response for GET /api/v1/nearest.
type NearestResponse struct {
	Intersection   network.ID `json:"intersection"`
	DistanceMeters float64    `json:"distance_meters"`
}

// ConnectivityResponse is the JSON response for GET /api/v1/connectivity.
type ConnectivityResponse struct {
	OK         bool         `json:"ok"`
	Isolated   []network.ID `json:"isolated"`
	Components int          `json:"components"`
	Largest    int          `json:"largest_component"`
	Version    uint64       `json:"version"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error          string  `json:"error"`
	Field          string  `json:"field,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// ViewStatsJSON describes one graph view.
type ViewStatsJSON struct {
	Nodes    uint32 `json:"nodes"`
	Edges    uint32 `json:"edges"`
	Directed bool   `json:"directed"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	Version       uint64        `json:"version"`
	Intersections int           `json:"intersections"`
	Roads         int           `json:"roads"`
	Houses        int           `json:"houses"`
	Located       int           `json:"located_intersections"`
	RoadView      ViewStatsJSON `json:"road_view"`
	DeliveryView  ViewStatsJSON `json:"delivery_view"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
