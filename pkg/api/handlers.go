package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"

	"roadnet/pkg/connectivity"
	"roadnet/pkg/delivery"
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
	"roadnet/pkg/routing"
)

const (
	maxPathBody       = 1024
	maxDeliveriesBody = 1 << 20
	maxDeliveries     = 1000
)

// Backend is the query surface the handlers serve.
type Backend interface {
	routing.Router
	Scene() *graph.Scene
	Nearest(lat, lng float64) (routing.SnapResult, error)
	Connectivity() (*connectivity.Report, error)
	Stats() routing.Stats
}

// Distributor runs delivery batches.
type Distributor interface {
	Distribute(ctx context.Context, reqs []delivery.Request) ([]delivery.Report, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	backend    Backend
	deliveries Distributor
	log        *slog.Logger
}

// NewHandlers creates handlers. A nil logger uses slog.Default().
func NewHandlers(backend Backend, deliveries Distributor, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		backend:    backend,
		deliveries: deliveries,
		log:        logger,
	}
}

// HandlePath handles POST /api/v1/path.
func (h *Handlers) HandlePath(w http.ResponseWriter, r *http.Request) {
	start, end, ok := decodePathRequest(w, r)
	if !ok {
		return
	}

	path, found, err := h.backend.FindShortestPath(r.Context(), start, end)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no_route_found", "")
		return
	}

	resp := PathResponse{
		Vertices: path.Vertices,
		Hops:     make([]HopJSON, len(path.Hops)),
		Length:   path.Length,
	}
	for i, hop := range path.Hops {
		resp.Hops[i] = HopJSON{From: hop.From, To: hop.To, Kind: hop.Kind.String(), Ref: hop.Ref, Weight: hop.Weight}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSuggestions handles POST /api/v1/suggestions.
func (h *Handlers) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	start, end, ok := decodePathRequest(w, r)
	if !ok {
		return
	}

	names, found, err := h.backend.RoutingSuggestions(r.Context(), start, end)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no_route_found", "")
		return
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Roads: names})
}

// HandleDeliveries handles POST /api/v1/deliveries.
func (h *Handlers) HandleDeliveries(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req DeliveriesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDeliveriesBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if len(req.Requests) > maxDeliveries {
		writeError(w, http.StatusBadRequest, "too_many_requests", "requests")
		return
	}

	reqs := make([]delivery.Request, len(req.Requests))
	for i, d := range req.Requests {
		reqs[i] = delivery.Request{Source: d.Source, Destination: d.Destination}
	}

	reports, err := h.deliveries.Distribute(r.Context(), reqs)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	resp := DeliveriesResponse{Reports: make([]DeliveryReportJSON, len(reports))}
	for i, rep := range reports {
		resp.Reports[i] = DeliveryReportJSON{
			Index:       rep.Index,
			Source:      rep.Source,
			Destination: rep.Destination,
			Status:      string(rep.Status),
			Path:        rep.Path,
			Length:      rep.Length,
			Roads:       rep.Roads,
			Error:       rep.Error,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSnapshot handles GET /api/v1/snapshot.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.Scene())
}

// HandleNearest handles GET /api/v1/nearest?lat=..&lng=..
func (h *Handlers) HandleNearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "lat")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "lng")
		return
	}
	if err := validateCoord(lat, lng); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "")
		return
	}

	res, err := h.backend.Nearest(lat, lng)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NearestResponse{Intersection: res.Intersection, DistanceMeters: res.Dist})
}

// HandleConnectivity handles GET /api/v1/connectivity.
func (h *Handlers) HandleConnectivity(w http.ResponseWriter, r *http.Request) {
	rep, err := h.backend.Connectivity()
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	isolated := rep.Remaining()
	if isolated == nil {
		isolated = []network.ID{}
	}
	writeJSON(w, http.StatusOK, ConnectivityResponse{
		OK:         rep.OK(),
		Isolated:   isolated,
		Components: rep.Components,
		Largest:    rep.Largest,
		Version:    rep.Version,
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	st := h.backend.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		Version:       st.Version,
		Intersections: st.Intersections,
		Roads:         st.Roads,
		Houses:        st.Houses,
		Located:       st.Located,
		RoadView:      ViewStatsJSON(st.RoadView),
		DeliveryView:  ViewStatsJSON(st.DeliveryView),
	})
}

func decodePathRequest(w http.ResponseWriter, r *http.Request) (start, end network.ID, ok bool) {
	// Enforce Content-Type.
	if !isJSON(r) {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return 0, 0, false
	}

	var req PathRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPathBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return 0, 0, false
	}
	if req.Start == nil {
		writeError(w, http.StatusBadRequest, "missing_vertex", "start")
		return 0, 0, false
	}
	if req.End == nil {
		writeError(w, http.StatusBadRequest, "missing_vertex", "end")
		return 0, 0, false
	}
	return *req.Start, *req.End, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

// writeQueryError maps core errors to HTTP statuses.
func (h *Handlers) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrUnknownVertex):
		writeError(w, http.StatusUnprocessableEntity, "unknown_vertex", "")
	case errors.Is(err, network.ErrUnknownHouse):
		writeError(w, http.StatusUnprocessableEntity, "unknown_house", "")
	case errors.Is(err, routing.ErrPointTooFar):
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		h.log.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func validateCoord(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
