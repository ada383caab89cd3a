// Package osm imports OpenStreetMap extracts into a road network.
//
// Every car-accessible highway way is split at junction nodes (nodes shared by
// two or more ways, and way endpoints). Junctions become intersections and
// each piece between two junctions becomes a road whose length is the
// great-circle length of its geometry in meters. Addressable buildings become
// houses attached to the nearest intersection.
package osm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"roadnet/pkg/geo"
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
	"roadnet/pkg/routing"
)

// DefaultMaxHouseMeters bounds how far a house may be from the intersection
// it is attached to.
const DefaultMaxHouseMeters = 250.0

// minRoadLength keeps coincident junctions from producing zero-length roads.
const minRoadLength = 0.001

// Format is the encoding of an OSM extract.
type Format int

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = iota
	FormatPBF
	FormatXML
)

// FormatFromPath returns FormatXML for .osm and .xml files and FormatPBF otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return FormatXML
	}
	return FormatPBF
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only road pieces entirely inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Options configures Import.
type Options struct {
	Format Format
	BBox   BBox

	// LargestComponentOnly drops every intersection outside the largest
	// connected component.
	LargestComponentOnly bool

	// SkipHouses ignores buildings entirely.
	SkipHouses bool

	// MaxHouseMeters bounds house attachment. Non-positive uses DefaultMaxHouseMeters.
	MaxHouseMeters float64

	Logger *slog.Logger
}

// Stats counts what the import kept and dropped.
type Stats struct {
	Ways              int
	Segments          int
	SkippedSegments   int // missing node coordinates
	BBoxFiltered      int
	DroppedComponents int
	Intersections     int
	Roads             int
	Houses            int
	UnattachedHouses  int
}

// Result is an imported network. Intersection ids are compact (1..N), road
// ids follow them, and house ids follow the roads, so the three kinds never
// share a vertex. A consequence is that a path enters and leaves every road
// vertex, so reported lengths count each road's length twice.
type Result struct {
	Network *network.Network
	Stats   Stats

	// NodeIDs maps each intersection back to its OSM node.
	NodeIDs map[network.ID]osm.NodeID
}

// scanner is the subset shared by osmpbf.Scanner and osmxml.Scanner.
type scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

func newScanner(ctx context.Context, r io.Reader, f Format, skipNodes, skipWays bool) scanner {
	if f == FormatXML {
		return osmxml.New(ctx, r)
	}
	s := osmpbf.New(ctx, r, 1)
	s.SkipNodes = skipNodes
	s.SkipWays = skipWays
	s.SkipRelations = true
	return s
}

// wayInfo holds parsed way data collected during pass 1.
type wayInfo struct {
	Name    string
	NodeIDs []osm.NodeID
}

// segment is the piece of a way between two consecutive junctions.
type segment struct {
	name     string
	from, to osm.NodeID
	length   float64
}

// ImportFile opens path and imports it. FormatAuto is resolved from the extension.
func ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if opts.Format == FormatAuto {
		opts.Format = FormatFromPath(path)
	}
	return Import(ctx, f, opts)
}

// Import reads an OSM extract and builds a network from it. The reader is
// consumed twice (seeks back to start for the second pass), so it must
// implement io.ReadSeeker. FormatAuto is read as PBF.
func Import(ctx context.Context, rs io.ReadSeeker, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Format == FormatAuto {
		opts.Format = FormatPBF
	}
	if opts.MaxHouseMeters <= 0 {
		opts.MaxHouseMeters = DefaultMaxHouseMeters
	}

	// Pass 1: Scan ways to collect road and building node references.
	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo
	var buildings [][]osm.NodeID

	sc := newScanner(ctx, rs, opts.Format, true, false)
	for sc.Scan() {
		w, ok := sc.Object().(*osm.Way)
		if !ok {
			continue
		}

		switch {
		case isDrivable(w.Tags):
			if len(w.Nodes) < 2 {
				continue
			}
			ways = append(ways, wayInfo{Name: roadName(w), NodeIDs: wayNodeIDs(w, referenced)})
		case !opts.SkipHouses && isHouse(w.Tags) && len(w.Nodes) > 0:
			buildings = append(buildings, wayNodeIDs(w, referenced))
		}
	}
	if err := sc.Err(); err != nil {
		sc.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	sc.Close()

	logger.Info("pass 1 complete", "ways", len(ways), "buildings", len(buildings), "referenced_nodes", len(referenced))

	// Pass 2: Scan nodes for coordinates and address points.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]network.Point, len(referenced))
	var houses []network.Point

	sc = newScanner(ctx, rs, opts.Format, false, true)
	for sc.Scan() {
		n, ok := sc.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			coords[n.ID] = network.Point{Lat: n.Lat, Lng: n.Lon}
		}
		if !opts.SkipHouses && isHouse(n.Tags) {
			houses = append(houses, network.Point{Lat: n.Lat, Lng: n.Lon})
		}
	}
	if err := sc.Err(); err != nil {
		sc.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	sc.Close()

	logger.Info("pass 2 complete", "coordinates", len(coords), "address_points", len(houses))

	stats := Stats{Ways: len(ways)}
	for _, b := range buildings {
		if p, ok := centroid(b, coords); ok {
			houses = append(houses, p)
		} else {
			stats.UnattachedHouses++
		}
	}

	segments := splitWays(ways, coords, opts.BBox, &stats)
	if opts.LargestComponentOnly {
		segments = largestComponent(segments, &stats)
	}

	res := assemble(segments, coords, &stats)
	attachHouses(res.Network, houses, opts.MaxHouseMeters, &stats)
	res.Stats = stats

	if stats.SkippedSegments > 0 {
		logger.Warn("skipped road pieces with missing node coordinates", "count", stats.SkippedSegments)
	}
	if stats.BBoxFiltered > 0 {
		logger.Info("filtered road pieces outside bounding box", "count", stats.BBoxFiltered)
	}
	logger.Info("import complete",
		"intersections", stats.Intersections,
		"roads", stats.Roads,
		"houses", stats.Houses,
		"unattached_houses", stats.UnattachedHouses,
		"dropped_components", stats.DroppedComponents)
	return res, nil
}

func wayNodeIDs(w *osm.Way, referenced map[osm.NodeID]struct{}) []osm.NodeID {
	ids := make([]osm.NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = wn.ID
		referenced[wn.ID] = struct{}{}
	}
	return ids
}

func centroid(nodes []osm.NodeID, coords map[osm.NodeID]network.Point) (network.Point, bool) {
	var sum network.Point
	count := 0
	for _, id := range nodes {
		p, ok := coords[id]
		if !ok {
			continue
		}
		sum.Lat += p.Lat
		sum.Lng += p.Lng
		count++
	}
	if count == 0 {
		return network.Point{}, false
	}
	return network.Point{Lat: sum.Lat / float64(count), Lng: sum.Lng / float64(count)}, true
}

// splitWays cuts every way at its junction nodes.
func splitWays(ways []wayInfo, coords map[osm.NodeID]network.Point, bbox BBox, stats *Stats) []segment {
	uses := make(map[osm.NodeID]int)
	for _, w := range ways {
		for _, id := range w.NodeIDs {
			uses[id]++
		}
	}
	isJunction := func(w wayInfo, i int) bool {
		return i == 0 || i == len(w.NodeIDs)-1 || uses[w.NodeIDs[i]] > 1
	}

	useBBox := !bbox.IsZero()
	var segments []segment
	for _, w := range ways {
		start := 0
		for i := 1; i < len(w.NodeIDs); i++ {
			if !isJunction(w, i) {
				continue
			}
			piece := w.NodeIDs[start : i+1]
			start = i

			length, ok, inside := pieceLength(piece, coords, bbox, useBBox)
			switch {
			case !ok:
				stats.SkippedSegments++
				continue
			case !inside:
				stats.BBoxFiltered++
				continue
			case piece[0] == piece[len(piece)-1]:
				continue // closed loop back to the same junction
			}
			segments = append(segments, segment{
				name:   w.Name,
				from:   piece[0],
				to:     piece[len(piece)-1],
				length: max(length, minRoadLength),
			})
		}
	}
	stats.Segments = len(segments)
	return segments
}

// pieceLength sums great-circle distances along piece. ok is false when a
// node has no coordinate; inside is false when a node falls outside bbox.
func pieceLength(piece []osm.NodeID, coords map[osm.NodeID]network.Point, bbox BBox, useBBox bool) (length float64, ok, inside bool) {
	prev, ok := coords[piece[0]]
	if !ok {
		return 0, false, false
	}
	inside = !useBBox || bbox.Contains(prev.Lat, prev.Lng)
	for _, id := range piece[1:] {
		p, ok := coords[id]
		if !ok {
			return 0, false, false
		}
		if useBBox && !bbox.Contains(p.Lat, p.Lng) {
			inside = false
		}
		length += geo.Haversine(prev.Lat, prev.Lng, p.Lat, p.Lng)
		prev = p
	}
	return length, true, inside
}

// junctionIndex returns the sorted junction nodes of segments and their positions.
func junctionIndex(segments []segment) ([]osm.NodeID, map[osm.NodeID]uint32) {
	var nodes []osm.NodeID
	for _, s := range segments {
		nodes = append(nodes, s.from, s.to)
	}
	slices.Sort(nodes)
	nodes = slices.Compact(nodes)

	index := make(map[osm.NodeID]uint32, len(nodes))
	for i, id := range nodes {
		index[id] = uint32(i)
	}
	return nodes, index
}

// largestComponent keeps only the segments of the biggest connected
// component. Ties go to the component holding the smallest node id.
func largestComponent(segments []segment, stats *Stats) []segment {
	nodes, index := junctionIndex(segments)
	if len(nodes) == 0 {
		return segments
	}

	uf := graph.NewUnionFind(uint32(len(nodes)))
	for _, s := range segments {
		uf.Union(index[s.from], index[s.to])
	}

	best := uf.Find(0)
	roots := map[uint32]struct{}{}
	for i := range uint32(len(nodes)) {
		r := uf.Find(i)
		roots[r] = struct{}{}
		if uf.Size(r) > uf.Size(best) {
			best = r
		}
	}
	stats.DroppedComponents = len(roots) - 1

	kept := segments[:0:0]
	for _, s := range segments {
		if uf.Find(index[s.from]) == best {
			kept = append(kept, s)
		}
	}
	return kept
}

// assemble creates the network: junctions in node-id order, then roads in
// segment order.
func assemble(segments []segment, coords map[osm.NodeID]network.Point, stats *Stats) *Result {
	nodes, _ := junctionIndex(segments)
	numIntersections := network.ID(len(nodes))
	firstRoad := numIntersections + 1
	firstHouse := firstRoad + network.ID(len(segments))

	n := network.New(network.WithFirstRoadID(firstRoad), network.WithFirstHouseID(firstHouse))
	res := &Result{Network: n, NodeIDs: make(map[network.ID]osm.NodeID, len(nodes))}

	ids := make(map[osm.NodeID]network.ID, len(nodes))
	for i, nodeID := range nodes {
		id := network.ID(i + 1)
		ids[nodeID] = id
		res.NodeIDs[id] = nodeID
		n.RegisterIntersection(id)
		// Every junction has a coordinate: segments without one were skipped.
		_ = n.SetLocation(id, coords[nodeID])
	}

	for _, s := range segments {
		road, err := n.CreateRoad(s.name, s.length)
		if err != nil {
			continue // unreachable: length is at least minRoadLength
		}
		_ = n.ConnectIntersectionToRoad(ids[s.from], road)
		_ = n.ConnectIntersectionToRoad(ids[s.to], road)
	}

	stats.Intersections = len(nodes)
	stats.Roads = len(segments)
	return res
}

// attachHouses puts each house point on its nearest intersection. Houses are
// attached in a fixed order (address nodes, then building centroids) so ids
// are reproducible.
func attachHouses(n *network.Network, houses []network.Point, maxMeters float64, stats *Stats) {
	if len(houses) == 0 {
		return
	}
	snapper := routing.NewSnapper(n.State(), maxMeters)
	for _, p := range houses {
		res, err := snapper.Nearest(p.Lat, p.Lng)
		if err != nil {
			stats.UnattachedHouses++
			continue
		}
		id, err := n.CreateHouse(res.Intersection)
		if err != nil {
			stats.UnattachedHouses++
			continue
		}
		_ = n.ConnectHouseToIntersection(id, res.Intersection)
		stats.Houses++
	}
}
