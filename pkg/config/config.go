// Package config reads and writes network definition files in HCL.
//
// A file declares roads, intersections with their ordered road lists, houses,
// and the connectivity and graph-view policies:
//
//	graph {
//	  directed     = false
//	  house_weight = 1
//	}
//
//	connectivity {
//	  mode          = "auto-repair"
//	  fallback_road = 5
//	}
//
//	road "Anwar st" {
//	  id     = 1
//	  length = 10
//	}
//
//	intersection {
//	  id    = 1
//	  roads = [4, 2]
//	}
//
//	house {
//	  intersection = 1
//	}
package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"roadnet/pkg/connectivity"
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
	"roadnet/pkg/routing"
)

// ErrInvalid is returned for a file that parses but does not describe a valid network.
var ErrInvalid = errors.New("config: invalid network file")

// hclFile is the top-level structure of a network file for decoding.
type hclFile struct {
	Graph         *hclGraph         `hcl:"graph,block"`
	Connectivity  *hclConnectivity  `hcl:"connectivity,block"`
	Roads         []hclRoad         `hcl:"road,block"`
	Intersections []hclIntersection `hcl:"intersection,block"`
	Houses        []hclHouse        `hcl:"house,block"`
}

type hclGraph struct {
	Directed    *bool    `hcl:"directed,optional"`
	HouseWeight *float64 `hcl:"house_weight,optional"`
}

type hclConnectivity struct {
	Mode         string `hcl:"mode,optional"`
	FallbackRoad *int64 `hcl:"fallback_road,optional"`
}

type hclRoad struct {
	Name   string  `hcl:"name,label"`
	ID     *int64  `hcl:"id,optional"`
	Length float64 `hcl:"length"`
}

type hclIntersection struct {
	ID    int64    `hcl:"id"`
	Roads []int64  `hcl:"roads,optional"`
	Lat   *float64 `hcl:"lat,optional"`
	Lng   *float64 `hcl:"lng,optional"`
}

type hclHouse struct {
	ID           *int64 `hcl:"id,optional"`
	Intersection int64  `hcl:"intersection"`
}

// Config is a loaded network file.
type Config struct {
	Network      *network.Network
	Connectivity connectivity.Policy
	Road         graph.Options
	Delivery     graph.Options
}

// New wraps n in a config with the default policies: report-only
// connectivity and undirected views with the default house weight.
func New(n *network.Network) *Config {
	return &Config{
		Network:      n,
		Connectivity: connectivity.ReportOnly(),
		Road:         graph.RoadOptions(),
		Delivery:     graph.DeliveryOptions(),
	}
}

// RoutingOptions returns routing.DefaultOptions with the file's graph policy applied.
func (c *Config) RoutingOptions() routing.Options {
	opts := routing.DefaultOptions()
	opts.Road = c.Road
	opts.Delivery = c.Delivery
	return opts
}

// Load parses the network file at path.
func Load(path string) (*Config, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse network file %s: %w", path, diags)
	}
	return decode(f, path)
}

// Parse parses a network file held in memory. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse network file %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, filename string) (*Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode network file %s: %w", filename, diags)
	}

	cfg := New(network.New())
	if err := applyGraph(cfg, parsed.Graph); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := applyConnectivity(cfg, parsed.Connectivity); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := build(cfg.Network, &parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func applyGraph(cfg *Config, g *hclGraph) error {
	if g == nil {
		return nil
	}
	if g.Directed != nil {
		cfg.Road.Directed = *g.Directed
		cfg.Delivery.Directed = *g.Directed
	}
	if g.HouseWeight != nil {
		if *g.HouseWeight < 0 {
			return fmt.Errorf("%w: house_weight %v is negative", ErrInvalid, *g.HouseWeight)
		}
		cfg.Delivery.HouseWeight = *g.HouseWeight
	}
	return nil
}

func applyConnectivity(cfg *Config, c *hclConnectivity) error {
	if c == nil {
		cfg.Connectivity = connectivity.ReportOnly()
		return nil
	}
	mode, err := connectivity.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	cfg.Connectivity.Mode = mode
	if mode == connectivity.ModeAutoRepair {
		if c.FallbackRoad == nil {
			return fmt.Errorf("%w: auto-repair needs fallback_road", ErrInvalid)
		}
		cfg.Connectivity.FallbackRoad = network.ID(*c.FallbackRoad)
	}
	return nil
}

// build populates n. Explicit ids are placed before allocated ones so an
// allocated id never takes a number the file names later.
func build(n *network.Network, f *hclFile) error {
	for _, in := range f.Intersections {
		id := network.ID(in.ID)
		if !n.RegisterIntersection(id) {
			return fmt.Errorf("%w: intersection %d declared twice", ErrInvalid, id)
		}
		switch {
		case in.Lat != nil && in.Lng != nil:
			if err := n.SetLocation(id, network.Point{Lat: *in.Lat, Lng: *in.Lng}); err != nil {
				return err
			}
		case in.Lat != nil || in.Lng != nil:
			return fmt.Errorf("%w: intersection %d needs both lat and lng", ErrInvalid, id)
		}
	}

	for _, r := range f.Roads {
		if r.ID == nil {
			continue
		}
		if err := n.CreateRoadWithID(network.ID(*r.ID), r.Name, r.Length); err != nil {
			return fmt.Errorf("road %q: %w", r.Name, err)
		}
	}
	for _, r := range f.Roads {
		if r.ID != nil {
			continue
		}
		if _, err := n.CreateRoad(r.Name, r.Length); err != nil {
			return fmt.Errorf("road %q: %w", r.Name, err)
		}
	}

	for _, in := range f.Intersections {
		for _, road := range in.Roads {
			if err := n.ConnectIntersectionToRoad(network.ID(in.ID), network.ID(road)); err != nil {
				return fmt.Errorf("intersection %d: %w", in.ID, err)
			}
		}
	}

	for _, h := range f.Houses {
		if h.ID == nil {
			continue
		}
		id := network.ID(*h.ID)
		if err := n.CreateHouseWithID(id, network.ID(h.Intersection)); err != nil {
			return fmt.Errorf("house %d: %w", id, err)
		}
		if err := n.ConnectHouseToIntersection(id, network.ID(h.Intersection)); err != nil {
			return fmt.Errorf("house %d: %w", id, err)
		}
	}
	for _, h := range f.Houses {
		if h.ID != nil {
			continue
		}
		id, err := n.CreateHouse(network.ID(h.Intersection))
		if err != nil {
			return fmt.Errorf("house at %d: %w", h.Intersection, err)
		}
		if err := n.ConnectHouseToIntersection(id, network.ID(h.Intersection)); err != nil {
			return fmt.Errorf("house %d: %w", id, err)
		}
	}
	return nil
}
