// Package networktest builds the reference road networks used across tests.
package networktest

import (
	"testing"

	"roadnet/pkg/network"
)

// Roads of the reference network, keyed by id.
var Roads = []network.Road{
	{ID: 1, Name: "Anwar st", Length: 10},
	{ID: 2, Name: "AlQudarat st", Length: 15},
	{ID: 3, Name: "Sheikh Zayed st", Length: 8},
	{ID: 4, Name: "Khaleej AlArab st", Length: 12},
	{ID: 5, Name: "Qarm st", Length: 7},
}

// Connections of the reference network as (intersection, road) pairs.
var Connections = [][2]network.ID{
	{1, 4},
	{1, 2},
	{2, 3},
	{3, 4},
	{4, 5},
}

// Reference builds intersections 1..5 with the five reference roads.
// Intersection 5 is left without an incident road.
//
//	1 --road 4 (12)-- 4 --road 5 (7)-- 5
//	|                 |
//	road 2 (15)       road 4 (12)
//	|                 |
//	2 --road 3 (8)--- 3
func Reference(t testing.TB) *network.Network {
	t.Helper()
	n := network.New()
	for i := network.ID(1); i <= 5; i++ {
		n.RegisterIntersection(i)
	}
	for _, r := range Roads {
		if err := n.CreateRoadWithID(r.ID, r.Name, r.Length); err != nil {
			t.Fatalf("create road %d: %v", r.ID, err)
		}
	}
	for _, c := range Connections {
		if err := n.ConnectIntersectionToRoad(c[0], c[1]); err != nil {
			t.Fatalf("connect %d-%d: %v", c[0], c[1], err)
		}
	}
	return n
}

// WithHouses builds the reference network plus houses 1..5, house i attached
// to intersection i.
func WithHouses(t testing.TB) *network.Network {
	t.Helper()
	n := Reference(t)
	for i := network.ID(1); i <= 5; i++ {
		h, err := n.CreateHouse(i)
		if err != nil {
			t.Fatalf("create house at %d: %v", i, err)
		}
		if err := n.ConnectHouseToIntersection(h, i); err != nil {
			t.Fatalf("connect house %d: %v", h, err)
		}
	}
	return n
}

// Split builds two islands with no road between them:
//
//	10 --road 20 (3)-- 20        30 --road 40 (4)-- 40
func Split(t testing.TB) *network.Network {
	t.Helper()
	n := network.New()
	for _, id := range []network.ID{10, 20, 30, 40} {
		n.RegisterIntersection(id)
	}
	if err := n.CreateRoadWithID(20, "West rd", 3); err != nil {
		t.Fatal(err)
	}
	if err := n.CreateRoadWithID(40, "East rd", 4); err != nil {
		t.Fatal(err)
	}
	for _, c := range [][2]network.ID{{10, 20}, {30, 40}} {
		if err := n.ConnectIntersectionToRoad(c[0], c[1]); err != nil {
			t.Fatal(err)
		}
	}
	return n
}
