package config

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadnet/pkg/connectivity"
	"roadnet/pkg/graph"
	"roadnet/pkg/network"
	"roadnet/pkg/network/networktest"
	"roadnet/pkg/routing"
)

func TestLoadReference(t *testing.T) {
	cfg, err := Load("testdata/reference.hcl")
	require.NoError(t, err)

	assert.Equal(t, connectivity.AutoRepair(5), cfg.Connectivity)
	assert.False(t, cfg.Road.Directed)
	assert.True(t, cfg.Delivery.IncludeHouses)
	assert.Equal(t, 1.0, cfg.Delivery.HouseWeight)

	got := cfg.Network.State()
	want := networktest.WithHouses(t).State()
	if diff := cmp.Diff(want.Roads, got.Roads); diff != "" {
		t.Errorf("roads mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Houses, got.Houses); diff != "" {
		t.Errorf("houses mismatch (-want +got):\n%s", diff)
	}
	for _, w := range want.Intersections {
		g, ok := got.Intersection(w.ID)
		require.True(t, ok, "intersection %d", w.ID)
		assert.Equal(t, w.Roads, g.Roads, "intersection %d roads", w.ID)
		assert.Equal(t, w.Houses, g.Houses, "intersection %d houses", w.ID)
	}

	in, _ := got.Intersection(1)
	require.NotNil(t, in.Location)
	assert.InDelta(t, 25.2048, in.Location.Lat, 1e-9)
}

func TestLoadedNetworkAnswersQueries(t *testing.T) {
	cfg, err := Load("testdata/reference.hcl")
	require.NoError(t, err)

	_, err = connectivity.Ensure(cfg.Network, cfg.Connectivity)
	require.NoError(t, err)
	assert.Empty(t, cfg.Network.IsolatedIntersections())

	svc := routing.NewService(cfg.Network, cfg.RoutingOptions())
	names, ok, err := svc.RoutingSuggestions(context.Background(), 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Khaleej AlArab st", "Qarm st"}, names)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		file string
		want error
	}{
		{"testdata/unknown_road.hcl", network.ErrUnknownRoad},
		{"testdata/bad_length.hcl", network.ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := Load(tt.file)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does_not_exist.hcl")
	require.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "auto-repair without fallback",
			src:  `connectivity { mode = "auto-repair" }`,
			want: ErrInvalid,
		},
		{
			name: "unknown mode",
			src:  `connectivity { mode = "sometimes" }`,
			want: connectivity.ErrUnknownMode,
		},
		{
			name: "negative house weight",
			src:  `graph { house_weight = -1 }`,
			want: ErrInvalid,
		},
		{
			name: "duplicate intersection",
			src:  "intersection { id = 1 }\nintersection { id = 1 }\n",
			want: ErrInvalid,
		},
		{
			name: "half a location",
			src:  "intersection {\n  id  = 1\n  lat = 2\n}\n",
			want: ErrInvalid,
		},
		{
			name: "house at unknown intersection",
			src:  "house { intersection = 3 }\n",
			want: network.ErrUnknownIntersection,
		},
		{
			name: "duplicate road id",
			src:  "road \"a\" {\n  id     = 1\n  length = 1\n}\nroad \"b\" {\n  id     = 1\n  length = 2\n}\n",
			want: network.ErrDuplicateRoad,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte(`road "x" {`), "broken.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.hcl")
}

func TestParseAllocatesAroundExplicitIDs(t *testing.T) {
	src := `
road "auto" {
  length = 1
}

road "fixed" {
  id     = 1
  length = 2
}
`
	cfg, err := Parse([]byte(src), "ids.hcl")
	require.NoError(t, err)

	st := cfg.Network.State()
	require.Len(t, st.Roads, 2)
	assert.Equal(t, network.Road{ID: 1, Name: "fixed", Length: 2}, st.Roads[0])
	assert.Equal(t, network.Road{ID: 2, Name: "auto", Length: 1}, st.Roads[1])
}

func TestWriteRoundTrip(t *testing.T) {
	n := networktest.WithHouses(t)
	require.NoError(t, n.SetLocation(2, network.Point{Lat: 1.2903, Lng: 103.8519}))
	orig := n.State()

	in := New(n)
	in.Connectivity = connectivity.AutoRepair(3)
	in.Road = graph.Options{Directed: true, HouseWeight: graph.DefaultHouseWeight}
	in.Delivery = graph.Options{Directed: true, IncludeHouses: true, HouseWeight: 0.25}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	cfg, err := Parse(buf.Bytes(), "roundtrip.hcl")
	require.NoError(t, err, buf.String())

	got := cfg.Network.State()
	for _, diff := range []string{
		cmp.Diff(orig.Intersections, got.Intersections),
		cmp.Diff(orig.Roads, got.Roads),
		cmp.Diff(orig.Houses, got.Houses),
	} {
		if diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
	assert.Equal(t, connectivity.AutoRepair(3), cfg.Connectivity)
	assert.True(t, cfg.Road.Directed)
	assert.Equal(t, 0.25, cfg.Delivery.HouseWeight)
}

func TestWriteKeepsParsedHouseWeight(t *testing.T) {
	src := []byte(`
graph {
  house_weight = 0.5
}

road "Main st" {
  length = 3
}

intersection {
  id    = 1
  roads = [1]
}

house {
  intersection = 1
}
`)
	cfg, err := Parse(src, "weights.hcl")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	again, err := Parse(buf.Bytes(), "weights-out.hcl")
	require.NoError(t, err, buf.String())

	assert.Equal(t, 0.5, again.Delivery.HouseWeight)
	assert.Equal(t, cfg.Road, again.Road)
	assert.Equal(t, cfg.Delivery, again.Delivery)
}
