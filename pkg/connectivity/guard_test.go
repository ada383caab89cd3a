package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadnet/pkg/network"
	"roadnet/pkg/network/networktest"
)

func TestEnsureReportOnlyListsEveryIsolatedIntersection(t *testing.T) {
	n := networktest.Split(t)
	before := n.Version()

	rep, err := Ensure(n, ReportOnly())
	require.NoError(t, err)

	assert.Equal(t, ModeReportOnly, rep.Mode)
	assert.Equal(t, []network.ID{20, 40}, rep.Isolated)
	assert.Empty(t, rep.Repaired)
	assert.False(t, rep.OK())
	assert.Equal(t, before, n.Version(), "report-only must not mutate")
	assert.Equal(t, 2, rep.Components)
	assert.Equal(t, 2, rep.Largest)
}

func TestEnsureAutoRepair(t *testing.T) {
	n := networktest.Reference(t)

	rep, err := Ensure(n, AutoRepair(5))
	require.NoError(t, err)

	assert.Equal(t, []network.ID{5}, rep.Repaired)
	assert.True(t, rep.OK())
	assert.Empty(t, n.IsolatedIntersections())

	in, ok := n.State().Intersection(5)
	require.True(t, ok)
	assert.Equal(t, []network.ID{5}, in.Roads)
	assert.Equal(t, 1, rep.Components)
	assert.Equal(t, 5, rep.Largest)
}

func TestEnsureAutoRepairMissingRoad(t *testing.T) {
	n := networktest.Split(t)
	before := n.Version()

	rep, err := Ensure(n, AutoRepair(99))
	require.ErrorIs(t, err, ErrNoFallbackRoad)
	assert.Nil(t, rep)
	assert.Equal(t, before, n.Version())
	assert.Equal(t, []network.ID{20, 40}, n.IsolatedIntersections())
}

func TestEnsureAutoRepairNothingToDo(t *testing.T) {
	n := networktest.Reference(t)
	_, err := Ensure(n, AutoRepair(5))
	require.NoError(t, err)
	v := n.Version()

	rep, err := Ensure(n, AutoRepair(5))
	require.NoError(t, err)
	assert.Empty(t, rep.Repaired)
	assert.Equal(t, v, n.Version())
}

func TestEnsureUnknownMode(t *testing.T) {
	_, err := Ensure(network.New(), Policy{Mode: Mode(9)})
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeReportOnly, false},
		{"report-only", ModeReportOnly, false},
		{"auto-repair", ModeAutoRepair, false},
		{"repair", ModeAutoRepair, false},
		{"fix-it", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmptyNetwork(t *testing.T) {
	rep, err := Ensure(network.New(), ReportOnly())
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Zero(t, rep.Components)
	assert.Zero(t, rep.Largest)
}
