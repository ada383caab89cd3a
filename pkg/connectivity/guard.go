// Package connectivity checks, and optionally repairs, intersections that no
// road reaches.
package connectivity

import (
	"errors"
	"fmt"

	"roadnet/pkg/graph"
	"roadnet/pkg/network"
)

var (
	// ErrNoFallbackRoad is returned by auto-repair when the fallback road does not exist.
	ErrNoFallbackRoad = errors.New("connectivity: fallback road does not exist")

	// ErrUnknownMode is returned for a Policy whose mode is not recognized.
	ErrUnknownMode = errors.New("connectivity: unknown mode")
)

// Mode selects what Ensure does with isolated intersections.
type Mode int

const (
	// ModeReportOnly lists isolated intersections and changes nothing.
	ModeReportOnly Mode = iota
	// ModeAutoRepair connects every isolated intersection to a fallback road.
	ModeAutoRepair
)

func (m Mode) String() string {
	switch m {
	case ModeReportOnly:
		return "report-only"
	case ModeAutoRepair:
		return "auto-repair"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the textual form used in configuration files.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "report-only", "report":
		return ModeReportOnly, nil
	case "auto-repair", "repair":
		return ModeAutoRepair, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Policy is the connectivity configuration applied after construction.
type Policy struct {
	Mode         Mode
	FallbackRoad network.ID // used by ModeAutoRepair
}

// ReportOnly returns the non-repairing policy.
func ReportOnly() Policy {
	return Policy{Mode: ModeReportOnly}
}

// AutoRepair returns a policy that connects isolated intersections to roadID.
func AutoRepair(roadID network.ID) Policy {
	return Policy{Mode: ModeAutoRepair, FallbackRoad: roadID}
}

// Report is the inspectable outcome of Ensure.
type Report struct {
	Mode Mode

	// Isolated lists the intersections that had no incident road when Ensure
	// ran, in ascending order.
	Isolated []network.ID

	// Repaired lists the intersections connected to the fallback road. It is
	// empty in report-only mode.
	Repaired []network.ID

	// Components is the number of weakly connected components of the road
	// view after Ensure, and Largest the vertex count of the biggest one.
	Components int
	Largest    int

	Version uint64
}

// Remaining returns the intersections still isolated after Ensure.
func (r *Report) Remaining() []network.ID {
	if r.Mode == ModeAutoRepair {
		return nil
	}
	return r.Isolated
}

// OK reports whether every intersection has at least one road.
func (r *Report) OK() bool {
	return len(r.Remaining()) == 0
}

// Ensure applies p to n. In auto-repair mode the repair is a single step:
// either every isolated intersection is connected or, when the fallback road
// is missing, nothing changes and ErrNoFallbackRoad is returned.
func Ensure(n *network.Network, p Policy) (*Report, error) {
	rep := &Report{Mode: p.Mode}

	switch p.Mode {
	case ModeReportOnly:
		rep.Isolated = n.IsolatedIntersections()
	case ModeAutoRepair:
		repaired, err := n.ConnectIsolated(p.FallbackRoad)
		if err != nil {
			if errors.Is(err, network.ErrUnknownRoad) {
				return nil, fmt.Errorf("%w: road %d", ErrNoFallbackRoad, p.FallbackRoad)
			}
			return nil, err
		}
		rep.Isolated = repaired
		rep.Repaired = repaired
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(p.Mode))
	}

	st := n.State()
	comps := graph.Components(graph.Build(st, graph.RoadOptions()))
	rep.Components = len(comps)
	if len(comps) > 0 {
		rep.Largest = len(comps[0])
	}
	rep.Version = st.Version
	return rep, nil
}
