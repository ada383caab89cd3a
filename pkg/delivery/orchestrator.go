// Package delivery runs package-distribution batches: an ordered list of
// (source house, destination house) requests, one shortest-path query each.
package delivery

import (
	"context"
	"errors"
	"log/slog"

	"roadnet/pkg/network"
	"roadnet/pkg/routing"
)

// Status is the outcome of one delivery request.
type Status string

const (
	// StatusDelivered means a path was found.
	StatusDelivered Status = "delivered"
	// StatusNoPath means the houses are not connected.
	StatusNoPath Status = "no_path"
	// StatusRejected means the request referenced something that does not exist.
	StatusRejected Status = "rejected"
)

// Request asks for a delivery path between two houses.
type Request struct {
	Source      network.ID
	Destination network.ID
}

// Report is the per-request result. Reports are returned in request order.
type Report struct {
	Index       int
	Source      network.ID
	Destination network.ID
	Status      Status
	Path        []network.ID
	Length      float64
	Roads       []string
	Error       string
}

// PathFinder computes delivery routes between houses.
type PathFinder interface {
	DeliveryPath(ctx context.Context, source, destination network.ID) (routing.Route, bool, error)
}

// Orchestrator processes delivery batches sequentially.
type Orchestrator struct {
	finder PathFinder
	log    *slog.Logger
}

// New creates an orchestrator. A nil logger uses slog.Default().
func New(finder PathFinder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{finder: finder, log: logger}
}

// Distribute processes reqs strictly in order. A request that has no path or
// references an unknown house gets its own report and the batch continues.
// Only cancellation of ctx stops the batch; the reports produced so far are
// returned with the context error.
func (o *Orchestrator) Distribute(ctx context.Context, reqs []Request) ([]Report, error) {
	reports := make([]Report, 0, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		rep := Report{Index: i, Source: req.Source, Destination: req.Destination}
		route, ok, err := o.finder.DeliveryPath(ctx, req.Source, req.Destination)
		switch {
		case err != nil && isContextErr(err) && ctx.Err() != nil:
			return reports, ctx.Err()
		case err != nil:
			rep.Status = StatusRejected
			rep.Error = err.Error()
			o.log.Warn("delivery rejected", "index", i, "source", req.Source, "destination", req.Destination, "error", err)
		case !ok:
			rep.Status = StatusNoPath
			o.log.Info("no delivery path", "index", i, "source", req.Source, "destination", req.Destination)
		default:
			rep.Status = StatusDelivered
			rep.Path = route.Vertices
			rep.Length = route.Length
			rep.Roads = route.Roads
			o.log.Debug("delivered", "index", i, "source", req.Source, "destination", req.Destination, "length", route.Length)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
