package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"roadnet/internal/app"
	"roadnet/pkg/api"
	"roadnet/pkg/config"
	"roadnet/pkg/connectivity"
	"roadnet/pkg/delivery"
	"roadnet/pkg/network"
	"roadnet/pkg/osm"
	"roadnet/pkg/routing"
)

func main() {
	envFile := app.Env("ENV_FILE", ".env")
	if err := app.LoadEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", envFile, err)
		os.Exit(1)
	}

	networkPath := flag.String("network", app.Env("NETWORK", ""), "Path to an HCL network file")
	osmPath := flag.String("osm", app.Env("OSM", ""), "Path to an .osm.pbf or .osm file (alternative to --network)")
	largest := flag.Bool("largest-component", app.Env("LARGEST_COMPONENT", "") == "true", "Keep only the largest connected component of an OSM import")
	port := flag.Int("port", app.EnvInt("PORT", 8080), "HTTP port")
	corsOrigin := flag.String("cors-origin", app.Env("CORS_ORIGIN", ""), "CORS allowed origin (empty = same-origin)")
	queryTimeout := flag.Duration("query-timeout", app.EnvDuration("QUERY_TIMEOUT", 2*time.Second), "Deadline for a single shortest-path query")
	logLevel := flag.String("log-level", app.Env("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", app.Env("LOG_FORMAT", "text"), "Log format: text or json")
	flag.Parse()

	logger := app.NewLogger(*logLevel, *logFormat, os.Stderr)
	slog.SetDefault(logger)

	start := time.Now()
	n, policy, opts, err := load(*networkPath, *osmPath, *largest, logger)
	if err != nil {
		logger.Error("failed to load network", "error", err)
		os.Exit(1)
	}

	rep, err := connectivity.Ensure(n, policy)
	if err != nil {
		logger.Error("connectivity check failed", "error", err)
		os.Exit(1)
	}
	if len(rep.Repaired) > 0 {
		logger.Info("connected isolated intersections", "count", len(rep.Repaired), "fallback_road", policy.FallbackRoad)
	}
	if remaining := rep.Remaining(); len(remaining) > 0 {
		logger.Warn("intersections without roads", "count", len(remaining), "ids", remaining)
	}

	opts.QueryTimeout = *queryTimeout
	opts.Logger = logger
	svc := routing.NewService(n, opts)
	stats := svc.Stats()
	logger.Info("ready",
		"intersections", stats.Intersections,
		"roads", stats.Roads,
		"houses", stats.Houses,
		"components", rep.Components,
		"elapsed", time.Since(start).Round(time.Millisecond))

	// Setup HTTP server.
	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(svc, delivery.New(svc, logger), logger)
	srv := api.NewServer(cfg, handlers, logger)

	if err := api.ListenAndServe(srv, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func load(networkPath, osmPath string, largest bool, logger *slog.Logger) (*network.Network, connectivity.Policy, routing.Options, error) {
	switch {
	case networkPath != "":
		logger.Info("loading network file", "path", networkPath)
		cfg, err := config.Load(networkPath)
		if err != nil {
			return nil, connectivity.Policy{}, routing.Options{}, err
		}
		return cfg.Network, cfg.Connectivity, cfg.RoutingOptions(), nil
	case osmPath != "":
		logger.Info("importing OSM extract", "path", osmPath)
		res, err := osm.ImportFile(context.Background(), osmPath, osm.Options{
			LargestComponentOnly: largest,
			Logger:               logger,
		})
		if err != nil {
			return nil, connectivity.Policy{}, routing.Options{}, err
		}
		return res.Network, connectivity.ReportOnly(), routing.DefaultOptions(), nil
	}
	return nil, connectivity.Policy{}, routing.Options{}, errors.New("one of --network or --osm is required")
}
