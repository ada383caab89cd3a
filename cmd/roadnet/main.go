// Command roadnet queries and maintains road network files from the shell.
//
//	roadnet path     -network city.hcl START END
//	roadnet suggest  -network city.hcl START END
//	roadnet deliver  -network city.hcl SRC:DST [SRC:DST...]
//	roadnet snapshot -network city.hcl [-output scene.json]
//	roadnet check    -network city.hcl [-repair ROAD | -report-only] [-output fixed.hcl]
//	roadnet import   -input extract.osm.pbf -output city.hcl [-bbox ...] [-largest] [-no-houses]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"roadnet/internal/app"
	"roadnet/pkg/config"
	"roadnet/pkg/connectivity"
	"roadnet/pkg/delivery"
	"roadnet/pkg/network"
	"roadnet/pkg/osm"
	"roadnet/pkg/routing"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: roadnet <command> [flags] [args]

commands:
  path      shortest intersection path between START and END
  suggest   road names along the shortest path between START and END
  deliver   delivery paths for SRC:DST house pairs, in order
  snapshot  visualization snapshot as JSON
  check     report (or repair) intersections without roads
  import    convert an OpenStreetMap extract into a network file
`

func main() {
	if err := app.LoadEnv(app.Env("ENV_FILE", ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "load env: %v\n", err)
		os.Exit(exitFail)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cmd, args := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", app.Env("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")

	var c command
	switch cmd {
	case "path":
		c = &pathCmd{}
	case "suggest":
		c = &suggestCmd{}
	case "deliver":
		c = &deliverCmd{}
	case "snapshot":
		c = &snapshotCmd{}
	case "check":
		c = &checkCmd{}
	case "import":
		c = &importCmd{}
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "roadnet: unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	c.flags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	logger := app.NewLogger(*logLevel, "text", stderr)

	code, err := c.run(fs.Args(), stdout, logger)
	if err != nil {
		fmt.Fprintf(stderr, "roadnet %s: %v\n", cmd, err)
	}
	return code
}

type command interface {
	flags(fs *flag.FlagSet)
	run(args []string, stdout io.Writer, logger *slog.Logger) (int, error)
}

var errUsage = errors.New("bad arguments")

// networkFlags loads a network file and applies its connectivity policy.
type networkFlags struct {
	path    string
	timeout time.Duration
}

func (f *networkFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.path, "network", app.Env("NETWORK", ""), "Path to an HCL network file")
	fs.DurationVar(&f.timeout, "timeout", app.EnvDuration("QUERY_TIMEOUT", 10*time.Second), "Deadline for each query")
}

func (f *networkFlags) service(logger *slog.Logger) (*routing.Service, error) {
	if f.path == "" {
		return nil, fmt.Errorf("%w: -network is required", errUsage)
	}
	cfg, err := config.Load(f.path)
	if err != nil {
		return nil, err
	}
	rep, err := connectivity.Ensure(cfg.Network, cfg.Connectivity)
	if err != nil {
		return nil, err
	}
	if remaining := rep.Remaining(); len(remaining) > 0 {
		logger.Warn("intersections without roads", "ids", remaining)
	}

	opts := cfg.RoutingOptions()
	opts.QueryTimeout = f.timeout
	opts.Logger = logger
	return routing.NewService(cfg.Network, opts), nil
}

func parseID(s string) (network.ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, s)
	}
	return network.ID(v), nil
}

func parsePair(args []string) (network.ID, network.ID, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%w: want START END, got %d arguments", errUsage, len(args))
	}
	start, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func failure(err error) (int, error) {
	if errors.Is(err, errUsage) {
		return exitUsage, err
	}
	return exitFail, err
}

func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type pathCmd struct{ net networkFlags }

func (c *pathCmd) flags(fs *flag.FlagSet) { c.net.register(fs) }

func (c *pathCmd) run(args []string, stdout io.Writer, logger *slog.Logger) (int, error) {
	start, end, err := parsePair(args)
	if err != nil {
		return failure(err)
	}
	svc, err := c.net.service(logger)
	if err != nil {
		return failure(err)
	}

	path, ok, err := svc.FindShortestPath(context.Background(), start, end)
	if err != nil {
		return failure(err)
	}
	if !ok {
		fmt.Fprintln(stdout, "no path")
		return exitFail, nil
	}

	ids := make([]string, len(path.Vertices))
	for i, v := range path.Vertices {
		ids[i] = strconv.FormatInt(int64(v), 10)
	}
	fmt.Fprintf(stdout, "%s (length %s)\n", strings.Join(ids, " -> "), formatLength(path.Length))
	return exitOK, nil
}

type suggestCmd struct{ net networkFlags }

func (c *suggestCmd) flags(fs *flag.FlagSet) { c.net.register(fs) }

func (c *suggestCmd) run(args []string, stdout io.Writer, logger *slog.Logger) (int, error) {
	start, end, err := parsePair(args)
	if err != nil {
		return failure(err)
	}
	svc, err := c.net.service(logger)
	if err != nil {
		return failure(err)
	}

	names, ok, err := svc.RoutingSuggestions(context.Background(), start, end)
	if err != nil {
		return failure(err)
	}
	if !ok {
		fmt.Fprintln(stdout, "no path")
		return exitFail, nil
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return exitOK, nil
}

type deliverCmd struct{ net networkFlags }

func (c *deliverCmd) flags(fs *flag.FlagSet) { c.net.register(fs) }

func (c *deliverCmd) run(args []string, stdout io.Writer, logger *slog.Logger) (int, error) {
	if len(args) == 0 {
		return failure(fmt.Errorf("%w: want at least one SRC:DST pair", errUsage))
	}
	reqs := make([]delivery.Request, 0, len(args))
	for _, arg := range args {
		src, dst, found := strings.Cut(arg, ":")
		if !found {
			return failure(fmt.Errorf("%w: %q is not SRC:DST", errUsage, arg))
		}
		s, err := parseID(src)
		if err != nil {
			return failure(err)
		}
		d, err := parseID(dst)
		if err != nil {
			return failure(err)
		}
		reqs = append(reqs, delivery.Request{Source: s, Destination: d})
	}

	svc, err := c.net.service(logger)
	if err != nil {
		return failure(err)
	}
	reports, err := delivery.New(svc, logger).Distribute(context.Background(), reqs)
	if err != nil {
		return failure(err)
	}

	code := exitOK
	for _, r := range reports {
		switch r.Status {
		case delivery.StatusDelivered:
			fmt.Fprintf(stdout, "%d:%d %s length=%s roads=%s\n",
				r.Source, r.Destination, r.Status, formatLength(r.Length), strings.Join(r.Roads, ","))
		case delivery.StatusRejected:
			fmt.Fprintf(stdout, "%d:%d %s %s\n", r.Source, r.Destination, r.Status, r.Error)
			code = exitFail
		default:
			fmt.Fprintf(stdout, "%d:%d %s\n", r.Source, r.Destination, r.Status)
			code = exitFail
		}
	}
	return code, nil
}

type snapshotCmd struct {
	net    networkFlags
	output string
}

func (c *snapshotCmd) flags(fs *flag.FlagSet) {
	c.net.register(fs)
	fs.StringVar(&c.output, "output", "", "Write the snapshot here instead of stdout")
}

func (c *snapshotCmd) run(args []string, stdout io.Writer, logger *slog.Logger) (int, error) {
	if len(args) != 0 {
		return failure(fmt.Errorf("%w: snapshot takes no arguments", errUsage))
	}
	svc, err := c.net.service(logger)
	if err != nil {
		return failure(err)
	}

	w := stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return failure(err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(svc.Scene()); err != nil {
		return failure(err)
	}
	return exitOK, nil
}

type checkCmd struct {
	path       string
	repair     int64
	reportOnly bool
	output     string
}

func (c *checkCmd) flags(fs *flag.FlagSet) {
	fs.StringVar(&c.path, "network", app.Env("NETWORK", ""), "Path to an HCL network file")
	fs.Int64Var(&c.repair, "repair", 0, "Connect isolated intersections to this road id (overrides the file's connectivity block)")
	fs.BoolVar(&c.reportOnly, "report-only", false, "Only report isolated intersections, whatever the file's policy")
	fs.StringVar(&c.output, "output", "", "Write the (repaired) network to this HCL file")
}

func (c *checkCmd) run(args []string, stdout io.Writer, logger *slog.Logger) (int, error) {
	if c.path == "" {
		return failure(fmt.Errorf("%w: -network is required", errUsage))
	}
	cfg, err := config.Load(c.path)
	if err != nil {
		return failure(err)
	}

	policy := cfg.Connectivity
	switch {
	case c.reportOnly && c.repair != 0:
		return failure(fmt.Errorf("%w: -repair and -report-only are exclusive", errUsage))
	case c.reportOnly:
		policy = connectivity.ReportOnly()
	case c.repair != 0:
		policy = connectivity.AutoRepair(network.ID(c.repair))
	}
	rep, err := connectivity.Ensure(cfg.Network, policy)
	if err != nil {
		return failure(err)
	}
	logger.Info("connectivity checked", "mode", rep.Mode.String(), "version", rep.Version)

	fmt.Fprintf(stdout, "mode: %s\n", rep.Mode)
	fmt.Fprintf(stdout, "isolated: %v\n", rep.Isolated)
	if rep.Mode == connectivity.ModeAutoRepair {
		fmt.Fprintf(stdout, "repaired: %v\n", rep.Repaired)
	}
	fmt.Fprintf(stdout, "components: %d (largest %d)\n", rep.Components, rep.Largest)

	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return failure(err)
		}
		defer f.Close()
		if err := config.Write(f, cfg); err != nil {
			return failure(err)
		}
	}

	if !rep.OK() {
		return exitFail, nil
	}
	return exitOK, nil
}

type importCmd struct {
	input    string
	output   string
	bbox     string
	largest  bool
	noHouses bool
}

func (c *importCmd) flags(fs *flag.FlagSet) {
	fs.StringVar(&c.input, "input", "", "Path to an .osm.pbf or .osm file")
	fs.StringVar(&c.output, "output", "network.hcl", "Output network file path")
	fs.StringVar(&c.bbox, "bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	fs.BoolVar(&c.largest, "largest", false, "Keep only the largest connected component")
	fs.BoolVar(&c.noHouses, "no-houses", false, "Skip buildings")
}

func (c *importCmd) run(args []string, stdout io.Writer, logger *slog.Logger) (int, error) {
	if c.input == "" {
		return failure(fmt.Errorf("%w: -input is required", errUsage))
	}
	opts := osm.Options{
		LargestComponentOnly: c.largest,
		SkipHouses:           c.noHouses,
		Logger:               logger,
	}
	if c.bbox != "" {
		bbox, err := parseBBox(c.bbox)
		if err != nil {
			return failure(err)
		}
		opts.BBox = bbox
	}

	start := time.Now()
	res, err := osm.ImportFile(context.Background(), c.input, opts)
	if err != nil {
		return failure(err)
	}

	f, err := os.Create(c.output)
	if err != nil {
		return failure(err)
	}
	defer f.Close()
	if err := config.Write(f, config.New(res.Network)); err != nil {
		return failure(err)
	}

	st := res.Stats
	fmt.Fprintf(stdout, "wrote %s: %d intersections, %d roads, %d houses (%s)\n",
		c.output, st.Intersections, st.Roads, st.Houses, time.Since(start).Round(time.Millisecond))
	return exitOK, nil
}

func parseBBox(s string) (osm.BBox, error) {
	var minLat, minLng, maxLat, maxLng float64
	if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
		return osm.BBox{}, fmt.Errorf("%w: invalid bbox %q (expected minLat,minLng,maxLat,maxLng)", errUsage, s)
	}
	if minLat > maxLat || minLng > maxLng {
		return osm.BBox{}, fmt.Errorf("%w: bbox minimums exceed maximums", errUsage)
	}
	return osm.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}, nil
}
