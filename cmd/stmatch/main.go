// Command stmatch matches GPS trajectories against a road network
// using on-demand bounded Dijkstra searches instead of a precomputed
// UBODT.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/mm/stmatch"
	"github.com/azybler/mapmatch/pkg/mmconfig"
	"github.com/azybler/mapmatch/pkg/netio"
	"github.com/azybler/mapmatch/pkg/progress"
	"github.com/azybler/mapmatch/pkg/result"
	"github.com/azybler/mapmatch/pkg/trajectory"
)

func main() {
	networkPath := flag.String("network", "", "Path to the network CSV file")
	gpsPath := flag.String("gps", "", "Path to the input trajectory CSV file")
	gpsID := flag.String("gps-id", "id", "Trajectory id column name")
	gpsGeom := flag.String("gps-geom", "geom", "Trajectory geometry column name")
	k := flag.Int("candidates", 8, "Number of candidates kept per observation")
	radius := flag.Float64("radius", 300, "Candidate search radius")
	gpsError := flag.Float64("error", 50, "GPS error standard deviation")
	reverseTolerance := flag.Float64("reverse-tolerance", 0, "Same-edge reverse tolerance, as a fraction of edge length")
	vmax := flag.Float64("vmax", 30, "Assumed maximum travel speed")
	factor := flag.Float64("factor", 1.5, "Search-bound multiplier")
	output := flag.String("output", "mr.csv", "Output match-result CSV path")
	outputFields := flag.String("output-fields", "id,opath,cpath,mgeom", "Comma-separated output columns")
	workers := flag.Int("workers", 0, "Trajectory matching worker pool size, capped at the number of CPUs (0 = number of CPUs)")
	logLevel := flag.String("log-level", "info", "Log level: debug or info")
	flag.Parse()

	log := progress.NewStdLogger(*logLevel == "debug")

	if *networkPath == "" || *gpsPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: stmatch --network <file.csv> --gps <file.csv> [--output mr.csv]")
		os.Exit(1)
	}

	cfg := stmatch.Config{K: *k, Radius: *radius, GPSError: *gpsError, ReverseTolerance: *reverseTolerance, VMax: *vmax, Factor: *factor}
	if err := mmconfig.ValidateSTMatch(cfg); err != nil {
		log.Warnf("invalid configuration: %v", err)
		os.Exit(1)
	}

	start := time.Now()

	log.Infof("Reading network from %s...", *networkPath)
	netFile, err := os.Open(*networkPath)
	if err != nil {
		log.Warnf("failed to open network file: %v", err)
		os.Exit(1)
	}
	net, err := netio.ReadCSV(netFile)
	netFile.Close()
	if err != nil {
		log.Warnf("failed to read network: %v", err)
		os.Exit(1)
	}
	log.Infof("Network: %d nodes, %d edges", net.NumNodes(), net.NumEdges())

	log.Infof("Building graph...")
	edges := make([]graph.EdgeInput, len(net.Edges))
	for i, e := range net.Edges {
		edges[i] = graph.EdgeInput{Source: e.Source, Target: e.Target, Length: e.Length, Index: e.Index}
	}
	g := graph.Build(net.NumNodes(), edges)

	log.Infof("Reading trajectories from %s...", *gpsPath)
	gpsFile, err := os.Open(*gpsPath)
	if err != nil {
		log.Warnf("failed to open trajectory file: %v", err)
		os.Exit(1)
	}
	trajs, err := trajectory.ReadCSVNamed(gpsFile, *gpsID, *gpsGeom)
	gpsFile.Close()
	if err != nil {
		log.Warnf("failed to read trajectories: %v", err)
		os.Exit(1)
	}
	log.Infof("Read %d trajectories", len(trajs))

	outFile, err := os.Create(*output)
	if err != nil {
		log.Warnf("failed to create output file: %v", err)
		os.Exit(1)
	}
	defer outFile.Close()

	fields := parseFields(*outputFields)
	writer := result.WithLocking(result.NewCSVWriter(outFile, fields), log)
	if err := writer.WriteHeader(); err != nil {
		log.Warnf("failed to write header: %v", err)
		os.Exit(1)
	}

	matcher := stmatch.New(net, g, cfg)
	log.Infof("Matching...")

	poolSize := runtime.NumCPU()
	if *workers >= 1 && *workers < poolSize {
		poolSize = *workers
	}
	if len(trajs) > 0 && poolSize > len(trajs) {
		poolSize = len(trajs)
	}

	var matched, failed int64
	grp, _ := errgroup.WithContext(context.Background())
	grp.SetLimit(poolSize)
	for _, t := range trajs {
		grp.Go(func() error {
			mr, err := matcher.Match(t.ID, t.Points, t.Durations)
			if err != nil {
				log.Warnf("trajectory %d: %v", t.ID, err)
				atomic.AddInt64(&failed, 1)
				return nil
			}
			if err := writer.WriteResult(mr); err != nil {
				log.Warnf("trajectory %d: failed to write result: %v", t.ID, err)
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&matched, 1)
			return nil
		})
	}
	grp.Wait()

	log.Infof("Done in %s. Matched %d, failed %d, wrote %s", time.Since(start).Round(time.Millisecond), matched, failed, *output)
}

func parseFields(s string) []result.Field {
	names := strings.Split(s, ",")
	fields := make([]result.Field, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			fields = append(fields, result.Field(n))
		}
	}
	return fields
}
