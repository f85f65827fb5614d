// Package ubodtgen computes the UBODT: a bounded Dijkstra from every
// node of the network graph, run across a worker pool, emitting one
// record per reachable (source, target) pair with cost <= delta.
package ubodtgen

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/network"
	"github.com/azybler/mapmatch/pkg/progress"
	"github.com/azybler/mapmatch/pkg/ubodt"
)

// Config controls UBODT generation.
type Config struct {
	// Delta is the upper bound on shortest-path cost; no record is
	// emitted for a pair whose true cost exceeds it.
	Delta float64
	// Workers is the number of concurrent per-source Dijkstra searches.
	// Values below 1 are treated as 1.
	Workers int
}

// Sink receives generated records from a single goroutine — it does
// not need to be safe for concurrent use.
type Sink func(*ubodt.Record) error

// Generate runs a bounded Dijkstra from every node in g and delivers
// one record per reachable (source, target) pair with cost <=
// cfg.Delta to sink.
//
// Per-source searches are distributed across cfg.Workers goroutines via
// errgroup.Group.SetLimit. Each worker owns a single QueryState arena
// that it reuses across every source it's assigned — QueryState.Reset
// rolls back only the nodes touched by the previous search, so the
// arena never needs reallocating between sources. Completed batches are
// pushed through a bounded channel to a single goroutine that calls
// sink, serializing output.
func Generate(ctx context.Context, g *graph.NetworkGraph, net *network.Network, cfg Config, sink Sink, log progress.Logger) error {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	type batch struct {
		records []*ubodt.Record
	}

	const batchSize = 256
	results := make(chan batch, workers*2)

	writeErrCh := make(chan error, 1)
	go func() {
		var written int
		for b := range results {
			for _, r := range b.records {
				if err := sink(r); err != nil {
					writeErrCh <- err
					// drain the rest so workers don't block forever
					for range results {
					}
					return
				}
				written++
			}
		}
		if log != nil {
			log.Debugf("ubodtgen: wrote %d records", written)
		}
		writeErrCh <- nil
	}()

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	var nextSource int64 = -1
	numNodes := int64(g.NumNodes)

	for w := 0; w < workers; w++ {
		grp.Go(func() error {
			qs := graph.NewQueryState(g.NumNodes)
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				s := atomic.AddInt64(&nextSource, 1)
				if s >= numNodes {
					return nil
				}
				source := uint32(s)

				graph.Dijkstra(g, qs, source, cfg.Delta)

				var recs []*ubodt.Record
				for t := uint32(0); t < g.NumNodes; t++ {
					if t == source || !qs.Reached(t) {
						continue
					}
					dist := qs.Dist(t)
					if dist > cfg.Delta {
						continue
					}
					path := qs.PathTo(t)
					if len(path) == 0 {
						continue
					}
					firstSlot := path[0]
					recs = append(recs, &ubodt.Record{
						Source: source,
						Target: t,
						FirstN: g.Head[firstSlot],
						PrevN:  qs.Prev(t),
						NextE:  g.EdgeIndex[firstSlot],
						Cost:   dist,
					})
					if len(recs) >= batchSize {
						select {
						case results <- batch{records: recs}:
						case <-gctx.Done():
							return gctx.Err()
						}
						recs = nil
					}
				}
				if len(recs) > 0 {
					select {
					case results <- batch{records: recs}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		})
	}

	runErr := grp.Wait()
	close(results)
	writeErr := <-writeErrCh

	if runErr != nil {
		return runErr
	}
	return writeErr
}
