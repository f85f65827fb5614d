// Package stmatch implements the on-demand bounded-Dijkstra matching
// strategy: rather than a precomputed UBODT, every
// transition pair is resolved by a fresh bounded Dijkstra over a
// composite graph that layers the trajectory's candidates as dummy
// nodes atop the base NetworkGraph.
package stmatch

import (
	"math"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/mm"
	"github.com/azybler/mapmatch/pkg/network"
)

// Config holds the per-call matching parameters.
type Config struct {
	K                int
	Radius           float64
	GPSError         float64
	ReverseTolerance float64
	// VMax is the assumed maximum travel speed, used with per-gap
	// durations (when known) to bound each transition's search.
	VMax float64
	// Factor multiplies the bound; also the fallback multiplier
	// applied to Euclidean distance when durations aren't available.
	Factor float64
}

// Matcher runs STMATCH matching against one fixed network/graph pair.
type Matcher struct {
	net *network.Network
	g   *graph.NetworkGraph
	cfg Config
}

// New returns a Matcher over net/g. g must be the CSR graph built from
// net's edges (graph.Build).
func New(net *network.Network, g *graph.NetworkGraph, cfg Config) *Matcher {
	return &Matcher{net: net, g: g, cfg: cfg}
}

// Match runs candidate search, builds the per-trajectory DummyGraph and
// CompositeGraph, then the Viterbi lattice and path reconstruction.
// durations, if non-nil, gives each observation gap's elapsed time
// (len(points)-1 entries); nil falls back to the Euclidean*factor*4
// bound.
func (m *Matcher) Match(trajectoryID int64, points []geom.Point, durations []float64) (*mm.MatchResult, error) {
	trajCands, err := network.SearchTrajectoryCandidates(m.net, points, m.cfg.K, m.cfg.Radius)
	if err != nil {
		return nil, err
	}

	dummy := BuildDummyGraph(trajCands)
	composite := NewCompositeGraph(m.g, dummy)

	base := m.net.NumNodes()
	totalCands := 0
	for _, layer := range trajCands {
		totalCands += len(layer)
	}
	// layerOf maps a candidate's pseudo node index back to its
	// observation index, so shortestPathDist can recover which gap's
	// eu_dist/duration bounds a given (a, b) pair without threading an
	// explicit gap argument through mm.ShortestPathDist's signature.
	layerOf := make([]int, totalCands)
	for li, layer := range trajCands {
		for j := range layer {
			layerOf[layer[j].Index-base] = li
		}
	}

	qs := graph.NewQueryState(base + uint32(totalCands))

	euDists := geom.SegmentLengths(points)

	s := &searcher{m: m, composite: composite, qs: qs, euDists: euDists, durations: durations, base: base, layerOf: layerOf}

	tg := mm.NewTransitionGraph(trajCands, m.cfg.GPSError)
	mm.ForwardPass(tg, euDists, s.shortestPathDist)

	result := mm.AssembleResult(trajectoryID, tg, func(cands []*network.Candidate) ([]int64, []int, bool) {
		return m.constructCompletePath(cands)
	})

	if len(result.Cpath) > 0 {
		result.Mgeom = m.completeGeometry(result.Cpath, result.MatchedCandidates)
	}
	return result, nil
}

// searcher bundles the per-trajectory state shortestPathDist needs: the
// composite graph, a reusable QueryState arena (one bounded Dijkstra
// per transition pair, kept private to this search rather than shared),
// and the gap distances/durations driving each pair's bound.
type searcher struct {
	m         *Matcher
	composite *CompositeGraph
	qs        *graph.QueryState
	euDists   []float64
	durations []float64
	base      uint32 // net.NumNodes(), the first pseudo node index
	layerOf   []int  // pseudo node index - base -> observation index
}

// shortestPathDist runs single_source_upper_bound_dijkstra on the
// composite graph from a's candidate node with δ_pair =
// factor*vmax*Δt if durations are known, else eu_dist*factor*4, returning
// +Inf if b's candidate node wasn't reached within the bound.
func (s *searcher) shortestPathDist(a, b *network.Candidate) float64 {
	gap := s.layerOf[a.Index-s.base]
	eu := s.euDists[gap]

	bound := eu * s.m.cfg.Factor * 4
	if s.durations != nil && gap < len(s.durations) {
		bound = s.m.cfg.Factor * s.m.cfg.VMax * s.durations[gap]
	}

	graph.DijkstraOver(s.composite, s.qs, a.Index, bound)
	if !s.qs.Reached(b.Index) {
		return math.Inf(1)
	}
	return s.qs.Dist(b.Index)
}
