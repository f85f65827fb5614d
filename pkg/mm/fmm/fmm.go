// Package fmm implements the UBODT-backed matching strategy:
// shortest_path_dist resolves entirely from a precomputed Table, so
// matching one trajectory never touches the network graph's Dijkstra
// machinery at all.
package fmm

import (
	"math"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mm"
	"github.com/azybler/mapmatch/pkg/network"
	"github.com/azybler/mapmatch/pkg/ubodt"
)

// Config holds the per-call matching parameters, passed explicitly
// through the matcher rather than held as process-global state.
type Config struct {
	// K is the maximum number of candidates kept per observation.
	K int
	// Radius is the candidate search radius.
	Radius float64
	// GPSError is the standard deviation used by the emission
	// probability's Gaussian.
	GPSError float64
	// ReverseTolerance allows a same-edge backward offset within
	// ReverseTolerance*length to be treated as a zero-cost forward
	// move (an allowed U-turn within tolerance).
	ReverseTolerance float64
}

// Matcher runs FMM matching against one fixed network and UBODT table.
type Matcher struct {
	net   *network.Network
	table *ubodt.Table
	cfg   Config
}

// New returns a Matcher over net, using table for shortest-path lookups.
func New(net *network.Network, table *ubodt.Table, cfg Config) *Matcher {
	return &Matcher{net: net, table: table, cfg: cfg}
}

// Match runs candidate search, the Viterbi lattice, and path
// reconstruction for one trajectory's observed points, returning a
// MatchResult. EmptyCandidates (no qualifying edge for some
// observation) is the only error this returns; every other failure
// mode (disconnection, a path gap) is reported inside the result
// itself, not as a Go error.
func (m *Matcher) Match(trajectoryID int64, points []geom.Point) (*mm.MatchResult, error) {
	trajCands, err := network.SearchTrajectoryCandidates(m.net, points, m.cfg.K, m.cfg.Radius)
	if err != nil {
		return nil, err
	}

	tg := mm.NewTransitionGraph(trajCands, m.cfg.GPSError)
	euDists := geom.SegmentLengths(points)
	mm.ForwardPass(tg, euDists, m.shortestPathDist)

	result := mm.AssembleResult(trajectoryID, tg, func(cands []*network.Candidate) ([]int64, []int, bool) {
		return m.table.ConstructCompletePath(m.net, cands, m.cfg.ReverseTolerance)
	})

	if len(result.Cpath) > 0 {
		result.Mgeom = m.completeGeometry(result.Cpath, result.MatchedCandidates)
	}
	return result, nil
}

// shortestPathDist implements a four-case rule, in order:
// forward progress on the same edge, a tolerated near-reverse on the
// same edge, a direct bridge when the edges are adjacent, and finally
// a UBODT lookup. A lookup miss (the true distance exceeds the table's
// delta, or the nodes are genuinely disconnected) yields +Inf, which
// ForwardPass treats as an outright rejected transition.
func (m *Matcher) shortestPathDist(a, b *network.Candidate) float64 {
	if a.Edge == b.Edge {
		if a.Offset <= b.Offset {
			return b.Offset - a.Offset
		}
		if a.Offset-b.Offset <= a.Edge.Length*m.cfg.ReverseTolerance {
			return 0
		}
	}

	if a.Edge.Target == b.Edge.Source {
		return (a.Edge.Length - a.Offset) + b.Offset
	}

	rec, ok := m.table.Lookup(a.Edge.Target, b.Edge.Source)
	if !ok {
		return math.Inf(1)
	}
	return (a.Edge.Length - a.Offset) + rec.Cost + b.Offset
}

// completeGeometry resolves cpath's external edge ids back to Edge
// pointers and clips the head/tail edges to the first and last
// observation's projection offsets (C2's complete_path_to_geometry).
func (m *Matcher) completeGeometry(cpath []int64, matched []mm.MatchedCandidate) *geom.LineString {
	edges := make([]*network.Edge, len(cpath))
	for i, id := range cpath {
		idx, ok := m.net.EdgeIndexByID(id)
		if !ok {
			return &geom.LineString{}
		}
		edges[i] = &m.net.Edges[idx]
	}
	first := matched[0].Candidate.Offset
	last := matched[len(matched)-1].Candidate.Offset
	return network.CompletePathToGeometry(edges, first, last)
}
