package stmatch

import (
	"math"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/mm"
	"github.com/azybler/mapmatch/pkg/network"
)

// constructCompletePath assembles cpath the way STMATCH does it:
// same-edge forward (or near-reverse within reverse_tolerance)
// pairs need no insertion; otherwise an A* search on the base
// NetworkGraph from a.edge.target to b.edge.source supplies the
// bridging edges, guided by straight-line distance to the target node
// since both endpoints are known up front. An empty bridge with
// a.edge.target != b.edge.source invalidates the whole path.
func (m *Matcher) constructCompletePath(cands []*network.Candidate) (cpath []int64, indices []int, ok bool) {
	if len(cands) == 0 {
		return nil, nil, true
	}

	cpath = []int64{cands[0].Edge.ID}
	indices = []int{0}

	qs := graph.NewQueryState(m.g.NumNodes)

	for i := 1; i < len(cands); i++ {
		a, b := cands[i-1], cands[i]

		if a.Edge == b.Edge {
			if a.Offset <= b.Offset {
				indices = append(indices, len(cpath)-1)
				continue
			}
			if a.Offset-b.Offset <= m.cfg.ReverseTolerance*a.Edge.Length {
				indices = append(indices, len(cpath)-1)
				continue
			}
		}

		if a.Edge.Target == b.Edge.Source {
			cpath = append(cpath, b.Edge.ID)
			indices = append(indices, len(cpath)-1)
			continue
		}

		targetPoint := m.net.NodePoint(b.Edge.Source)
		h := func(node uint32) float64 { return m.net.NodePoint(node).Dist(targetPoint) }
		graph.Astar(m.g, qs, a.Edge.Target, b.Edge.Source, math.Inf(1), h)
		path := qs.PathTo(b.Edge.Source)
		if path == nil {
			return nil, nil, false
		}
		for _, slot := range path {
			cpath = append(cpath, m.net.Edges[m.g.EdgeIndex[slot]].ID)
		}
		cpath = append(cpath, b.Edge.ID)
		indices = append(indices, len(cpath)-1)
	}

	return cpath, indices, true
}

// completeGeometry mirrors fmm.Matcher.completeGeometry: resolve cpath
// back to Edge pointers and clip head/tail to the matched offsets.
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
