package ubodt

import "github.com/azybler/mapmatch/pkg/network"

// ReconstructEdgeSequence walks first-hop records from source to target,
// returning the edge indices traversed. Returns an empty (nil) slice if
// source == target. If the chain can't reach target (a gap beyond
// delta or a genuinely disconnected pair), it returns nil and false.
func (t *Table) ReconstructEdgeSequence(source, target network.NodeIndex) ([]network.EdgeIndex, bool) {
	if source == target {
		return nil, true
	}

	var edges []network.EdgeIndex
	cur := source
	for {
		r, ok := t.Lookup(cur, target)
		if !ok {
			return nil, false
		}
		edges = append(edges, r.NextE)
		if r.FirstN == target {
			return edges, true
		}
		cur = r.FirstN
	}
}
