package ubodt

import "github.com/azybler/mapmatch/pkg/network"

// ConstructCompletePath assembles the contiguous cpath for FMM from a
// sequence of matched candidates (one per observation) using this
// table to bridge the gaps between consecutive candidates' edges.
// net resolves bridging EdgeIndex values back to external
// edge ids. Returns the edge id sequence, the cpath index at which
// each observation's matched edge appears, and false if some gap could
// not be bridged (PathGap).
func (t *Table) ConstructCompletePath(net *network.Network, cands []*network.Candidate, reverseTolerance float64) (cpath []int64, indices []int, ok bool) {
	if len(cands) == 0 {
		return nil, nil, true
	}

	cpath = []int64{cands[0].Edge.ID}
	indices = []int{0}

	for i := 1; i < len(cands); i++ {
		a, b := cands[i-1], cands[i]

		if a.Edge == b.Edge {
			if a.Offset <= b.Offset {
				indices = append(indices, len(cpath)-1)
				continue
			}
			if a.Offset-b.Offset <= reverseTolerance*a.Edge.Length {
				indices = append(indices, len(cpath)-1)
				continue
			}
		}

		bridge, bridgeOK := t.ReconstructEdgeSequence(a.Edge.Target, b.Edge.Source)
		if !bridgeOK {
			return nil, nil, false
		}
		for _, e := range bridge {
			cpath = append(cpath, net.Edges[e].ID)
		}
		cpath = append(cpath, b.Edge.ID)
		indices = append(indices, len(cpath)-1)
	}

	return cpath, indices, true
}
