package stmatch

import (
	"sort"

	"github.com/azybler/mapmatch/pkg/network"
)

// dummyStep is one out-edge of the transient per-trajectory graph.
type dummyStep struct {
	to     uint32
	weight float64
}

// DummyGraph holds the transient pseudo-node adjacency built once per
// trajectory: every candidate becomes a node with dummy
// edges to/from its edge's real endpoints, and candidates sharing an
// edge are chained in offset order so a search can hop between them
// without round-tripping through the edge's end nodes.
type DummyGraph struct {
	out map[uint32][]dummyStep
}

// BuildDummyGraph constructs the DummyGraph for one trajectory's full
// candidate set.
//
// Candidates tied at the same offset on the same edge are ordered by
// ascending Candidate.Index before chaining, so the chain stays acyclic
// regardless of which observation produced which candidate.
func BuildDummyGraph(trajCandidates [][]network.Candidate) *DummyGraph {
	dg := &DummyGraph{out: make(map[uint32][]dummyStep)}

	byEdge := make(map[network.EdgeIndex][]*network.Candidate)
	for i := range trajCandidates {
		for j := range trajCandidates[i] {
			c := &trajCandidates[i][j]
			dg.out[c.Edge.Source] = append(dg.out[c.Edge.Source], dummyStep{to: c.Index, weight: c.Offset})
			dg.out[c.Index] = append(dg.out[c.Index], dummyStep{to: c.Edge.Target, weight: c.Edge.Length - c.Offset})
			byEdge[c.Edge.Index] = append(byEdge[c.Edge.Index], c)
		}
	}

	for _, group := range byEdge {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Offset != group[j].Offset {
				return group[i].Offset < group[j].Offset
			}
			return group[i].Index < group[j].Index
		})
		for i := 0; i+1 < len(group); i++ {
			a, b := group[i], group[i+1]
			dg.out[a.Index] = append(dg.out[a.Index], dummyStep{to: b.Index, weight: b.Offset - a.Offset})
		}
	}

	return dg
}
