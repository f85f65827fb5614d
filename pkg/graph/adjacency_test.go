package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// composite glues a tiny two-node base graph to one extra pseudo node
// reachable only through a side-channel edge, mirroring how STMATCH
// layers dummy candidate nodes on top of the base NetworkGraph.
type composite struct {
	base  NetworkAdjacency
	extra map[uint32][]Step
}

type Step struct {
	to     uint32
	weight float64
}

func (c composite) VisitEdgesFrom(u uint32, visit func(to uint32, weight float64, edgeIndex uint32)) {
	c.base.VisitEdgesFrom(u, visit)
	for _, s := range c.extra[u] {
		visit(s.to, s.weight, NoNode)
	}
}

func TestDijkstraOverComposite(t *testing.T) {
	g := Build(2, []EdgeInput{{Source: 0, Target: 1, Length: 5, Index: 0}})
	c := composite{
		base:  NetworkAdjacency{G: g},
		extra: map[uint32][]Step{1: {{to: 2, weight: 1}}},
	}

	qs := NewQueryState(3)
	DijkstraOver(c, qs, 0, 100)

	assert.InDelta(t, 5.0, qs.Dist(1), 1e-9)
	assert.InDelta(t, 6.0, qs.Dist(2), 1e-9)
	assert.True(t, qs.Reached(2))
}

func TestDijkstraOverRespectsBound(t *testing.T) {
	g := Build(2, []EdgeInput{{Source: 0, Target: 1, Length: 5, Index: 0}})
	c := composite{
		base:  NetworkAdjacency{G: g},
		extra: map[uint32][]Step{1: {{to: 2, weight: 10}}},
	}

	qs := NewQueryState(3)
	DijkstraOver(c, qs, 0, 10)

	assert.True(t, qs.Reached(1))
	assert.False(t, qs.Reached(2))
}
