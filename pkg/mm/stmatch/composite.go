package stmatch

import "github.com/azybler/mapmatch/pkg/graph"

// CompositeGraph merges a DummyGraph with the base NetworkGraph without
// materializing either into the other: node indices below the base
// graph's node count draw from NetworkGraph
// adjacency, plus any dummy out-edges sourced at that node (e.g.
// edge.source -> candidate_node); indices at or above it draw entirely
// from the DummyGraph.
type CompositeGraph struct {
	baseNumNodes uint32
	base         graph.NetworkAdjacency
	dummy        *DummyGraph
}

// NewCompositeGraph builds a view over base and dummy. base must be
// the same NetworkGraph the trajectory's candidates were projected
// onto.
func NewCompositeGraph(base *graph.NetworkGraph, dummy *DummyGraph) *CompositeGraph {
	return &CompositeGraph{baseNumNodes: base.NumNodes, base: graph.NetworkAdjacency{G: base}, dummy: dummy}
}

func (c *CompositeGraph) VisitEdgesFrom(u uint32, visit func(to uint32, weight float64, edgeIndex uint32)) {
	if u < c.baseNumNodes {
		c.base.VisitEdgesFrom(u, visit)
	}
	for _, s := range c.dummy.out[u] {
		visit(s.to, s.weight, graph.NoNode)
	}
}
