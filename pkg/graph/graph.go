// Package graph implements the road network's routing representation: a
// CSR (Compressed Sparse Row) directed graph plus the Dijkstra-family
// searches the matchers run over it (plain single-source, upper-bounded
// single-source for UBODT generation, and A*-guided point-to-point for
// STMATCH).
package graph

import "math"

// NetworkGraph is a directed graph in CSR form. Edge weights are plain
// float64 lengths in the same unit as the network's coordinates, to
// stay unit-agnostic over arbitrary Euclidean geometry rather than
// fixed integer weights.
//
// Each CSR slot also carries the original dense edge index (EdgeIndex)
// it came from, because UBODT generation and path reconstruction need
// to recover "which network edge is this" from a CSR position, not
// just "which node does it lead to".
type NetworkGraph struct {
	NumNodes uint32
	NumEdges uint32

	FirstOut  []uint32  // len NumNodes+1; FirstOut[u]..FirstOut[u+1] are edges leaving u
	Head      []uint32  // len NumEdges; target node of each CSR slot
	Weight    []float64 // len NumEdges; edge length of each CSR slot
	EdgeIndex []uint32  // len NumEdges; source network edge index of each CSR slot
}

// EdgesFrom returns the CSR slot range for edges leaving node u.
func (g *NetworkGraph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// NoNode is the sentinel "no such node" value, used for comparisons
// against missing predecessors.
const NoNode = math.MaxUint32
