// Package network implements the road network: the edge/node tables, an
// R-tree spatial index over edge geometry, and k-nearest-neighbor
// candidate search for map matching.
package network

import (
	"github.com/tidwall/rtree"

	"github.com/azybler/mapmatch/pkg/geom"
)

// NodeIndex is a dense, zero-based node identifier.
type NodeIndex = uint32

// EdgeIndex is a dense, zero-based edge identifier.
type EdgeIndex = uint32

// Edge is one directed network edge. index is dense [0, |E|); id is an
// opaque external identifier that may be negative or non-contiguous.
// Edges are immutable after Network construction.
type Edge struct {
	Index  EdgeIndex
	ID     int64
	Source NodeIndex
	Target NodeIndex
	Length float64
	Geom   *geom.LineString
}

// Network owns the edge table, the external<->internal id maps for
// nodes and edges, the node point table, and an R-tree whose leaves
// are (bbox(edge.geom), edge_index).
type Network struct {
	Edges []Edge

	nodeIDToIndex map[int64]NodeIndex
	nodeExternal  []int64 // dense index -> external id
	nodePoint     []geom.Point

	edgeIDToIndex map[int64]EdgeIndex

	index rtree.RTreeG[EdgeIndex]
}

// NumNodes returns the number of distinct nodes in the network.
func (n *Network) NumNodes() uint32 { return uint32(len(n.nodeExternal)) }

// NumEdges returns the number of edges in the network.
func (n *Network) NumEdges() uint32 { return uint32(len(n.Edges)) }

// NodeExternalID returns the external id for a dense node index.
func (n *Network) NodeExternalID(idx NodeIndex) int64 { return n.nodeExternal[idx] }

// NodeIndexByID returns the dense index for an external node id.
func (n *Network) NodeIndexByID(id int64) (NodeIndex, bool) {
	idx, ok := n.nodeIDToIndex[id]
	return idx, ok
}

// NodePoint returns a node's point: the first or last point of one of
// its incident edges, per the data model (node geometry is derived,
// not stored separately).
func (n *Network) NodePoint(idx NodeIndex) geom.Point { return n.nodePoint[idx] }

// EdgeIndexByID returns the dense index for an external edge id.
func (n *Network) EdgeIndexByID(id int64) (EdgeIndex, bool) {
	idx, ok := n.edgeIDToIndex[id]
	return idx, ok
}

// queryBBox searches the R-tree for edges whose bounding box intersects
// the square of the given radius centered on p, invoking visit for each
// hit. Visit returning false stops the scan early.
func (n *Network) queryBBox(p geom.Point, radius float64, visit func(e *Edge) bool) {
	min := [2]float64{p.X - radius, p.Y - radius}
	max := [2]float64{p.X + radius, p.Y + radius}
	n.index.Search(min, max, func(_, _ [2]float64, edgeIdx EdgeIndex) bool {
		return visit(&n.Edges[edgeIdx])
	})
}
