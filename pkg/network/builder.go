package network

import (
	"fmt"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

// nodePointTolerance bounds how far a node's repeated geometry endpoint
// may drift from the point recorded the first time that external node
// id was seen, before the network is considered inconsistent.
const nodePointTolerance = 1e-6

// EdgeTuple is one row of network input: an external edge id, its
// external source/target node ids, and its geometry. Source is the
// start vertex of geom, target its end.
type EdgeTuple struct {
	ID       int64
	SourceID int64
	TargetID int64
	Geom     *geom.LineString
}

// Build constructs a Network from edge tuples, mapping external node
// ids to dense NodeIndex values as they're first seen and indexing
// every edge's bounding box into the R-tree. Duplicate (source,
// target) pairs are allowed and form parallel edges; a duplicate edge
// id, or a geometry endpoint inconsistent with a previously recorded
// node point, is a network error.
//
// Built as a two-pass node-dedup-then-index pass over arbitrary edge
// tuples, indexing each edge's bounding box into an R-tree rather than
// a plain CSR array.
func Build(tuples []EdgeTuple) (*Network, error) {
	n := &Network{
		nodeIDToIndex: make(map[int64]NodeIndex, len(tuples)),
		edgeIDToIndex: make(map[int64]EdgeIndex, len(tuples)),
	}

	resolveNode := func(id int64, p geom.Point) (NodeIndex, error) {
		if idx, ok := n.nodeIDToIndex[id]; ok {
			if n.nodePoint[idx].Dist(p) > nodePointTolerance {
				return 0, fmt.Errorf("%w: node %d has inconsistent geometry endpoint", mmerrors.ErrNetwork, id)
			}
			return idx, nil
		}
		idx := NodeIndex(len(n.nodeExternal))
		n.nodeIDToIndex[id] = idx
		n.nodeExternal = append(n.nodeExternal, id)
		n.nodePoint = append(n.nodePoint, p)
		return idx, nil
	}

	n.Edges = make([]Edge, 0, len(tuples))
	for _, t := range tuples {
		if _, dup := n.edgeIDToIndex[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate edge id %d", mmerrors.ErrNetwork, t.ID)
		}
		if t.Geom.NumPoints() < 2 {
			return nil, fmt.Errorf("%w: edge %d geometry has fewer than 2 points", mmerrors.ErrNetwork, t.ID)
		}

		first := t.Geom.PointAt(0)
		last := t.Geom.PointAt(t.Geom.NumPoints() - 1)

		srcIdx, err := resolveNode(t.SourceID, first)
		if err != nil {
			return nil, err
		}
		tgtIdx, err := resolveNode(t.TargetID, last)
		if err != nil {
			return nil, err
		}

		edgeIdx := EdgeIndex(len(n.Edges))
		n.Edges = append(n.Edges, Edge{
			Index:  edgeIdx,
			ID:     t.ID,
			Source: srcIdx,
			Target: tgtIdx,
			Length: t.Geom.Length(),
			Geom:   t.Geom,
		})
		n.edgeIDToIndex[t.ID] = edgeIdx
	}

	for i := range n.Edges {
		e := &n.Edges[i]
		minB, maxB := edgeBBox(e.Geom)
		n.index.Insert(minB, maxB, e.Index)
	}

	return n, nil
}

// edgeBBox computes the axis-aligned bounding box of a linestring's
// points for R-tree indexing.
func edgeBBox(l *geom.LineString) (min, max [2]float64) {
	if l == nil || len(l.Points) == 0 {
		return [2]float64{}, [2]float64{}
	}
	min = [2]float64{l.Points[0].X, l.Points[0].Y}
	max = min
	for _, p := range l.Points[1:] {
		if p.X < min[0] {
			min[0] = p.X
		}
		if p.Y < min[1] {
			min[1] = p.Y
		}
		if p.X > max[0] {
			max[0] = p.X
		}
		if p.Y > max[1] {
			max[1] = p.Y
		}
	}
	return min, max
}
