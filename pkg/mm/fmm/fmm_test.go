package fmm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/graph"
	"github.com/azybler/mapmatch/pkg/network"
	"github.com/azybler/mapmatch/pkg/progress"
	"github.com/azybler/mapmatch/pkg/ubodt"
	"github.com/azybler/mapmatch/pkg/ubodtgen"
)

// buildChainNetwork builds a 4-node horizontal chain (three length-1
// edges, bidirectional) plus an unreachable two-node island edge used
// to exercise the disconnected-trajectory fallback.
func buildChainNetwork(t *testing.T) *network.Network {
	t.Helper()
	n, err := network.Build([]network.EdgeTuple{
		{ID: 1, SourceID: 1, TargetID: 2, Geom: geom.NewLineString(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0})},
		{ID: 2, SourceID: 2, TargetID: 1, Geom: geom.NewLineString(geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 0})},
		{ID: 3, SourceID: 2, TargetID: 3, Geom: geom.NewLineString(geom.Point{X: 1, Y: 0}, geom.Point{X: 2, Y: 0})},
		{ID: 4, SourceID: 3, TargetID: 2, Geom: geom.NewLineString(geom.Point{X: 2, Y: 0}, geom.Point{X: 1, Y: 0})},
		{ID: 5, SourceID: 3, TargetID: 4, Geom: geom.NewLineString(geom.Point{X: 2, Y: 0}, geom.Point{X: 3, Y: 0})},
		{ID: 6, SourceID: 4, TargetID: 3, Geom: geom.NewLineString(geom.Point{X: 3, Y: 0}, geom.Point{X: 2, Y: 0})},
		// island, far away and disconnected from the chain above.
		{ID: 100, SourceID: 900, TargetID: 901, Geom: geom.NewLineString(geom.Point{X: 100, Y: 100}, geom.Point{X: 101, Y: 100})},
	})
	require.NoError(t, err)
	return n
}

func buildTable(t *testing.T, n *network.Network, delta float64) *ubodt.Table {
	t.Helper()
	edges := make([]graph.EdgeInput, len(n.Edges))
	for i, e := range n.Edges {
		edges[i] = graph.EdgeInput{Source: e.Source, Target: e.Target, Length: e.Length, Index: e.Index}
	}
	g := graph.Build(n.NumNodes(), edges)

	table := ubodt.NewTable(ubodt.SelectBucketCount(int64(n.NumNodes()) * int64(n.NumNodes())))
	err := ubodtgen.Generate(context.Background(), g, n, ubodtgen.Config{Delta: delta, Workers: 2}, func(r *ubodt.Record) error {
		table.Insert(r)
		return nil
	}, progress.Nop{})
	require.NoError(t, err)
	return table
}

func TestMatchStraightChain(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)

	m := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 0.1})

	points := []geom.Point{
		{X: 0.1, Y: 0.2},
		{X: 1.5, Y: 0.2},
		{X: 2.9, Y: 0.2},
	}
	result, err := m.Match(42, points)
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.TrajectoryID)
	require.Len(t, result.Opath, 3)
	assert.Equal(t, []int64{1, 3, 5}, result.Opath)
	assert.Equal(t, []int64{1, 3, 5}, result.Cpath)
	require.NotNil(t, result.Mgeom)
	assert.InDelta(t, 0.1, result.Mgeom.Points[0].X, 1e-9)
	assert.InDelta(t, 0.0, result.Mgeom.Points[0].Y, 1e-9)
	assert.InDelta(t, 2.9, result.Mgeom.Points[len(result.Mgeom.Points)-1].X, 1e-9)
}

func TestMatchDisconnectedTrajectoryLeavesCpathEmpty(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)

	m := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 0.1})

	points := []geom.Point{
		{X: 0.1, Y: 0.2},
		{X: 100.5, Y: 100.2}, // only the island edge qualifies here
		{X: 1.9, Y: 0.2},
	}
	result, err := m.Match(7, points)
	require.NoError(t, err)

	require.Len(t, result.Opath, 3)
	assert.Empty(t, result.Cpath)
	assert.Nil(t, result.Mgeom)
}

func TestMatchRejectsTrajectoryWithNoCandidates(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)
	m := New(n, table, Config{K: 4, Radius: 0.1, GPSError: 0.5, ReverseTolerance: 0.1})

	_, err := m.Match(1, []geom.Point{{X: 500, Y: 500}})
	require.Error(t, err)
}

func TestShortestPathDistSameEdgeForward(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)
	m := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 0.5})

	e := &n.Edges[0]
	a := &network.Candidate{Edge: e, Offset: 0.1}
	b := &network.Candidate{Edge: e, Offset: 0.9}
	assert.InDelta(t, 0.8, m.shortestPathDist(a, b), 1e-9)
}

func TestShortestPathDistReverseWithinTolerance(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)
	m := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 0.5})

	e := &n.Edges[0]
	a := &network.Candidate{Edge: e, Offset: 0.6}
	b := &network.Candidate{Edge: e, Offset: 0.5}
	assert.Equal(t, 0.0, m.shortestPathDist(a, b))
}

// TestShortestPathDistReverseToleranceBoundary checks the exact
// tolerance boundary: a backward offset gap equal to
// length*ReverseTolerance is still treated as zero-cost, a gap just
// past it (0.51) is not.
func TestShortestPathDistReverseToleranceBoundary(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)
	m := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 0.5})

	e := &n.Edges[0]
	require.InDelta(t, 1.0, e.Length, 1e-9)

	atBoundary := &network.Candidate{Edge: e, Offset: 0.5}
	start := &network.Candidate{Edge: e, Offset: 1.0}
	assert.Equal(t, 0.0, m.shortestPathDist(start, atBoundary))

	justPast := &network.Candidate{Edge: e, Offset: 0.49}
	assert.NotEqual(t, 0.0, m.shortestPathDist(start, justPast))
}

// TestShortestPathDistCrossEdgeIgnoresReverseTolerance checks that
// reverse_tolerance only suppresses spurious backtracking on the
// *same* edge. Once a and b sit on different edges, the distance is
// the real shortest path regardless of how ReverseTolerance is
// configured.
func TestShortestPathDistCrossEdgeIgnoresReverseTolerance(t *testing.T) {
	n := buildChainNetwork(t)
	table := buildTable(t, n, 10)

	a := &network.Candidate{Edge: &n.Edges[0], Offset: 0.9} // edge1, 1->2
	b := &network.Candidate{Edge: &n.Edges[1], Offset: 0.9} // edge2, 2->1, source==a's edge target

	strict := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 0})
	lenient := New(n, table, Config{K: 4, Radius: 0.5, GPSError: 0.5, ReverseTolerance: 1})

	distStrict := strict.shortestPathDist(a, b)
	distLenient := lenient.shortestPathDist(a, b)
	assert.Equal(t, distStrict, distLenient)
	assert.InDelta(t, 1.0, distStrict, 1e-9)
}

// buildUnitGrid builds a 5x5 grid of nodes at integer coordinates
// (col, row) for col, row in [0,4], with a bidirectional unit-length
// edge between every pair of horizontally or vertically adjacent
// nodes. Node external ids are row*5+col; edge external ids are
// assigned sequentially, horizontal edges first (row-major) then
// vertical edges (column-major), two ids per undirected pair (forward,
// then reverse).
func buildUnitGrid(t *testing.T) *network.Network {
	t.Helper()
	nodeID := func(col, row int) int64 { return int64(row*5 + col) }

	var tuples []network.EdgeTuple
	nextID := int64(1)
	addEdge := func(fromCol, fromRow, toCol, toRow int) {
		from := geom.Point{X: float64(fromCol), Y: float64(fromRow)}
		to := geom.Point{X: float64(toCol), Y: float64(toRow)}
		tuples = append(tuples,
			network.EdgeTuple{ID: nextID, SourceID: nodeID(fromCol, fromRow), TargetID: nodeID(toCol, toRow), Geom: geom.NewLineString(from, to)},
			network.EdgeTuple{ID: nextID + 1, SourceID: nodeID(toCol, toRow), TargetID: nodeID(fromCol, fromRow), Geom: geom.NewLineString(to, from)},
		)
		nextID += 2
	}

	for row := 0; row < 5; row++ {
		for col := 0; col < 4; col++ {
			addEdge(col, row, col+1, row)
		}
	}
	for col := 0; col < 5; col++ {
		for row := 0; row < 4; row++ {
			addEdge(col, row, col, row+1)
		}
	}

	n, err := network.Build(tuples)
	require.NoError(t, err)
	return n
}

// TestMatchGridTrajectoryThroughAnLShapedPath exercises an FMM match
// over a 5x5 unit grid with a trajectory that runs up one column, turns
// onto a row, then partway up the next column — the same path shape as
// a vertical-then-horizontal-then-vertical route through five edges.
// Expected mgeom is computed directly from the grid's own geometry
// (clipped head/tail offsets plus the interior node points this route
// passes through), independent of whatever edge ids this fixture
// happens to assign.
func TestMatchGridTrajectoryThroughAnLShapedPath(t *testing.T) {
	n := buildUnitGrid(t)
	table := buildTable(t, n, 6)

	m := New(n, table, Config{K: 4, Radius: 0.4, GPSError: 0.5})

	points := []geom.Point{
		{X: 2, Y: 0.25},
		{X: 2, Y: 0.75},
		{X: 2, Y: 1.5},
		{X: 3, Y: 2},
		{X: 4, Y: 2},
		{X: 4, Y: 2.45},
	}
	result, err := m.Match(7, points)
	require.NoError(t, err)

	require.Len(t, result.Opath, 6)
	require.Len(t, result.Cpath, 5, "one edge each for (2,0)-(2,1), (2,1)-(2,2), (2,2)-(3,2), (3,2)-(4,2), (4,2)-(4,3)")
	require.NotNil(t, result.Mgeom)

	expected := []geom.Point{
		{X: 2, Y: 0.25},
		{X: 2, Y: 1},
		{X: 2, Y: 2},
		{X: 3, Y: 2},
		{X: 4, Y: 2},
		{X: 4, Y: 2.45},
	}
	require.Len(t, result.Mgeom.Points, len(expected))
	for i, want := range expected {
		assert.InDelta(t, want.X, result.Mgeom.Points[i].X, 1e-9, "point %d X", i)
		assert.InDelta(t, want.Y, result.Mgeom.Points[i].Y, 1e-9, "point %d Y", i)
	}
}

// TestMatchBidirectionalSingleEdge runs a trajectory that travels
// backward (decreasing x) along one bidirectional edge, which must
// resolve to that single edge's id rather than round-tripping through
// its reverse twin.
func TestMatchBidirectionalSingleEdge(t *testing.T) {
	n, err := network.Build([]network.EdgeTuple{
		{ID: 1, SourceID: 1, TargetID: 2, Geom: geom.NewLineString(geom.Point{X: 0, Y: 3.5}, geom.Point{X: 3, Y: 3.5})},
		{ID: 2, SourceID: 2, TargetID: 1, Geom: geom.NewLineString(geom.Point{X: 3, Y: 3.5}, geom.Point{X: 0, Y: 3.5})},
	})
	require.NoError(t, err)
	table := buildTable(t, n, 6)

	m := New(n, table, Config{K: 8, Radius: 1.0, GPSError: 0.5})

	points := []geom.Point{
		{X: 1.9, Y: 3.5},
		{X: 1.6, Y: 3.5},
		{X: 1.0, Y: 3.5},
		{X: 0.6, Y: 3.5},
	}
	result, err := m.Match(8, points)
	require.NoError(t, err)

	require.Len(t, result.Cpath, 1, "all four observations sit on one traversed edge")
}
