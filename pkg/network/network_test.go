package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

// buildGrid builds a small 3-node horizontal line: 0 --(10)--> 1 --(10)--> 2,
// the first edge bidirectional, the second one-way.
func buildGrid(t *testing.T) *Network {
	t.Helper()
	n, err := Build([]EdgeTuple{
		{ID: 1, SourceID: 100, TargetID: 101, Geom: geom.NewLineString(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0})},
		{ID: 2, SourceID: 101, TargetID: 100, Geom: geom.NewLineString(geom.Point{X: 10, Y: 0}, geom.Point{X: 0, Y: 0})},
		{ID: 3, SourceID: 101, TargetID: 102, Geom: geom.NewLineString(geom.Point{X: 10, Y: 0}, geom.Point{X: 20, Y: 0})},
	})
	require.NoError(t, err)
	return n
}

func TestBuildAssignsDenseIndices(t *testing.T) {
	n := buildGrid(t)
	assert.Equal(t, uint32(3), n.NumNodes())
	assert.Equal(t, uint32(3), n.NumEdges())

	idx, ok := n.NodeIndexByID(100)
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, n.NodePoint(idx))
}

func TestBuildRejectsDuplicateEdgeID(t *testing.T) {
	_, err := Build([]EdgeTuple{
		{ID: 1, SourceID: 1, TargetID: 2, Geom: geom.NewLineString(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0})},
		{ID: 1, SourceID: 2, TargetID: 3, Geom: geom.NewLineString(geom.Point{X: 1, Y: 0}, geom.Point{X: 2, Y: 0})},
	})
	assert.ErrorIs(t, err, mmerrors.ErrNetwork)
}

func TestBuildRejectsInconsistentNodeGeometry(t *testing.T) {
	_, err := Build([]EdgeTuple{
		{ID: 1, SourceID: 1, TargetID: 2, Geom: geom.NewLineString(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0})},
		{ID: 2, SourceID: 1, TargetID: 3, Geom: geom.NewLineString(geom.Point{X: 5, Y: 5}, geom.Point{X: 1, Y: 1})},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mmerrors.ErrNetwork))
}

func TestSearchTrajectoryCandidatesFindsNearestEdge(t *testing.T) {
	n := buildGrid(t)
	cands, err := SearchTrajectoryCandidates(n, []geom.Point{{X: 5, Y: 1}}, 4, 2.0)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	require.NotEmpty(t, cands[0])
	assert.InDelta(t, 1.0, cands[0][0].Error, 1e-9)
	assert.InDelta(t, 5.0, cands[0][0].Offset, 1e-9)
}

func TestSearchTrajectoryCandidatesIndicesMonotonic(t *testing.T) {
	n := buildGrid(t)
	cands, err := SearchTrajectoryCandidates(n, []geom.Point{{X: 5, Y: 0.5}, {X: 15, Y: 0.5}}, 4, 2.0)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	var last uint32
	first := true
	for _, layer := range cands {
		for _, c := range layer {
			if !first {
				assert.Greater(t, c.Index, last)
			}
			last = c.Index
			first = false
		}
	}
}

func TestSearchTrajectoryCandidatesEmptyRejectsTrajectory(t *testing.T) {
	n := buildGrid(t)
	_, err := SearchTrajectoryCandidates(n, []geom.Point{{X: 1000, Y: 1000}}, 4, 1.0)
	assert.ErrorIs(t, err, mmerrors.ErrEmptyCandidates)
}

func TestSearchTrajectoryCandidatesTruncatesToK(t *testing.T) {
	n := buildGrid(t)
	cands, err := SearchTrajectoryCandidates(n, []geom.Point{{X: 10, Y: 0.1}}, 1, 5.0)
	require.NoError(t, err)
	require.Len(t, cands[0], 1)
}

func TestEmissionProbability(t *testing.T) {
	assert.InDelta(t, 1.0, EmissionProbability(0, 10), 1e-9)
	assert.Less(t, EmissionProbability(10, 10), EmissionProbability(5, 10))
	assert.Greater(t, EmissionProbability(1e9, 10), 0.0)
}

func TestCompletePathToGeometrySingleEdge(t *testing.T) {
	n := buildGrid(t)
	edge := &n.Edges[0]
	ls := CompletePathToGeometry([]*Edge{edge}, 2, 8)
	require.Len(t, ls.Points, 2)
	assert.Equal(t, geom.Point{X: 2, Y: 0}, ls.Points[0])
	assert.Equal(t, geom.Point{X: 8, Y: 0}, ls.Points[1])
}

func TestCompletePathToGeometryMultiEdge(t *testing.T) {
	n := buildGrid(t)
	ls := CompletePathToGeometry([]*Edge{&n.Edges[0], &n.Edges[2]}, 5, 5)
	want := []geom.Point{{X: 5, Y: 0}, {X: 10, Y: 0}, {X: 15, Y: 0}}
	require.Len(t, ls.Points, len(want))
	for i, p := range want {
		assert.Equal(t, p, ls.Points[i])
	}
}
