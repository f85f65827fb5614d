package netio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVBuildsNetwork(t *testing.T) {
	input := "id;source;target;geom\n" +
		"1;1;2;LINESTRING(0 0, 1 0)\n" +
		"2;2;3;LINESTRING(1 0, 2 0)\n"
	n, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n.NumEdges())
	assert.Equal(t, uint32(3), n.NumNodes())
}

func TestReadCSVToleratesColumnReordering(t *testing.T) {
	input := "geom;id;target;source\n" +
		"LINESTRING(0 0, 1 0);1;2;1\n"
	n, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n.NumEdges())
}

func TestReadCSVRejectsDuplicateEdgeID(t *testing.T) {
	input := "id;source;target;geom\n" +
		"1;1;2;LINESTRING(0 0, 1 0)\n" +
		"1;2;3;LINESTRING(1 0, 2 0)\n"
	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
}
