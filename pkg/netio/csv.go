// Package netio reads road network edge tuples from CSV and feeds them
// to network.Build.
package netio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mmerrors"
	"github.com/azybler/mapmatch/pkg/network"
)

// Columns names the header columns holding each of the four required
// fields, letting a caller point at a network file whose columns
// aren't literally named id/source/target/geom (the `--id`,
// `--source`, `--target` CLI flags of cmd/ubodt-gen).
type Columns struct {
	ID, Source, Target, Geom string
}

// DefaultColumns is the `id;source;target;geom` naming.
var DefaultColumns = Columns{ID: "id", Source: "source", Target: "target", Geom: "geom"}

// ReadCSV reads `id;source;target;geom` rows from r and builds a
// Network. Column order is resolved from the header so extra or
// reordered columns are tolerated.
func ReadCSV(r io.Reader) (*network.Network, error) {
	return ReadCSVColumns(r, DefaultColumns)
}

// ReadCSVColumns is ReadCSV with a caller-supplied column naming.
func ReadCSVColumns(r io.Reader, cols Columns) (*network.Network, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty network file", mmerrors.ErrIO)
	}
	header := strings.Split(scanner.Text(), ";")
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	idCol, idOK := colIdx[cols.ID]
	srcCol, srcOK := colIdx[cols.Source]
	tgtCol, tgtOK := colIdx[cols.Target]
	geomCol, geomOK := colIdx[cols.Geom]
	if !idOK || !srcOK || !tgtOK || !geomOK {
		return nil, fmt.Errorf("%w: network header missing %s/%s/%s/%s", mmerrors.ErrIO, cols.ID, cols.Source, cols.Target, cols.Geom)
	}

	var tuples []network.EdgeTuple
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")
		maxCol := idCol
		for _, c := range []int{srcCol, tgtCol, geomCol} {
			if c > maxCol {
				maxCol = c
			}
		}
		if maxCol >= len(fields) {
			return nil, fmt.Errorf("%w: malformed network row %q", mmerrors.ErrIO, line)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(fields[idCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad edge id: %v", mmerrors.ErrIO, err)
		}
		source, err := strconv.ParseInt(strings.TrimSpace(fields[srcCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad source id: %v", mmerrors.ErrIO, err)
		}
		target, err := strconv.ParseInt(strings.TrimSpace(fields[tgtCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad target id: %v", mmerrors.ErrIO, err)
		}
		ls, err := geom.ParseWKT(fields[geomCol])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
		}

		tuples = append(tuples, network.EdgeTuple{ID: id, SourceID: source, TargetID: target, Geom: ls})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}

	return network.Build(tuples)
}
