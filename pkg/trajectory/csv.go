// Package trajectory reads GPS trajectories from CSV in either of two
// input shapes: one linestring-geometry row per trajectory, or one
// point row per observation.
package trajectory

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

// Trajectory is one sequence of GPS observations for a single id.
// Durations, when present, holds len(Points)-1 gap durations derived
// from consecutive timestamps; nil when the input carried no
// timestamps.
type Trajectory struct {
	ID        int64
	Points    []geom.Point
	Durations []float64
}

// ReadCSV reads trajectories from r, auto-detecting the header: a
// `geom` column selects the linestring form, an `x`/`y` pair the
// point form. Point-form rows are grouped by id and sorted by
// (id, timestamp) before being split into trajectories, so input row
// order doesn't matter.
func ReadCSV(r io.Reader) ([]Trajectory, error) {
	return ReadCSVNamed(r, "id", "geom")
}

// ReadCSVNamed is ReadCSV with a caller-supplied id/geom column naming
// (the `--gps-id`/`--gps-geom` CLI flags of cmd/fmm and cmd/stmatch).
// The point-form `x`/`y`/`timestamp` columns are always matched by
// their literal names; only the linestring form's id/geom columns are
// overridable, mirroring the original tool's field-mapping flags.
func ReadCSVNamed(r io.Reader, idName, geomName string) ([]Trajectory, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty trajectory file", mmerrors.ErrIO)
	}
	header := strings.Split(scanner.Text(), ";")
	cols := columnIndex(header)

	if idIdx, idOK := cols[idName]; idOK {
		if geomIdx, geomOK := cols[geomName]; geomOK {
			named := map[string]int{"id": idIdx, "geom": geomIdx}
			if ts, ok := cols["timestamp"]; ok {
				named["timestamp"] = ts
			}
			return readLineStringForm(scanner, named)
		}
	}
	if _, xok := cols["x"]; xok {
		if _, yok := cols["y"]; yok {
			return readPointForm(scanner, cols)
		}
	}
	return nil, fmt.Errorf("%w: trajectory header has neither %s/%s nor x/y columns", mmerrors.ErrIO, idName, geomName)
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func readLineStringForm(scanner *bufio.Scanner, cols map[string]int) ([]Trajectory, error) {
	idCol, ok := cols["id"]
	if !ok {
		return nil, fmt.Errorf("%w: trajectory header missing id column", mmerrors.ErrIO)
	}
	geomCol := cols["geom"]
	tsCol, hasTS := cols["timestamp"]

	var trajs []Trajectory
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")
		if idCol >= len(fields) || geomCol >= len(fields) {
			return nil, fmt.Errorf("%w: malformed trajectory row %q", mmerrors.ErrIO, line)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fields[idCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad trajectory id: %v", mmerrors.ErrIO, err)
		}
		ls, err := geom.ParseWKT(fields[geomCol])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
		}

		var durations []float64
		if hasTS && tsCol < len(fields) && strings.TrimSpace(fields[tsCol]) != "" {
			ts, err := parseDoubleList(fields[tsCol])
			if err != nil {
				return nil, err
			}
			if len(ts) != len(ls.Points) {
				return nil, fmt.Errorf("%w: trajectory %d has %d timestamps for %d points", mmerrors.ErrIO, id, len(ts), len(ls.Points))
			}
			durations = gapDurations(ts)
		}

		trajs = append(trajs, Trajectory{ID: id, Points: ls.Points, Durations: durations})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}
	return trajs, nil
}

type pointRow struct {
	id        int64
	x, y      float64
	timestamp float64
	hasTS     bool
}

func readPointForm(scanner *bufio.Scanner, cols map[string]int) ([]Trajectory, error) {
	idCol, idOK := cols["id"]
	xCol, xOK := cols["x"]
	yCol, yOK := cols["y"]
	tsCol, hasTSCol := cols["timestamp"]
	if !idOK || !xOK || !yOK {
		return nil, fmt.Errorf("%w: point-form trajectory header missing id/x/y", mmerrors.ErrIO)
	}

	var rows []pointRow
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")
		if idCol >= len(fields) || xCol >= len(fields) || yCol >= len(fields) {
			return nil, fmt.Errorf("%w: malformed trajectory row %q", mmerrors.ErrIO, line)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fields[idCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad trajectory id: %v", mmerrors.ErrIO, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[xCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad x: %v", mmerrors.ErrIO, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[yCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad y: %v", mmerrors.ErrIO, err)
		}

		row := pointRow{id: id, x: x, y: y}
		if hasTSCol && tsCol < len(fields) && strings.TrimSpace(fields[tsCol]) != "" {
			ts, err := strconv.ParseFloat(strings.TrimSpace(fields[tsCol]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad timestamp: %v", mmerrors.ErrIO, err)
			}
			row.timestamp, row.hasTS = ts, true
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].id != rows[j].id {
			return rows[i].id < rows[j].id
		}
		return rows[i].timestamp < rows[j].timestamp
	})

	var trajs []Trajectory
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && rows[j].id == rows[i].id {
			j++
		}
		group := rows[i:j]
		t := Trajectory{ID: group[0].id, Points: make([]geom.Point, len(group))}
		ts := make([]float64, 0, len(group))
		allHaveTS := true
		for k, r := range group {
			t.Points[k] = geom.Point{X: r.x, Y: r.y}
			if !r.hasTS {
				allHaveTS = false
			}
			ts = append(ts, r.timestamp)
		}
		if allHaveTS {
			t.Durations = gapDurations(ts)
		}
		trajs = append(trajs, t)
		i = j
	}
	return trajs, nil
}

func gapDurations(ts []float64) []float64 {
	if len(ts) < 2 {
		return nil
	}
	d := make([]float64, len(ts)-1)
	for i := range d {
		d[i] = ts[i+1] - ts[i]
	}
	return d
}

func parseDoubleList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp list entry %q: %v", mmerrors.ErrIO, p, err)
		}
		out[i] = v
	}
	return out, nil
}
