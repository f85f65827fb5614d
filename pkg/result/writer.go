// Package result implements the match result output writer: a
// `;`-delimited CSV with a configurable column set, one row per matched
// trajectory.
package result

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/azybler/mapmatch/pkg/geom"
	"github.com/azybler/mapmatch/pkg/mm"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

// Writer emits one header and then one row per matched trajectory.
// Implementations are not required to be safe for concurrent use;
// WithLocking adds that.
type Writer interface {
	WriteHeader() error
	WriteResult(r *mm.MatchResult) error
}

// Field names a configurable output column.
type Field string

const (
	FieldID     Field = "id"
	FieldOpath  Field = "opath"
	FieldCpath  Field = "cpath"
	FieldTpath  Field = "tpath"
	FieldMgeom  Field = "mgeom"
	FieldPgeom  Field = "pgeom"
	FieldOffset Field = "offset"
	FieldError  Field = "error"
	FieldSPDist Field = "spdist"
	FieldEP     Field = "ep"
	FieldTP     Field = "tp"
	FieldLength Field = "length"
)

// DefaultFields is the column set used when the caller doesn't
// configure one explicitly.
var DefaultFields = []Field{FieldID, FieldOpath, FieldCpath, FieldMgeom}

// CSVWriter is the `;`-delimited CSV implementation of Writer: one
// exported writer type, one field-formatter per column, no
// general-purpose CSV encoding library pulled in for a fixed, known
// column set.
type CSVWriter struct {
	w      io.Writer
	fields []Field
}

// NewCSVWriter returns a CSVWriter over w using fields as the column
// set and order. An empty fields uses DefaultFields.
func NewCSVWriter(w io.Writer, fields []Field) *CSVWriter {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &CSVWriter{w: w, fields: fields}
}

func (c *CSVWriter) WriteHeader() error {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = string(f)
	}
	_, err := io.WriteString(c.w, strings.Join(names, ";")+"\n")
	if err != nil {
		return fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}
	return nil
}

// WriteResult writes one row for r, rendering each configured field.
func (c *CSVWriter) WriteResult(r *mm.MatchResult) error {
	return c.writeLine(c.renderRow(r))
}

// renderRow formats r into its output line without touching c.w, so
// WithLocking can render outside its critical section and hold the
// lock only for the write itself.
func (c *CSVWriter) renderRow(r *mm.MatchResult) string {
	cells := make([]string, len(c.fields))
	for i, f := range c.fields {
		cells[i] = renderField(f, r)
	}
	return strings.Join(cells, ";") + "\n"
}

// writeLine writes an already-rendered line, the part of WriteResult
// that actually needs to be serialized under WithLocking.
func (c *CSVWriter) writeLine(s string) error {
	if _, err := io.WriteString(c.w, s); err != nil {
		return fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}
	return nil
}

func renderField(f Field, r *mm.MatchResult) string {
	switch f {
	case FieldID:
		return strconv.FormatInt(r.TrajectoryID, 10)
	case FieldOpath:
		return joinInt64(r.Opath)
	case FieldCpath:
		return joinInt64(r.Cpath)
	case FieldTpath:
		return renderTpath(r)
	case FieldMgeom:
		if r.Mgeom == nil {
			return ""
		}
		return r.Mgeom.WKT()
	case FieldPgeom:
		return renderPgeom(r)
	case FieldOffset:
		return joinMatched(r.MatchedCandidates, func(m mm.MatchedCandidate) float64 { return m.Candidate.Offset })
	case FieldError:
		return joinMatched(r.MatchedCandidates, func(m mm.MatchedCandidate) float64 { return m.Candidate.Error })
	case FieldSPDist:
		return joinMatched(r.MatchedCandidates, func(m mm.MatchedCandidate) float64 { return m.SPDist })
	case FieldEP:
		return joinMatched(r.MatchedCandidates, func(m mm.MatchedCandidate) float64 { return m.EP })
	case FieldTP:
		return joinMatched(r.MatchedCandidates, func(m mm.MatchedCandidate) float64 { return m.TP })
	case FieldLength:
		return joinMatched(r.MatchedCandidates, func(m mm.MatchedCandidate) float64 { return m.Candidate.Edge.Length })
	default:
		return ""
	}
}

func joinInt64(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func joinMatched(matched []mm.MatchedCandidate, get func(mm.MatchedCandidate) float64) string {
	parts := make([]string, len(matched))
	for i, m := range matched {
		parts[i] = strconv.FormatFloat(get(m), 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// renderTpath emits one comma-separated subpath per observation gap,
// `|`-separated, sliced out of cpath via CpathIndices. Empty when
// cpath is empty (a disconnected or path-gapped trajectory).
func renderTpath(r *mm.MatchResult) string {
	if len(r.Cpath) == 0 || len(r.CpathIndices) < 2 {
		return ""
	}
	gaps := make([]string, 0, len(r.CpathIndices)-1)
	for i := 0; i+1 < len(r.CpathIndices); i++ {
		start, end := r.CpathIndices[i], r.CpathIndices[i+1]
		gaps = append(gaps, joinInt64(r.Cpath[start:end+1]))
	}
	return strings.Join(gaps, "|")
}

// renderPgeom builds a linestring through each observation's candidate
// projection point, distinct from mgeom's clipped network geometry.
func renderPgeom(r *mm.MatchResult) string {
	if len(r.MatchedCandidates) == 0 {
		return ""
	}
	pts := make([]geom.Point, len(r.MatchedCandidates))
	for i, m := range r.MatchedCandidates {
		pts[i] = m.Candidate.Point
	}
	return geom.NewLineString(pts...).WKT()
}
