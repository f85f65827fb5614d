package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedWKT is returned by ParseWKT when the input isn't a
// recognizable LINESTRING(...) literal.
var ErrMalformedWKT = errors.New("geom: malformed WKT")

// ParseWKT parses a "LINESTRING(x y, x y, ...)" literal into a LineString,
// via a manual trim/prefix-strip/split reader rather than pulling in a
// full geometry-parsing dependency for a single, fixed-shape literal.
func ParseWKT(s string) (*LineString, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "LINESTRING") {
		return nil, fmt.Errorf("%w: missing LINESTRING prefix", ErrMalformedWKT)
	}
	s = strings.TrimSpace(s[len("LINESTRING"):])

	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: missing parentheses", ErrMalformedWKT)
	}
	s = s[1 : len(s)-1]
	s = strings.TrimSpace(s)
	if s == "" {
		return &LineString{}, nil
	}

	parts := strings.Split(s, ",")
	pts := make([]Point, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad coordinate pair %q", ErrMalformedWKT, part)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedWKT, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedWKT, err)
		}
		pts = append(pts, Point{X: x, Y: y})
	}

	return &LineString{Points: pts}, nil
}

// WKT renders l as a "LINESTRING(x y, x y, ...)" literal. Coordinates are
// formatted with strconv's shortest round-trip representation so
// ParseWKT(l.WKT()) reproduces l's points exactly.
func (l *LineString) WKT() string {
	if l == nil || len(l.Points) == 0 {
		return "LINESTRING()"
	}
	var b strings.Builder
	b.WriteString("LINESTRING(")
	for i, p := range l.Points {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}
