package geom

// LineString is an ordered, finite sequence of points. A valid edge
// geometry has at least 2 points; degenerate 0- or 1-point linestrings
// are allowed transiently (e.g. while being built) but have zero length.
type LineString struct {
	Points []Point
}

// NewLineString builds a LineString from the given points.
func NewLineString(pts ...Point) *LineString {
	ls := &LineString{Points: make([]Point, len(pts))}
	copy(ls.Points, pts)
	return ls
}

// NumPoints returns the number of points in the linestring.
func (l *LineString) NumPoints() int {
	if l == nil {
		return 0
	}
	return len(l.Points)
}

// PointAt returns the i-th point.
func (l *LineString) PointAt(i int) Point {
	return l.Points[i]
}

// AddPoint appends a point to the linestring.
func (l *LineString) AddPoint(p Point) {
	l.Points = append(l.Points, p)
}

// Length returns the sum of Euclidean segment lengths.
func (l *LineString) Length() float64 {
	if l == nil || len(l.Points) < 2 {
		return 0
	}
	var total float64
	for i := 0; i < len(l.Points)-1; i++ {
		total += l.Points[i].Dist(l.Points[i+1])
	}
	return total
}

// Equal reports whether two linestrings have identical points.
func (l *LineString) Equal(o *LineString) bool {
	if l == nil || o == nil {
		return l == o
	}
	if len(l.Points) != len(o.Points) {
		return false
	}
	for i := range l.Points {
		if l.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the linestring.
func (l *LineString) Clone() *LineString {
	if l == nil {
		return nil
	}
	pts := make([]Point, len(l.Points))
	copy(pts, l.Points)
	return &LineString{Points: pts}
}
