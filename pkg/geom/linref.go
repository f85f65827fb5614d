package geom

// ProjectPointToLine finds the closest point on L to p, scanning every
// segment in turn. error is the perpendicular distance from p to the
// projection, offset is the distance along L from its first point to the
// projection, and proj is the projected point itself.
//
// Ties (equal error across segments) favor the earlier segment. A
// degenerate zero-length segment is treated as ratio r = 0, i.e. its
// start point.
//
// Uses a clamped-projection-ratio computation per segment, generalized
// from a single segment to a full linestring over planar coordinates.
func ProjectPointToLine(p Point, l *LineString) (errDist, offset float64, proj Point) {
	if l == nil || len(l.Points) < 2 {
		if l != nil && len(l.Points) == 1 {
			return p.Dist(l.Points[0]), 0, l.Points[0]
		}
		return 0, 0, Point{}
	}

	bestErr := -1.0
	var bestOffset float64
	var bestProj Point

	var cum float64
	for i := 0; i < len(l.Points)-1; i++ {
		p1, p2 := l.Points[i], l.Points[i+1]
		dx, dy := p2.X-p1.X, p2.Y-p1.Y
		segLen := p1.Dist(p2)
		lenSq := dx*dx + dy*dy

		var r float64
		if lenSq == 0 {
			r = 0
		} else {
			r = ((p.X-p1.X)*dx + (p.Y-p1.Y)*dy) / lenSq
			if r < 0 {
				r = 0
			} else if r > 1 {
				r = 1
			}
		}

		cand := lerp(p1, p2, r)
		candErr := p.Dist(cand)
		candOffset := cum + r*segLen

		if bestErr < 0 || candErr < bestErr {
			bestErr = candErr
			bestOffset = candOffset
			bestProj = cand
		}

		cum += segLen
	}

	return bestErr, bestOffset, bestProj
}

// SegmentLengths returns the n-1 Euclidean distances between consecutive
// points of pts. Used as the HMM observation-gap denominators.
func SegmentLengths(pts []Point) []float64 {
	if len(pts) < 2 {
		return nil
	}
	out := make([]float64, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		out[i] = pts[i].Dist(pts[i+1])
	}
	return out
}
