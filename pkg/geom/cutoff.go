package geom

// Cutoff returns the portion of L between arc-length offsets a and b
// (0 <= a <= b <= L.Length()), interpolating new endpoints where a or b
// fall mid-segment. Calling Cutoff(L, 0, L.Length()) reconstructs L's
// original points exactly.
func Cutoff(l *LineString, a, b float64) *LineString {
	if l == nil || len(l.Points) < 2 {
		return l.Clone()
	}
	if a < 0 {
		a = 0
	}
	total := l.Length()
	if b > total {
		b = total
	}
	if a > b {
		a = b
	}

	out := &LineString{}
	var cum float64
	for i := 0; i < len(l.Points)-1; i++ {
		p1, p2 := l.Points[i], l.Points[i+1]
		segLen := p1.Dist(p2)
		segStart, segEnd := cum, cum+segLen

		lo := a
		if segStart > lo {
			lo = segStart
		}
		hi := b
		if segEnd < hi {
			hi = segEnd
		}

		if lo < hi || (lo == hi && lo >= segStart && lo <= segEnd && a == b) {
			var loPt, hiPt Point
			if segLen == 0 {
				loPt, hiPt = p1, p1
			} else {
				loPt = lerp(p1, p2, (lo-segStart)/segLen)
				hiPt = lerp(p1, p2, (hi-segStart)/segLen)
			}

			if len(out.Points) == 0 {
				out.Points = append(out.Points, loPt)
			} else if last := out.Points[len(out.Points)-1]; last != loPt {
				out.Points = append(out.Points, loPt)
			}
			if hiPt != loPt || len(out.Points) == 1 {
				out.Points = append(out.Points, hiPt)
			}
		}

		cum = segEnd
	}

	if len(out.Points) == 1 {
		out.Points = append(out.Points, out.Points[0])
	}

	return out
}
