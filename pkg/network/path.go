package network

import "github.com/azybler/mapmatch/pkg/geom"

// CompletePathToGeometry builds the clipped matched geometry for a
// contiguous edge path: the head edge is cut from the first
// observation's projection offset to its end, interior edges
// contribute their full geometry, and the tail edge is cut from its
// start to the last observation's projection offset. A single-edge
// path is cut directly between the two offsets. Consecutive duplicate
// points across edge boundaries are elided.
func CompletePathToGeometry(cpath []*Edge, firstOffset, lastOffset float64) *geom.LineString {
	if len(cpath) == 0 {
		return &geom.LineString{}
	}

	if len(cpath) == 1 {
		return geom.Cutoff(cpath[0].Geom, firstOffset, lastOffset)
	}

	out := &geom.LineString{}
	head := geom.Cutoff(cpath[0].Geom, firstOffset, cpath[0].Length)
	appendElidingDuplicates(out, head.Points)

	for i := 1; i < len(cpath)-1; i++ {
		appendElidingDuplicates(out, cpath[i].Geom.Points)
	}

	tail := geom.Cutoff(cpath[len(cpath)-1].Geom, 0, lastOffset)
	appendElidingDuplicates(out, tail.Points)

	return out
}

func appendElidingDuplicates(dst *geom.LineString, pts []geom.Point) {
	for _, p := range pts {
		if n := len(dst.Points); n > 0 && dst.Points[n-1] == p {
			continue
		}
		dst.Points = append(dst.Points, p)
	}
}
