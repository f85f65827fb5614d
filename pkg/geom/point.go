// Package geom implements the planar geometry primitives the matching
// engine is built on: points, linestrings, linear referencing, and WKT
// I/O. The system is unit-agnostic — the same (x, y) units apply to the
// network, the GPS observations, search radii, and speeds — so distances
// here are always plain Euclidean, never geographic.
package geom

import "math"

// Point is a planar coordinate.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sub returns the vector p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of p and q treated as vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// lerp returns the point a fraction t of the way from p to q.
func lerp(p, q Point, t float64) Point {
	return Point{
		X: p.X + t*(q.X-p.X),
		Y: p.Y + t*(q.Y-p.Y),
	}
}
