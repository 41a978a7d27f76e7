// Package geom provides the planar geometry shared by the linkage model,
// the optimizer and the renderers.
package geom

import "math"

// Point represents a 2D coordinate in canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p*k.
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Len returns the distance of p from the origin.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Angle returns the direction of p in radians.
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X)
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Near reports whether a and b are within tol of each other.
func Near(a, b Point, tol float64) bool {
	return Dist(a, b) <= tol
}

// Polar returns the point at distance r from c in direction theta.
func Polar(c Point, r, theta float64) Point {
	return Point{c.X + r*math.Cos(theta), c.Y + r*math.Sin(theta)}
}

// CircleIntersect returns the intersections of the circle around a with
// radius ra and the circle around b with radius rb. ok is false when the
// circles do not meet or are concentric.
func CircleIntersect(a Point, ra float64, b Point, rb float64) (p1, p2 Point, ok bool) {
	d := Dist(a, b)
	if d < 1e-12 || d > ra+rb+1e-9 || d < math.Abs(ra-rb)-1e-9 {
		return Point{}, Point{}, false
	}

	// Distance from a to the chord midpoint along a->b
	l := (ra*ra - rb*rb + d*d) / (2 * d)
	h2 := ra*ra - l*l
	if h2 < 0 {
		h2 = 0 // tangent within rounding
	}
	h := math.Sqrt(h2)

	ux := (b.X - a.X) / d
	uy := (b.Y - a.Y) / d
	mx := a.X + ux*l
	my := a.Y + uy*l

	p1 = Point{mx - uy*h, my + ux*h}
	p2 = Point{mx + uy*h, my - ux*h}
	return p1, p2, true
}

// SegmentDist returns the distance from p to the segment a-b.
func SegmentDist(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Dist(p, Point{a.X + t*dx, a.Y + t*dy})
}

// NearestDist returns the distance from p to the closest vertex of path.
// An empty path is infinitely far away.
func NearestDist(p Point, path []Point) float64 {
	best := math.Inf(1)
	for _, q := range path {
		if d := Dist(p, q); d < best {
			best = d
		}
	}
	return best
}

// Bounds returns the bounding box of pts. ok is false for an empty slice.
func Bounds(pts []Point) (min, max Point, ok bool) {
	if len(pts) == 0 {
		return Point{}, Point{}, false
	}
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max, true
}
