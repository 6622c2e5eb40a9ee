// Package geom holds the coordinate primitives shared across the compositor:
// points and rectangles in the drawable-local and screen-absolute coordinate
// spaces.
package geom

// Point is a signed 2D integer coordinate.
type Point struct {
	X, Y int
}

// Add returns p shifted by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p shifted by the negation of o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Rect is a rectangle described by two corners, inclusive of both. It may be
// ill-ordered; callers needing a normalized rect call Normalized.
type Rect struct {
	P1, P2 Point
}

// NewRect builds a Rect from two corners in any order.
func NewRect(p1, p2 Point) Rect {
	return Rect{P1: p1, P2: p2}
}

// Normalized returns a Rect with P1 the top-left and P2 the bottom-right.
func (r Rect) Normalized() Rect {
	x1, x2 := r.P1.X, r.P2.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 := r.P1.Y, r.P2.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{P1: Point{X: x1, Y: y1}, P2: Point{X: x2, Y: y2}}
}

// Width returns the inclusive width of a normalized rect.
func (r Rect) Width() int {
	n := r.Normalized()
	return n.P2.X - n.P1.X + 1
}

// Height returns the inclusive height of a normalized rect.
func (r Rect) Height() int {
	n := r.Normalized()
	return n.P2.Y - n.P1.Y + 1
}

// Contains reports whether p lies within the normalized rect, inclusive.
func (r Rect) Contains(p Point) bool {
	n := r.Normalized()
	return p.X >= n.P1.X && p.X <= n.P2.X && p.Y >= n.P1.Y && p.Y <= n.P2.Y
}

// Shift translates both corners by o.
func (r Rect) Shift(o Point) Rect {
	return Rect{P1: r.P1.Add(o), P2: r.P2.Add(o)}
}

// Union returns the smallest rect containing both r and o.
func Union(r, o Rect) Rect {
	rn, on := r.Normalized(), o.Normalized()
	minX := min(rn.P1.X, on.P1.X)
	minY := min(rn.P1.Y, on.P1.Y)
	maxX := max(rn.P2.X, on.P2.X)
	maxY := max(rn.P2.Y, on.P2.Y)
	return Rect{P1: Point{X: minX, Y: minY}, P2: Point{X: maxX, Y: maxY}}
}
