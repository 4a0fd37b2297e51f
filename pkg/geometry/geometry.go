// Package geometry provides axis-aligned 2D primitives for the layout and
// routing engines: points, rectangles, segments, and the overlap, containment,
// and intersection queries built on them.
//
// All functions are pure. Coordinates are in board units (inches). The only
// error condition is malformed input (negative dimensions), which fails fast
// with an INVALID_GEOMETRY error.
package geometry

import (
	"math"

	"github.com/pedalstack/pedalstack/pkg/errors"
)

// Epsilon is the tolerance for floating-point comparisons. Two coordinates
// closer than Epsilon are treated as equal; an intersection thinner than
// Epsilon is treated as edge-touching, not overlap.
const Epsilon = 1e-9

// Point is a 2D point in board coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle anchored at its minimum corner.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Validate returns an INVALID_GEOMETRY error if the rectangle has negative
// dimensions.
func (r Rect) Validate() error {
	if r.Width < 0 || r.Height < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"negative rectangle dimensions: %.3f x %.3f", r.Width, r.Height)
	}
	return nil
}

// MaxX returns the maximum x coordinate.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the maximum y coordinate.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Corners returns the four corners in counter-clockwise order starting at
// the minimum corner.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.MaxX(), Y: r.Y},
		{X: r.MaxX(), Y: r.MaxY()},
		{X: r.X, Y: r.MaxY()},
	}
}

// Inflate returns the rectangle grown by margin on every side. A negative
// margin shrinks the rectangle.
func (r Rect) Inflate(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// ContainsPoint reports whether the point lies inside the rectangle or on
// its boundary.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X-Epsilon && p.X <= r.MaxX()+Epsilon &&
		p.Y >= r.Y-Epsilon && p.Y <= r.MaxY()+Epsilon
}

// ContainsPointStrict reports whether the point lies strictly inside the
// rectangle, excluding the boundary.
func (r Rect) ContainsPointStrict(p Point) bool {
	return p.X > r.X+Epsilon && p.X < r.MaxX()-Epsilon &&
		p.Y > r.Y+Epsilon && p.Y < r.MaxY()-Epsilon
}

// Overlaps reports whether the two rectangles share positive area.
// Edge-touching rectangles do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.MaxX()-Epsilon && r.MaxX() > other.X+Epsilon &&
		r.Y < other.MaxY()-Epsilon && r.MaxY() > other.Y+Epsilon
}

// Contains reports whether the inner rectangle lies entirely within r,
// boundary included.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X-Epsilon && inner.MaxX() <= r.MaxX()+Epsilon &&
		inner.Y >= r.Y-Epsilon && inner.MaxY() <= r.MaxY()+Epsilon
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Segment is a line segment between two points.
type Segment struct {
	A Point `json:"a" bson:"a"`
	B Point `json:"b" bson:"b"`
}

// Length returns the segment's Euclidean length.
func (s Segment) Length() float64 { return s.A.Distance(s.B) }

// IntersectsRect reports whether the segment passes through the interior of
// the rectangle. A segment that only touches the boundary, or runs along an
// edge, does not intersect.
//
// Implemented as Liang-Barsky clipping: the segment is clipped to the closed
// rectangle, and the clipped midpoint is tested for strict containment. The
// midpoint test rejects boundary-running segments whose clipped span has zero
// interior depth.
func (s Segment) IntersectsRect(r Rect) bool {
	dx := s.B.X - s.A.X
	dy := s.B.Y - s.A.Y

	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if math.Abs(p) < Epsilon {
			return q >= -Epsilon // parallel: inside iff q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, s.A.X-r.X) || !clip(dx, r.MaxX()-s.A.X) ||
		!clip(-dy, s.A.Y-r.Y) || !clip(dy, r.MaxY()-s.A.Y) {
		return false
	}
	if t1-t0 < Epsilon {
		return false // single-point touch
	}

	mid := Point{
		X: s.A.X + dx*(t0+t1)/2,
		Y: s.A.Y + dy*(t0+t1)/2,
	}
	return r.ContainsPointStrict(mid)
}

// Intersects reports whether two segments properly cross, meaning they share
// exactly one interior point. Shared endpoints and collinear overlap do not
// count as crossings.
func (s Segment) Intersects(other Segment) bool {
	d1 := cross(other.A, other.B, s.A)
	d2 := cross(other.A, other.B, s.B)
	d3 := cross(s.A, s.B, other.A)
	d4 := cross(s.A, s.B, other.B)

	return ((d1 > Epsilon && d2 < -Epsilon) || (d1 < -Epsilon && d2 > Epsilon)) &&
		((d3 > Epsilon && d4 < -Epsilon) || (d3 < -Epsilon && d4 > Epsilon))
}

// cross returns the z component of (b-a) x (p-a).
func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}
