// Package geometry holds the pure numeric routines of the board: vector and
// rectangle math, arrow endpoint clipping, and freehand stroke smoothing.
// Nothing in here knows about cards, selection or persistence.
package geometry

import "math"

// Vec is a 2D point or displacement in canvas or screen space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }

// Len returns the euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether both components are exactly zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// RectAt builds a Rect from a top-left position and a size.
func RectAt(p Vec, w, h float64) Rect {
	return Rect{X: p.X, Y: p.Y, W: w, H: h}
}

// RectFromCorners builds the normalized Rect spanned by two arbitrary corners.
func RectFromCorners(a, b Vec) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of r.
func (r Rect) Center() Vec { return Vec{r.X + r.W/2, r.Y + r.H/2} }

// Grow returns r enlarged by dw and dh while keeping its top-left corner.
func (r Rect) Grow(dw, dh float64) Rect {
	return Rect{X: r.X, Y: r.Y, W: r.W + dw, H: r.H + dh}
}

// Touches reports whether r and o overlap or share an edge.
func (r Rect) Touches(o Rect) bool {
	return !(o.X > r.Right() || o.Right() < r.X || o.Y > r.Bottom() || o.Bottom() < r.Y)
}

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X && r.Y < o.Bottom() && r.Bottom() > o.Y
}

// StrictlyInside reports whether r lies entirely within o without touching
// any of o's edges.
func (r Rect) StrictlyInside(o Rect) bool {
	return r.X > o.X && r.Right() < o.Right() && r.Y > o.Y && r.Bottom() < o.Bottom()
}

// ContainsPoint reports whether p lies within r, edges included.
func (r Rect) ContainsPoint(p Vec) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Union returns the smallest Rect enclosing both r and o.
func (r Rect) Union(o Rect) Rect {
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X: x,
		Y: y,
		W: math.Max(r.Right(), o.Right()) - x,
		H: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Floor2 truncates v to two decimal places, rounding toward negative infinity.
func Floor2(v float64) float64 {
	return math.Floor(v*100) / 100
}

// DistanceToSegment returns the shortest distance from p to the segment ab.
func DistanceToSegment(p, a, b Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := Clamp(((p.X-a.X)*ab.X+(p.Y-a.Y)*ab.Y)/l2, 0, 1)
	return p.Sub(a.Add(ab.Scale(t))).Len()
}
