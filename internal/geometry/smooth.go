package geometry

import (
	"math"
	"strconv"
	"strings"
)

const (
	// SmoothingFactor scales the neighbour distance into control point length.
	SmoothingFactor = 0.2
	// SmoothingThreshold is the neighbour distance above which a point is
	// left as a sharp corner.
	SmoothingThreshold = 20.0
)

// Point is a stroke sample in card-local space. It encodes as [x, y].
type Point [2]float64

func (p Point) Vec() Vec { return Vec{p[0], p[1]} }

// PointOf converts v to a Point.
func PointOf(v Vec) Point { return Point{v.X, v.Y} }

// SegmentKind identifies a path command.
type SegmentKind int

const (
	MoveTo SegmentKind = iota
	CubicTo
	LineTo
)

// Segment is one command of a smoothed path. C1 and C2 are only set for
// CubicTo.
type Segment struct {
	Kind SegmentKind
	C1   Vec
	C2   Vec
	To   Vec
}

// SmoothStroke turns a sampled stroke into a piecewise cubic path. Every
// interior sample becomes the end of a cubic whose control points follow the
// direction of the neighbouring samples. The last sample is joined with a
// straight line.
func SmoothStroke(points []Point) []Segment {
	if len(points) == 0 {
		return nil
	}
	segs := make([]Segment, 0, len(points)+1)
	segs = append(segs, Segment{Kind: MoveTo, To: points[0].Vec()})

	at := func(i int) (Point, bool) {
		if i < 0 || i >= len(points) {
			return Point{}, false
		}
		return points[i], true
	}

	for i := 1; i < len(points)-1; i++ {
		prev2, ok2 := at(i - 2)
		c1 := controlPoint(points[i-1], prev2, ok2, points[i], false)
		c2 := controlPoint(points[i], points[i-1], true, points[i+1], true)
		segs = append(segs, Segment{Kind: CubicTo, C1: c1, C2: c2, To: points[i].Vec()})
	}

	segs = append(segs, Segment{Kind: LineTo, To: points[len(points)-1].Vec()})
	return segs
}

// controlPoint derives the control point for cur from the line between prev
// and next. A missing previous neighbour collapses onto cur.
func controlPoint(cur, prev Point, hasPrev bool, next Point, reverse bool) Vec {
	if !hasPrev {
		prev = cur
	}
	dx := next[0] - prev[0]
	dy := next[1] - prev[1]
	length := math.Hypot(dx, dy)
	if length > SmoothingThreshold {
		return cur.Vec()
	}

	angle := math.Atan2(dy, dx)
	if reverse {
		angle += math.Pi
	}
	length *= SmoothingFactor
	return Vec{
		X: cur[0] + math.Cos(angle)*length,
		Y: cur[1] + math.Sin(angle)*length,
	}
}

// PathData renders segments as SVG path data.
func PathData(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch s.Kind {
		case MoveTo:
			b.WriteString("M" + pair(s.To))
		case CubicTo:
			b.WriteString("C " + pair(s.C1) + " " + pair(s.C2) + " " + pair(s.To))
		case LineTo:
			b.WriteString("L " + pair(s.To))
		}
	}
	return b.String()
}

func pair(v Vec) string {
	return num(v.X) + "," + num(v.Y)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
