package geometry_test

import (
	"math"
	"strings"
	"testing"

	"github.com/leth4/leto-sub000/internal/geometry"
)

const eps = 1e-9

func near(a, b geometry.Vec) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// ─────────────────────────────────────────────────────────────
// Arrow clipping
// ─────────────────────────────────────────────────────────────

func TestArrowLine_DistantCardsGetInset(t *testing.T) {
	from := geometry.Rect{X: 0, Y: 0, W: 200, H: 100}
	to := geometry.Rect{X: 400, Y: 0, W: 200, H: 100}

	line, ok := geometry.ArrowLine(from, to)
	if !ok {
		t.Fatal("expected arrow to be visible")
	}
	if !near(line.From, geometry.Vec{X: 245, Y: 50}) {
		t.Errorf("from = %+v, want (245, 50)", line.From)
	}
	if !near(line.To, geometry.Vec{X: 380, Y: 50}) {
		t.Errorf("to = %+v, want (380, 50)", line.To)
	}
}

func TestArrowLine_NearCardsClipToFrame(t *testing.T) {
	from := geometry.Rect{X: 0, Y: 0, W: 200, H: 100}
	to := geometry.Rect{X: 260, Y: 0, W: 200, H: 100}

	line, ok := geometry.ArrowLine(from, to)
	if !ok {
		t.Fatal("expected arrow to be visible")
	}
	if !near(line.From, geometry.Vec{X: 225, Y: 50}) {
		t.Errorf("from = %+v, want (225, 50)", line.From)
	}
	if !near(line.To, geometry.Vec{X: 260, Y: 50}) {
		t.Errorf("to = %+v, want (260, 50)", line.To)
	}
}

func TestArrowLine_OverlappingCardsSuppressed(t *testing.T) {
	from := geometry.Rect{X: 0, Y: 0, W: 200, H: 100}
	to := geometry.Rect{X: 210, Y: 50, W: 200, H: 100}
	if _, ok := geometry.ArrowLine(from, to); ok {
		t.Error("expected overlapping cards to suppress the arrow")
	}
}

func TestClipToBoundary_PicksEdgeByCriticalAngle(t *testing.T) {
	tests := []struct {
		name   string
		target geometry.Vec
		want   geometry.Vec
	}{
		{"right edge", geometry.Vec{X: 100, Y: 10}, geometry.Vec{X: 50, Y: 5}},
		{"bottom edge", geometry.Vec{X: 10, Y: 100}, geometry.Vec{X: 2.5, Y: 25}},
		{"left edge", geometry.Vec{X: -100, Y: 0}, geometry.Vec{X: -50, Y: 0}},
		{"straight up", geometry.Vec{X: 0, Y: -100}, geometry.Vec{X: 0, Y: -25}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := geometry.ClipToBoundary(geometry.Vec{}, tc.target, 100, 50)
			if !near(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestClipToBoundary_DegenerateRay(t *testing.T) {
	origin := geometry.Vec{X: 3, Y: 4}
	if got := geometry.ClipToBoundary(origin, origin, 10, 10); got != origin {
		t.Errorf("got %+v, want origin", got)
	}
}

// ─────────────────────────────────────────────────────────────
// Smoothing
// ─────────────────────────────────────────────────────────────

func TestSmoothStroke_SparsePointsStaySharp(t *testing.T) {
	segs := geometry.SmoothStroke([]geometry.Point{{0, 0}, {50, 0}, {100, 0}})
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	c := segs[1]
	if c.Kind != geometry.CubicTo {
		t.Fatalf("expected cubic, got %v", c.Kind)
	}
	if !near(c.C1, geometry.Vec{X: 0, Y: 0}) || !near(c.C2, geometry.Vec{X: 50, Y: 0}) {
		t.Errorf("expected raw points as controls, got %+v %+v", c.C1, c.C2)
	}
	if got := geometry.PathData(segs); got != "M0,0 C 0,0 50,0 50,0 L 100,0" {
		t.Errorf("path = %q", got)
	}
}

func TestSmoothStroke_DensePointsCurve(t *testing.T) {
	segs := geometry.SmoothStroke([]geometry.Point{{0, 0}, {5, 0}, {10, 0}})
	c := segs[1]
	if !near(c.C1, geometry.Vec{X: 1, Y: 0}) {
		t.Errorf("c1 = %+v, want (1, 0)", c.C1)
	}
	if math.Abs(c.C2.X-3) > eps || math.Abs(c.C2.Y) > 1e-6 {
		t.Errorf("c2 = %+v, want (3, 0)", c.C2)
	}
	if last := segs[len(segs)-1]; last.Kind != geometry.LineTo || last.To != (geometry.Vec{X: 10, Y: 0}) {
		t.Errorf("last segment = %+v", last)
	}
}

func TestSmoothStroke_SinglePoint(t *testing.T) {
	segs := geometry.SmoothStroke([]geometry.Point{{1.5, 2}})
	got := geometry.PathData(segs)
	if !strings.HasPrefix(got, "M1.5,2") || !strings.HasSuffix(got, "L 1.5,2") {
		t.Errorf("path = %q", got)
	}
	if geometry.SmoothStroke(nil) != nil {
		t.Error("expected nil for empty stroke")
	}
}

// ─────────────────────────────────────────────────────────────
// Rect helpers
// ─────────────────────────────────────────────────────────────

func TestRect_StrictlyInside(t *testing.T) {
	outer := geometry.Rect{X: 0, Y: 0, W: 100, H: 100}
	if !(geometry.Rect{X: 10, Y: 10, W: 10, H: 10}).StrictlyInside(outer) {
		t.Error("expected inner rect to be inside")
	}
	if outer.StrictlyInside(outer) {
		t.Error("a rect sharing edges is not strictly inside")
	}
}

func TestRectFromCorners_Normalizes(t *testing.T) {
	r := geometry.RectFromCorners(geometry.Vec{X: 10, Y: 20}, geometry.Vec{X: 0, Y: 5})
	want := geometry.Rect{X: 0, Y: 5, W: 10, H: 15}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestDistanceToSegment(t *testing.T) {
	a, b := geometry.Vec{X: 0, Y: 0}, geometry.Vec{X: 10, Y: 0}
	if d := geometry.DistanceToSegment(geometry.Vec{X: 5, Y: 3}, a, b); math.Abs(d-3) > eps {
		t.Errorf("mid distance = %v, want 3", d)
	}
	if d := geometry.DistanceToSegment(geometry.Vec{X: 13, Y: 4}, a, b); math.Abs(d-5) > eps {
		t.Errorf("end distance = %v, want 5", d)
	}
}

func TestFloor2(t *testing.T) {
	if got := geometry.Floor2(1.239); got != 1.23 {
		t.Errorf("got %v, want 1.23", got)
	}
	if got := geometry.Floor2(-1.231); got != -1.24 {
		t.Errorf("got %v, want -1.24", got)
	}
}
