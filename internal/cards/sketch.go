package cards

import (
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// SketchState is the mode of a DrawCard's own pointer state machine. It runs
// independently of the board's interaction mode.
type SketchState int

const (
	SketchNone SketchState = iota
	SketchDrawing
	SketchPanning
	SketchErasing
)

func (s SketchState) String() string {
	switch s {
	case SketchDrawing:
		return "drawing"
	case SketchPanning:
		return "panning"
	case SketchErasing:
		return "erasing"
	}
	return "none"
}

const (
	// StrokeThreshold is the distance, in canvas units at scale 1, the
	// pointer must travel before another sample is recorded.
	StrokeThreshold = 10.0
	// EraseTolerance is how close the pointer must pass to a stroke to
	// erase it.
	EraseTolerance = 6.0
)

// Sketch tracks one drawing gesture on a DrawCard.
type Sketch struct {
	state  SketchState
	card   Handle
	points []geometry.Point
	last   geometry.Vec
}

func (s *Sketch) State() SketchState { return s.state }

// Active reports whether a gesture is in progress.
func (s *Sketch) Active() bool { return s.state != SketchNone }

// Card returns the card the gesture belongs to.
func (s *Sketch) Card() Handle { return s.card }

// Pending returns a copy of the samples of the stroke being drawn.
func (s *Sketch) Pending() []geometry.Point {
	return append([]geometry.Point(nil), s.points...)
}

// Begin arms the machine on card h in the given state.
func (s *Sketch) Begin(h Handle, state SketchState, canvas geometry.Vec) {
	s.state = state
	s.card = h
	s.points = nil
	s.last = canvas
}

// Move feeds a pointer move in canvas space. It reports whether the card's
// strokes changed and its view needs a refresh.
func (s *Sketch) Move(col *Collection, canvas geometry.Vec, shift bool, scale float64) bool {
	c := col.Card(s.card)
	if c == nil || s.state == SketchNone {
		return false
	}
	defer func() { s.last = canvas }()

	switch s.state {
	case SketchDrawing:
		s.sample(ToLocal(*c, canvas), shift, scale)
		return false
	case SketchPanning:
		d := canvas.Sub(s.last)
		if d.IsZero() {
			return false
		}
		for _, stroke := range c.DrawPaths {
			for j := range stroke {
				stroke[j] = geometry.Point{stroke[j][0] + d.X, stroke[j][1] + d.Y}
			}
		}
		return true
	case SketchErasing:
		return erase(c, ToLocal(*c, canvas))
	}
	return false
}

// End finishes the gesture. A drawn stroke is appended to the card. It
// reports whether the card changed.
func (s *Sketch) End(col *Collection, canvas geometry.Vec) bool {
	defer func() {
		s.state = SketchNone
		s.points = nil
	}()
	c := col.Card(s.card)
	if c == nil {
		return false
	}
	switch s.state {
	case SketchDrawing:
		s.points = append(s.points, floorPoint(ToLocal(*c, canvas)))
		c.DrawPaths = append(c.DrawPaths, domain.Stroke(s.points))
		return true
	case SketchPanning, SketchErasing:
		return true
	}
	return false
}

// Cancel drops the gesture without touching the card.
func (s *Sketch) Cancel() {
	s.state = SketchNone
	s.points = nil
}

// sample records local as the next stroke point. Without shift a point is
// only kept once it is far enough from the previous one. With shift the
// stroke is a straight line: the provisional end point is replaced.
func (s *Sketch) sample(local geometry.Vec, shift bool, scale float64) {
	p := floorPoint(local)
	if len(s.points) == 0 {
		s.points = append(s.points, p)
		return
	}
	prev := s.points[len(s.points)-1]
	dist := local.Sub(prev.Vec()).Len()

	if shift && len(s.points) > 1 {
		s.points = s.points[:len(s.points)-1]
	}
	if shift || dist > StrokeThreshold/scale {
		s.points = append(s.points, p)
	}
}

// erase removes every stroke of c passing within EraseTolerance of local.
func erase(c *domain.Card, local geometry.Vec) bool {
	kept := c.DrawPaths[:0]
	removed := false
	for _, stroke := range c.DrawPaths {
		if strokeHit(stroke, local) {
			removed = true
			continue
		}
		kept = append(kept, stroke)
	}
	c.DrawPaths = kept
	return removed
}

func strokeHit(stroke domain.Stroke, p geometry.Vec) bool {
	switch len(stroke) {
	case 0:
		return false
	case 1:
		return p.Sub(stroke[0].Vec()).Len() <= EraseTolerance
	}
	for i := 1; i < len(stroke); i++ {
		if geometry.DistanceToSegment(p, stroke[i-1].Vec(), stroke[i].Vec()) <= EraseTolerance {
			return true
		}
	}
	return false
}

func floorPoint(v geometry.Vec) geometry.Point {
	return geometry.Point{geometry.Floor2(v.X), geometry.Floor2(v.Y)}
}
