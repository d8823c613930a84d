package mcpserver

import (
	"math"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

const (
	GridSize = 30.0
	Padding  = 60.0 // 2 grid cells between cards
	MaxRowW  = 1800.0
)

// LayoutEngine places cards created by tools so they don't overlap existing
// ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the first free grid position, scanning rows top to
// bottom, for a card whose frame is w×h.
func (le *LayoutEngine) NextPosition(existing []domain.Card, w, h float64) geometry.Vec {
	if len(existing) == 0 {
		return geometry.Vec{}
	}

	occupied := make([]geometry.Rect, len(existing))
	for i, c := range existing {
		f := cards.Frame(c)
		occupied[i] = geometry.Rect{
			X: f.X - le.padding,
			Y: f.Y - le.padding,
			W: f.W + le.padding*2,
			H: f.H + le.padding*2,
		}
	}

	for y := 0.0; y < 100000; y += le.gridSize {
		for x := 0.0; x < le.maxRowW; x += le.gridSize {
			candidate := geometry.Rect{X: le.snap(x), Y: le.snap(y), W: w, H: h}
			free := true
			for _, occ := range occupied {
				if candidate.Overlaps(occ) {
					free = false
					break
				}
			}
			if free {
				return geometry.Vec{X: candidate.X, Y: candidate.Y}
			}
		}
	}

	// Fallback: below everything.
	maxY := 0.0
	for _, c := range existing {
		maxY = math.Max(maxY, cards.Frame(c).Bottom())
	}
	return geometry.Vec{X: 0, Y: le.snap(maxY + le.padding)}
}

// ArrangeGroup lays cs out in rows starting at start, wrapping at the row
// width. Positions are changed in place.
func (le *LayoutEngine) ArrangeGroup(cs []*domain.Card, start geometry.Vec) {
	x := le.snap(start.X)
	y := le.snap(start.Y)
	rowHeight := 0.0

	for _, c := range cs {
		f := cards.Frame(*c)
		if x > le.snap(start.X) && x+f.W > le.snap(start.X)+le.maxRowW {
			x = le.snap(start.X)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		c.Position = geometry.Vec{X: x, Y: y}
		rowHeight = math.Max(rowHeight, f.H)
		x += le.snap(f.W + le.padding)
	}
}
