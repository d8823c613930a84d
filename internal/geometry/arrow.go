package geometry

const (
	// ArrowWidthPad widens each card box horizontally before any arrow math.
	ArrowWidthPad = 25.0
	// ArrowInset is the gap left between a card edge and the arrow tip.
	ArrowInset = 20.0
	// arrowNearMargin decides when two cards are close enough to drop the inset.
	arrowNearMargin = 50.0
)

// Line is a directed segment.
type Line struct {
	From Vec `json:"from"`
	To   Vec `json:"to"`
}

// ArrowLine computes the visible segment of an arrow between two card boxes.
// It returns false when the boxes overlap, in which case nothing is drawn.
//
// The segment runs between the box centers and each end is clipped at its own
// box's boundary. Unless the boxes nearly touch, the ends are pushed a further
// ArrowInset outwards so the tip never sits on the card frame.
func ArrowLine(from, to Rect) (Line, bool) {
	fromBox := from.Grow(ArrowWidthPad, 0)
	toBox := to.Grow(ArrowWidthPad, 0)
	if fromBox.Touches(toBox) {
		return Line{}, false
	}

	c0, c1 := fromBox.Center(), toBox.Center()
	grow := 2 * ArrowInset
	if fromBox.Grow(arrowNearMargin, arrowNearMargin).Touches(toBox.Grow(arrowNearMargin, arrowNearMargin)) {
		grow = 0
	}

	return Line{
		From: ClipToBoundary(c0, c1, fromBox.W+grow, fromBox.H+grow),
		To:   ClipToBoundary(c1, c0, toBox.W+grow, toBox.H+grow),
	}, true
}

// ClipToBoundary moves origin, the center of a w×h box, along the ray toward
// target until it reaches the box boundary. The exit edge is picked by
// comparing the ray slope with the box diagonal (the critical angle).
func ClipToBoundary(origin, target Vec, w, h float64) Vec {
	d := target.Sub(origin)
	if d.IsZero() {
		return origin
	}
	ax, ay := abs(d.X), abs(d.Y)

	var t float64
	if w*ay > h*ax {
		t = (h / 2) / ay
	} else {
		t = (w / 2) / ax
	}
	return origin.Add(d.Scale(t))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
