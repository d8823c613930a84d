package board

import (
	"math"

	"github.com/leth4/leto-sub000/internal/geometry"
)

// Viewport is the pan/zoom transform between screen and canvas space.
type Viewport struct {
	Scale float64      `json:"scale"`
	Pan   geometry.Vec `json:"pan"`
}

// Viewport returns the current scale and pan.
func (e *Engine) Viewport() Viewport { return Viewport{Scale: e.scale, Pan: e.pan} }

// Scale returns the current zoom factor.
func (e *Engine) Scale() float64 { return e.scale }

// Cursor returns the last pointer position in canvas space.
func (e *Engine) Cursor() geometry.Vec { return e.cursor }

// ScreenToCanvas maps a screen point to canvas space.
func (e *Engine) ScreenToCanvas(screen geometry.Vec) geometry.Vec {
	return screen.Sub(e.pan).Scale(1 / e.scale)
}

// CanvasToScreen maps a canvas point to screen space.
func (e *Engine) CanvasToScreen(canvas geometry.Vec) geometry.Vec {
	return canvas.Scale(e.scale).Add(e.pan)
}

// toScreen strips the UI offset from a raw pointer position.
func (e *Engine) toScreen(raw geometry.Vec) geometry.Vec {
	return raw.Sub(e.opts.UIOffset)
}

// Wheel handles a wheel notch at a raw pointer position. Modified wheel
// events are left to the host.
func (e *Engine) Wheel(raw geometry.Vec, deltaY float64, mods Modifiers) {
	if mods.Ctrl || mods.Shift || deltaY == 0 {
		return
	}
	e.Zoom(e.toScreen(raw), deltaY)
}

// Zoom scales the view by one notch around a screen point: out for a
// positive amount, in otherwise. The canvas point under the cursor stays
// where it is on screen.
func (e *Engine) Zoom(cursor geometry.Vec, amount float64) {
	step := 1 / zoomStep
	if amount > 0 {
		step = zoomStep
	}
	next := geometry.Clamp(e.scale*step, MinScale, MaxScale)
	if next == e.scale {
		return
	}
	factor := next / e.scale
	e.pan = e.pan.Sub(cursor.Sub(e.pan).Scale(factor - 1))
	e.scale = next
	e.viewportChanged()
	e.requestSave()
}

// ZoomToSelected fits the selection into a container of the given screen
// size.
func (e *Engine) ZoomToSelected(containerW, containerH float64) {
	if len(e.sel.cards) == 0 || containerW <= 0 || containerH <= 0 {
		return
	}
	box := e.cards.Card(e.sel.cards[0]).Rect()
	for _, h := range e.sel.cards[1:] {
		box = box.Union(e.cards.Card(h).Rect())
	}
	if box.W <= 0 || box.H <= 0 {
		return
	}
	s := math.Min(containerW/box.W, containerH/box.H) * fitMargin
	e.scale = geometry.Clamp(s, minFitScale, maxFitScale)
	c := box.Center()
	e.pan = geometry.Vec{
		X: -c.X*e.scale + containerW/2 - fitShift,
		Y: -c.Y*e.scale + containerH/2 - fitShift,
	}
	e.viewportChanged()
	e.requestSave()
}

// ResetViewport returns to scale 1 with no pan.
func (e *Engine) ResetViewport() {
	e.scale = 1
	e.pan = geometry.Vec{}
	e.viewportChanged()
	e.requestSave()
}
