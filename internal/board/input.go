package board

import (
	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// ─────────────────────────────────────────────────────────────
// Pointer input
// ─────────────────────────────────────────────────────────────

type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// Pointer is one raw pointer event. Pos is in raw pointer coordinates; the
// UI offset is removed by the engine.
type Pointer struct {
	Pos    geometry.Vec
	Button Button
	Mods   Modifiers
}

// Mode is the active interaction mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDraggingCards
	ModePanningCanvas
	ModeBoxSelecting
	ModeResizingCard
	ModeSketching
)

func (m Mode) String() string {
	switch m {
	case ModeDraggingCards:
		return "dragging"
	case ModePanningCanvas:
		return "panning"
	case ModeBoxSelecting:
		return "box-selecting"
	case ModeResizingCard:
		return "resizing"
	case ModeSketching:
		return "sketching"
	}
	return "idle"
}

type TargetKind int

const (
	TargetSurface TargetKind = iota
	TargetCard
	TargetHandle
	TargetDrawSurface
)

// Target is what lies under the pointer.
type Target struct {
	Kind TargetKind
	Card cards.Handle
	Side cards.HandleSide
}

// gesture is the state of the pointer interaction between down and up.
type gesture struct {
	mode   Mode
	target Target
	button Button

	last      geometry.Vec // previous screen position
	startPos  geometry.Vec // pan at pointer down
	startRect geometry.Rect

	boxStart geometry.Vec
	box      geometry.Rect
	boxBase  []cards.Handle

	sketch  cards.Sketch
	changed bool
}

func (g *gesture) reset() {
	g.sketch.Cancel()
	*g = gesture{}
}

// Mode returns the active interaction mode.
func (e *Engine) Mode() Mode { return e.gesture.mode }

// SelectionBox returns the box of an ongoing box selection in canvas space.
func (e *Engine) SelectionBox() (geometry.Rect, bool) {
	return e.gesture.box, e.gesture.mode == ModeBoxSelecting
}

// SetSpaceHeld records whether the pan key is held. While held, the primary
// button pans the canvas wherever it is pressed.
func (e *Engine) SetSpaceHeld(held bool) { e.spaceHeld = held }

// HitTest resolves the topmost target at a canvas point. Within the topmost
// card, resize handles win over the drawing surface, which wins over the
// card body.
func (e *Engine) HitTest(p geometry.Vec) Target {
	top := cards.Handle(-1)
	for i := 0; i < e.cards.Len(); i++ {
		h := cards.Handle(i)
		c := e.cards.Card(h)
		if !cards.Frame(*c).ContainsPoint(p) {
			continue
		}
		if top < 0 || c.ZIndex >= e.cards.Card(top).ZIndex {
			top = h
		}
	}
	if top < 0 {
		return Target{Kind: TargetSurface}
	}
	c := *e.cards.Card(top)
	size := cards.HandleSize(e.scale)
	for _, side := range []cards.HandleSide{cards.HandleDown, cards.HandleLeft, cards.HandleRight} {
		if cards.HasHandle(c.Type, side) && cards.HandleRect(c, side, size).ContainsPoint(p) {
			return Target{Kind: TargetHandle, Card: top, Side: side}
		}
	}
	if c.Type == domain.CardTypeDraw && cards.Surface(c).ContainsPoint(p) {
		return Target{Kind: TargetDrawSurface, Card: top}
	}
	return Target{Kind: TargetCard, Card: top}
}

// PointerDown starts a gesture at the target under the pointer.
func (e *Engine) PointerDown(p Pointer) {
	screen := e.toScreen(p.Pos)
	canvas := e.ScreenToCanvas(screen)
	e.cursor = canvas
	e.PointerDownOn(e.HitTest(canvas), p)
}

// PointerDownOn starts a gesture on an explicit target, for hosts that do
// their own hit testing.
func (e *Engine) PointerDownOn(t Target, p Pointer) {
	screen := e.toScreen(p.Pos)
	canvas := e.ScreenToCanvas(screen)
	e.cursor = canvas

	e.gesture.reset()
	g := &e.gesture
	g.target = t
	g.button = p.Button
	g.last = screen

	if t.Kind != TargetSurface && !e.cards.Valid(t.Card) {
		t = Target{Kind: TargetSurface}
		g.target = t
	}

	switch {
	case e.spaceHeld && p.Button == ButtonPrimary:
		e.beginPan()

	case t.Kind == TargetDrawSurface:
		state := cards.SketchDrawing
		switch p.Button {
		case ButtonMiddle:
			state = cards.SketchPanning
		case ButtonSecondary:
			state = cards.SketchErasing
		}
		e.saveUndoState(false)
		g.mode = ModeSketching
		g.sketch.Begin(t.Card, state, canvas)

	case p.Button == ButtonMiddle:
		if p.Mods.Shift {
			g.boxBase = e.Selected()
		}
		e.clearSelection()
		g.mode = ModeBoxSelecting
		g.boxStart = canvas
		g.box = geometry.Rect{X: canvas.X, Y: canvas.Y}
		e.selectionChanged()

	case p.Button != ButtonPrimary:
		return

	case t.Kind == TargetHandle:
		e.saveUndoState(false)
		g.mode = ModeResizingCard
		g.startRect = e.cards.Card(t.Card).Rect()

	case t.Kind == TargetCard:
		e.pressCard(t.Card, p.Mods)

	default:
		e.clearSelection()
		e.selectionChanged()
		e.beginPan()
	}
}

func (e *Engine) beginPan() {
	e.gesture.mode = ModePanningCanvas
	e.gesture.startPos = e.pan
}

// pressCard applies the click selection rules and arms a drag.
func (e *Engine) pressCard(h cards.Handle, mods Modifiers) {
	e.saveUndoState(false)
	selected := e.isSelected(h)
	if !mods.Shift && (len(e.sel.cards) < 2 || !selected) {
		e.clearSelection()
	}
	if !mods.Shift || !selected {
		e.selectCard(h)
	} else {
		e.deselectCard(h)
	}
	if mods.Ctrl {
		for _, o := range e.CardsInBounds(cards.Frame(*e.cards.Card(h))) {
			e.selectCard(o)
		}
	}
	e.gesture.mode = ModeDraggingCards
	e.selectionChanged()
}

// PointerMove advances the active gesture.
func (e *Engine) PointerMove(p Pointer) {
	screen := e.toScreen(p.Pos)
	canvas := e.ScreenToCanvas(screen)
	e.cursor = canvas
	g := &e.gesture
	delta := screen.Sub(g.last)
	g.last = screen

	switch g.mode {
	case ModeDraggingCards:
		if delta.IsZero() {
			return
		}
		if len(e.sel.cards) == 0 {
			return
		}
		d := delta.Scale(1 / e.scale)
		for _, h := range e.sel.cards {
			c := e.cards.Card(h)
			c.Position = c.Position.Add(d)
			e.cards.Update(h)
		}
		g.changed = true
		e.touch()

	case ModePanningCanvas:
		if delta.IsZero() {
			return
		}
		e.pan = e.pan.Add(delta)
		e.viewportChanged()

	case ModeBoxSelecting:
		g.box = geometry.RectFromCorners(g.boxStart, canvas)
		e.sel.cards = nil
		for _, h := range g.boxBase {
			e.selectCard(h)
		}
		for _, h := range e.CardsInBounds(g.box) {
			e.selectCard(h)
		}
		e.selectionChanged()

	case ModeResizingCard:
		c := e.cards.Card(g.target.Card)
		switch g.target.Side {
		case cards.HandleLeft:
			cards.ResizeLeft(c, canvas.X)
		case cards.HandleRight:
			cards.ResizeRight(c, canvas.X)
		case cards.HandleDown:
			cards.ResizeDown(c, canvas.Y)
		}
		e.cards.Update(g.target.Card)
		e.touch()

	case ModeSketching:
		if g.sketch.Move(e.cards, canvas, p.Mods.Shift, e.scale) {
			g.changed = true
			e.cards.Update(g.sketch.Card())
			e.touch()
		}
	}
}

// movedSinceSnapshot reports whether any card sits elsewhere than in the
// latest undo snapshot.
func (e *Engine) movedSinceSnapshot() bool {
	n := len(e.history.undo)
	if n == 0 {
		return true
	}
	before := e.history.undo[n-1].Cards
	if len(before) != e.cards.Len() {
		return true
	}
	for i, c := range before {
		if e.cards.Card(cards.Handle(i)).Position != c.Position {
			return true
		}
	}
	return false
}

// PointerUp commits the active gesture. Gestures that changed nothing drop
// the history entry they pushed.
func (e *Engine) PointerUp(p Pointer) {
	screen := e.toScreen(p.Pos)
	e.cursor = e.ScreenToCanvas(screen)
	g := &e.gesture

	switch g.mode {
	case ModeDraggingCards:
		h := g.target.Card
		moved := g.changed && e.movedSinceSnapshot()
		if !moved && !p.Mods.Shift && !p.Mods.Ctrl && g.button == ButtonPrimary {
			e.clearSelection()
			e.selectCard(h)
			e.selectionChanged()
		}
		if moved {
			e.requestSave()
		} else {
			e.discardUndoState()
		}

	case ModeResizingCard:
		if e.cards.Card(g.target.Card).Rect() != g.startRect {
			e.requestSave()
		} else {
			e.discardUndoState()
		}

	case ModePanningCanvas:
		if e.pan != g.startPos {
			e.requestSave()
		}

	case ModeSketching:
		h := g.sketch.Card()
		drawing := g.sketch.State() == cards.SketchDrawing
		g.sketch.End(e.cards, e.cursor)
		if drawing || g.changed {
			e.cards.Update(h)
			e.commit()
		} else {
			e.discardUndoState()
		}
	}
	g.reset()
}
