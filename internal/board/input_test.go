package board_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func primary(x, y float64) board.Pointer {
	return board.Pointer{Pos: at(x, y), Button: board.ButtonPrimary}
}

func middle(x, y float64, shift bool) board.Pointer {
	return board.Pointer{Pos: at(x, y), Button: board.ButtonMiddle, Mods: board.Modifiers{Shift: shift}}
}

func click(e *board.Engine, p board.Pointer) {
	e.PointerDown(p)
	e.PointerUp(p)
}

// ─────────────────────────────────────────────────────────────
// Hit testing
// ─────────────────────────────────────────────────────────────

func TestHitTest(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	addText(e, 0, 0)                                  // 0
	e.CreateCard(domain.CardTypeDraw, at(500, 0))     // 1
	e.CreateCard(domain.CardTypeRegion, at(-50, 500)) // 2
	addText(e, 0, 600)                                // 3, above the region

	tests := []struct {
		name string
		p    geometry.Vec
		want board.Target
	}{
		{"empty", at(-500, -500), board.Target{Kind: board.TargetSurface}},
		{"text body", at(50, 50), board.Target{Kind: board.TargetCard, Card: 0}},
		{"left handle", at(1, 50), board.Target{Kind: board.TargetHandle, Card: 0, Side: cards.HandleLeft}},
		{"right handle", at(219, 50), board.Target{Kind: board.TargetHandle, Card: 0, Side: cards.HandleRight}},
		{"draw surface", at(600, 100), board.Target{Kind: board.TargetDrawSurface, Card: 1}},
		{"draw frame", at(600, 10), board.Target{Kind: board.TargetCard, Card: 1}},
		{"draw bottom handle", at(600, 339), board.Target{Kind: board.TargetHandle, Card: 1, Side: cards.HandleDown}},
		{"topmost wins", at(50, 650), board.Target{Kind: board.TargetCard, Card: 3}},
		{"region body", at(400, 900), board.Target{Kind: board.TargetCard, Card: 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, e.HitTest(tc.p)); diff != "" {
				t.Errorf("target (-want +got):\n%s", diff)
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────
// Dragging and selection
// ─────────────────────────────────────────────────────────────

func TestDrag_ZeroDisplacementKeepsUndoDepth(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	addText(e, 0, 0)
	depth := e.UndoDepth()

	e.PointerDown(primary(50, 50))
	if e.Mode() != board.ModeDraggingCards {
		t.Fatalf("mode = %v, want dragging", e.Mode())
	}
	e.PointerMove(primary(80, 90))
	e.PointerMove(primary(50, 50))
	e.PointerUp(primary(50, 50))

	if e.UndoDepth() != depth {
		t.Errorf("undo depth = %d, want %d", e.UndoDepth(), depth)
	}
	if e.Mode() != board.ModeIdle {
		t.Errorf("mode = %v after pointer up", e.Mode())
	}
}

func TestDrag_MovesSelectionByCanvasDelta(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	a := addText(e, 0, 0)
	b := addText(e, 400, 0)
	e.Zoom(at(0, 0), 1) // scale 0.9, pan stays at the origin
	e.Select(a, b)
	depth := e.UndoDepth()

	e.PointerDown(primary(45, 45))
	e.PointerMove(primary(54, 63))
	e.PointerUp(primary(54, 63))

	if got := card(t, e, a).Position; math.Abs(got.X-10) > 1e-9 || math.Abs(got.Y-20) > 1e-9 {
		t.Errorf("card a at %v, want (10, 20)", got)
	}
	if got := card(t, e, b).Position; math.Abs(got.X-410) > 1e-9 || math.Abs(got.Y-20) > 1e-9 {
		t.Errorf("card b at %v, want (410, 20)", got)
	}
	if e.UndoDepth() != depth+1 {
		t.Errorf("undo depth = %d, want %d", e.UndoDepth(), depth+1)
	}
}

func TestDrag_ShiftPressedCardLeavesSelection(t *testing.T) {
	e, store := newEngine(t, board.Options{})
	a := addText(e, 0, 0)
	b := addText(e, 400, 0)
	e.Select(a, b)
	depth := e.UndoDepth()

	shifted := func(x, y float64) board.Pointer {
		p := primary(x, y)
		p.Mods.Shift = true
		return p
	}
	e.PointerDown(shifted(50, 50))
	if diff := cmp.Diff([]cards.Handle{b}, e.Selected()); diff != "" {
		t.Fatalf("selection after shift press (-want +got):\n%s", diff)
	}
	e.PointerMove(shifted(150, 50))
	e.PointerUp(shifted(150, 50))

	if got := card(t, e, a).Position; got != at(0, 0) {
		t.Errorf("pressed card moved to %v", got)
	}
	if got := card(t, e, b).Position; got != at(500, 0) {
		t.Errorf("card b at %v, want (500, 0)", got)
	}
	if e.UndoDepth() != depth+1 {
		t.Errorf("undo depth = %d, want %d", e.UndoDepth(), depth+1)
	}

	if err := e.Flush(t.Context()); err != nil {
		t.Fatal(err)
	}
	st, err := board.Decode(store.file(boardPath), 16)
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Cards[b].Position; got != at(500, 0) {
		t.Errorf("saved card b at %v, want (500, 0)", got)
	}

	e.Undo()
	if got := card(t, e, b).Position; got != at(400, 0) {
		t.Errorf("card b at %v after undo, want (400, 0)", got)
	}
}

func TestClick_SelectionRules(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	a := addText(e, 0, 0)
	b := addText(e, 400, 0)

	// Pressing a member of a multi-selection keeps it for dragging; a click
	// without movement narrows it to the clicked card.
	e.Select(a, b)
	e.PointerDown(primary(50, 50))
	if diff := cmp.Diff([]cards.Handle{a, b}, e.Selected()); diff != "" {
		t.Errorf("selection while pressed (-want +got):\n%s", diff)
	}
	e.PointerUp(primary(50, 50))
	if diff := cmp.Diff([]cards.Handle{a}, e.Selected()); diff != "" {
		t.Errorf("selection after click (-want +got):\n%s", diff)
	}

	shift := primary(450, 50)
	shift.Mods.Shift = true
	click(e, shift)
	if diff := cmp.Diff([]cards.Handle{a, b}, e.Selected()); diff != "" {
		t.Errorf("shift click adds (-want +got):\n%s", diff)
	}
	click(e, shift)
	if diff := cmp.Diff([]cards.Handle{a}, e.Selected()); diff != "" {
		t.Errorf("shift click toggles off (-want +got):\n%s", diff)
	}

	click(e, primary(-300, -300))
	if len(e.Selected()) != 0 {
		t.Errorf("clicking the surface should clear the selection, got %v", e.Selected())
	}
}

func TestCtrlClick_SelectsIntersecting(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	e.CreateCard(domain.CardTypeRegion, at(0, 0)) // 0, wholly contains 1
	addText(e, 100, 100)                          // 1
	addText(e, 250, 150)                          // 2, overlaps 1
	addText(e, 1000, 1000)                        // 3

	p := primary(150, 120)
	p.Mods.Ctrl = true
	click(e, p)
	if diff := cmp.Diff([]cards.Handle{1, 2}, sorted(e.Selected())); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
}

func TestScenario_BoxSelectReplacesSelection(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	for i := 0; i < 5; i++ {
		addText(e, float64(i)*300, 0)
	}
	e.Select(4)

	e.PointerDown(middle(-10, -10, false))
	if e.Mode() != board.ModeBoxSelecting {
		t.Fatalf("mode = %v, want box selecting", e.Mode())
	}
	e.PointerMove(middle(400, 150, false))
	if diff := cmp.Diff([]cards.Handle{0, 1}, sorted(e.Selected())); diff != "" {
		t.Errorf("selection mid-gesture (-want +got):\n%s", diff)
	}
	e.PointerMove(middle(850, 150, false))
	if box, ok := e.SelectionBox(); !ok || box != (geometry.Rect{X: -10, Y: -10, W: 860, H: 160}) {
		t.Errorf("selection box = %v, %v", box, ok)
	}
	e.PointerUp(middle(850, 150, false))

	if diff := cmp.Diff([]cards.Handle{0, 1, 2}, sorted(e.Selected())); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
}

func TestBoxSelect_ShiftKeepsPriorSelection(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	for i := 0; i < 5; i++ {
		addText(e, float64(i)*300, 0)
	}
	e.Select(4)

	e.PointerDown(middle(-10, -10, true))
	e.PointerMove(middle(250, 150, false))
	e.PointerUp(middle(250, 150, false))

	if diff := cmp.Diff([]cards.Handle{0, 4}, sorted(e.Selected())); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
}

// ─────────────────────────────────────────────────────────────
// Panning, resizing, zoom
// ─────────────────────────────────────────────────────────────

func TestPanCanvas(t *testing.T) {
	e, store := newEngine(t, board.Options{UIOffset: at(0, 30)})

	e.PointerDown(primary(100, 130))
	if e.Mode() != board.ModePanningCanvas {
		t.Fatalf("mode = %v, want panning", e.Mode())
	}
	e.PointerMove(primary(140, 110))
	e.PointerUp(primary(140, 110))

	if got := e.Viewport().Pan; got != at(40, -20) {
		t.Errorf("pan = %v, want (40, -20)", got)
	}
	if e.UndoDepth() != 0 {
		t.Error("panning must not add history")
	}
	if err := e.Flush(t.Context()); err != nil {
		t.Fatal(err)
	}
	st, err := board.Decode(store.file(boardPath), 16)
	if err != nil {
		t.Fatal(err)
	}
	if st.Position != at(40, -20) {
		t.Errorf("saved pan = %v", st.Position)
	}
}

func TestSpaceHeld_PansOverCards(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	addText(e, 0, 0)
	e.SetSpaceHeld(true)
	e.PointerDown(primary(50, 50))
	if e.Mode() != board.ModePanningCanvas {
		t.Errorf("mode = %v, want panning", e.Mode())
	}
	e.PointerUp(primary(50, 50))
}

func TestResize_RightHandle(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	h := addText(e, 0, 0)
	depth := e.UndoDepth()

	e.PointerDown(primary(219, 50))
	if e.Mode() != board.ModeResizingCard {
		t.Fatalf("mode = %v, want resizing", e.Mode())
	}
	e.PointerMove(primary(318, 50))
	e.PointerUp(primary(318, 50))

	if got := card(t, e, h).Width; got != 298 {
		t.Errorf("width = %v, want 298", got)
	}
	if e.UndoDepth() != depth+1 {
		t.Errorf("undo depth = %d, want %d", e.UndoDepth(), depth+1)
	}

	// Releasing a handle without moving leaves no history.
	e.PointerDown(primary(317, 50))
	e.PointerUp(primary(317, 50))
	if e.UndoDepth() != depth+1 {
		t.Errorf("no-op resize changed undo depth to %d", e.UndoDepth())
	}
}

func TestZoom_InverseRestoresScaleAndFocus(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	cursor := at(300, 200)
	focus := e.ScreenToCanvas(cursor)

	for _, f := range []float64{1, -1, -1, -1, 1, 1} {
		e.Zoom(cursor, f)
		got := e.CanvasToScreen(focus)
		if math.Abs(got.X-cursor.X) > 1e-9 || math.Abs(got.Y-cursor.Y) > 1e-9 {
			t.Fatalf("focus drifted to %v at scale %v", got, e.Scale())
		}
	}
	if math.Abs(e.Scale()-1) > 1e-9 {
		t.Errorf("scale = %v, want 1", e.Scale())
	}
}

func TestZoom_Clamped(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	for i := 0; i < 100; i++ {
		e.Wheel(at(10, 10), 1, board.Modifiers{})
	}
	if e.Scale() != board.MinScale {
		t.Errorf("scale = %v, want %v", e.Scale(), board.MinScale)
	}
	for i := 0; i < 100; i++ {
		e.Wheel(at(10, 10), -1, board.Modifiers{})
	}
	if e.Scale() != board.MaxScale {
		t.Errorf("scale = %v, want %v", e.Scale(), board.MaxScale)
	}

	e.Wheel(at(10, 10), 1, board.Modifiers{Ctrl: true})
	if e.Scale() != board.MaxScale {
		t.Error("ctrl+wheel must not zoom")
	}
}

func TestZoomToSelectedAndReset(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	h := addText(e, 0, 0)
	e.Select(h)

	e.ZoomToSelected(1000, 800)
	if vp := e.Viewport(); vp.Scale != 2 || vp.Pan != at(290, 290) {
		t.Errorf("viewport = %+v, want scale 2 pan (290, 290)", vp)
	}
	e.ResetViewport()
	if vp := e.Viewport(); vp.Scale != 1 || !vp.Pan.IsZero() {
		t.Errorf("viewport = %+v after reset", vp)
	}
}

// ─────────────────────────────────────────────────────────────
// Drawing
// ─────────────────────────────────────────────────────────────

func TestSketch_StrokeIsUndoable(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	h := e.CreateCard(domain.CardTypeDraw, at(0, 0))
	depth := e.UndoDepth()

	e.PointerDown(primary(50, 60))
	if e.Mode() != board.ModeSketching {
		t.Fatalf("mode = %v, want sketching", e.Mode())
	}
	e.PointerMove(primary(80, 90))
	e.PointerMove(primary(120, 130))
	e.PointerUp(primary(120, 130))

	c := card(t, e, h)
	if len(c.DrawPaths) != 1 {
		t.Fatalf("expected one stroke, got %d", len(c.DrawPaths))
	}
	want := domain.Stroke{{68, 65}, {108, 105}, {108, 105}}
	if diff := cmp.Diff(want, c.DrawPaths[0]); diff != "" {
		t.Errorf("stroke (-want +got):\n%s", diff)
	}
	if got := e.Views()[h].Paths; len(got) != 1 {
		t.Errorf("expected one rendered path, got %v", got)
	}
	if e.UndoDepth() != depth+1 {
		t.Errorf("undo depth = %d, want %d", e.UndoDepth(), depth+1)
	}

	e.Undo()
	if got := card(t, e, h).DrawPaths; len(got) != 0 {
		t.Errorf("undo left strokes: %v", got)
	}
}

func TestSketch_EraseMissLeavesNoHistory(t *testing.T) {
	e, _ := newEngine(t, board.Options{})
	e.CreateCard(domain.CardTypeDraw, at(0, 0))
	depth := e.UndoDepth()

	p := board.Pointer{Pos: at(50, 60), Button: board.ButtonSecondary}
	e.PointerDown(p)
	p.Pos = at(90, 90)
	e.PointerMove(p)
	e.PointerUp(p)

	if e.UndoDepth() != depth {
		t.Errorf("undo depth = %d, want %d", e.UndoDepth(), depth)
	}
}
