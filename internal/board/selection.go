package board

import (
	"slices"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// selection keeps the active cards in the order they were selected, plus at
// most one active arrow (-1 for none).
type selection struct {
	cards []cards.Handle
	arrow int
}

func (e *Engine) isSelected(h cards.Handle) bool {
	return slices.Contains(e.sel.cards, h)
}

func (e *Engine) selectCard(h cards.Handle) {
	if !e.cards.Valid(h) || e.isSelected(h) {
		return
	}
	e.sel.cards = append(e.sel.cards, h)
}

func (e *Engine) deselectCard(h cards.Handle) {
	e.sel.cards = slices.DeleteFunc(e.sel.cards, func(x cards.Handle) bool { return x == h })
}

func (e *Engine) clearSelection() {
	e.sel.cards = nil
	e.sel.arrow = -1
}

// Selected returns the selected cards in selection order.
func (e *Engine) Selected() []cards.Handle {
	return append([]cards.Handle{}, e.sel.cards...)
}

// Select replaces the selection with hs. Invalid handles are ignored.
func (e *Engine) Select(hs ...cards.Handle) {
	e.clearSelection()
	for _, h := range hs {
		e.selectCard(h)
	}
	e.selectionChanged()
}

// SelectAll selects every card.
func (e *Engine) SelectAll() {
	e.clearSelection()
	for i := 0; i < e.cards.Len(); i++ {
		e.selectCard(cards.Handle(i))
	}
	e.selectionChanged()
}

// ClearSelection deselects every card and the active arrow.
func (e *Engine) ClearSelection() {
	e.clearSelection()
	e.selectionChanged()
}

// SelectArrow makes arrow i the active arrow. Out-of-range values clear it.
func (e *Engine) SelectArrow(i int) {
	if i < 0 || i >= len(e.arrows) {
		i = -1
	}
	e.sel.arrow = i
	e.selectionChanged()
}

// SelectedArrow returns the index of the active arrow, or -1.
func (e *Engine) SelectedArrow() int { return e.sel.arrow }

// CardsInBounds returns every card whose box overlaps r, except cards that
// wholly contain r.
func (e *Engine) CardsInBounds(r geometry.Rect) []cards.Handle {
	var out []cards.Handle
	for i := 0; i < e.cards.Len(); i++ {
		h := cards.Handle(i)
		box := cards.Frame(*e.cards.Card(h))
		if box.Overlaps(r) && !r.StrictlyInside(box) {
			out = append(out, h)
		}
	}
	return out
}
