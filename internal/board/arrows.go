package board

import (
	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// ArrowView is the laid-out segment of one arrow. Hidden arrows connect
// overlapping cards and are not drawn.
type ArrowView struct {
	Arrow   domain.Arrow  `json:"arrow"`
	Line    geometry.Line `json:"line"`
	Visible bool          `json:"visible"`
}

// ArrowViews returns the layout of every arrow in arrow order.
func (e *Engine) ArrowViews() []ArrowView {
	return append([]ArrowView{}, e.lines...)
}

// addArrow applies the creation rules. Self loops, out-of-range endpoints and
// duplicates are rejected; an existing reverse edge is replaced.
func (e *Engine) addArrow(a domain.Arrow) bool {
	n := e.cards.Len()
	if a.FromIndex == a.ToIndex ||
		a.FromIndex < 0 || a.FromIndex >= n ||
		a.ToIndex < 0 || a.ToIndex >= n {
		return false
	}
	rev := a.Reversed()
	for i, x := range e.arrows {
		if x == a {
			return false
		}
		if x == rev {
			e.arrows = append(e.arrows[:i], e.arrows[i+1:]...)
			break
		}
	}
	e.arrows = append(e.arrows, a)
	return true
}

// removeArrows drops every arrow for which drop returns true.
func (e *Engine) removeArrows(drop func(domain.Arrow) bool) bool {
	kept := e.arrows[:0]
	removed := false
	for _, a := range e.arrows {
		if drop(a) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	e.arrows = kept
	return removed
}

// rebuildArrows recreates the arrow list from as.
func (e *Engine) rebuildArrows(as []domain.Arrow) {
	e.arrows = nil
	for _, a := range as {
		e.addArrow(a)
	}
	if e.sel.arrow >= len(e.arrows) {
		e.sel.arrow = -1
	}
}

// relayoutArrows recomputes every arrow segment from the current card boxes.
func (e *Engine) relayoutArrows() {
	e.lines = e.lines[:0]
	for _, a := range e.arrows {
		from := e.cards.Card(cards.Handle(a.FromIndex))
		to := e.cards.Card(cards.Handle(a.ToIndex))
		v := ArrowView{Arrow: a}
		if from != nil && to != nil {
			v.Line, v.Visible = geometry.ArrowLine(from.Rect(), to.Rect())
		}
		e.lines = append(e.lines, v)
	}
	e.emit(EventArrowsChanged, len(e.lines))
}

// ─────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────

// Connect creates an arrow from one card to another. Invalid requests are
// ignored and leave no history entry.
func (e *Engine) Connect(from, to cards.Handle) bool {
	e.saveUndoState(false)
	if !e.addArrow(domain.Arrow{FromIndex: int(from), ToIndex: int(to)}) {
		e.discardUndoState()
		return false
	}
	e.commit()
	return true
}

// Disconnect removes the arrows between two cards in both directions.
func (e *Engine) Disconnect(a, b cards.Handle) bool {
	e.saveUndoState(false)
	if !e.removeArrows(func(x domain.Arrow) bool { return between(x, a, b) }) {
		e.discardUndoState()
		return false
	}
	e.sel.arrow = -1
	e.commit()
	return true
}

// ConnectSelected links the selection. With a single selected card a new
// empty text card is created at the cursor and linked from it; with more, the
// selected cards are chained in selection order.
func (e *Engine) ConnectSelected() {
	sel := e.Selected()
	if len(sel) == 0 {
		return
	}
	e.saveUndoState(false)
	if len(sel) == 1 {
		h := e.createCard(cards.New(domain.CardTypeText, e.cursor, e.nextZIndex()))
		e.addArrow(domain.Arrow{FromIndex: int(sel[0]), ToIndex: int(h)})
	} else {
		for i := 1; i < len(sel); i++ {
			e.addArrow(domain.Arrow{FromIndex: int(sel[i-1]), ToIndex: int(sel[i])})
		}
	}
	e.commit()
}

// DisconnectSelected removes every arrow between two selected cards.
func (e *Engine) DisconnectSelected() {
	if len(e.sel.cards) < 2 {
		return
	}
	e.saveUndoState(false)
	removed := e.removeArrows(func(a domain.Arrow) bool {
		return e.isSelected(cards.Handle(a.FromIndex)) && e.isSelected(cards.Handle(a.ToIndex))
	})
	if !removed {
		e.discardUndoState()
		return
	}
	e.sel.arrow = -1
	e.commit()
}

// RemoveSelectedArrow deletes the active arrow.
func (e *Engine) RemoveSelectedArrow() {
	i := e.sel.arrow
	if i < 0 || i >= len(e.arrows) {
		return
	}
	e.saveUndoState(false)
	e.arrows = append(e.arrows[:i], e.arrows[i+1:]...)
	e.sel.arrow = -1
	e.selectionChanged()
	e.commit()
}

// ReverseSelectedArrow flips the direction of the active arrow. The reversed
// edge replaces the original through the creation rules.
func (e *Engine) ReverseSelectedArrow() {
	i := e.sel.arrow
	if i < 0 || i >= len(e.arrows) {
		return
	}
	e.saveUndoState(false)
	e.addArrow(e.arrows[i].Reversed())
	e.sel.arrow = len(e.arrows) - 1
	e.selectionChanged()
	e.commit()
}

func between(x domain.Arrow, a, b cards.Handle) bool {
	return (x.FromIndex == int(a) && x.ToIndex == int(b)) ||
		(x.FromIndex == int(b) && x.ToIndex == int(a))
}
