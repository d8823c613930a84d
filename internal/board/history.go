package board

import (
	"github.com/leth4/leto-sub000/internal/domain"
)

// Snapshot is one undo/redo entry: a deep copy of every card and arrow.
type Snapshot struct {
	Cards  []domain.Card
	Arrows []domain.Arrow
}

type history struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int

	// suppressed is set while a snapshot is replayed or a document loads.
	suppressed bool
}

func (h *history) push(s Snapshot) {
	h.undo = append(h.undo, s)
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = append([]Snapshot(nil), h.undo[len(h.undo)-h.limit:]...)
	}
}

func (h *history) clear() {
	h.undo = nil
	h.redo = nil
}

// Snapshot deep-copies the live cards and arrows.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{Cards: e.cards.Snapshot(), Arrows: e.Arrows()}
}

// UndoDepth returns the number of undo entries.
func (e *Engine) UndoDepth() int { return len(e.history.undo) }

// RedoDepth returns the number of redo entries.
func (e *Engine) RedoDepth() int { return len(e.history.redo) }

// saveUndoState captures the live state before a mutation. A new action
// invalidates the redo stack; a redo does not.
func (e *Engine) saveUndoState(fromRedo bool) {
	if e.history.suppressed || e.loading {
		return
	}
	e.history.push(e.Snapshot())
	if !fromRedo {
		e.history.redo = nil
	}
}

// discardUndoState drops the snapshot pushed for a gesture that changed
// nothing.
func (e *Engine) discardUndoState() {
	if n := len(e.history.undo); n > 0 {
		e.history.undo = e.history.undo[:n-1]
	}
}

// Undo restores the latest snapshot. The live state moves to the redo stack.
func (e *Engine) Undo() bool {
	n := len(e.history.undo)
	if n == 0 {
		return false
	}
	s := e.history.undo[n-1]
	e.history.undo = e.history.undo[:n-1]
	e.history.redo = append(e.history.redo, e.Snapshot())
	e.apply(s)
	return true
}

// Redo re-applies the latest undone snapshot.
func (e *Engine) Redo() bool {
	n := len(e.history.redo)
	if n == 0 {
		return false
	}
	s := e.history.redo[n-1]
	e.history.redo = e.history.redo[:n-1]
	e.saveUndoState(true)
	e.apply(s)
	return true
}

// apply clears the live state and recreates it from s through the card
// contract. Capture is suppressed while it runs.
func (e *Engine) apply(s Snapshot) {
	e.history.suppressed = true
	defer func() { e.history.suppressed = false }()

	e.gesture.reset()
	e.clearSelection()
	e.rebuild(s.Cards, s.Arrows)
	e.selectionChanged()
	e.commit()
}

// rebuild replaces every card and arrow. Arrows pass through creation rules
// so dangling or invalid entries fall out.
func (e *Engine) rebuild(cs []domain.Card, as []domain.Arrow) {
	e.cards.Clear()
	for _, c := range cs {
		e.cards.Create(c)
	}
	e.rebuildArrows(as)
}
