package board

import (
	"fmt"
	"slices"
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// ─────────────────────────────────────────────────────────────
// Creation
// ─────────────────────────────────────────────────────────────

func (e *Engine) nextZIndex() int { return domain.BaseZIndex + e.cards.Len() }

func (e *Engine) createCard(c domain.Card) cards.Handle {
	return e.cards.Create(c)
}

// CreateCard adds an empty card of type t at pos (canvas space) and selects
// it.
func (e *Engine) CreateCard(t domain.CardType, pos geometry.Vec) cards.Handle {
	e.saveUndoState(false)
	h := e.createCard(cards.New(t, pos, e.nextZIndex()))
	e.Select(h)
	e.commit()
	return h
}

// CreateCardAtCursor adds an empty card of type t under the last known
// pointer position.
func (e *Engine) CreateCardAtCursor(t domain.CardType) cards.Handle {
	return e.CreateCard(t, e.cursor)
}

// AddImage adds an ImageCard showing path at pos.
func (e *Engine) AddImage(path string, pos geometry.Vec) cards.Handle {
	e.saveUndoState(false)
	c := cards.New(domain.CardTypeImage, pos, e.nextZIndex())
	c.ImagePath = path
	h := e.createCard(c)
	e.commit()
	return h
}

// Drop adds a card for a file dropped at pos: images become ImageCards and
// notes become TextCards holding the note's text. Other files are ignored.
func (e *Engine) Drop(path string, pos geometry.Vec) (cards.Handle, bool, error) {
	switch {
	case domain.IsImageFile(path):
		return e.AddImage(path, pos), true, nil
	case domain.IsNoteFile(path):
		text, err := e.opts.Store.ReadText(path)
		if err != nil {
			return 0, false, fmt.Errorf("read dropped note %s: %w", path, err)
		}
		e.saveUndoState(false)
		c := cards.New(domain.CardTypeText, pos, e.nextZIndex())
		c.Text = text
		h := e.createCard(c)
		e.commit()
		return h, true, nil
	}
	return 0, false, nil
}

// ─────────────────────────────────────────────────────────────
// Deletion
// ─────────────────────────────────────────────────────────────

// DeleteSelected removes every selected card.
func (e *Engine) DeleteSelected() {
	e.Delete(e.sel.cards...)
}

// Delete removes the given cards. All removals happen first, then every
// arrow endpoint is renumbered in a single pass: endpoints on a removed card
// become -1 and endpoints above a removed index shift down. The arrow list is
// then rebuilt, which drops the dangling ones.
func (e *Engine) Delete(hs ...cards.Handle) {
	var removed []int
	for _, h := range hs {
		if e.cards.Valid(h) && !slices.Contains(removed, int(h)) {
			removed = append(removed, int(h))
		}
	}
	if len(removed) == 0 {
		return
	}
	e.saveUndoState(false)

	sort.Sort(sort.Reverse(sort.IntSlice(removed)))
	for _, i := range removed {
		e.cards.Remove(cards.Handle(i))
	}
	e.compactZ()
	renumbered := make([]domain.Arrow, len(e.arrows))
	for i, a := range e.arrows {
		renumbered[i] = domain.Arrow{
			FromIndex: renumber(a.FromIndex, removed),
			ToIndex:   renumber(a.ToIndex, removed),
		}
	}
	e.clearSelection()
	e.rebuildArrows(renumbered)
	e.selectionChanged()
	e.commit()
}

func renumber(idx int, removed []int) int {
	if idx == domain.NoCard {
		return idx
	}
	shift := 0
	for _, r := range removed {
		switch {
		case r == idx:
			return domain.NoCard
		case r < idx:
			shift++
		}
	}
	return idx - shift
}

// ─────────────────────────────────────────────────────────────
// Z-order
// ─────────────────────────────────────────────────────────────

// BringToFront moves h above every other card.
func (e *Engine) BringToFront(h cards.Handle) {
	e.restack(h, domain.BaseZIndex+e.cards.Len()-1)
}

// SendToBack moves h below every other card.
func (e *Engine) SendToBack(h cards.Handle) {
	e.restack(h, domain.BaseZIndex)
}

// restack sets h's z-index to z and shifts every card between the old and
// the new value by one toward the gap, keeping the stack dense.
func (e *Engine) restack(h cards.Handle, z int) {
	c := e.cards.Card(h)
	if c == nil || c.ZIndex == z {
		return
	}
	e.saveUndoState(false)
	old := c.ZIndex
	for i := 0; i < e.cards.Len(); i++ {
		o := e.cards.Card(cards.Handle(i))
		if cards.Handle(i) == h {
			continue
		}
		switch {
		case z > old && o.ZIndex > old && o.ZIndex <= z:
			o.ZIndex--
		case z < old && o.ZIndex >= z && o.ZIndex < old:
			o.ZIndex++
		default:
			continue
		}
		e.cards.Update(cards.Handle(i))
	}
	c.ZIndex = z
	e.cards.Update(h)
	e.commit()
}

// compactZ renumbers z-indices to BaseZIndex..BaseZIndex+n-1, keeping the
// stacking order. Equal z-indices keep list order.
func (e *Engine) compactZ() {
	order := make([]cards.Handle, e.cards.Len())
	for i := range order {
		order[i] = cards.Handle(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return e.cards.Card(order[a]).ZIndex < e.cards.Card(order[b]).ZIndex
	})
	for i, h := range order {
		if c := e.cards.Card(h); c.ZIndex != domain.BaseZIndex+i {
			c.ZIndex = domain.BaseZIndex + i
			e.cards.Update(h)
		}
	}
}

// ─────────────────────────────────────────────────────────────
// Clipboard
// ─────────────────────────────────────────────────────────────

// Copy puts value copies of the selected cards on the board clipboard.
func (e *Engine) Copy() int {
	e.clipboard = e.clipboard[:0]
	for _, h := range e.sel.cards {
		e.clipboard = append(e.clipboard, e.cards.Copy(h))
	}
	return len(e.clipboard)
}

// Cut copies and then deletes the selection.
func (e *Engine) Cut() int {
	n := e.Copy()
	e.DeleteSelected()
	return n
}

// Paste recreates the clipboard with the first copied card at pos and the
// others at their original offsets from it. The pasted cards become the
// selection.
func (e *Engine) Paste(pos geometry.Vec) []cards.Handle {
	if len(e.clipboard) == 0 {
		return nil
	}
	e.saveUndoState(false)
	anchor := e.clipboard[0].Position
	var pasted []cards.Handle
	for _, c := range e.clipboard {
		c = c.Copy()
		c.Position = pos.Add(c.Position.Sub(anchor))
		c.ZIndex = e.nextZIndex()
		pasted = append(pasted, e.createCard(c))
	}
	e.Select(pasted...)
	e.commit()
	return pasted
}

// PasteAtCursor pastes at the last known pointer position.
func (e *Engine) PasteAtCursor() []cards.Handle { return e.Paste(e.cursor) }

// ─────────────────────────────────────────────────────────────
// Arrangement
// ─────────────────────────────────────────────────────────────

// AlignVertically stacks the selection top to bottom in its current vertical
// order, aligned on the topmost card's left edge.
func (e *Engine) AlignVertically() {
	e.align(func(a, b *domain.Card) bool { return a.Position.Y < b.Position.Y },
		func(prev *domain.Card) geometry.Vec {
			return geometry.Vec{X: prev.Position.X, Y: prev.Position.Y + prev.Height + alignGapVertical}
		})
}

// AlignHorizontally lines the selection up left to right in its current
// horizontal order, aligned on the leftmost card's top edge.
func (e *Engine) AlignHorizontally() {
	e.align(func(a, b *domain.Card) bool { return a.Position.X < b.Position.X },
		func(prev *domain.Card) geometry.Vec {
			return geometry.Vec{X: prev.Position.X + prev.Width + alignGapHorizontal, Y: prev.Position.Y}
		})
}

func (e *Engine) align(less func(a, b *domain.Card) bool, next func(prev *domain.Card) geometry.Vec) {
	if len(e.sel.cards) < 2 {
		return
	}
	e.saveUndoState(false)
	order := e.Selected()
	sort.SliceStable(order, func(i, j int) bool {
		return less(e.cards.Card(order[i]), e.cards.Card(order[j]))
	})
	for i := 1; i < len(order); i++ {
		c := e.cards.Card(order[i])
		c.Position = next(e.cards.Card(order[i-1]))
		e.cards.Update(order[i])
	}
	e.commit()
}

// Nudge moves the selection by (dx, dy) steps.
func (e *Engine) Nudge(dx, dy float64) {
	if len(e.sel.cards) == 0 || (dx == 0 && dy == 0) {
		return
	}
	e.saveUndoState(false)
	d := geometry.Vec{X: dx, Y: dy}.Scale(nudgeStep)
	for _, h := range e.sel.cards {
		c := e.cards.Card(h)
		c.Position = c.Position.Add(d)
		e.cards.Update(h)
	}
	e.commit()
}

// InvertSelected toggles the inverted colour scheme of every selected card.
func (e *Engine) InvertSelected() {
	if len(e.sel.cards) == 0 {
		return
	}
	e.saveUndoState(false)
	for _, h := range e.sel.cards {
		c := e.cards.Card(h)
		c.IsInversed = !c.IsInversed
		e.cards.Update(h)
	}
	e.commit()
}

// ─────────────────────────────────────────────────────────────
// Content
// ─────────────────────────────────────────────────────────────

// SetCardText replaces the text of a TextCard. Unchanged text leaves no
// history entry.
func (e *Engine) SetCardText(h cards.Handle, text string) bool {
	c := e.cards.Card(h)
	if c == nil || c.Type != domain.CardTypeText || c.Text == text {
		return false
	}
	e.saveUndoState(false)
	c.Text = text
	e.cards.Update(h)
	e.commit()
	return true
}

// SetCardGeometry moves and resizes a card. Sizes are clamped by the card's
// variant.
func (e *Engine) SetCardGeometry(h cards.Handle, pos geometry.Vec, width, height float64) bool {
	c := e.cards.Card(h)
	if c == nil {
		return false
	}
	if c.Position == pos && c.Width == width && c.Height == height {
		return false
	}
	e.saveUndoState(false)
	c.Position, c.Width, c.Height = pos, width, height
	e.cards.Update(h)
	e.commit()
	return true
}

// FindCards returns the cards whose text or image path fuzzily matches
// query, best match first.
func (e *Engine) FindCards(query string) []cards.Handle {
	var (
		haystack []string
		handles  []cards.Handle
	)
	for i := 0; i < e.cards.Len(); i++ {
		c := e.cards.Card(cards.Handle(i))
		s := c.Text
		if c.Type == domain.CardTypeImage {
			s = c.ImagePath
		}
		if s == "" {
			continue
		}
		haystack = append(haystack, s)
		handles = append(handles, cards.Handle(i))
	}
	var out []cards.Handle
	for _, m := range fuzzy.Find(query, haystack) {
		out = append(out, handles[m.Index])
	}
	return out
}

// Reset clears history, selection and content and marks the engine as not
// loaded, so nothing is saved until the next Load.
func (e *Engine) Reset() {
	e.history.clear()
	e.gesture.reset()
	e.clearSelection()
	e.clipboard = nil
	e.cards.Clear()
	e.arrows = nil
	e.lines = nil
	e.loaded = false
	e.emit(EventChanged, e.opts.Path)
}
