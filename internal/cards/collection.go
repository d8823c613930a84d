package cards

import (
	"github.com/leth4/leto-sub000/internal/domain"
)

// Handle addresses a card by its position in a Collection. Handles are
// renumbered when an earlier card is removed, exactly like arrow endpoints.
type Handle int

// Collection is the ordered list of live cards together with their views.
type Collection struct {
	cards []domain.Card
	views []View
	env   Env
}

func NewCollection(env Env) *Collection {
	return &Collection{env: env}
}

// Env returns the live environment so callers can change settings such as
// the font size. Call UpdateAll afterwards.
func (col *Collection) Env() *Env { return &col.env }

func (col *Collection) Len() int { return len(col.cards) }

// Valid reports whether h addresses a card.
func (col *Collection) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(col.cards)
}

// Create appends an independent copy of c, builds its view and returns the
// new handle.
func (col *Collection) Create(c domain.Card) Handle {
	col.cards = append(col.cards, c.Copy())
	col.views = append(col.views, View{})
	h := Handle(len(col.cards) - 1)
	col.Update(h)
	return h
}

// Update re-clamps the geometry of h and refreshes its derived view.
func (col *Collection) Update(h Handle) {
	if !col.Valid(h) {
		return
	}
	c := &col.cards[h]
	v := &col.views[h]
	variantOf(c.Type).refresh(c, v, &col.env)
	v.Type = c.Type
	v.ZIndex = c.ZIndex
	v.IsInversed = c.IsInversed
	v.Handles = Handles(c.Type)
	v.Frame = Frame(*c)
}

// UpdateAll refreshes every card, e.g. after the font size or the
// spellcheck state changed.
func (col *Collection) UpdateAll() {
	for i := range col.cards {
		col.Update(Handle(i))
	}
}

// Card returns the live card behind h. Callers that mutate it must call
// Update.
func (col *Collection) Card(h Handle) *domain.Card {
	if !col.Valid(h) {
		return nil
	}
	return &col.cards[h]
}

// Copy returns a value-independent clone of the card behind h.
func (col *Collection) Copy(h Handle) domain.Card {
	return col.cards[h].Copy()
}

func (col *Collection) View(h Handle) View {
	return col.views[h]
}

// Views returns the views of all cards in collection order.
func (col *Collection) Views() []View {
	return append([]View(nil), col.views...)
}

// Snapshot deep-copies every card.
func (col *Collection) Snapshot() []domain.Card {
	out := make([]domain.Card, len(col.cards))
	for i, c := range col.cards {
		out[i] = c.Copy()
	}
	return out
}

// Remove deletes the card behind h. Every later handle shifts down by one.
func (col *Collection) Remove(h Handle) {
	if !col.Valid(h) {
		return
	}
	col.cards = append(col.cards[:h], col.cards[h+1:]...)
	col.views = append(col.views[:h], col.views[h+1:]...)
}

// Clear drops every card.
func (col *Collection) Clear() {
	col.cards = nil
	col.views = nil
}
