package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// document is the decode shape of a persisted board. Pointer fields tell a
// missing value from a zero one.
type document struct {
	Cards    []domain.Card  `json:"cards"`
	Arrows   []domain.Arrow `json:"arrows"`
	Scale    *float64       `json:"scale"`
	Position *geometry.Vec  `json:"position"`
	FontSize *float64       `json:"fontSize"`
}

// Serialize renders the full board state as the persisted document.
func (e *Engine) Serialize() (string, error) {
	return Encode(e.State())
}

// Encode renders a board state as a document: two-space indented JSON with
// a fixed field order.
func Encode(st domain.BoardState) (string, error) {
	if st.Cards == nil {
		st.Cards = []domain.Card{}
	}
	if st.Arrows == nil {
		st.Arrows = []domain.Arrow{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode board: %w", err)
	}
	return string(data), nil
}

// Decode parses a document. Empty text is a fresh board. Missing viewport
// fields get their defaults.
func Decode(text string, defaultFontSize float64) (domain.BoardState, error) {
	st := domain.BoardState{
		Cards:    []domain.Card{},
		Arrows:   []domain.Arrow{},
		Scale:    1,
		FontSize: defaultFontSize,
	}
	if strings.TrimSpace(text) == "" {
		return st, nil
	}
	var doc document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return st, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Cards != nil {
		st.Cards = doc.Cards
	}
	if doc.Arrows != nil {
		st.Arrows = doc.Arrows
	}
	if doc.Scale != nil && *doc.Scale > 0 {
		st.Scale = geometry.Clamp(*doc.Scale, MinScale, MaxScale)
	}
	if doc.Position != nil {
		st.Position = *doc.Position
	}
	if doc.FontSize != nil && *doc.FontSize > 0 {
		st.FontSize = geometry.Clamp(*doc.FontSize, MinFontSize, MaxFontSize)
	}
	return st, nil
}

// Load replaces the engine state with the backing document. It waits for
// in-flight saves first. A missing document loads as a fresh board. A
// malformed one leaves the engine untouched and returns an error matching
// ErrMalformed.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.saver.Flush(ctx); err != nil && ctx.Err() != nil {
		return err
	}
	text, err := e.opts.Store.ReadText(e.opts.Path)
	if errors.Is(err, fs.ErrNotExist) {
		text, err = "", nil
	}
	if err != nil {
		return fmt.Errorf("load board %s: %w", e.opts.Path, err)
	}
	st, err := Decode(text, e.opts.FontSize)
	if err != nil {
		return fmt.Errorf("load board %s: %w", e.opts.Path, err)
	}

	e.loading = true
	e.history.suppressed = true
	e.gesture.reset()
	e.clearSelection()

	e.scale = st.Scale
	e.pan = st.Position
	e.fontSize = st.FontSize
	e.cards.Env().FontSize = st.FontSize
	e.rebuild(st.Cards, st.Arrows)
	e.relayoutArrows()
	e.saver.Remember(text)

	e.history.suppressed = false
	e.loading = false
	e.loaded = true
	log.Printf("board: loaded %s (%d cards, %d arrows)", e.opts.Path, e.cards.Len(), len(e.arrows))
	e.emit(EventLoaded, e.opts.Path)
	e.viewportChanged()
	return nil
}

// Restore replaces cards and arrows with those of st as one undoable change.
// The viewport is left alone.
func (e *Engine) Restore(st domain.BoardState) {
	e.saveUndoState(false)
	e.gesture.reset()
	e.clearSelection()
	e.rebuild(st.Cards, st.Arrows)
	e.selectionChanged()
	e.commit()
}

// Save schedules a save of the current state.
func (e *Engine) Save() { e.requestSave() }

// Flush waits until every scheduled save finished and returns the error of
// the last one.
func (e *Engine) Flush(ctx context.Context) error { return e.saver.Flush(ctx) }

func (e *Engine) requestSave() {
	if !e.loaded || e.loading {
		return
	}
	doc, err := e.Serialize()
	if err != nil {
		log.Printf("board: %v", err)
		return
	}
	e.saver.Request(doc)
}
