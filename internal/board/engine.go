// Package board implements the board engine: it owns the card and arrow
// collections of one document, interprets pointer input into interaction
// modes, keeps selection, undo history and the viewport, and schedules
// persistence through a coalescing saver.
//
// Engine methods are synchronous and must be called from a single goroutine.
// The only background work is the saver.
package board

import (
	"context"
	"errors"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// ─────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────

const (
	EventLoaded           = "board:loaded"
	EventChanged          = "board:changed"
	EventArrowsChanged    = "board:arrows-changed"
	EventSelectionChanged = "board:selection-changed"
	EventViewportChanged  = "board:viewport-changed"
	EventSaved            = "board:saved"
	EventSaveFailed       = "board:save-failed"
	EventExternalChange   = "board:external-change"
)

// Emitter receives engine events. service.EventEmitter satisfies it.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// ErrMalformed is returned by Load when a non-empty document cannot be parsed.
var ErrMalformed = errors.New("malformed board document")

// ─────────────────────────────────────────────────────────────
// Limits
// ─────────────────────────────────────────────────────────────

const (
	MinScale = 0.1
	MaxScale = 3.0

	MinFontSize = 12.0
	MaxFontSize = 50.0

	DefaultHistoryLimit = 200

	// zoomStep is the per-notch scale factor when zooming out.
	zoomStep = 0.9

	minFitScale = 0.3
	maxFitScale = 2.0
	fitMargin   = 0.8
	fitShift    = 10.0

	alignGapVertical   = 10.0
	alignGapHorizontal = 35.0
	nudgeStep          = 3.0
)

// ─────────────────────────────────────────────────────────────
// Engine
// ─────────────────────────────────────────────────────────────

// Options configures an Engine. Store is required; every other collaborator
// may be nil.
type Options struct {
	Path    string
	Store   domain.DocumentStore
	Preview domain.PreviewRenderer
	Spell   domain.Spellchecker
	Emitter Emitter

	// UIOffset is subtracted from raw pointer coordinates to get screen space.
	UIOffset geometry.Vec
	FontSize float64

	HistoryLimit int
	// MaxWriteAttempts bounds the write-verify loop. Zero retries forever.
	MaxWriteAttempts int

	// OnSaved runs on the saver goroutine after a document was written and
	// verified.
	OnSaved func(doc string)
}

// Engine is one open board.
type Engine struct {
	opts Options

	cards  *cards.Collection
	arrows []domain.Arrow
	lines  []ArrowView

	scale    float64
	pan      geometry.Vec
	fontSize float64

	sel       selection
	history   history
	clipboard []domain.Card
	gesture   gesture
	cursor    geometry.Vec
	spaceHeld bool

	saver   *Saver
	loaded  bool
	loading bool
}

// New creates an empty, not yet loaded engine. Call Load before mutating it;
// saves are suppressed until the first load completes.
func New(opts Options) *Engine {
	if opts.FontSize <= 0 {
		opts.FontSize = cards.DefaultFontSize
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	e := &Engine{
		opts:     opts,
		scale:    1,
		fontSize: opts.FontSize,
		history:  history{limit: opts.HistoryLimit},
	}
	e.sel.arrow = -1
	e.cards = cards.NewCollection(cards.Env{
		Preview:  opts.Preview,
		Spell:    opts.Spell,
		Store:    opts.Store,
		FontSize: e.fontSize,
	})
	e.saver = NewSaver(SaverOptions{
		Store:       opts.Store,
		Path:        opts.Path,
		MaxAttempts: opts.MaxWriteAttempts,
		OnSaved:     opts.OnSaved,
		Emit:        e.emit,
	})
	return e
}

// Path returns the backing document path.
func (e *Engine) Path() string { return e.opts.Path }

// Loaded reports whether the first load completed.
func (e *Engine) Loaded() bool { return e.loaded }

// Saver exposes the engine's saver, e.g. to compare against external writes.
func (e *Engine) Saver() *Saver { return e.saver }

// Len returns the number of cards.
func (e *Engine) Len() int { return e.cards.Len() }

// Card returns a copy of the card behind h.
func (e *Engine) Card(h cards.Handle) (domain.Card, bool) {
	if !e.cards.Valid(h) {
		return domain.Card{}, false
	}
	return e.cards.Copy(h), true
}

// Views returns the derived render model of every card in index order.
func (e *Engine) Views() []cards.View { return e.cards.Views() }

// Arrows returns the current arrow list.
func (e *Engine) Arrows() []domain.Arrow {
	return append([]domain.Arrow{}, e.arrows...)
}

// State returns a deep copy of the full board state.
func (e *Engine) State() domain.BoardState {
	return domain.BoardState{
		Cards:    e.cards.Snapshot(),
		Arrows:   e.Arrows(),
		Scale:    e.scale,
		Position: e.pan,
		FontSize: e.fontSize,
	}
}

// FontSize returns the board font size.
func (e *Engine) FontSize() float64 { return e.fontSize }

// ChangeFontSize adjusts the board font size by delta within
// [MinFontSize, MaxFontSize] and re-lays out text cards.
func (e *Engine) ChangeFontSize(delta float64) {
	fs := geometry.Clamp(e.fontSize+delta, MinFontSize, MaxFontSize)
	if fs == e.fontSize {
		return
	}
	e.fontSize = fs
	e.cards.Env().FontSize = fs
	e.cards.UpdateAll()
	e.commit()
}

// RefreshViews re-renders every card, e.g. after the spellcheck state changed.
func (e *Engine) RefreshViews() {
	e.cards.UpdateAll()
	e.relayoutArrows()
	e.emit(EventChanged, e.opts.Path)
}

// ─────────────────────────────────────────────────────────────
// Change propagation
// ─────────────────────────────────────────────────────────────

func (e *Engine) emit(event string, data any) {
	if e.opts.Emitter != nil {
		e.opts.Emitter.Emit(context.Background(), event, data)
	}
}

// touch refreshes arrows and notifies listeners without saving. Used while a
// gesture is still in progress.
func (e *Engine) touch() {
	e.relayoutArrows()
	e.emit(EventChanged, e.opts.Path)
}

// commit finishes a mutation: arrows are laid out again, listeners notified
// and a save scheduled.
func (e *Engine) commit() {
	e.touch()
	e.requestSave()
}

func (e *Engine) viewportChanged() {
	e.emit(EventViewportChanged, Viewport{Scale: e.scale, Pan: e.pan})
}

func (e *Engine) selectionChanged() {
	e.emit(EventSelectionChanged, e.Selected())
}
