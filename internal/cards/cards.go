// Package cards implements the closed set of card variants behind one
// create / update / copy contract. Variants are looked up by their type tag;
// every variant refreshes a derived View that the host paints.
package cards

import (
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

// ─────────────────────────────────────────────────────────────
// Layout constants
// ─────────────────────────────────────────────────────────────

const (
	// FramePadding is the horizontal padding drawn around a card's content
	// width. The visible frame spans Width+FramePadding.
	FramePadding = 20.0

	// ContentInset is the vertical space taken by the frame of cards with
	// a bottom handle. Their content height is Height-ContentInset.
	ContentInset = 40.0

	// bottomResizeOffset is subtracted from the cursor when dragging the
	// bottom handle.
	bottomResizeOffset = 36.0

	minHandleSize = 3.0
	maxHandleSize = 100.0
)

// SurfaceOffset is the origin of a DrawCard's drawing surface relative to the
// card position.
var SurfaceOffset = geometry.Vec{X: 12, Y: 25}

// HandleSide names a resize handle.
type HandleSide string

const (
	HandleLeft  HandleSide = "left"
	HandleRight HandleSide = "right"
	HandleDown  HandleSide = "down"
)

// HandleSize is the hit width of resize handles in canvas units. It keeps
// handles a constant few pixels wide on screen.
func HandleSize(scale float64) float64 {
	return geometry.Clamp(minHandleSize/scale, minHandleSize, maxHandleSize)
}

// Frame returns the visible box of c.
func Frame(c domain.Card) geometry.Rect {
	return geometry.RectAt(c.Position, c.Width+FramePadding, c.Height)
}

// HandleRect returns the hit area of one resize handle of c.
func HandleRect(c domain.Card, side HandleSide, size float64) geometry.Rect {
	f := Frame(c)
	switch side {
	case HandleLeft:
		return geometry.Rect{X: f.X, Y: f.Y, W: size, H: f.H}
	case HandleRight:
		return geometry.Rect{X: f.Right() - size, Y: f.Y, W: size, H: f.H}
	default:
		return geometry.Rect{X: f.X, Y: f.Bottom() - size, W: f.W, H: size}
	}
}

// Surface returns the drawing area of a DrawCard in canvas space.
func Surface(c domain.Card) geometry.Rect {
	return geometry.RectAt(c.Position.Add(SurfaceOffset), c.Width, c.Height-ContentInset)
}

// ToLocal converts a canvas point into c's drawing surface coordinates.
func ToLocal(c domain.Card, canvas geometry.Vec) geometry.Vec {
	return canvas.Sub(c.Position).Sub(SurfaceOffset)
}

// ─────────────────────────────────────────────────────────────
// View
// ─────────────────────────────────────────────────────────────

// View is the derived, paint-ready model of one card.
type View struct {
	Type       domain.CardType `json:"type"`
	Frame      geometry.Rect   `json:"frame"`
	ZIndex     int             `json:"zIndex"`
	IsInversed bool            `json:"isInversed"`
	Handles    []HandleSide    `json:"handles"`

	// TextCard
	Preview    *domain.Preview `json:"preview,omitempty"`
	SpellHTML  string          `json:"spellHtml,omitempty"`
	Misspelled []domain.Range  `json:"misspelled,omitempty"`

	// ImageCard
	ImageSrc string `json:"imageSrc,omitempty"`

	// DrawCard
	Paths    []string             `json:"paths,omitempty"`
	Segments [][]geometry.Segment `json:"-"`
}

// Env carries the collaborators and board settings a refresh may consult.
// Any collaborator may be nil.
type Env struct {
	Preview  domain.PreviewRenderer
	Spell    domain.Spellchecker
	Store    domain.DocumentStore
	FontSize float64
}

// ─────────────────────────────────────────────────────────────
// Variant table
// ─────────────────────────────────────────────────────────────

type variant interface {
	size() (w, h float64)
	handles() []HandleSide
	refresh(c *domain.Card, v *View, env *Env)
}

var variants = map[domain.CardType]variant{
	domain.CardTypeText:   textCard{},
	domain.CardTypeImage:  imageCard{},
	domain.CardTypeRegion: regionCard{},
	domain.CardTypeDraw:   drawCard{},
}

// variantOf dispatches on the type tag. Unknown tags behave as TextCard.
func variantOf(t domain.CardType) variant {
	if v, ok := variants[t]; ok {
		return v
	}
	return variants[domain.CardTypeText]
}

// New returns an empty card of type t with its default size.
func New(t domain.CardType, pos geometry.Vec, zIndex int) domain.Card {
	if !t.Valid() {
		t = domain.CardTypeText
	}
	w, h := variantOf(t).size()
	c := domain.Card{Type: t, Position: pos, Width: w, Height: h, ZIndex: zIndex}
	if t == domain.CardTypeDraw {
		c.DrawPaths = []domain.Stroke{}
	}
	return c
}

// Handles lists the resize handles a card of type t offers.
func Handles(t domain.CardType) []HandleSide {
	return variantOf(t).handles()
}

// HasHandle reports whether cards of type t offer the given handle.
func HasHandle(t domain.CardType, side HandleSide) bool {
	for _, h := range Handles(t) {
		if h == side {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────
// Resizing
// ─────────────────────────────────────────────────────────────

// ResizeRight sets the width so that the right frame edge follows cursorX.
func ResizeRight(c *domain.Card, cursorX float64) {
	c.Width = clampSize(cursorX - c.Position.X - FramePadding)
}

// ResizeLeft moves the left edge to cursorX, keeping the right edge fixed.
// The move is refused when the resulting width leaves the allowed range.
func ResizeLeft(c *domain.Card, cursorX float64) {
	w := c.Width - (cursorX - c.Position.X)
	if w < domain.MinCardSize || w > domain.MaxCardSize {
		return
	}
	c.Position.X = cursorX
	c.Width = w
}

// ResizeDown sets the content height so that the bottom edge follows cursorY.
func ResizeDown(c *domain.Card, cursorY float64) {
	c.Height = clampSize(cursorY-c.Position.Y-bottomResizeOffset) + ContentInset
}

func clampSize(v float64) float64 {
	return geometry.Clamp(v, domain.MinCardSize, domain.MaxCardSize)
}
