package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/leth4/leto-sub000/internal/geometry"
)

type CardType string

const (
	CardTypeText   CardType = "TextCard"
	CardTypeDraw   CardType = "DrawCard"
	CardTypeImage  CardType = "ImageCard"
	CardTypeRegion CardType = "RegionCard"
)

// Valid reports whether t names one of the known variants.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeText, CardTypeDraw, CardTypeImage, CardTypeRegion:
		return true
	}
	return false
}

const (
	MinCardSize = 100.0
	MaxCardSize = 3000.0

	// BaseZIndex is the z-index of the back-most card.
	BaseZIndex = 100
)

// Stroke is one freehand line of a DrawCard, in card-local coordinates.
type Stroke []geometry.Point

// Card is a tagged union over the four card variants. Only the field that
// belongs to Type is meaningful: Text for TextCard, ImagePath for ImageCard,
// DrawPaths for DrawCard. RegionCard carries no content.
type Card struct {
	Type       CardType
	Position   geometry.Vec
	Width      float64
	Height     float64
	ZIndex     int
	IsInversed bool

	Text      string
	ImagePath string
	DrawPaths []Stroke
}

func (c Card) Rect() geometry.Rect {
	return geometry.RectAt(c.Position, c.Width, c.Height)
}

// Copy returns a clone that shares no memory with c.
func (c Card) Copy() Card {
	out := c
	if c.DrawPaths != nil {
		out.DrawPaths = make([]Stroke, len(c.DrawPaths))
		for i, s := range c.DrawPaths {
			out.DrawPaths[i] = append(Stroke(nil), s...)
		}
	}
	return out
}

// wireCard is the persisted shape of a Card. Variant fields are pointers so
// that only the fields of the card's own variant are written.
type wireCard struct {
	Type       CardType     `json:"type"`
	Position   geometry.Vec `json:"position"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	ZIndex     flexInt      `json:"zIndex"`
	IsInversed bool         `json:"isInversed"`
	Text       *string      `json:"text,omitempty"`
	ImagePath  *string      `json:"imagePath,omitempty"`
	DrawPaths  *[]Stroke    `json:"drawPaths,omitempty"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	w := wireCard{
		Type:       c.Type,
		Position:   c.Position,
		Width:      c.Width,
		Height:     c.Height,
		ZIndex:     flexInt(c.ZIndex),
		IsInversed: c.IsInversed,
	}
	switch c.Type {
	case CardTypeText:
		w.Text = &c.Text
	case CardTypeImage:
		w.ImagePath = &c.ImagePath
	case CardTypeDraw:
		paths := c.DrawPaths
		if paths == nil {
			paths = []Stroke{}
		}
		w.DrawPaths = &paths
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a persisted card. Unknown type tags decode as
// TextCard, keeping whatever text the entry carried.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Card{
		Type:       w.Type,
		Position:   w.Position,
		Width:      w.Width,
		Height:     w.Height,
		ZIndex:     int(w.ZIndex),
		IsInversed: w.IsInversed,
	}
	if !c.Type.Valid() {
		c.Type = CardTypeText
	}
	switch c.Type {
	case CardTypeText:
		if w.Text != nil {
			c.Text = *w.Text
		}
	case CardTypeImage:
		if w.ImagePath != nil {
			c.ImagePath = *w.ImagePath
		}
	case CardTypeDraw:
		c.DrawPaths = []Stroke{}
		if w.DrawPaths != nil {
			c.DrawPaths = *w.DrawPaths
		}
	}
	return nil
}

// flexInt accepts integers written either as JSON numbers or as numeric
// strings. Older documents stored some indices as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse integer %q: %w", s, err)
		}
		*f = flexInt(math.Trunc(n))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(math.Trunc(n))
	return nil
}
