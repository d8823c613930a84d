package cards

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
	"github.com/leth4/leto-sub000/internal/preview"
)

const (
	DefaultFontSize = 16.0

	textPadding      = 12.0
	lineHeightFactor = 1.5
	charWidthFactor  = 0.6
	imagePadding     = 20.0
)

var plainEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// ── TextCard ───────────────────────────────────────────────

type textCard struct{}

func (textCard) size() (float64, float64) { return 200, 100 }

func (textCard) handles() []HandleSide { return []HandleSide{HandleLeft, HandleRight} }

func (textCard) refresh(c *domain.Card, v *View, env *Env) {
	c.Width = clampSize(c.Width)

	var p domain.Preview
	if env.Preview != nil {
		p = env.Preview.Render(c.Text)
	} else {
		p = domain.Preview{HTML: plainEscaper.Replace(c.Text)}
	}
	v.Preview = &p
	v.SpellHTML, v.Misspelled = preview.SpellOverlay(c.Text, p.Excluded, env.Spell)

	c.Height = TextHeight(c.Text, c.Width, env.FontSize)
}

// TextHeight estimates the rendered height of text wrapped into width at the
// given font size. Text is laid out in a monospace face.
func TextHeight(text string, width, fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	perLine := math.Max(1, math.Floor((width-2*textPadding)/(fontSize*charWidthFactor)))
	lines := 0.0
	for _, line := range strings.Split(text, "\n") {
		n := float64(utf8.RuneCountInString(line))
		lines += math.Max(1, math.Ceil(n/perLine))
	}
	return clampSize(lines*fontSize*lineHeightFactor + 2*textPadding)
}

// ── ImageCard ──────────────────────────────────────────────

type imageCard struct{}

func (imageCard) size() (float64, float64) { return 200, 100 }

func (imageCard) handles() []HandleSide { return []HandleSide{HandleLeft, HandleRight} }

func (imageCard) refresh(c *domain.Card, v *View, env *Env) {
	c.Width = clampSize(c.Width)
	v.ImageSrc = c.ImagePath
	if env.Store == nil {
		return
	}
	v.ImageSrc = env.Store.ResolveDisplayPath(c.ImagePath)
	if m, ok := env.Store.(domain.ImageMeasurer); ok {
		if w, h, err := m.ImageSize(c.ImagePath); err == nil && w > 0 && h > 0 {
			c.Height = c.Width*float64(h)/float64(w) + imagePadding
		}
	}
}

// ── RegionCard ─────────────────────────────────────────────

type regionCard struct{}

func (regionCard) size() (float64, float64) { return 600, 640 }

func (regionCard) handles() []HandleSide {
	return []HandleSide{HandleLeft, HandleRight, HandleDown}
}

func (regionCard) refresh(c *domain.Card, _ *View, _ *Env) {
	clampFramed(c)
}

// ── DrawCard ───────────────────────────────────────────────

type drawCard struct{}

func (drawCard) size() (float64, float64) { return 300, 340 }

func (drawCard) handles() []HandleSide {
	return []HandleSide{HandleLeft, HandleRight, HandleDown}
}

func (drawCard) refresh(c *domain.Card, v *View, _ *Env) {
	clampFramed(c)
	v.Paths = make([]string, 0, len(c.DrawPaths))
	v.Segments = make([][]geometry.Segment, 0, len(c.DrawPaths))
	for _, s := range c.DrawPaths {
		if len(s) == 0 {
			continue
		}
		segs := geometry.SmoothStroke(s)
		v.Segments = append(v.Segments, segs)
		v.Paths = append(v.Paths, geometry.PathData(segs))
	}
}

// clampFramed clamps width and content height of cards with a bottom handle.
func clampFramed(c *domain.Card) {
	c.Width = clampSize(c.Width)
	c.Height = clampSize(c.Height-ContentInset) + ContentInset
}
