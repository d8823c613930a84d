// Package export renders a board to a PNG image.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

const (
	DefaultPadding  = 40.0
	DefaultFontSize = 16.0

	// maxPixels bounds the output so a stray far-away card cannot allocate
	// gigabytes.
	maxPixels = 64 << 20

	lineWidth  = 1.5
	inkWidth   = 2.0
	headLength = 10.0
	headSpread = 0.45
	textInset  = 10.0
)

var ErrTooLarge = errors.New("export image too large")

// ImageLoader returns the pixels of an ImageCard's file.
type ImageLoader func(path string) (image.Image, error)

// FileImages loads images from local files; resolve maps a card's image path
// to a file path and may be nil.
func FileImages(resolve func(string) string) ImageLoader {
	return func(path string) (image.Image, error) {
		if resolve != nil {
			path = resolve(path)
		}
		return gg.LoadImage(path)
	}
}

type Options struct {
	// Padding is added around the content bounds, in canvas units.
	Padding float64
	// Scale multiplies the output size.
	Scale    float64
	FontSize float64

	Background color.Color
	Foreground color.Color
	Region     color.Color

	// Images draws ImageCards. Without it they get a labelled placeholder.
	Images ImageLoader
}

func (o *Options) defaults(st domain.BoardState) {
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.FontSize <= 0 {
		o.FontSize = st.FontSize
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Foreground == nil {
		o.Foreground = color.Black
	}
	if o.Region == nil {
		o.Region = color.NRGBA{R: 0, G: 0, B: 0, A: 18}
	}
}

// Bounds returns the union of every card's frame. ok is false for an empty
// board.
func Bounds(st domain.BoardState) (r geometry.Rect, ok bool) {
	for i, c := range st.Cards {
		if i == 0 {
			r = cards.Frame(c)
			continue
		}
		r = r.Union(cards.Frame(c))
	}
	return r, len(st.Cards) > 0
}

// PNG renders st and encodes it to w.
func PNG(st domain.BoardState, opts Options, w io.Writer) error {
	img, err := Render(st, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Render draws st, cropped to its content bounds plus padding.
func Render(st domain.BoardState, opts Options) (image.Image, error) {
	opts.defaults(st)
	bounds, _ := Bounds(st)
	pad := opts.Padding
	bounds = geometry.Rect{X: bounds.X - pad, Y: bounds.Y - pad, W: bounds.W + 2*pad, H: bounds.H + 2*pad}

	width := int(math.Ceil(bounds.W * opts.Scale))
	height := int(math.Ceil(bounds.H * opts.Scale))
	width, height = max(width, 1), max(height, 1)
	if width*height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}

	face, err := monoFace(opts.FontSize * opts.Scale)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(opts.Background)
	dc.Clear()
	dc.SetFontFace(face)
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-bounds.X, -bounds.Y)

	r := renderer{dc: dc, opts: opts, scale: opts.Scale}
	order := paintOrder(st.Cards)

	// Regions sit behind everything else.
	for _, i := range order {
		if st.Cards[i].Type == domain.CardTypeRegion {
			r.region(st.Cards[i])
		}
	}
	for _, a := range st.Arrows {
		r.arrow(st.Cards, a)
	}
	for _, i := range order {
		c := st.Cards[i]
		switch c.Type {
		case domain.CardTypeText:
			r.text(c)
		case domain.CardTypeDraw:
			r.drawing(c)
		case domain.CardTypeImage:
			r.image(c)
		}
	}
	return dc.Image(), nil
}

// paintOrder returns card indices back to front. Equal z-indices paint in
// list order, so the later card ends up on top.
func paintOrder(cs []domain.Card) []int {
	order := make([]int, len(cs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cs[order[a]].ZIndex < cs[order[b]].ZIndex
	})
	return order
}

func monoFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// ─────────────────────────────────────────────────────────────
// Card painters
// ─────────────────────────────────────────────────────────────

type renderer struct {
	dc    *gg.Context
	opts  Options
	scale float64
}

// frame fills and outlines the card box and returns the ink color for its
// content.
func (r *renderer) frame(c domain.Card) color.Color {
	f := cards.Frame(c)
	fill, ink := r.opts.Background, r.opts.Foreground
	if c.IsInversed {
		fill, ink = ink, fill
	}
	r.dc.DrawRectangle(f.X, f.Y, f.W, f.H)
	r.dc.SetColor(fill)
	r.dc.FillPreserve()
	r.dc.SetColor(r.opts.Foreground)
	r.dc.SetLineWidth(lineWidth)
	r.dc.Stroke()
	return ink
}

func (r *renderer) region(c domain.Card) {
	f := cards.Frame(c)
	r.dc.DrawRectangle(f.X, f.Y, f.W, f.H)
	r.dc.SetColor(r.opts.Region)
	r.dc.Fill()
}

func (r *renderer) text(c domain.Card) {
	ink := r.frame(c)
	f := cards.Frame(c)
	r.dc.SetColor(ink)

	// Glyphs are rasterized at the output scale, so measure in canvas units.
	lineHeight := r.dc.FontHeight() * 1.4 / r.scale
	maxWidth := (f.W - 2*textInset) * r.scale
	y := f.Y + textInset + lineHeight
	for _, para := range strings.Split(c.Text, "\n") {
		lines := r.dc.WordWrap(para, maxWidth)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for _, line := range lines {
			if y > f.Bottom()-textInset/2 {
				return
			}
			r.dc.DrawString(line, f.X+textInset, y)
			y += lineHeight
		}
	}
}

func (r *renderer) drawing(c domain.Card) {
	ink := r.frame(c)
	origin := c.Position.Add(cards.SurfaceOffset)
	r.dc.SetColor(ink)
	r.dc.SetLineWidth(inkWidth)
	r.dc.SetLineCapRound()
	r.dc.SetLineJoinRound()

	for _, stroke := range c.DrawPaths {
		if len(stroke) == 1 {
			p := stroke[0].Vec().Add(origin)
			r.dc.DrawCircle(p.X, p.Y, inkWidth/2)
			r.dc.Fill()
			continue
		}
		r.dc.NewSubPath()
		for _, seg := range geometry.SmoothStroke(stroke) {
			to := seg.To.Add(origin)
			switch seg.Kind {
			case geometry.MoveTo:
				r.dc.MoveTo(to.X, to.Y)
			case geometry.CubicTo:
				c1, c2 := seg.C1.Add(origin), seg.C2.Add(origin)
				r.dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
			case geometry.LineTo:
				r.dc.LineTo(to.X, to.Y)
			}
		}
		r.dc.Stroke()
	}
}

func (r *renderer) image(c domain.Card) {
	ink := r.frame(c)
	f := cards.Frame(c)

	if r.opts.Images != nil && c.ImagePath != "" {
		if img, err := r.opts.Images(c.ImagePath); err == nil {
			b := img.Bounds()
			box := geometry.RectAt(c.Position.Add(cards.SurfaceOffset), c.Width, c.Height-cards.ContentInset)
			if b.Dx() > 0 && b.Dy() > 0 && box.W > 0 && box.H > 0 {
				r.dc.Push()
				r.dc.Translate(box.X, box.Y)
				r.dc.Scale(box.W/float64(b.Dx()), box.H/float64(b.Dy()))
				r.dc.DrawImage(img, 0, 0)
				r.dc.Pop()
				return
			}
		}
	}

	label := filepath.Base(c.ImagePath)
	if c.ImagePath == "" {
		label = "image"
	}
	r.dc.SetColor(ink)
	r.dc.DrawStringAnchored(label, f.X+f.W/2, f.Y+f.H/2, 0.5, 0.5)
}

// ─────────────────────────────────────────────────────────────
// Arrows
// ─────────────────────────────────────────────────────────────

func (r *renderer) arrow(cs []domain.Card, a domain.Arrow) {
	if a.Dangling() || a.FromIndex >= len(cs) || a.ToIndex >= len(cs) || a.FromIndex == a.ToIndex {
		return
	}
	line, ok := geometry.ArrowLine(cs[a.FromIndex].Rect(), cs[a.ToIndex].Rect())
	if !ok {
		return
	}
	r.dc.SetColor(r.opts.Foreground)
	r.dc.SetLineWidth(lineWidth)
	r.dc.DrawLine(line.From.X, line.From.Y, line.To.X, line.To.Y)
	r.dc.Stroke()

	dir := line.To.Sub(line.From)
	n := dir.Len()
	if n < 0.1 {
		return
	}
	dir = dir.Scale(1 / n)
	normal := geometry.Vec{X: -dir.Y, Y: dir.X}
	base := line.To.Sub(dir.Scale(headLength))
	left := base.Add(normal.Scale(headLength * headSpread))
	right := base.Sub(normal.Scale(headLength * headSpread))

	r.dc.MoveTo(line.To.X, line.To.Y)
	r.dc.LineTo(left.X, left.Y)
	r.dc.LineTo(right.X, right.Y)
	r.dc.ClosePath()
	r.dc.Fill()
}
