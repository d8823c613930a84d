package cards_test

import (
	"errors"
	"testing"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
	"github.com/leth4/leto-sub000/internal/preview"
)

// ─────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────

type fakeStore struct {
	w, h int
	err  error
}

func (fakeStore) ReadText(string) (string, error) { return "", nil }
func (fakeStore) WriteText(string, string) error  { return nil }
func (fakeStore) ResolveDisplayPath(p string) string {
	return "asset://" + p
}
func (f fakeStore) ImageSize(string) (int, int, error) { return f.w, f.h, f.err }

type allWrong struct{}

func (allWrong) Active() bool           { return true }
func (allWrong) IsCorrect(string) bool { return false }

// ─────────────────────────────────────────────────────────────
// Variants
// ─────────────────────────────────────────────────────────────

func TestNew_DefaultSizes(t *testing.T) {
	tests := []struct {
		typ  domain.CardType
		w, h float64
	}{
		{domain.CardTypeText, 200, 100},
		{domain.CardTypeImage, 200, 100},
		{domain.CardTypeDraw, 300, 340},
		{domain.CardTypeRegion, 600, 640},
		{"Bogus", 200, 100},
	}
	for _, tc := range tests {
		c := cards.New(tc.typ, geometry.Vec{}, 100)
		if c.Width != tc.w || c.Height != tc.h {
			t.Errorf("%s: size = %vx%v, want %vx%v", tc.typ, c.Width, c.Height, tc.w, tc.h)
		}
	}
	if c := cards.New("Bogus", geometry.Vec{}, 100); c.Type != domain.CardTypeText {
		t.Errorf("unknown type should fall back to TextCard, got %s", c.Type)
	}
}

func TestCollection_CreateCopiesInput(t *testing.T) {
	col := cards.NewCollection(cards.Env{})
	src := cards.New(domain.CardTypeDraw, geometry.Vec{}, 100)
	src.DrawPaths = []domain.Stroke{{{0, 0}, {5, 5}}}

	h := col.Create(src)
	src.DrawPaths[0][0] = geometry.Point{9, 9}

	if got := col.Card(h).DrawPaths[0][0]; got != (geometry.Point{0, 0}) {
		t.Errorf("collection shares memory with input: %v", got)
	}
	if v := col.View(h); len(v.Paths) != 1 {
		t.Errorf("expected 1 rendered path, got %d", len(v.Paths))
	}
}

func TestTextCard_PreviewAndSpellcheck(t *testing.T) {
	col := cards.NewCollection(cards.Env{Preview: preview.New(), Spell: allWrong{}, FontSize: 16})
	c := cards.New(domain.CardTypeText, geometry.Vec{}, 100)
	c.Text = "*hi*"
	h := col.Create(c)

	v := col.View(h)
	if v.Preview == nil || v.Preview.HTML == "" {
		t.Fatal("expected preview html")
	}
	if len(v.Misspelled) != 1 {
		t.Errorf("expected one misspelling, got %v", v.Misspelled)
	}
}

func TestTextCard_HeightFollowsContent(t *testing.T) {
	short := cards.TextHeight("one line", 200, 16)
	long := cards.TextHeight("a\nb\nc\nd\ne\nf\ng", 200, 16)
	if short != domain.MinCardSize {
		t.Errorf("short text height = %v, want minimum %v", short, domain.MinCardSize)
	}
	if long <= short {
		t.Errorf("expected more lines to be taller: %v <= %v", long, short)
	}
	if wrapped := cards.TextHeight(string(make([]byte, 400)), 200, 16); wrapped <= short {
		t.Errorf("expected long line to wrap, got %v", wrapped)
	}
}

func TestImageCard_ResolvesAndMeasures(t *testing.T) {
	col := cards.NewCollection(cards.Env{Store: fakeStore{w: 400, h: 200}})
	c := cards.New(domain.CardTypeImage, geometry.Vec{}, 100)
	c.ImagePath = "/img/a.png"
	h := col.Create(c)

	if got := col.View(h).ImageSrc; got != "asset:///img/a.png" {
		t.Errorf("image src = %q", got)
	}
	if got := col.Card(h).Height; got != 120 {
		t.Errorf("height = %v, want 120", got)
	}
}

func TestImageCard_UnmeasurableKeepsHeight(t *testing.T) {
	col := cards.NewCollection(cards.Env{Store: fakeStore{err: errors.New("nope")}})
	c := cards.New(domain.CardTypeImage, geometry.Vec{}, 100)
	h := col.Create(c)
	if got := col.Card(h).Height; got != 100 {
		t.Errorf("height = %v, want 100", got)
	}
}

func TestRegionCard_ClampsGeometry(t *testing.T) {
	col := cards.NewCollection(cards.Env{})
	c := cards.New(domain.CardTypeRegion, geometry.Vec{}, 100)
	c.Width = 5
	c.Height = 99999
	h := col.Create(c)
	got := col.Card(h)
	if got.Width != domain.MinCardSize {
		t.Errorf("width = %v, want %v", got.Width, domain.MinCardSize)
	}
	if got.Height != domain.MaxCardSize+cards.ContentInset {
		t.Errorf("height = %v, want %v", got.Height, domain.MaxCardSize+cards.ContentInset)
	}
	if !cards.HasHandle(domain.CardTypeRegion, cards.HandleDown) {
		t.Error("region cards have a bottom handle")
	}
	if cards.HasHandle(domain.CardTypeText, cards.HandleDown) {
		t.Error("text cards have no bottom handle")
	}
}

// ─────────────────────────────────────────────────────────────
// Resizing
// ─────────────────────────────────────────────────────────────

func TestResizeLeft_RefusesOutOfRange(t *testing.T) {
	c := domain.Card{Position: geometry.Vec{X: 100}, Width: 150}
	cards.ResizeLeft(&c, 180) // would leave width 70
	if c.Position.X != 100 || c.Width != 150 {
		t.Errorf("expected no change, got x=%v w=%v", c.Position.X, c.Width)
	}
	cards.ResizeLeft(&c, 50)
	if c.Position.X != 50 || c.Width != 200 {
		t.Errorf("expected x=50 w=200, got x=%v w=%v", c.Position.X, c.Width)
	}
}

func TestResizeRightAndDown_Clamp(t *testing.T) {
	c := domain.Card{Position: geometry.Vec{X: 0, Y: 0}, Width: 200, Height: 340}
	cards.ResizeRight(&c, 50)
	if c.Width != domain.MinCardSize {
		t.Errorf("width = %v, want min", c.Width)
	}
	cards.ResizeRight(&c, 520)
	if c.Width != 500 {
		t.Errorf("width = %v, want 500", c.Width)
	}
	cards.ResizeDown(&c, 436)
	if c.Height != 440 {
		t.Errorf("height = %v, want 440", c.Height)
	}
}

func TestHandleSize(t *testing.T) {
	if got := cards.HandleSize(1); got != 3 {
		t.Errorf("scale 1: %v", got)
	}
	if got := cards.HandleSize(0.5); got != 6 {
		t.Errorf("scale 0.5: %v", got)
	}
	if got := cards.HandleSize(3); got != 3 {
		t.Errorf("scale 3: %v", got)
	}
}
