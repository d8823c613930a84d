package domain

import (
	"path/filepath"
	"strings"

	"github.com/leth4/leto-sub000/internal/geometry"
)

// BoardState is the persisted unit of a board: every card and arrow plus the
// viewport and font size. It is always a full value, never a diff.
type BoardState struct {
	Cards    []Card       `json:"cards"`
	Arrows   []Arrow      `json:"arrows"`
	Scale    float64      `json:"scale"`
	Position geometry.Vec `json:"position"`
	FontSize float64      `json:"fontSize"`
}

// Copy returns a deep copy of s.
func (s BoardState) Copy() BoardState {
	out := s
	out.Cards = make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		out.Cards[i] = c.Copy()
	}
	out.Arrows = append([]Arrow{}, s.Arrows...)
	return out
}

// ─────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────

// DocumentStore reads and writes board documents and resolves image paths
// into something the host can display.
type DocumentStore interface {
	ReadText(path string) (string, error)
	WriteText(path, text string) error
	ResolveDisplayPath(path string) string
}

// ImageMeasurer is implemented by stores that can report pixel dimensions
// of an image file.
type ImageMeasurer interface {
	ImageSize(path string) (width, height int, err error)
}

// Range is a half-open byte range [Start, End) into raw text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether offset i falls inside r.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Preview is the rendered, read-only view of a text card's content.
// Excluded lists the ranges (code) that must not be spellchecked.
type Preview struct {
	HTML     string   `json:"html"`
	Excluded []Range  `json:"excluded,omitempty"`
	Links    []string `json:"links,omitempty"`
}

type PreviewRenderer interface {
	Render(raw string) Preview
}

type Spellchecker interface {
	IsCorrect(word string) bool
	Active() bool
}

// ─────────────────────────────────────────────────────────────
// File kinds
// ─────────────────────────────────────────────────────────────

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

var noteExts = map[string]bool{
	".md": true, ".txt": true,
}

// IsImageFile reports whether path looks like an image a card can show.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// IsNoteFile reports whether path looks like a plain-text note.
func IsNoteFile(path string) bool {
	return noteExts[strings.ToLower(filepath.Ext(path))]
}
