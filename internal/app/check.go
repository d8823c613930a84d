package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/leth4/leto-sub000/internal/config"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/export"
	"github.com/leth4/leto-sub000/internal/geometry"
	"github.com/leth4/leto-sub000/internal/storage"
)

// Report summarizes a board document.
type Report struct {
	Path      string
	Cards     map[domain.CardType]int
	Total     int
	Arrows    int
	Bounds    geometry.Rect
	Revisions int
	Problems  []string
}

// OK reports whether the document has no problems.
func (r Report) OK() bool { return len(r.Problems) == 0 }

// Check decodes the board at path and looks for arrows pointing at missing
// cards and images that cannot be read. Journaled revisions are counted
// when the journal is enabled.
func Check(cfg config.Config, path string) (Report, error) {
	files := storage.NewFileStore(cfg.Root)
	st, err := readBoard(files, path, cfg.Board.FontSize)
	if err != nil {
		return Report{Path: path}, err
	}

	r := Report{
		Path:   path,
		Cards:  map[domain.CardType]int{},
		Total:  len(st.Cards),
		Arrows: len(st.Arrows),
	}
	r.Bounds, _ = export.Bounds(st)

	for i, c := range st.Cards {
		r.Cards[c.Type]++
		if !c.Type.Valid() {
			r.Problems = append(r.Problems, fmt.Sprintf("card %d: unknown type %q", i, c.Type))
		}
		if c.Type == domain.CardTypeImage {
			if _, _, err := files.ImageSize(c.ImagePath); err != nil {
				r.Problems = append(r.Problems, fmt.Sprintf("card %d: image %s: %v", i, c.ImagePath, err))
			}
		}
	}

	seen := map[domain.Arrow]bool{}
	for i, a := range st.Arrows {
		switch {
		case a.Dangling():
			r.Problems = append(r.Problems, fmt.Sprintf("arrow %d: dangling", i))
		case a.FromIndex < 0 || a.FromIndex >= len(st.Cards) || a.ToIndex < 0 || a.ToIndex >= len(st.Cards):
			r.Problems = append(r.Problems, fmt.Sprintf("arrow %d: %d -> %d points past the last card", i, a.FromIndex, a.ToIndex))
		case a.FromIndex == a.ToIndex:
			r.Problems = append(r.Problems, fmt.Sprintf("arrow %d: card %d points at itself", i, a.FromIndex))
		case seen[a]:
			r.Problems = append(r.Problems, fmt.Sprintf("arrow %d: duplicate of %d -> %d", i, a.FromIndex, a.ToIndex))
		}
		seen[a] = true
	}

	if cfg.Journal.Enabled {
		db, err := openJournal(cfg.Journal)
		if err != nil {
			return r, err
		}
		defer db.Close()
		revs, err := storage.NewRevisionStore(db).ListRevisions(path, 0)
		if err != nil {
			return r, fmt.Errorf("list revisions: %w", err)
		}
		r.Revisions = len(revs)
	}
	return r, nil
}

// Print writes the report in a human readable form.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "%s: %d cards, %d arrows\n", r.Path, r.Total, r.Arrows)

	types := make([]string, 0, len(r.Cards))
	for t := range r.Cards {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-12s %d\n", t, r.Cards[domain.CardType(t)])
	}
	if r.Total > 0 {
		fmt.Fprintf(w, "  bounds       %.0f,%.0f %.0fx%.0f\n", r.Bounds.X, r.Bounds.Y, r.Bounds.W, r.Bounds.H)
	}
	if r.Revisions > 0 {
		fmt.Fprintf(w, "  revisions    %d\n", r.Revisions)
	}
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  problem: %s\n", p)
	}
}
