package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/export"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func (s *Server) registerBoardTools() {
	// ── open_board ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_board",
		mcp.WithDescription("Open a board document (created empty if missing) and make it the active board"),
		mcp.WithString("path", mcp.Description("Path of the board JSON document"), mcp.Required()),
	), s.handleOpenBoard)

	// ── board_state ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("board_state",
		mcp.WithDescription("Describe every card, arrow, the viewport and the selection of a board"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleBoardState)

	// ── save ───────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Save the board now and wait until the write is verified"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleSave)

	// ── find_cards ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("find_cards",
		mcp.WithDescription("Fuzzy-search card text and image paths; best matches first"),
		mcp.WithString("query", mcp.Description("Search text"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleFindCards)

	// ── list_revisions ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List journaled revisions of the board, newest first"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of revisions (default 20)")),
	), s.handleListRevisions)

	// ── restore_revision ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("Replace the board's cards and arrows with a journaled revision. Undoable."),
		mcp.WithString("id", mcp.Description("Revision ID from list_revisions"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleRestoreRevision)

	// ── export_png ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_png",
		mcp.WithDescription("Render the board to a PNG file cropped to its cards"),
		mcp.WithString("out", mcp.Description("Output PNG path"), mcp.Required()),
		mcp.WithNumber("scale", mcp.Description("Output scale (optional)")),
		mcp.WithNumber("padding", mcp.Description("Padding around the cards in canvas units (optional)")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleExportPNG)
}

// ── Summaries ──────────────────────────────────────────────

const previewRunes = 120

type cardSummary struct {
	Index     int             `json:"index"`
	Type      domain.CardType `json:"type"`
	Position  geometry.Vec    `json:"position"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	ZIndex    int             `json:"zIndex"`
	Inversed  bool            `json:"isInversed,omitempty"`
	Text      string          `json:"text,omitempty"`
	ImagePath string          `json:"imagePath,omitempty"`
	Strokes   int             `json:"strokes,omitempty"`
}

type boardSummary struct {
	Path      string         `json:"path"`
	Cards     []cardSummary  `json:"cards"`
	Arrows    []domain.Arrow `json:"arrows"`
	Scale     float64        `json:"scale"`
	Position  geometry.Vec   `json:"position"`
	FontSize  float64        `json:"fontSize"`
	Selected  []int          `json:"selected"`
	UndoDepth int            `json:"undoDepth"`
	RedoDepth int            `json:"redoDepth"`
}

func summarizeCard(i int, c domain.Card) cardSummary {
	text := c.Text
	if utf8.RuneCountInString(text) > previewRunes {
		text = string([]rune(text)[:previewRunes]) + "…"
	}
	return cardSummary{
		Index:     i,
		Type:      c.Type,
		Position:  c.Position,
		Width:     c.Width,
		Height:    c.Height,
		ZIndex:    c.ZIndex,
		Inversed:  c.IsInversed,
		Text:      text,
		ImagePath: c.ImagePath,
		Strokes:   len(c.DrawPaths),
	}
}

func summarizeBoard(e *board.Engine) boardSummary {
	st := e.State()
	out := boardSummary{
		Path:      e.Path(),
		Cards:     make([]cardSummary, len(st.Cards)),
		Arrows:    st.Arrows,
		Scale:     st.Scale,
		Position:  st.Position,
		FontSize:  st.FontSize,
		Selected:  []int{},
		UndoDepth: e.UndoDepth(),
		RedoDepth: e.RedoDepth(),
	}
	for i, c := range st.Cards {
		out.Cards[i] = summarizeCard(i, c)
	}
	for _, h := range e.Selected() {
		out.Selected = append(out.Selected, int(h))
	}
	return out
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleOpenBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if _, err := s.boards.Open(ctx, path); err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	path = filepath.Clean(path)
	s.SetActiveBoard(path)

	var summary boardSummary
	if err := s.boards.Do(path, func(e *board.Engine) error {
		summary = summarizeBoard(e)
		return nil
	}); err != nil {
		return nil, err
	}
	return jsonResult(summary)
}

func (s *Server) handleBoardState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var summary boardSummary
	if err := s.withBoard(req.GetArguments(), func(e *board.Engine) error {
		summary = summarizeBoard(e)
		return nil
	}); err != nil {
		return nil, err
	}
	return jsonResult(summary)
}

func (s *Server) handleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var path string
	err := s.withBoard(req.GetArguments(), func(e *board.Engine) error {
		path = e.Path()
		e.Save()
		return e.Flush(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	return textResult(fmt.Sprintf("Board %s saved", path)), nil
}

func (s *Server) handleFindCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	matches := []cardSummary{}
	err := s.withBoard(req.GetArguments(), func(e *board.Engine) error {
		for _, h := range e.FindCards(query) {
			c, _ := e.Card(h)
			matches = append(matches, summarizeCard(int(h), c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(matches)
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, err := s.resolveBoard(args)
	if err != nil {
		return nil, err
	}
	revs, err := s.boards.Revisions(path, int(getFloat(args, "limit", 20)))
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	if revs == nil {
		revs = []domain.Revision{}
	}
	return jsonResult(revs)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id := req.GetString("id", "")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	path, err := s.resolveBoard(args)
	if err != nil {
		return nil, err
	}
	if err := s.boards.RestoreRevision(path, id); err != nil {
		return nil, fmt.Errorf("restore revision: %w", err)
	}
	return textResult(fmt.Sprintf("Board %s restored to revision %s (undo to revert)", path, id)), nil
}

func (s *Server) handleExportPNG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	out := req.GetString("out", "")
	if out == "" {
		return nil, fmt.Errorf("out is required")
	}

	var st domain.BoardState
	if err := s.withBoard(args, func(e *board.Engine) error {
		st = e.State()
		return nil
	}); err != nil {
		return nil, err
	}

	opts := s.export
	opts.Scale = getFloat(args, "scale", opts.Scale)
	opts.Padding = getFloat(args, "padding", opts.Padding)

	f, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", out, err)
	}
	if err := export.PNG(st, opts, f); err != nil {
		f.Close()
		return nil, fmt.Errorf("export png: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", out, err)
	}
	return textResult(fmt.Sprintf("Exported %d cards to %s", len(st.Cards), out)), nil
}
