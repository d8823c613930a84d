package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func (s *Server) registerViewTools() {
	// ── zoom ───────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("zoom",
		mcp.WithDescription("Zoom around a screen point. Positive steps zoom out, negative zoom in."),
		mcp.WithNumber("steps", mcp.Description("Number of wheel notches"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Screen X of the zoom center (default 0)")),
		mcp.WithNumber("y", mcp.Description("Screen Y of the zoom center (default 0)")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleZoom)

	// ── zoom_to_selection ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("zoom_to_selection",
		mcp.WithDescription("Fit the selected cards into the viewport"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleZoomToSelection)

	// ── reset_viewport ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reset_viewport",
		mcp.WithDescription("Reset zoom to 1 and pan to the origin"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleResetViewport)
}

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change to cards or arrows"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change"),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleRedo)
}

func viewportResult(e *board.Engine) (*mcp.CallToolResult, error) {
	return jsonResult(e.Viewport())
}

func (s *Server) handleZoom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	steps := int(getFloat(args, "steps", 0))
	if steps == 0 {
		return nil, fmt.Errorf("steps must be a non-zero integer")
	}
	at := geometry.Vec{X: getFloat(args, "x", 0), Y: getFloat(args, "y", 0)}

	var res *mcp.CallToolResult
	err := s.withBoard(args, func(e *board.Engine) error {
		dir := 1.0
		if steps < 0 {
			dir, steps = -1, -steps
		}
		for range steps {
			e.Zoom(at, dir)
		}
		var err error
		res, err = viewportResult(e)
		return err
	})
	return res, err
}

func (s *Server) handleZoomToSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var res *mcp.CallToolResult
	err := s.withBoard(req.GetArguments(), func(e *board.Engine) error {
		if len(e.Selected()) == 0 {
			return fmt.Errorf("nothing selected (use select_cards first)")
		}
		e.ZoomToSelected(s.viewportWidth, s.viewportHeight)
		var err error
		res, err = viewportResult(e)
		return err
	})
	return res, err
}

func (s *Server) handleResetViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var res *mcp.CallToolResult
	err := s.withBoard(req.GetArguments(), func(e *board.Engine) error {
		e.ResetViewport()
		var err error
		res, err = viewportResult(e)
		return err
	})
	return res, err
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.step(req, (*board.Engine).Undo, "undo")
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.step(req, (*board.Engine).Redo, "redo")
}

func (s *Server) step(req mcp.CallToolRequest, op func(*board.Engine) bool, name string) (*mcp.CallToolResult, error) {
	var (
		ok         bool
		undo, redo int
	)
	err := s.withBoard(req.GetArguments(), func(e *board.Engine) error {
		ok = op(e)
		undo, redo = e.UndoDepth(), e.RedoDepth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("Nothing to %s", name)), nil
	}
	return textResult(fmt.Sprintf("Done %s (undo depth %d, redo depth %d)", name, undo, redo)), nil
}
