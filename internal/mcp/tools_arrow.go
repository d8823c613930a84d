package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leth4/leto-sub000/internal/board"
)

func (s *Server) registerArrowTools() {
	// ── connect_cards ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_cards",
		mcp.WithDescription("Draw an arrow from one card to another. An existing arrow the other way is replaced."),
		mcp.WithNumber("from", mcp.Description("Source card index"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("Target card index"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleConnectCards)

	// ── disconnect_cards ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("disconnect_cards",
		mcp.WithDescription("Remove the arrows between two cards, in either direction"),
		mcp.WithNumber("a", mcp.Description("First card index"), mcp.Required()),
		mcp.WithNumber("b", mcp.Description("Second card index"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleDisconnectCards)
}

func (s *Server) handleConnectCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var added bool
	err := s.withBoard(args, func(e *board.Engine) error {
		from, err := getIndex(e, args, "from")
		if err != nil {
			return err
		}
		to, err := getIndex(e, args, "to")
		if err != nil {
			return err
		}
		added = e.Connect(from, to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !added {
		return textResult("No arrow added (same card or already connected)"), nil
	}
	return textResult("Arrow added"), nil
}

func (s *Server) handleDisconnectCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var removed bool
	err := s.withBoard(args, func(e *board.Engine) error {
		a, err := getIndex(e, args, "a")
		if err != nil {
			return err
		}
		b, err := getIndex(e, args, "b")
		if err != nil {
			return err
		}
		removed = e.Disconnect(a, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !removed {
		return textResult("No arrow between cards"), nil
	}
	return textResult("Arrows removed"), nil
}
