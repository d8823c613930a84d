package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func (s *Server) registerCardTools() {
	// ── create_card ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_card",
		mcp.WithDescription("Create a card. Position is auto-calculated if not provided."),
		mcp.WithString("type",
			mcp.Description("Card type: text, draw, image, region"),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Content width (optional, uses the type default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, uses the type default)")),
		mcp.WithString("text", mcp.Description("Initial text of a text card (optional)")),
		mcp.WithString("imagePath", mcp.Description("Image file of an image card")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleCreateCard)

	// ── set_card_text ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_card_text",
		mcp.WithDescription("Replace the text of a text card"),
		mcp.WithNumber("index", mcp.Description("Card index"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleSetCardText)

	// ── set_card_geometry ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_card_geometry",
		mcp.WithDescription("Move and/or resize a card; omitted values are kept"),
		mcp.WithNumber("index", mcp.Description("Card index"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position")),
		mcp.WithNumber("y", mcp.Description("New Y position")),
		mcp.WithNumber("width", mcp.Description("New content width")),
		mcp.WithNumber("height", mcp.Description("New height")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleSetCardGeometry)

	// ── delete_cards (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_cards",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete cards and their arrows. Remaining cards are renumbered. Undoable."),
		mcp.WithString("indices", mcp.Description("Comma-separated card indices"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteCards)

	// ── select_cards ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_cards",
		mcp.WithDescription("Replace the selection. An empty list clears it."),
		mcp.WithString("indices", mcp.Description("Comma-separated card indices")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleSelectCards)

	// ── align_cards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("align_cards",
		mcp.WithDescription("Stack cards in a column (vertical) or row (horizontal), keeping the first card in place"),
		mcp.WithString("indices", mcp.Description("Comma-separated card indices"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("vertical or horizontal"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleAlignCards)

	// ── nudge_cards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("nudge_cards",
		mcp.WithDescription("Move cards by a number of nudge steps"),
		mcp.WithString("indices", mcp.Description("Comma-separated card indices"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal steps")),
		mcp.WithNumber("dy", mcp.Description("Vertical steps")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleNudgeCards)

	// ── arrange_cards ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_cards",
		mcp.WithDescription("Lay cards out on a grid in index order as one undoable change"),
		mcp.WithString("indices", mcp.Description("Comma-separated card indices (optional, defaults to all)")),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 0)")),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleArrangeCards)

	// ── bring_to_front / send_to_back ──────────────────
	s.mcp.AddTool(mcp.NewTool("bring_to_front",
		mcp.WithDescription("Raise a card above every other card"),
		mcp.WithNumber("index", mcp.Description("Card index"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleBringToFront)

	s.mcp.AddTool(mcp.NewTool("send_to_back",
		mcp.WithDescription("Lower a card below every other card"),
		mcp.WithNumber("index", mcp.Description("Card index"), mcp.Required()),
		mcp.WithString("board", mcp.Description("Board path (optional, defaults to active board)")),
	), s.handleSendToBack)
}

// parseCardType accepts short names (text, draw, image, region) and the
// persisted type tags.
func parseCardType(v string) (domain.CardType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "text", "textcard":
		return domain.CardTypeText, nil
	case "draw", "drawing", "drawcard":
		return domain.CardTypeDraw, nil
	case "image", "imagecard":
		return domain.CardTypeImage, nil
	case "region", "regioncard":
		return domain.CardTypeRegion, nil
	}
	return "", fmt.Errorf("unknown card type %q (want text, draw, image or region)", v)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreateCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	t, err := parseCardType(req.GetString("type", ""))
	if err != nil {
		return nil, err
	}
	imagePath := req.GetString("imagePath", "")
	if t == domain.CardTypeImage && imagePath == "" {
		return nil, fmt.Errorf("imagePath is required for image cards")
	}

	var created cardSummary
	err = s.withBoard(args, func(e *board.Engine) error {
		proto := cards.New(t, geometry.Vec{}, 0)
		w := getFloat(args, "width", proto.Width)
		h := getFloat(args, "height", proto.Height)

		// Auto-layout if position not provided
		x, hasX := args["x"].(float64)
		y, hasY := args["y"].(float64)
		pos := geometry.Vec{X: x, Y: y}
		if !hasX || !hasY {
			sized := proto
			sized.Width, sized.Height = w, h
			f := cards.Frame(sized)
			pos = s.layout.NextPosition(e.State().Cards, f.W, f.H)
		}

		var handle cards.Handle
		if t == domain.CardTypeImage {
			handle = e.AddImage(imagePath, pos)
		} else {
			handle = e.CreateCard(t, pos)
		}
		_, hasW := args["width"].(float64)
		_, hasH := args["height"].(float64)
		if hasW || hasH {
			c, _ := e.Card(handle)
			e.SetCardGeometry(handle, c.Position, getFloat(args, "width", c.Width), getFloat(args, "height", c.Height))
		}
		if text := req.GetString("text", ""); text != "" && t == domain.CardTypeText {
			e.SetCardText(handle, text)
		}
		c, _ := e.Card(handle)
		created = summarizeCard(int(handle), c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return jsonResult(created)
}

func (s *Server) handleSetCardText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text is required")
	}
	var changed bool
	err := s.withBoard(args, func(e *board.Engine) error {
		h, err := getIndex(e, args, "index")
		if err != nil {
			return err
		}
		if c, _ := e.Card(h); c.Type != domain.CardTypeText {
			return fmt.Errorf("card %d is a %s, not a text card", h, c.Type)
		}
		changed = e.SetCardText(h, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return textResult("Text unchanged"), nil
	}
	return textResult("Card text updated"), nil
}

func (s *Server) handleSetCardGeometry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var updated cardSummary
	err := s.withBoard(args, func(e *board.Engine) error {
		h, err := getIndex(e, args, "index")
		if err != nil {
			return err
		}
		c, _ := e.Card(h)
		pos := geometry.Vec{X: getFloat(args, "x", c.Position.X), Y: getFloat(args, "y", c.Position.Y)}
		e.SetCardGeometry(h, pos, getFloat(args, "width", c.Width), getFloat(args, "height", c.Height))
		c, _ = e.Card(h)
		updated = summarizeCard(int(h), c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(updated)
}

func (s *Server) handleDeleteCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var n int
	err := s.withBoard(args, func(e *board.Engine) error {
		hs, err := getIndices(e, args, "indices")
		if err != nil {
			return err
		}
		if len(hs) == 0 {
			return fmt.Errorf("indices is required")
		}
		before := e.Len()
		e.Delete(hs...)
		n = before - e.Len()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted %d card(s)", n)), nil
}

func (s *Server) handleSelectCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var n int
	err := s.withBoard(args, func(e *board.Engine) error {
		hs, err := getIndices(e, args, "indices")
		if err != nil {
			return err
		}
		e.Select(hs...)
		n = len(e.Selected())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("%d card(s) selected", n)), nil
}

// withSelection selects the cards named by indices, runs fn and restores the
// previous selection.
func withSelection(e *board.Engine, hs []cards.Handle, fn func()) {
	prev := e.Selected()
	e.Select(hs...)
	fn()
	e.Select(prev...)
}

func (s *Server) handleAlignCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	direction := strings.ToLower(req.GetString("direction", ""))
	if direction != "vertical" && direction != "horizontal" {
		return nil, fmt.Errorf("direction must be vertical or horizontal")
	}
	err := s.withBoard(args, func(e *board.Engine) error {
		hs, err := getIndices(e, args, "indices")
		if err != nil {
			return err
		}
		if len(hs) < 2 {
			return fmt.Errorf("align needs at least two cards")
		}
		withSelection(e, hs, func() {
			if direction == "vertical" {
				e.AlignVertically()
			} else {
				e.AlignHorizontally()
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Cards aligned %sly", direction)), nil
}

func (s *Server) handleNudgeCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	dx, dy := getFloat(args, "dx", 0), getFloat(args, "dy", 0)
	err := s.withBoard(args, func(e *board.Engine) error {
		hs, err := getIndices(e, args, "indices")
		if err != nil {
			return err
		}
		withSelection(e, hs, func() { e.Nudge(dx, dy) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult("Cards nudged"), nil
}

func (s *Server) handleArrangeCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	start := geometry.Vec{X: getFloat(args, "startX", 0), Y: getFloat(args, "startY", 0)}
	var n int
	err := s.withBoard(args, func(e *board.Engine) error {
		hs, err := getIndices(e, args, "indices")
		if err != nil {
			return err
		}
		st := e.State()
		if len(hs) == 0 {
			for i := range st.Cards {
				hs = append(hs, cards.Handle(i))
			}
		}
		sort.Slice(hs, func(a, b int) bool { return hs[a] < hs[b] })

		group := make([]*domain.Card, 0, len(hs))
		seen := map[cards.Handle]bool{}
		for _, h := range hs {
			if !seen[h] {
				seen[h] = true
				group = append(group, &st.Cards[h])
			}
		}
		s.layout.ArrangeGroup(group, start)
		e.Restore(st)
		n = len(group)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Arranged %d card(s)", n)), nil
}

func (s *Server) handleBringToFront(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.restack(req, (*board.Engine).BringToFront, "front")
}

func (s *Server) handleSendToBack(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.restack(req, (*board.Engine).SendToBack, "back")
}

func (s *Server) restack(req mcp.CallToolRequest, op func(*board.Engine, cards.Handle), where string) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var z int
	err := s.withBoard(args, func(e *board.Engine) error {
		h, err := getIndex(e, args, "index")
		if err != nil {
			return err
		}
		op(e, h)
		c, _ := e.Card(h)
		z = c.ZIndex
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Card moved to the %s (zIndex %d)", where, z)), nil
}
