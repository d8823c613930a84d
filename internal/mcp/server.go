package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/export"
	"github.com/leth4/leto-sub000/internal/service"
)

// Server is the MCP server for boards.
// It exposes tools, resources, and prompts so AI agents can edit boards.
type Server struct {
	mcp    *server.MCPServer
	boards *service.BoardService
	layout *LayoutEngine

	export         export.Options
	viewportWidth  float64
	viewportHeight float64

	// Active board (set by open_board)
	mu          sync.Mutex
	activeBoard string
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Boards *service.BoardService
	Export export.Options

	// Viewport is the host container size zoom_to_selection fits into.
	ViewportWidth  float64
	ViewportHeight float64
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		boards:         deps.Boards,
		layout:         NewLayoutEngine(),
		export:         deps.Export,
		viewportWidth:  deps.ViewportWidth,
		viewportHeight: deps.ViewportHeight,
	}

	s.mcp = server.NewMCPServer(
		"leto-board",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBoardTools()
	s.registerCardTools()
	s.registerArrowTools()
	s.registerViewTools()
	s.registerHistoryTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// SetActiveBoard makes path the board tools act on when no board argument
// is given. The board must be open.
func (s *Server) SetActiveBoard(path string) {
	s.mu.Lock()
	s.activeBoard = filepath.Clean(path)
	s.mu.Unlock()
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

// resolveBoard returns the board from tool args or falls back to the active board.
func (s *Server) resolveBoard(args map[string]any) (string, error) {
	if p, ok := args["board"].(string); ok && p != "" {
		return p, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBoard != "" {
		return s.activeBoard, nil
	}
	return "", fmt.Errorf("no board provided and no active board (use open_board first)")
}

// withBoard runs fn on the board named by args.
func (s *Server) withBoard(args map[string]any, fn func(e *board.Engine) error) error {
	path, err := s.resolveBoard(args)
	if err != nil {
		return err
	}
	return s.boards.Do(path, fn)
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// getIndex reads a card index argument and checks it against the board.
func getIndex(e *board.Engine, args map[string]any, key string) (cards.Handle, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	h := cards.Handle(v)
	if float64(h) != v || h < 0 || int(h) >= e.Len() {
		return 0, fmt.Errorf("%s: no card %v (board has %d)", key, v, e.Len())
	}
	return h, nil
}

// getIndices parses a comma-separated list of card indices.
func getIndices(e *board.Engine, args map[string]any, key string) ([]cards.Handle, error) {
	raw, _ := args[key].(string)
	var out []cards.Handle
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a card index", key, part)
		}
		if n < 0 || n >= e.Len() {
			return nil, fmt.Errorf("%s: no card %d (board has %d)", key, n, e.Len())
		}
		out = append(out, cards.Handle(n))
	}
	return out, nil
}
