package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leth4/leto-sub000/internal/board"
)

const (
	boardsURI      = "leto://boards"
	boardURIPrefix = "leto://board/"
)

func (s *Server) registerResources() {
	// ── leto://boards ──────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		boardsURI,
		"Open Boards",
		mcp.WithMIMEType("application/json"),
	), s.handleBoardsResource)

	// ── leto://board/{path} ────────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			boardURIPrefix+"{+path}",
			"Board Document",
		),
		s.handleBoardResource,
	)
}

func (s *Server) handleBoardsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, _ := json.MarshalIndent(s.boards.Boards(), "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      boardsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// handleBoardResource returns the persisted document of an open board.
func (s *Server) handleBoardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	path := strings.TrimPrefix(uri, boardURIPrefix)
	if path == "" || path == uri {
		return nil, fmt.Errorf("could not extract board path from URI: %s", uri)
	}

	var doc string
	if err := s.boards.Do(path, func(e *board.Engine) error {
		var err error
		doc, err = e.Serialize()
		return err
	}); err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     doc,
		},
	}, nil
}
