package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("mind_map",
		mcp.WithPromptDescription("Lay out a topic as text cards connected by arrows"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Central topic of the map"),
			mcp.RequiredArgument(),
		),
	), s.handleMindMapPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_board",
		mcp.WithPromptDescription("Group related cards into regions and straighten the layout"),
	), s.handleTidyBoardPrompt)
}

func (s *Server) handleMindMapPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Mind map for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a mind map about "%s" on the active board. Follow these steps:

1. Use create_card with type "text" for the central topic; write it as a markdown heading.
2. Add one text card per subtopic with create_card (leave x and y out to auto-layout).
3. Connect the center to every subtopic with connect_cards.
4. Use arrange_cards on the subtopics, then align_cards for any that belong in a column.
5. Check board_state and save when done.`, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyBoardPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Tidy the active board",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `Tidy the active board. Follow these steps:

1. Read board_state and group cards by subject.
2. For each group, move its cards together with set_card_geometry or arrange_cards.
3. Create a "region" card behind each group (create_card, then send_to_back) sized to cover it.
4. Remove arrows that cross groups without meaning with disconnect_cards.
5. Use undo if a step makes things worse, and save at the end.`,
				},
			},
		},
	}, nil
}
