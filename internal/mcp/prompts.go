// ABOUTME: MCP prompt definitions for oracle
// ABOUTME: Provides static context to AI assistants about the card tools
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts adds static prompts to the MCP server.
func (s *Server) registerPrompts() {
	prompt := &mcp.Prompt{
		Name:        "oracle-getting-started",
		Description: "Introduction to oracle and how AI assistants should use its card tools",
	}

	handler := func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		content := `Oracle answers questions about Magic: The Gathering cards.

When to use which tool:
- card-search: the user describes cards by properties ("red instants that cost 1")
- card-lookup: the user names one card and wants its full details
- card-collection: the user pastes a deck list or several card names (up to 75)
- database-search-cards: free-text search over the locally ingested card collection
- database-status / database-stats: check whether the card database is available

Best practices:
- Translate natural language into Scryfall syntax (see oracle://search-syntax)
- Use fuzzy lookup when the user misspells a card name
- Quote the permalink so the user can open the card page
- Database tools are optional; fall back to Scryfall tools when the database is not connected`

		result := &mcp.GetPromptResult{
			Description: "Getting started with oracle",
			Messages: []*mcp.PromptMessage{
				{
					Role: "user",
					Content: &mcp.TextContent{
						Text: content,
					},
				},
			},
		}

		return result, nil
	}

	s.mcpServer.AddPrompt(prompt, handler)
}
