// ABOUTME: MCP card tool implementations for oracle
// ABOUTME: Scryfall-backed search, named lookup and collection lookup tools
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/oracle/internal/scryfall"
)

// CardSearchInput defines the input for card-search tool.
type CardSearchInput struct {
	Query string `json:"query" jsonschema:"The search query using Scryfall's search syntax (see https://scryfall.com/docs/syntax)"`
	Page  int    `json:"page,omitempty" jsonschema:"The page number to return. Each page contains 175 cards by default."`
}

// CardLookupInput defines the input for card-lookup tool.
type CardLookupInput struct {
	Name  string `json:"name" jsonschema:"The name of the Magic: The Gathering card to search for"`
	Fuzzy bool   `json:"fuzzy,omitempty" jsonschema:"When true, performs a fuzzy search that can handle minor misspellings"`
}

// CardCollectionInput defines the input for card-collection tool.
type CardCollectionInput struct {
	CardNames []string `json:"cardNames" jsonschema:"Array of Magic: The Gathering card names to lookup (maximum 75 cards)"`
}

// registerCardTools adds the Scryfall tools to the server.
func (s *Server) registerCardTools() {
	searchTool := &mcp.Tool{
		Name:        "card-search",
		Description: "Search for Magic: The Gathering cards using Scryfall's search syntax. Returns card names, sets, types and permalinks.",
		InputSchema: inputSchema[CardSearchInput](func(schema *jsonschema.Schema) {
			schema.Properties["page"].Minimum = ptr(1.0)
		}),
	}
	mcp.AddTool(s.mcpServer, searchTool, s.handleCardSearch)

	lookupTool := &mcp.Tool{
		Name:        "card-lookup",
		Description: "Look up a single Magic: The Gathering card by name and return its full Scryfall data as JSON.",
	}
	mcp.AddTool(s.mcpServer, lookupTool, s.handleCardLookup)

	collectionTool := &mcp.Tool{
		Name:        "card-collection",
		Description: "Look up several Magic: The Gathering cards by name in one request (maximum 75 cards).",
		InputSchema: inputSchema[CardCollectionInput](func(schema *jsonschema.Schema) {
			schema.Properties["cardNames"].MaxItems = ptr(scryfall.MaxCollectionSize)
		}),
	}
	mcp.AddTool(s.mcpServer, collectionTool, s.handleCardCollection)
}

// handleCardSearch implements the card-search tool.
func (s *Server) handleCardSearch(ctx context.Context, req *mcp.CallToolRequest, input CardSearchInput) (*mcp.CallToolResult, any, error) {
	if input.Page < 0 {
		return errorResult(errors.New("page must be at least 1")), nil, nil
	}

	list, err := s.cards.Search(ctx, input.Query, input.Page)
	if err != nil {
		s.logger.Warn("card search failed", "query", input.Query, "err", err)
		return errorResult(err), nil, nil
	}

	return textResult(scryfall.FormatSearch(list, input.Page)), nil, nil
}

// handleCardLookup implements the card-lookup tool.
func (s *Server) handleCardLookup(ctx context.Context, req *mcp.CallToolRequest, input CardLookupInput) (*mcp.CallToolResult, any, error) {
	found, err := s.cards.Named(ctx, input.Name, input.Fuzzy)
	if err != nil {
		s.logger.Warn("card lookup failed", "name", input.Name, "err", err)
		return errorResult(err), nil, nil
	}

	text, err := scryfall.FormatCard(found)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(text), nil, nil
}

// handleCardCollection implements the card-collection tool.
func (s *Server) handleCardCollection(ctx context.Context, req *mcp.CallToolRequest, input CardCollectionInput) (*mcp.CallToolResult, any, error) {
	if len(input.CardNames) > scryfall.MaxCollectionSize {
		err := fmt.Errorf("%w (got %d)", scryfall.ErrTooManyIdentifiers, len(input.CardNames))
		return errorResult(err), nil, nil
	}

	coll, err := s.cards.Collection(ctx, input.CardNames)
	if err != nil {
		s.logger.Warn("card collection lookup failed", "count", len(input.CardNames), "err", err)
		return errorResult(err), nil, nil
	}

	return textResult(scryfall.FormatCollection(len(input.CardNames), coll)), nil, nil
}

// inputSchema infers the schema for T and lets the caller add bounds the
// struct tags cannot express.
func inputSchema[T any](adjust func(*jsonschema.Schema)) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("invalid tool input type: %v", err))
	}
	adjust(schema)
	return schema
}

func ptr[T any](v T) *T {
	return &v
}
