// ABOUTME: MCP database tool implementations for oracle
// ABOUTME: Connection status, collection search and statistics through the gateway
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/oracle/internal/card"
	"github.com/harper/oracle/internal/gateway"
	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/scryfall"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// Status messages shared by the tools and the status resource.
const (
	statusNotConnected = "❌ Database is not connected. The Weaviate database connection is not available."
	statusReady        = "✅ Database is connected and ready for queries."
	statusNotReady     = "⚠️ Database connection exists but is not responding to health checks."
)

// DatabaseStatusInput defines the input for database-status tool.
type DatabaseStatusInput struct{}

// DatabaseSearchInput defines the input for database-search-cards tool.
type DatabaseSearchInput struct {
	Query string `json:"query" jsonschema:"The search query to find similar cards in the vector database"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default: 10)"`
}

// DatabaseStatsInput defines the input for database-stats tool.
type DatabaseStatsInput struct{}

// registerDatabaseTools adds the collection store tools to the server.
func (s *Server) registerDatabaseTools() {
	statusTool := &mcp.Tool{
		Name:        "database-status",
		Description: "Check whether the card database is connected and responding.",
	}
	mcp.AddTool(s.mcpServer, statusTool, s.handleDatabaseStatus)

	searchTool := &mcp.Tool{
		Name:        "database-search-cards",
		Description: "Search the card database for cards matching a query.",
		InputSchema: inputSchema[DatabaseSearchInput](func(schema *jsonschema.Schema) {
			schema.Properties["limit"].Minimum = ptr(1.0)
			schema.Properties["limit"].Maximum = ptr(float64(maxSearchLimit))
		}),
	}
	mcp.AddTool(s.mcpServer, searchTool, s.handleDatabaseSearch)

	statsTool := &mcp.Tool{
		Name:        "database-stats",
		Description: "Report how many cards the database holds and which collections exist.",
	}
	mcp.AddTool(s.mcpServer, statsTool, s.handleDatabaseStats)
}

// handleDatabaseStatus implements the database-status tool.
func (s *Server) handleDatabaseStatus(ctx context.Context, req *mcp.CallToolRequest, input DatabaseStatusInput) (*mcp.CallToolResult, any, error) {
	return textResult(s.statusText(ctx)), nil, nil
}

func (s *Server) statusText(ctx context.Context) string {
	if !s.db.IsConnected() {
		return statusNotConnected
	}
	if s.db.TestConnection(ctx) {
		return statusReady
	}
	return statusNotReady
}

// backend resolves the store for a query, or a user-facing message explaining
// why none is available.
func (s *Server) backend(action string) (gateway.Backend, string) {
	if !s.db.IsConnected() {
		return nil, fmt.Sprintf("❌ Database is not connected. Cannot %s.", action)
	}
	backend, err := s.db.Backend()
	if errors.Is(err, gateway.ErrNotConnected) {
		return nil, fmt.Sprintf("⚠️ Database is connected but not ready yet. Cannot %s.", action)
	}
	if err != nil {
		return nil, fmt.Sprintf("❌ Database is not available: %v", err)
	}
	return backend, ""
}

// handleDatabaseSearch implements the database-search-cards tool.
func (s *Server) handleDatabaseSearch(ctx context.Context, req *mcp.CallToolRequest, input DatabaseSearchInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 1 || limit > maxSearchLimit {
		return errorResult(fmt.Errorf("limit must be between 1 and %d", maxSearchLimit)), nil, nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return errorResult(errors.New("query is required")), nil, nil
	}

	backend, msg := s.backend("perform vector search")
	if backend == nil {
		return textResult(msg), nil, nil
	}

	records, err := backend.Search(ctx, input.Query, limit)
	if err != nil {
		s.logger.Error("database search error", "query", input.Query, "err", err)
		return errorResult(fmt.Errorf("❌ Database search failed: %w", err)), nil, nil
	}

	return textResult(formatRecords(input.Query, records)), nil, nil
}

// handleDatabaseStats implements the database-stats tool.
func (s *Server) handleDatabaseStats(ctx context.Context, req *mcp.CallToolRequest, input DatabaseStatsInput) (*mcp.CallToolResult, any, error) {
	backend, msg := s.backend("retrieve statistics")
	if backend == nil {
		return textResult(msg), nil, nil
	}

	stats, err := backend.Stats(ctx)
	if err != nil {
		s.logger.Error("database stats error", "err", err)
		return errorResult(fmt.Errorf("❌ Failed to retrieve database statistics: %w", err)), nil, nil
	}

	text := fmt.Sprintf("📊 Collection %s holds %d cards.", stats.Collection, stats.Objects)
	if len(stats.Collections) > 0 {
		text += "\n\nCollections: " + strings.Join(stats.Collections, ", ")
	}
	return textResult(text), nil, nil
}

func formatRecords(query string, records []record.Record) string {
	if len(records) == 0 {
		return fmt.Sprintf("🔍 No cards found for %q.", query)
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		line := fmt.Sprintf("• %s (%s) - %s", rec.Name, rec.SetName, rec.TypeLine)
		if rec.ManaCost != "" {
			line += fmt.Sprintf(" [%s]", rec.ManaCost)
		}
		link := scryfall.Permalink(card.Card{Set: rec.Set, CollectorNumber: rec.CollectorNumber})
		lines = append(lines, line+"\n  Link: "+link)
	}
	return fmt.Sprintf("🔍 Found %d cards for %q:\n\n%s", len(records), query, strings.Join(lines, "\n\n"))
}
