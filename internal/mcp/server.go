// ABOUTME: MCP server implementation for oracle
// ABOUTME: Registers card tools, database tools, prompts and resources on a go-sdk server
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/oracle/internal/card"
	"github.com/harper/oracle/internal/gateway"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// CardSource is the outbound card provider used by the card tools.
type CardSource interface {
	Search(ctx context.Context, query string, page int) (card.List, error)
	Named(ctx context.Context, name string, fuzzy bool) (card.Card, error)
	Collection(ctx context.Context, names []string) (card.Collection, error)
}

// Database is the collection store handle used by the database tools.
type Database interface {
	IsConnected() bool
	TestConnection(ctx context.Context) bool
	Backend() (gateway.Backend, error)
	Readiness() gateway.Readiness
}

// Server wraps the MCP server with oracle-specific functionality.
type Server struct {
	mcpServer *mcp.Server
	cards     CardSource
	db        Database
	logger    *log.Logger
}

// NewServer creates a new oracle MCP server. db may be a gateway that never
// connects; the database tools then report that no database is available.
func NewServer(cards CardSource, db Database, logger *log.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    "oracle",
		Version: Version,
	}
	if logger == nil {
		logger = log.Default()
	}

	server := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		cards:     cards,
		db:        db,
		logger:    logger,
	}

	// Register components
	server.registerPrompts()
	server.registerCardTools()
	server.registerDatabaseTools()
	server.registerResources()

	return server
}

// MCPServer exposes the underlying server for HTTP transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context) error {
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
