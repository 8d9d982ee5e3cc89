// ABOUTME: MCP resource implementations for oracle
// ABOUTME: Scryfall search syntax reference and live database status
package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/oracle/internal/store"
)

const (
	searchSyntaxURI   = "oracle://search-syntax"
	databaseStatusURI = "oracle://database-status"
)

const searchSyntax = `# Scryfall Search Syntax

Full reference: https://scryfall.com/docs/syntax

| Keyword | Meaning | Example |
|---|---|---|
| ` + "`c:`" + ` | color | ` + "`c:rg`" + ` |
| ` + "`id:`" + ` | color identity | ` + "`id:esper`" + ` |
| ` + "`t:`" + ` | type line | ` + "`t:legendary t:creature`" + ` |
| ` + "`o:`" + ` | oracle text | ` + "`o:\"draw a card\"`" + ` |
| ` + "`mv:`" + ` | mana value | ` + "`mv<=2`" + ` |
| ` + "`pow:` / `tou:`" + ` | power / toughness | ` + "`pow>=4`" + ` |
| ` + "`r:`" + ` | rarity | ` + "`r:mythic`" + ` |
| ` + "`s:`" + ` | set code | ` + "`s:dmu`" + ` |
| ` + "`f:`" + ` | format legality | ` + "`f:modern`" + ` |
| ` + "`kw:`" + ` | keyword ability | ` + "`kw:flying`" + ` |

Combine terms with spaces (AND), ` + "`or`" + `, parentheses and ` + "`-`" + ` for negation.
`

// DatabaseStatus is the JSON body of the database-status resource.
type DatabaseStatus struct {
	Connected bool         `json:"connected"`
	Ready     bool         `json:"ready"`
	Readiness string       `json:"readiness"`
	Message   string       `json:"message"`
	Stats     *store.Stats `json:"stats,omitempty"`
}

// registerResources adds all MCP resources to the server.
func (s *Server) registerResources() {
	syntaxResource := &mcp.Resource{
		URI:         searchSyntaxURI,
		Name:        "Search Syntax",
		Description: "Quick reference for Scryfall search keywords",
		MIMEType:    "text/markdown",
	}
	s.mcpServer.AddResource(syntaxResource, s.handleSearchSyntax)

	statusResource := &mcp.Resource{
		URI:         databaseStatusURI,
		Name:        "Database Status",
		Description: "Connection state, readiness policy and collection statistics",
		MIMEType:    "application/json",
	}
	s.mcpServer.AddResource(statusResource, s.handleDatabaseStatusResource)
}

// handleSearchSyntax implements the search-syntax resource.
func (s *Server) handleSearchSyntax(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      searchSyntaxURI,
				MIMEType: "text/markdown",
				Text:     searchSyntax,
			},
		},
	}, nil
}

// handleDatabaseStatusResource implements the database-status resource.
func (s *Server) handleDatabaseStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	status := s.databaseStatus(ctx)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      databaseStatusURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

func (s *Server) databaseStatus(ctx context.Context) DatabaseStatus {
	status := DatabaseStatus{
		Connected: s.db.IsConnected(),
		Readiness: string(s.db.Readiness()),
	}
	switch {
	case !status.Connected:
		status.Message = statusNotConnected
	case s.db.TestConnection(ctx):
		status.Ready = true
		status.Message = statusReady
	default:
		status.Message = statusNotReady
	}

	if backend, err := s.db.Backend(); err == nil {
		if stats, err := backend.Stats(ctx); err == nil {
			status.Stats = &stats
		} else {
			s.logger.Warn("failed to read database stats", "err", err)
		}
	}
	return status
}
