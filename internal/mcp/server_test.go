// ABOUTME: Tests for the oracle MCP server
// ABOUTME: Drives tool handlers with a fake card source and a gateway over a fake backend
package mcp

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/oracle/internal/card"
	"github.com/harper/oracle/internal/gateway"
	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/scryfall"
	"github.com/harper/oracle/internal/store"
)

type fakeCards struct {
	calls int
	list  card.List
	card  card.Card
	coll  card.Collection
	err   error
}

func (f *fakeCards) Search(ctx context.Context, query string, page int) (card.List, error) {
	f.calls++
	return f.list, f.err
}

func (f *fakeCards) Named(ctx context.Context, name string, fuzzy bool) (card.Card, error) {
	f.calls++
	return f.card, f.err
}

func (f *fakeCards) Collection(ctx context.Context, names []string) (card.Collection, error) {
	f.calls++
	return f.coll, f.err
}

type fakeBackend struct {
	readyErr  error
	records   []record.Record
	stats     store.Stats
	searchErr error
	lastLimit int
}

func (f *fakeBackend) Ready(ctx context.Context) error { return f.readyErr }
func (f *fakeBackend) Close() error                    { return nil }

func (f *fakeBackend) Search(ctx context.Context, query string, limit int) ([]record.Record, error) {
	f.lastLimit = limit
	return f.records, f.searchErr
}

func (f *fakeBackend) Stats(ctx context.Context) (store.Stats, error) {
	return f.stats, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// newGateway returns a gateway over backend, connected unless backend is nil.
func newGateway(t *testing.T, backend *fakeBackend, opts ...gateway.Option) *gateway.Gateway {
	t.Helper()
	dial := func(ctx context.Context, ep gateway.Endpoint) (gateway.Backend, error) {
		return backend, nil
	}
	gw := gateway.New(dial, append([]gateway.Option{gateway.WithLogger(quietLogger())}, opts...)...)
	if backend != nil {
		require.NoError(t, gw.Connect(context.Background(), gateway.Config{URL: "https://db.example.com", APIKey: "k"}))
	}
	return gw
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func bolt() card.Card {
	return card.Card{
		Object:          "card",
		ID:              "e3285e6b-3e79-4d7c-bf96-d920f973b80c",
		Name:            "Lightning Bolt",
		Set:             "m10",
		SetName:         "Magic 2010",
		CollectorNumber: "146",
		TypeLine:        "Instant",
		ManaCost:        "{R}",
	}
}

func TestCardSearchTool(t *testing.T) {
	ctx := context.Background()

	t.Run("formats results", func(t *testing.T) {
		forest := bolt()
		forest.Name = "Forest"
		forest.ManaCost = ""
		cards := &fakeCards{list: card.List{TotalCards: 2, Data: []card.Card{bolt(), forest}}}
		s := NewServer(cards, newGateway(t, nil), quietLogger())

		result, _, err := s.handleCardSearch(ctx, nil, CardSearchInput{Query: "bolt"})
		require.NoError(t, err)
		assert.False(t, result.IsError)

		text := textOf(t, result)
		assert.Contains(t, text, "Found 2 cards")
		assert.Contains(t, text, "Lightning Bolt")
		assert.Contains(t, text, "Forest")
		assert.NotContains(t, text, "Use page parameter")
	})

	t.Run("provider errors become error results", func(t *testing.T) {
		cards := &fakeCards{err: &scryfall.APIError{Status: 400, Details: "All of your terms were ignored."}}
		s := NewServer(cards, newGateway(t, nil), quietLogger())

		result, _, err := s.handleCardSearch(ctx, nil, CardSearchInput{Query: "zz:"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "Scryfall API error: All of your terms were ignored.", textOf(t, result))
	})
}

func TestCardLookupTool(t *testing.T) {
	cards := &fakeCards{card: bolt()}
	s := NewServer(cards, newGateway(t, nil), quietLogger())

	result, _, err := s.handleCardLookup(context.Background(), nil, CardLookupInput{Name: "lightning bolt", Fuzzy: true})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), `"name": "Lightning Bolt"`)
}

func TestCardCollectionTool(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects 76 names without calling the provider", func(t *testing.T) {
		cards := &fakeCards{}
		s := NewServer(cards, newGateway(t, nil), quietLogger())

		names := make([]string, 76)
		for i := range names {
			names[i] = "Island"
		}
		result, _, err := s.handleCardCollection(ctx, nil, CardCollectionInput{CardNames: names})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Zero(t, cards.calls)
	})

	t.Run("summarizes found and missing cards", func(t *testing.T) {
		cards := &fakeCards{coll: card.Collection{Data: []card.Card{bolt()}, NotFound: []card.NotFound{{Name: "Nope"}}}}
		s := NewServer(cards, newGateway(t, nil), quietLogger())

		result, _, err := s.handleCardCollection(ctx, nil, CardCollectionInput{CardNames: []string{"Lightning Bolt", "Nope"}})
		require.NoError(t, err)
		text := textOf(t, result)
		assert.Contains(t, text, "Found 1 of 2 cards")
		assert.Contains(t, text, "• Nope")
	})
}

func TestDatabaseStatusTool(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
	}{
		{"not connected", nil, statusNotConnected},
		{"ready", &fakeBackend{}, statusReady},
		{"not responding", &fakeBackend{readyErr: errors.New("timeout")}, statusNotReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeCards{}, newGateway(t, tt.backend), quietLogger())
			result, _, err := s.handleDatabaseStatus(ctx, nil, DatabaseStatusInput{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, textOf(t, result))
		})
	}
}

func TestDatabaseSearchTool(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		s := NewServer(&fakeCards{}, newGateway(t, nil), quietLogger())
		result, _, err := s.handleDatabaseSearch(ctx, nil, DatabaseSearchInput{Query: "elf"})
		require.NoError(t, err)
		assert.Equal(t, "❌ Database is not connected. Cannot perform vector search.", textOf(t, result))
	})

	t.Run("strict policy refuses an unready store", func(t *testing.T) {
		backend := &fakeBackend{readyErr: errors.New("warming up")}
		s := NewServer(&fakeCards{}, newGateway(t, backend, gateway.WithReadiness(gateway.ReadinessStrict)), quietLogger())
		result, _, err := s.handleDatabaseSearch(ctx, nil, DatabaseSearchInput{Query: "elf"})
		require.NoError(t, err)
		assert.Contains(t, textOf(t, result), "not ready")
	})

	t.Run("default limit and results", func(t *testing.T) {
		backend := &fakeBackend{records: []record.Record{{Name: "Llanowar Elves", SetName: "Dominaria", TypeLine: "Creature — Elf Druid", ManaCost: "{G}", Set: "dom", CollectorNumber: "168"}}}
		s := NewServer(&fakeCards{}, newGateway(t, backend), quietLogger())

		result, _, err := s.handleDatabaseSearch(ctx, nil, DatabaseSearchInput{Query: "elf"})
		require.NoError(t, err)
		assert.Equal(t, 10, backend.lastLimit)
		text := textOf(t, result)
		assert.Contains(t, text, "Found 1 cards")
		assert.Contains(t, text, "https://scryfall.com/card/dom/168")
	})

	t.Run("limit out of range", func(t *testing.T) {
		backend := &fakeBackend{}
		s := NewServer(&fakeCards{}, newGateway(t, backend), quietLogger())
		for _, limit := range []int{-1, 101} {
			result, _, err := s.handleDatabaseSearch(ctx, nil, DatabaseSearchInput{Query: "elf", Limit: limit})
			require.NoError(t, err)
			assert.True(t, result.IsError)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		backend := &fakeBackend{searchErr: errors.New("graphql: class not found")}
		s := NewServer(&fakeCards{}, newGateway(t, backend), quietLogger())
		result, _, err := s.handleDatabaseSearch(ctx, nil, DatabaseSearchInput{Query: "elf"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textOf(t, result), "Database search failed")
	})
}

func TestDatabaseStatsTool(t *testing.T) {
	backend := &fakeBackend{stats: store.Stats{Collection: "OracleCards", Objects: 42, Collections: []string{"OracleCards", "Other"}}}
	s := NewServer(&fakeCards{}, newGateway(t, backend), quietLogger())

	result, _, err := s.handleDatabaseStats(context.Background(), nil, DatabaseStatsInput{})
	require.NoError(t, err)
	text := textOf(t, result)
	assert.Contains(t, text, "OracleCards holds 42 cards")
	assert.Contains(t, text, "Collections: OracleCards, Other")
}

func TestDatabaseStatusResource(t *testing.T) {
	backend := &fakeBackend{stats: store.Stats{Collection: "OracleCards", Objects: 3}}
	s := NewServer(&fakeCards{}, newGateway(t, backend), quietLogger())

	status := s.databaseStatus(context.Background())
	assert.True(t, status.Connected)
	assert.True(t, status.Ready)
	assert.Equal(t, "lenient", status.Readiness)
	require.NotNil(t, status.Stats)
	assert.Equal(t, 3, status.Stats.Objects)
}

func TestServerOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	s := NewServer(&fakeCards{list: card.List{TotalCards: 1, Data: []card.Card{bolt()}}}, newGateway(t, nil), quietLogger())

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"card-search", "card-lookup", "card-collection",
		"database-status", "database-search-cards", "database-stats",
	}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "card-search",
		Arguments: map[string]any{"query": "bolt"},
	})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), "Lightning Bolt")

	resource, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: searchSyntaxURI})
	require.NoError(t, err)
	require.NotEmpty(t, resource.Contents)
	assert.Contains(t, resource.Contents[0].Text, "Scryfall Search Syntax")
}
