// ABOUTME: Tests for the SQLite card mirror
// ABOUTME: Covers batch upserts, search ordering, lookup and counting
package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(id, name, typeLine, text string) record.Record {
	return record.Record{
		ID:              id,
		Name:            name,
		TypeLine:        typeLine,
		OracleText:      text,
		Colors:          []string{},
		ColorIdentity:   []string{"R"},
		Keywords:        []string{},
		Set:             "lea",
		SetName:         "Limited Edition Alpha",
		Rarity:          "common",
		CollectorNumber: "1",
		LegalitiesJSON:  `{"vintage":"legal"}`,
		PricesJSON:      `{"usd":null}`,
	}
}

func TestInsertMany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	res, err := s.InsertMany(ctx, []record.Record{
		testRecord("a", "Lightning Bolt", "Instant", "Lightning Bolt deals 3 damage to any target."),
		testRecord("b", "Shock", "Instant", "Shock deals 2 damage to any target."),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Empty(t, res.Failed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("upserts by id", func(t *testing.T) {
		updated := testRecord("a", "Lightning Bolt", "Instant", "errata")
		_, err := s.InsertMany(ctx, []record.Record{updated})
		require.NoError(t, err)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "errata", got.OracleText)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := testRecord("a", "Lightning Bolt", "Instant", "deal 3")
	_, err := s.InsertMany(ctx, []record.Record{want})
	require.NoError(t, err)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.InsertMany(ctx, []record.Record{
		testRecord("a", "Bolt Bend", "Instant", "Change the target of target spell."),
		testRecord("b", "Bolt", "Instant", "Bolt deals 3 damage."),
		testRecord("c", "Forest", "Basic Land — Forest", ""),
	})
	require.NoError(t, err)

	got, err := s.Search(ctx, "bolt", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bolt", got[0].Name, "exact name match sorts first")

	got, err = s.Search(ctx, "Land", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Forest", got[0].Name)

	got, err = s.Search(ctx, "bolt", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchWildcardsMatchLiterally(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.InsertMany(ctx, []record.Record{
		testRecord("a", "Doubling Season", "Enchantment", "Put twice that many counters. 100% more tokens."),
		testRecord("b", "Shock", "Instant", "Shock deals 2 damage to any target."),
		testRecord("c", "Fire_Ice", "Instant", `Fire\Ice deals damage.`),
	})
	require.NoError(t, err)

	t.Run("percent", func(t *testing.T) {
		got, err := s.Search(ctx, "100%", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Doubling Season", got[0].Name)

		got, err = s.Search(ctx, "%", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("underscore", func(t *testing.T) {
		got, err := s.Search(ctx, "_", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Fire_Ice", got[0].Name)
	})

	t.Run("backslash", func(t *testing.T) {
		got, err := s.Search(ctx, `Fire\Ice`, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Fire_Ice", got[0].Name)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "bolt", escapeLike("bolt"))
}
