// ABOUTME: Card mirror operations on SQLite
// ABOUTME: Batch upserts, substring search, lookup by id and counting
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/store"
)

const cardColumns = `id, oracle_id, name, type_line, oracle_text, mana_cost, cmc, colors, color_identity,
	keywords, power, toughness, loyalty, set_code, set_name, rarity, collector_number, flavor_text,
	artist, layout, legalities_json, prices_json`

// Store is a collection store backed by a local SQLite file.
type Store struct {
	db *sql.DB
}

// Open initializes the database at path and wraps it in a Store.
func Open(path string) (*Store, error) {
	database, err := InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: database}, nil
}

// NewStore wraps an already-initialized database.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertMany upserts records in a single transaction. Any failure rolls the
// whole batch back.
func (s *Store) InsertMany(ctx context.Context, records []record.Record) (store.BatchResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.BatchResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return store.BatchResult{}, err
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		colors, err := json.Marshal(rec.Colors)
		if err != nil {
			return store.BatchResult{}, err
		}
		identity, err := json.Marshal(rec.ColorIdentity)
		if err != nil {
			return store.BatchResult{}, err
		}
		keywords, err := json.Marshal(rec.Keywords)
		if err != nil {
			return store.BatchResult{}, err
		}

		_, err = stmt.ExecContext(ctx,
			rec.ID, rec.OracleID, rec.Name, rec.TypeLine, rec.OracleText, rec.ManaCost, rec.CMC,
			string(colors), string(identity), string(keywords), rec.Power, rec.Toughness, rec.Loyalty,
			rec.Set, rec.SetName, rec.Rarity, rec.CollectorNumber, rec.FlavorText, rec.Artist,
			rec.Layout, rec.LegalitiesJSON, rec.PricesJSON,
		)
		if err != nil {
			return store.BatchResult{}, fmt.Errorf("insert %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.BatchResult{}, err
	}
	return store.BatchResult{Inserted: len(records)}, nil
}

// Search returns cards whose name, type line or rules text contains query,
// exact name matches first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]record.Record, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards
		WHERE name LIKE ? ESCAPE '\' OR type_line LIKE ? ESCAPE '\' OR oracle_text LIKE ? ESCAPE '\'
		ORDER BY (name = ? COLLATE NOCASE) DESC, name
		LIMIT ?`, pattern, pattern, pattern, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the card with the given id.
func (s *Store) Get(ctx context.Context, id string) (record.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, store.ErrNotFound
	}
	return rec, err
}

// Count returns the number of mirrored cards.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

// escapeLike makes LIKE wildcards in query match literally.
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (record.Record, error) {
	var rec record.Record
	var colors, identity, keywords string
	err := row.Scan(
		&rec.ID, &rec.OracleID, &rec.Name, &rec.TypeLine, &rec.OracleText, &rec.ManaCost, &rec.CMC,
		&colors, &identity, &keywords, &rec.Power, &rec.Toughness, &rec.Loyalty,
		&rec.Set, &rec.SetName, &rec.Rarity, &rec.CollectorNumber, &rec.FlavorText, &rec.Artist,
		&rec.Layout, &rec.LegalitiesJSON, &rec.PricesJSON,
	)
	if err != nil {
		return record.Record{}, err
	}
	if err := json.Unmarshal([]byte(colors), &rec.Colors); err != nil {
		return record.Record{}, fmt.Errorf("decode colors: %w", err)
	}
	if err := json.Unmarshal([]byte(identity), &rec.ColorIdentity); err != nil {
		return record.Record{}, fmt.Errorf("decode color identity: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &rec.Keywords); err != nil {
		return record.Record{}, fmt.Errorf("decode keywords: %w", err)
	}
	return rec, nil
}
