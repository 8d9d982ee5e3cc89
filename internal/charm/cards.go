// ABOUTME: Card mirror stored in Charm KV
// ABOUTME: Uses type-prefixed keys (card:<scryfall id>) holding JSON records
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/store"
)

// cardKey returns the KV key for a card.
func cardKey(id string) []byte {
	return []byte(CardPrefix + id)
}

// InsertMany writes a batch inside one KV transaction.
func (c *Client) InsertMany(ctx context.Context, records []record.Record) (store.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return store.BatchResult{}, err
	}

	err := c.Do(func(k *kv.KV) error {
		for _, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", rec.Name, err)
			}
			if err := k.Set(cardKey(rec.ID), data); err != nil {
				return fmt.Errorf("set %s: %w", rec.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.BatchResult{}, err
	}
	return store.BatchResult{Inserted: len(records)}, nil
}

// Get retrieves a mirrored card by id.
func (c *Client) Get(ctx context.Context, id string) (record.Record, error) {
	var rec record.Record
	if err := c.GetJSON(cardKey(id), &rec); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return record.Record{}, store.ErrNotFound
		}
		return record.Record{}, fmt.Errorf("get card: %w", err)
	}
	return rec, nil
}

// Count returns the number of mirrored cards.
func (c *Client) Count(ctx context.Context) (int, error) {
	n := 0
	err := c.DoReadOnly(func(k *kv.KV) error {
		return k.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()

			prefix := []byte(CardPrefix)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				n++
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// Search scans the mirror for cards whose name, type line or rules text
// contains query (case-insensitive).
func (c *Client) Search(ctx context.Context, query string, limit int) ([]record.Record, error) {
	var records []record.Record

	err := c.DoReadOnly(func(k *kv.KV) error {
		return k.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()

			prefix := []byte(CardPrefix)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if limit > 0 && len(records) >= limit {
					return nil
				}
				err := it.Item().Value(func(val []byte) error {
					var rec record.Record
					if err := json.Unmarshal(val, &rec); err != nil {
						// Skip invalid records (corrupted data) - intentionally ignoring error
						return nil //nolint:nilerr
					}
					if matchesQuery(rec, query) {
						records = append(records, rec)
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	return records, nil
}

// matchesQuery checks if a record mentions query.
func matchesQuery(rec record.Record, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{rec.Name, rec.TypeLine, rec.OracleText} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
