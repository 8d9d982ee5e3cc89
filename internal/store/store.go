// ABOUTME: Collection store contracts shared by the ingest pipeline and tools
// ABOUTME: Bulk insert, search, lookup and statistics over flattened card records
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/oracle/internal/record"
)

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// RecordError describes a single record the store refused.
type RecordError struct {
	ID      string
	Name    string
	Message string
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Name, e.ID, e.Message)
}

// BatchResult reports the outcome of one bulk insert.
type BatchResult struct {
	Inserted int
	Failed   []RecordError
}

// Store accepts batches of flattened card records.
type Store interface {
	// InsertMany writes records in order. A non-nil error means the whole
	// batch failed; per-record refusals are reported in BatchResult.Failed.
	InsertMany(ctx context.Context, records []record.Record) (BatchResult, error)
}

// Searcher finds records matching free text.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]record.Record, error)
}

// Getter fetches a record by card id.
type Getter interface {
	Get(ctx context.Context, id string) (record.Record, error)
}

// Counter reports how many records a store holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Stats summarizes a collection store.
type Stats struct {
	Collection  string   `json:"collection"`
	Objects     int      `json:"objects"`
	Collections []string `json:"collections,omitempty"`
}

// Closer releases store resources.
type Closer interface {
	Close() error
}
