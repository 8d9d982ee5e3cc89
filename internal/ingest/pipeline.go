// ABOUTME: Batch ingest pipeline from a card array export into a collection store
// ABOUTME: Validates each card, buffers records and flushes fixed-size batches sequentially
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/oracle/internal/card"
	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/store"
)

// DefaultBatchSize is the number of records written per store call.
const DefaultBatchSize = 20

// Policy decides what happens to a batch whose write fails as a whole.
// A batch is attempted up to Attempts times and dropped afterwards.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// PolicyDrop logs a failed batch and moves on.
var PolicyDrop = Policy{Attempts: 1}

// PolicyRetry retries a failed batch before dropping it.
func PolicyRetry(attempts int, backoff time.Duration) Policy {
	if attempts < 1 {
		attempts = 1
	}
	return Policy{Attempts: attempts, Backoff: backoff}
}

// Stats summarizes one ingest run.
type Stats struct {
	RunID         string        `json:"run_id"`
	Read          int           `json:"read"`
	Rejected      int           `json:"rejected"`
	Written       int           `json:"written"`
	Failed        int           `json:"failed"`
	Batches       int           `json:"batches"`
	FailedBatches int           `json:"failed_batches"`
	Duration      time.Duration `json:"duration"`
}

// BatchReport describes one flushed batch.
type BatchReport struct {
	Number   int
	Size     int
	Inserted int
	Failed   []store.RecordError
	Err      error
}

// Pipeline streams cards into a Store.
type Pipeline struct {
	Store     store.Store
	BatchSize int
	Policy    Policy
	Logger    *log.Logger
	OnBatch   func(BatchReport)
}

// Run ingests every element of the JSON array read from r. Invalid cards are
// logged and skipped. A malformed stream aborts the run; records still
// buffered at that point are not written.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (Stats, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.NewString()}

	logger := p.Logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.With("run", stats.RunID)

	size := p.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	policy := p.Policy
	if policy.Attempts < 1 {
		policy = PolicyDrop
	}

	buf := make([]record.Record, 0, size)

	err := Stream(r, func(el Element) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Read++

		c, err := card.Parse(el.Raw)
		if err != nil {
			stats.Rejected++
			logger.Warn("invalid card skipped", "index", el.Index, "name", card.NameOf(el.Raw), "err", err)
			return nil
		}

		rec, err := record.FromCard(c)
		if err != nil {
			stats.Rejected++
			logger.Warn("card could not be flattened", "index", el.Index, "name", c.Name, "err", err)
			return nil
		}

		buf = append(buf, rec)
		if len(buf) >= size {
			p.flush(ctx, logger, policy, buf, &stats)
			buf = buf[:0]
		}
		return nil
	})
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("ingest aborted after %d elements: %w", stats.Read, err)
	}

	if len(buf) > 0 {
		p.flush(ctx, logger, policy, buf, &stats)
	}

	stats.Duration = time.Since(start)
	logger.Info("ingest complete",
		"read", stats.Read,
		"written", stats.Written,
		"rejected", stats.Rejected,
		"failed", stats.Failed)
	return stats, nil
}

// RunFile ingests the JSON array stored at path.
func (p *Pipeline) RunFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return p.Run(ctx, f)
}

func (p *Pipeline) flush(ctx context.Context, logger *log.Logger, policy Policy, batch []record.Record, stats *Stats) {
	stats.Batches++
	report := BatchReport{Number: stats.Batches, Size: len(batch)}

	var (
		result store.BatchResult
		err    error
	)
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		result, err = p.Store.InsertMany(ctx, batch)
		if err == nil {
			break
		}
		if attempt < policy.Attempts {
			logger.Warn("batch write failed, retrying", "batch", report.Number, "attempt", attempt, "err", err)
			if !sleep(ctx, policy.Backoff) {
				break
			}
		}
	}

	if err != nil {
		stats.FailedBatches++
		stats.Failed += len(batch)
		report.Err = err
		logger.Error("batch dropped", "batch", report.Number, "size", len(batch), "err", err)
	} else {
		stats.Written += result.Inserted
		stats.Failed += len(result.Failed)
		report.Inserted = result.Inserted
		report.Failed = result.Failed
		for _, f := range result.Failed {
			logger.Warn("record rejected by store", "id", f.ID, "name", f.Name, "err", f.Message)
		}
		logger.Info(fmt.Sprintf("imported %d cards", result.Inserted), "batch", report.Number)
	}

	if p.OnBatch != nil {
		p.OnBatch(report)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
