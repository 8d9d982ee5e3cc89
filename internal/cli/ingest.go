// ABOUTME: Ingest subcommand for loading Scryfall bulk exports
// ABOUTME: Streams a card array into the selected store and writes a run report
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/config"
	"github.com/harper/oracle/internal/ingest"
	"github.com/harper/oracle/internal/logging"
)

var (
	ingestStore        string
	ingestBatchSize    int
	ingestRetry        int
	ingestRetryBackoff time.Duration
	ingestReportDir    string
	ingestReportFormat string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a Scryfall bulk export into a card store",
	Long: `Stream a Scryfall bulk data export (a JSON array of cards) into a store.

Each card is validated before it is written. Invalid cards are logged and
skipped. Valid cards are written in batches; a batch the store rejects is
dropped unless --retry is set.

Examples:
  oracle ingest default-cards.json
  oracle ingest oracle-cards.json --store sqlite
  oracle ingest cards.json --retry 3 --report-dir reports`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := log.FromContext(ctx)
		path := args[0]

		driver := cfg.Store.Driver
		if ingestStore != "" {
			driver = ingestStore
		}
		batchSize := cfg.Ingest.BatchSize
		if ingestBatchSize > 0 {
			batchSize = ingestBatchSize
		}
		attempts := cfg.Ingest.RetryAttempts
		if cmd.Flags().Changed("retry") {
			attempts = ingestRetry
		}
		backoff := cfg.Ingest.RetryBackoff.Duration
		if cmd.Flags().Changed("retry-backoff") {
			backoff = ingestRetryBackoff
		}

		target, err := openStore(ctx, cfg, driver)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", driver, err)
		}
		defer func() {
			if closeErr := target.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", closeErr)
			}
		}()

		policy := ingest.PolicyDrop
		if attempts > 0 {
			// Retries come on top of the first attempt.
			policy = ingest.PolicyRetry(attempts+1, backoff)
		}

		pipeline := &ingest.Pipeline{
			Store:     target,
			BatchSize: batchSize,
			Policy:    policy,
			Logger:    logger,
		}

		start := time.Now()
		stats, runErr := pipeline.RunFile(ctx, path)

		if err := writeReport(cmd, path, driver, start, stats, runErr); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write ingest report: %v\n", err)
		}

		if runErr != nil {
			color.Red("Ingest aborted after %d cards: %v", stats.Read, runErr)
			return runErr
		}

		printStats(stats)
		return nil
	},
}

func printStats(stats ingest.Stats) {
	summary := fmt.Sprintf("Ingested %d of %d cards in %d batches (%s)", stats.Written, stats.Read, stats.Batches, stats.Duration.Round(time.Millisecond))
	if stats.Rejected == 0 && stats.Failed == 0 {
		color.Green("%s", summary)
		return
	}
	color.Yellow("%s", summary)
	if stats.Rejected > 0 {
		color.Yellow("  ! %d cards failed validation", stats.Rejected)
	}
	if stats.Failed > 0 {
		color.Red("  ✗ %d cards were not stored (%d batches dropped)", stats.Failed, stats.FailedBatches)
	}
}

func writeReport(cmd *cobra.Command, path, driver string, start time.Time, stats ingest.Stats, runErr error) error {
	dir, format := ingestReportDir, ingestReportFormat
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		projectDir, projectFormat, err := config.ReportDir(cwd)
		if err != nil {
			return err
		}
		dir = projectDir
		if !cmd.Flags().Changed("report-format") {
			format = projectFormat
		}
	}
	if dir == "" {
		return nil
	}

	report := logging.Report{
		Timestamp: start,
		Source:    filepath.Base(path),
		Store:     driver,
		Stats:     stats,
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}
	return logging.WriteIngestReport(dir, format, report)
}

func init() {
	ingestCmd.Flags().StringVar(&ingestStore, "store", "", "Target store: weaviate, sqlite or charm (default from config)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "Cards per batch (default from config, 20)")
	ingestCmd.Flags().IntVar(&ingestRetry, "retry", 0, "Retry a failed batch this many times before dropping it")
	ingestCmd.Flags().DurationVar(&ingestRetryBackoff, "retry-backoff", 2*time.Second, "Wait between batch retries")
	ingestCmd.Flags().StringVar(&ingestReportDir, "report-dir", "", "Append a run report to <dir>/<date>.log")
	ingestCmd.Flags().StringVar(&ingestReportFormat, "report-format", "markdown", "Report format: markdown or json")
	rootCmd.AddCommand(ingestCmd)
}
