// ABOUTME: Ingest run report writing
// ABOUTME: Formats run summaries as markdown or JSON and appends to daily report files
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/oracle/internal/ingest"
)

// Report summarizes one ingest run.
type Report struct {
	Timestamp time.Time    `json:"timestamp"`
	Source    string       `json:"source"`
	Store     string       `json:"store"`
	Error     string       `json:"error,omitempty"`
	Stats     ingest.Stats `json:"stats"`
}

// WriteIngestReport appends report to the daily report file in reportDir
func WriteIngestReport(reportDir, format string, report Report) error {
	// Create report directory if needed
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return err
	}

	// Determine report file name (one per day)
	date := report.Timestamp.Format("2006-01-02")
	reportFile := filepath.Join(reportDir, date+".log")

	// Format report
	var content string
	switch format {
	case "json":
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		content = string(data) + "\n"
	case "markdown":
		fallthrough
	default:
		content = formatMarkdown(report)
	}

	// Append to file
	f, err := os.OpenFile(reportFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.WriteString(content)
	return err
}

func formatMarkdown(report Report) string {
	var sb strings.Builder
	s := report.Stats

	timeStr := report.Timestamp.Format("15:04:05")
	sb.WriteString(fmt.Sprintf("## %s - ingest %s into %s\n", timeStr, report.Source, report.Store))
	sb.WriteString(fmt.Sprintf("- **Run**: %s\n", s.RunID))
	sb.WriteString(fmt.Sprintf("- **Cards**: %d read, %d written, %d rejected, %d failed\n", s.Read, s.Written, s.Rejected, s.Failed))
	sb.WriteString(fmt.Sprintf("- **Batches**: %d (%d dropped)\n", s.Batches, s.FailedBatches))
	sb.WriteString(fmt.Sprintf("- **Duration**: %s\n", s.Duration.Round(time.Millisecond)))

	if report.Error != "" {
		sb.WriteString(fmt.Sprintf("- **Error**: %s\n", report.Error))
	}
	sb.WriteString("\n")

	return sb.String()
}
