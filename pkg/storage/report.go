package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"repscout/pkg/models"
)

// SaveReport writes a Markdown summary of a run: totals, a per-company
// table and any errors.
func (m *Manager) SaveReport(results []*models.ScraperResult, reps []*models.SalesRep) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	b.WriteString("# Scrape Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format(time.RFC3339))

	totalReps, totalEmails := 0, 0
	var totalDuration int64
	for _, res := range results {
		totalReps += res.RepsFound
		totalEmails += res.EmailsFound
		totalDuration += res.DurationMs
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Companies scraped: %d\n", len(results))
	fmt.Fprintf(&b, "- Representatives found: %d (merged: %d)\n", totalReps, len(reps))
	fmt.Fprintf(&b, "- Emails found: %d\n", totalEmails)
	fmt.Fprintf(&b, "- Total scrape time: %s\n\n", (time.Duration(totalDuration) * time.Millisecond).String())

	b.WriteString("## Companies\n\n")
	b.WriteString("| Company | Status | Reps | Emails | Duration | Errors |\n")
	b.WriteString("|---------|--------|------|--------|----------|--------|\n")
	for _, res := range results {
		status := "ok"
		if !res.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %d |\n",
			res.Company, status, res.RepsFound, res.EmailsFound,
			(time.Duration(res.DurationMs) * time.Millisecond).String(), len(res.Errors))
	}
	b.WriteString("\n")

	var errLines []string
	for _, res := range results {
		for _, e := range res.Errors {
			errLines = append(errLines, fmt.Sprintf("- %s: %s", res.Company, e))
		}
	}
	if len(errLines) > 0 {
		b.WriteString("## Errors\n\n")
		b.WriteString(strings.Join(errLines, "\n"))
		b.WriteString("\n")
	}

	path := filepath.Join(m.outputDir, fmt.Sprintf("report_%s.md", timestamp()))
	if err := m.writeAtomic(path, []byte(b.String())); err != nil {
		return "", err
	}
	return path, nil
}
