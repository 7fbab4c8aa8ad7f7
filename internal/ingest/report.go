package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wenqiu42/ragingest/internal/models"
)

// Summary is the compact run summary printed by the CLI.
type Summary struct {
	RunID          string   `json:"runId"`
	Dataset        string   `json:"dataset"`
	DatasetID      string   `json:"datasetId"`
	Uploaded       int      `json:"uploaded"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
	ParseTriggered bool     `json:"parseTriggered"`
	DocumentIDs    []string `json:"documentIds,omitempty"`
}

// Summarize collapses a report into its summary.
func Summarize(report *models.Report) Summary {
	return Summary{
		RunID:          report.RunID,
		Dataset:        report.DatasetName,
		DatasetID:      report.DatasetID,
		Uploaded:       report.Uploaded(),
		Skipped:        report.Skipped(),
		Failed:         report.Failed(),
		ParseTriggered: report.ParseTriggered,
		DocumentIDs:    report.DocumentIDs,
	}
}

// WriteReport renders the full report as indented JSON.
func WriteReport(w io.Writer, report *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteSummary renders the compact summary as indented JSON.
func WriteSummary(w io.Writer, report *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Summarize(report)); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	return nil
}
