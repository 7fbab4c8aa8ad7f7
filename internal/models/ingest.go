package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType groups the supported upload formats.
type FileType string

const (
	Word     FileType = "word"
	PDF      FileType = "pdf"
	Excel    FileType = "excel"
	Markdown FileType = "markdown"
	Text     FileType = "txt"
)

// supportedExtensions maps extensions to their file type.
var supportedExtensions = map[string]FileType{
	".doc":  Word,
	".docx": Word,
	".pdf":  PDF,
	".xls":  Excel,
	".xlsx": Excel,
	".md":   Markdown,
	".txt":  Text,
}

// TypeForFile classifies a filename by extension. The second return value is
// false for unsupported extensions.
func TypeForFile(name string) (FileType, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	t, ok := supportedExtensions[ext]
	return t, ok
}

// SupportedExtensions returns the accepted extension set (leading dot,
// lower case).
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Outcome is the terminal state of one file in a run.
type Outcome string

const (
	OutcomeUploaded        Outcome = "uploaded"
	OutcomeSkippedType     Outcome = "skipped_unsupported_type"
	OutcomeFailedPreflight Outcome = "failed_preflight"
	OutcomeFailedUpload    Outcome = "failed_upload"
)

// FileResult records what happened to one file.
type FileResult struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Type       FileType `json:"type,omitempty"`
	Size       int64    `json:"size,omitempty"`
	Hash       string   `json:"hash,omitempty"`
	Outcome    Outcome  `json:"outcome"`
	DocumentID string   `json:"documentId,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Report summarizes one upload-and-parse run.
type Report struct {
	RunID          string       `json:"runId"`
	DatasetID      string       `json:"datasetId"`
	DatasetName    string       `json:"datasetName"`
	Files          []FileResult `json:"files"`
	DocumentIDs    []string     `json:"documentIds"`
	ParseTriggered bool         `json:"parseTriggered"`
	StartedAt      time.Time    `json:"startedAt"`
	FinishedAt     time.Time    `json:"finishedAt"`
}

// Uploaded counts files that made it to the dataset.
func (r *Report) Uploaded() int {
	return r.count(OutcomeUploaded)
}

// Failed counts files that were attempted but did not upload.
func (r *Report) Failed() int {
	return r.count(OutcomeFailedPreflight) + r.count(OutcomeFailedUpload)
}

// Skipped counts files filtered out before any upload attempt.
func (r *Report) Skipped() int {
	return r.count(OutcomeSkippedType)
}

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}
