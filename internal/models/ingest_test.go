package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantType FileType
		wantOK   bool
	}{
		{"report.docx", Word, true},
		{"legacy.doc", Word, true},
		{"paper.pdf", PDF, true},
		{"sheet.xls", Excel, true},
		{"sheet.xlsx", Excel, true},
		{"readme.md", Markdown, true},
		{"notes.txt", Text, true},
		{"REPORT.DOCX", Word, true},
		{"photo.png", "", false},
		{"setup.exe", "", false},
		{"noextension", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			typ, ok := TypeForFile(tt.filename)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantType, typ)
			}
		})
	}
}

func TestReportCounts(t *testing.T) {
	report := &Report{
		Files: []FileResult{
			{Name: "a.txt", Outcome: OutcomeUploaded},
			{Name: "b.pdf", Outcome: OutcomeUploaded},
			{Name: "c.png", Outcome: OutcomeSkippedType},
			{Name: "d.pdf", Outcome: OutcomeFailedPreflight},
			{Name: "e.txt", Outcome: OutcomeFailedUpload},
		},
	}

	assert.Equal(t, 2, report.Uploaded())
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, 2, report.Failed())
}
