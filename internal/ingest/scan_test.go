package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu42/ragingest/internal/models"
	"github.com/wenqiu42/ragingest/pkg/logger"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0644))
	}
}

func newTestService(api DatasetAPI) *Service {
	return NewService(api, logger.NewTestLogger(), nil)
}

func TestScanDir_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "report.docx", "photo.png", "paper.pdf", "notes.txt", "setup.exe")

	svc := newTestService(nil)
	candidates, skipped, err := svc.scanDir(dir)
	require.NoError(t, err)

	var names []string
	for _, c := range candidates {
		names = append(names, c.name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"notes.txt", "paper.pdf", "report.docx"}, names)

	var skippedNames []string
	for _, s := range skipped {
		skippedNames = append(skippedNames, s.Name)
		assert.Equal(t, models.OutcomeSkippedType, s.Outcome)
	}
	sort.Strings(skippedNames)
	assert.Equal(t, []string{"photo.png", "setup.exe"}, skippedNames)
}

func TestScanDir_IsNotRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	writeFiles(t, filepath.Join(dir, "nested"), "inner.txt")

	svc := newTestService(nil)
	candidates, skipped, err := svc.scanDir(dir)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "top.txt", candidates[0].name)
	assert.Empty(t, skipped)
}

func TestScanDir_UppercaseExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "REPORT.PDF", "readme.MD")

	svc := newTestService(nil)
	candidates, _, err := svc.scanDir(dir)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestScanDir_MissingDirectory(t *testing.T) {
	svc := newTestService(nil)
	_, _, err := svc.scanDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestScanDir_PathIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	svc := newTestService(nil)
	_, _, err := svc.scanDir(filepath.Join(dir, "notes.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
