package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wenqiu42/ragingest/internal/models"
	"github.com/wenqiu42/ragingest/pkg/logger"
)

// candidate is a file that survived the extension filter.
type candidate struct {
	path string
	name string
	typ  models.FileType
	size int64
}

// scanDir enumerates regular files directly in dir (non-recursive) and splits
// them into upload candidates and skipped entries. Subdirectories are ignored.
func (s *Service) scanDir(dir string) ([]candidate, []models.FileResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access document directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document directory %s: %w", dir, err)
	}

	var candidates []candidate
	var skipped []models.FileResult
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		typ, ok := models.TypeForFile(name)
		if !ok {
			s.logger.Warn("skipping unsupported file type",
				logger.String("filename", name),
			)
			skipped = append(skipped, models.FileResult{
				Path:    path,
				Name:    name,
				Outcome: models.OutcomeSkippedType,
			})
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		candidates = append(candidates, candidate{
			path: path,
			name: name,
			typ:  typ,
			size: fi.Size(),
		})
	}

	return candidates, skipped, nil
}
