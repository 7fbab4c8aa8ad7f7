package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/wenqiu42/ragingest/internal/models"
	"github.com/wenqiu42/ragingest/pkg/logger"
)

// preflightResult is one candidate after local validation.
type preflightResult struct {
	candidate
	hash string
	err  error
}

// preflight validates candidates locally before any upload: size cap,
// content hash, and for PDFs a readability and page-count check. Checks run
// concurrently with bounded workers; the result order matches the input
// order so uploads stay deterministic.
func (s *Service) preflight(ctx context.Context, candidates []candidate) ([]preflightResult, error) {
	results := make([]preflightResult, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	workers := s.config.PreflightWorkers
	if workers <= 0 {
		workers = 4
	}
	sem := make(chan struct{}, workers)

	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			results[i] = preflightResult{candidate: cand}
			results[i].hash, results[i].err = s.checkFile(cand)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) checkFile(cand candidate) (string, error) {
	if s.config.MaxFileSize > 0 && cand.size > s.config.MaxFileSize {
		return "", fmt.Errorf("file size %d exceeds maximum of %d bytes", cand.size, s.config.MaxFileSize)
	}

	hash, err := hashFile(cand.path)
	if err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	if cand.typ == models.PDF {
		if err := s.checkPDF(cand.path); err != nil {
			return "", err
		}
	}

	s.logger.Debug("preflight passed",
		logger.String("filename", cand.name),
		logger.String("hash", hash),
	)
	return hash, nil
}

// checkPDF rejects files the parser would choke on: unreadable PDFs and
// documents over the configured page cap. The pdf library panics on some
// malformed files, so the panic is converted to an error here.
func (s *Service) checkPDF(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("unreadable PDF: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages == 0 {
		return fmt.Errorf("PDF has no pages")
	}
	if s.config.MaxPDFPages > 0 && pages > s.config.MaxPDFPages {
		return fmt.Errorf("PDF has %d pages, maximum is %d", pages, s.config.MaxPDFPages)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
