package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/wenqiu42/ragingest/internal/models"
	"github.com/wenqiu42/ragingest/pkg/logger"
	"github.com/wenqiu42/ragingest/pkg/ragflow"
)

// DatasetAPI is the slice of the document service the ingestion run needs.
type DatasetAPI interface {
	FindDatasetByName(ctx context.Context, name string) (*ragflow.Dataset, error)
	UploadDocument(ctx context.Context, datasetID, filename string, content io.Reader) (*ragflow.Document, error)
	ParseDocuments(ctx context.Context, datasetID string, documentIDs []string) error
}

// ServiceConfig bounds the local side of a run.
type ServiceConfig struct {
	MaxFileSize      int64
	MaxPDFPages      int
	PreflightWorkers int
}

// Service uploads a directory of documents into a dataset and triggers
// parsing for the batch.
type Service struct {
	api    DatasetAPI
	logger logger.Logger
	config *ServiceConfig
}

// NewService creates an ingestion service.
func NewService(api DatasetAPI, log logger.Logger, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:      50 * 1024 * 1024, // 50MB
			MaxPDFPages:      1000,
			PreflightWorkers: 4,
		}
	}

	return &Service{
		api:    api,
		logger: log.Named("ingest"),
		config: cfg,
	}
}

// Run resolves the dataset, uploads every supported file directly in dir and
// triggers one parse call for the documents that made it. Individual file
// failures are recorded in the report and do not stop the batch; Run itself
// fails only before any upload is attempted (dataset resolution, unreadable
// directory) or when the final parse call fails.
func (s *Service) Run(ctx context.Context, datasetName, dir string) (*models.Report, error) {
	report := &models.Report{
		RunID:       uuid.New().String(),
		DatasetName: datasetName,
		StartedAt:   time.Now(),
	}

	s.logger.Info("resolving dataset",
		logger.String("runId", report.RunID),
		logger.String("dataset", datasetName),
	)

	dataset, err := s.api.FindDatasetByName(ctx, datasetName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset %q: %w", datasetName, err)
	}
	report.DatasetID = dataset.ID

	candidates, skipped, err := s.scanDir(dir)
	if err != nil {
		return nil, err
	}
	report.Files = append(report.Files, skipped...)

	if len(candidates) == 0 {
		s.logger.Info("no supported files to upload",
			logger.String("dir", dir),
		)
		report.FinishedAt = time.Now()
		return report, nil
	}

	checked, err := s.preflight(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("preflight failed: %w", err)
	}

	// Uploads run one file at a time: each file is opened, sent and closed
	// before the next starts.
	for _, pf := range checked {
		result := models.FileResult{
			Path: pf.path,
			Name: pf.name,
			Type: pf.typ,
			Size: pf.size,
			Hash: pf.hash,
		}

		if pf.err != nil {
			s.logger.Warn("preflight rejected file",
				logger.String("filename", pf.name),
				logger.Error(pf.err),
			)
			result.Outcome = models.OutcomeFailedPreflight
			result.Error = pf.err.Error()
			report.Files = append(report.Files, result)
			continue
		}

		doc, err := s.uploadFile(ctx, dataset.ID, pf.candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("upload failed, continuing with remaining files",
				logger.String("filename", pf.name),
				logger.Error(err),
			)
			result.Outcome = models.OutcomeFailedUpload
			result.Error = err.Error()
			report.Files = append(report.Files, result)
			continue
		}

		s.logger.Info("uploaded document",
			logger.String("filename", pf.name),
			logger.String("documentId", doc.ID),
		)
		result.Outcome = models.OutcomeUploaded
		result.DocumentID = doc.ID
		report.Files = append(report.Files, result)
		report.DocumentIDs = append(report.DocumentIDs, doc.ID)
	}

	if len(report.DocumentIDs) == 0 {
		s.logger.Warn("no files uploaded, skipping parse")
		report.FinishedAt = time.Now()
		return report, nil
	}

	// One parse call for the whole batch, with exactly the IDs that
	// uploaded successfully in this run.
	if err := s.api.ParseDocuments(ctx, dataset.ID, report.DocumentIDs); err != nil {
		return nil, fmt.Errorf("failed to trigger parsing: %w", err)
	}
	report.ParseTriggered = true
	report.FinishedAt = time.Now()

	s.logger.Info("run finished",
		logger.String("runId", report.RunID),
		logger.Int("uploaded", report.Uploaded()),
		logger.Int("skipped", report.Skipped()),
		logger.Int("failed", report.Failed()),
	)
	return report, nil
}

func (s *Service) uploadFile(ctx context.Context, datasetID string, cand candidate) (*ragflow.Document, error) {
	f, err := os.Open(cand.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return s.api.UploadDocument(ctx, datasetID, cand.name, f)
}
