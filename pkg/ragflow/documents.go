package ragflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/wenqiu42/ragingest/pkg/logger"
)

// UploadDocument uploads one file into a dataset and returns the created
// document record.
func (c *Client) UploadDocument(ctx context.Context, datasetID, filename string, content io.Reader) (*Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	path := "/api/v1/datasets/" + datasetID + "/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Debug("uploading document",
		logger.String("datasetId", datasetID),
		logger.String("filename", filename),
	)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload of %s failed: %w", filename, err)
	}
	defer resp.Body.Close()

	var docs []Document
	if err := c.decode(resp, path, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("upload of %s returned no document record", filename)
	}
	return &docs[0], nil
}

// DocumentUpdate carries the mutable document fields.
type DocumentUpdate struct {
	Name         string                 `json:"name,omitempty"`
	MetaFields   map[string]interface{} `json:"meta_fields,omitempty"`
	ChunkMethod  string                 `json:"chunk_method,omitempty"`
	ParserConfig map[string]interface{} `json:"parser_config,omitempty"`
}

// UpdateDocument updates a document's metadata or parser settings.
func (c *Client) UpdateDocument(ctx context.Context, datasetID, documentID string, update DocumentUpdate) error {
	path := "/api/v1/datasets/" + datasetID + "/documents/" + documentID
	return c.do(ctx, http.MethodPut, path, nil, update, nil)
}

// DownloadDocument streams the original file content of a document to w.
func (c *Client) DownloadDocument(ctx context.Context, datasetID, documentID string, w io.Writer) error {
	path := "/api/v1/datasets/" + datasetID + "/documents/" + documentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("download of document %s failed: %w", documentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Error bodies are the usual JSON envelope; success bodies are raw
		// file content.
		raw, _ := io.ReadAll(resp.Body)
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: env.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: string(raw)}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write document %s: %w", documentID, err)
	}
	return nil
}

// ParseDocuments triggers asynchronous parsing (chunking) for the given
// documents. The service queues the work and returns immediately.
func (c *Client) ParseDocuments(ctx context.Context, datasetID string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return fmt.Errorf("no document IDs to parse")
	}

	body := map[string][]string{"document_ids": documentIDs}
	path := "/api/v1/datasets/" + datasetID + "/chunks"
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return err
	}

	c.logger.Info("parse triggered",
		logger.String("datasetId", datasetID),
		logger.Int("documentCount", len(documentIDs)),
	)
	return nil
}
