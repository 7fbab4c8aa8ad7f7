package ragflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wenqiu42/ragingest/pkg/logger"
)

// ListDatasetsOptions filters a dataset listing. Zero values fall back to the
// server defaults (page 1, 30 per page, newest first).
type ListDatasetsOptions struct {
	Page     int
	PageSize int
	OrderBy  string
	Desc     bool
	Name     string
	ID       string
}

// ListDatasets returns datasets visible to the API key.
func (c *Client) ListDatasets(ctx context.Context, opts ListDatasetsOptions) ([]Dataset, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 30
	}
	if opts.OrderBy == "" {
		opts.OrderBy = "create_time"
		opts.Desc = true
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(opts.Page))
	params.Set("page_size", strconv.Itoa(opts.PageSize))
	params.Set("orderby", opts.OrderBy)
	params.Set("desc", strconv.FormatBool(opts.Desc))
	if opts.Name != "" {
		params.Set("name", opts.Name)
	}
	if opts.ID != "" {
		params.Set("id", opts.ID)
	}

	var datasets []Dataset
	if err := c.do(ctx, http.MethodGet, "/api/v1/datasets", params, nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// FindDatasetByName resolves a name to exactly one dataset. The server-side
// name filter matches fuzzily, so the exact comparison happens here. Zero
// matches yield ErrNotFound, more than one ErrAmbiguousDataset.
func (c *Client) FindDatasetByName(ctx context.Context, name string) (*Dataset, error) {
	datasets, err := c.ListDatasets(ctx, ListDatasetsOptions{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	want := NormalizeName(name)
	var matches []Dataset
	for _, d := range datasets {
		if NormalizeName(d.Name) == want {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: dataset %q", ErrNotFound, name)
	case 1:
		c.logger.Debug("resolved dataset",
			logger.String("name", name),
			logger.String("datasetId", matches[0].ID),
		)
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d datasets", ErrAmbiguousDataset, name, len(matches))
	}
}

// CreateDatasetRequest describes a dataset to create.
type CreateDatasetRequest struct {
	Name           string                 `json:"name"`
	EmbeddingModel string                 `json:"embedding_model,omitempty"`
	Description    string                 `json:"description,omitempty"`
	ChunkMethod    string                 `json:"chunk_method,omitempty"`
	ParserConfig   map[string]interface{} `json:"parser_config,omitempty"`
	Permission     string                 `json:"permission,omitempty"`
}

// CreateDataset creates a new dataset.
func (c *Client) CreateDataset(ctx context.Context, req CreateDatasetRequest) (*Dataset, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("dataset name is required")
	}
	if req.ChunkMethod == "" {
		req.ChunkMethod = "naive"
	}
	if req.Permission == "" {
		req.Permission = "me"
	}

	var dataset Dataset
	if err := c.do(ctx, http.MethodPost, "/api/v1/datasets", nil, req, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// DatasetUpdate carries the mutable dataset fields.
type DatasetUpdate struct {
	Name           string `json:"name,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	ChunkMethod    string `json:"chunk_method,omitempty"`
}

// UpdateDataset updates a dataset in place.
func (c *Client) UpdateDataset(ctx context.Context, datasetID string, update DatasetUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/v1/datasets/"+datasetID, nil, update, nil)
}

// DeleteDatasets removes the given datasets and everything in them.
func (c *Client) DeleteDatasets(ctx context.Context, datasetIDs []string) error {
	body := map[string][]string{"ids": datasetIDs}
	return c.do(ctx, http.MethodDelete, "/api/v1/datasets", nil, body, nil)
}
