package ragflow

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListChunksOptions pages through a document's chunks.
type ListChunksOptions struct {
	Page     int
	PageSize int
	OrderBy  string
	Desc     bool
}

// ChunkList is the paged chunk listing for one document.
type ChunkList struct {
	Chunks []Chunk `json:"chunks"`
	Total  int     `json:"total"`
}

// ListChunks returns the chunks parsed out of a document.
func (c *Client) ListChunks(ctx context.Context, datasetID, documentID string, opts ListChunksOptions) (*ChunkList, error) {
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

	var list ChunkList
	path := "/api/v1/datasets/" + datasetID + "/documents/" + documentID + "/chunks"
	if err := c.do(ctx, http.MethodGet, path, params, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetChunk returns one chunk by ID.
func (c *Client) GetChunk(ctx context.Context, datasetID, chunkID string) (*Chunk, error) {
	var chunk Chunk
	path := "/api/v1/datasets/" + datasetID + "/chunks/" + chunkID
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// ChunkUpdate carries the mutable chunk fields.
type ChunkUpdate struct {
	Content         string `json:"content,omitempty"`
	ChunkTokenCount *int   `json:"chunk_token_count,omitempty"`
	Delimiter       string `json:"delimiter,omitempty"`
}

// UpdateChunk updates a chunk in place.
func (c *Client) UpdateChunk(ctx context.Context, datasetID, chunkID string, update ChunkUpdate) error {
	path := "/api/v1/datasets/" + datasetID + "/chunks/" + chunkID
	return c.do(ctx, http.MethodPut, path, nil, update, nil)
}

// DeleteChunk removes a chunk.
func (c *Client) DeleteChunk(ctx context.Context, datasetID, chunkID string) error {
	path := "/api/v1/datasets/" + datasetID + "/chunks/" + chunkID
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// RetrievalRequest is a retrieval query over datasets or documents.
type RetrievalRequest struct {
	Question               string   `json:"question"`
	DatasetIDs             []string `json:"dataset_ids,omitempty"`
	DocumentIDs            []string `json:"document_ids,omitempty"`
	Page                   int      `json:"page,omitempty"`
	PageSize               int      `json:"page_size,omitempty"`
	SimilarityThreshold    float64  `json:"similarity_threshold,omitempty"`
	VectorSimilarityWeight float64  `json:"vector_similarity_weight,omitempty"`
	TopK                   int      `json:"top_k,omitempty"`
	RerankID               string   `json:"rerank_id,omitempty"`
	Keyword                bool     `json:"keyword,omitempty"`
	Highlight              bool     `json:"highlight,omitempty"`
}

// Retrieve searches chunks across the given datasets or documents.
func (c *Client) Retrieve(ctx context.Context, req RetrievalRequest) (*RetrievalResult, error) {
	var result RetrievalResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/retrieval", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
