package ragflow

import (
	"encoding/json"
	"strings"
	"time"
)

// Time decodes the RFC 1123 dates the service uses on dataset records.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC1123, s)
	if err != nil {
		// Some deployments send RFC 1123 with a numeric zone.
		parsed, err = time.Parse(time.RFC1123Z, s)
	}
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC1123))
}

// Dataset is a named collection of documents.
type Dataset struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Avatar         string                 `json:"avatar,omitempty"`
	Description    string                 `json:"description,omitempty"`
	EmbeddingModel string                 `json:"embedding_model"`
	ChunkMethod    string                 `json:"chunk_method"`
	ParserConfig   map[string]interface{} `json:"parser_config"`
	Permission     string                 `json:"permission"`
	CreateDate     Time                   `json:"create_date"`
	UpdateDate     Time                   `json:"update_date"`
	ChunkCount     int                    `json:"chunk_count"`
	DocumentCount  int                    `json:"document_count"`
	TokenNum       int                    `json:"token_num"`
	Status         string                 `json:"status"`
}

// Document is an uploaded file within a dataset.
type Document struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	DatasetID    string                 `json:"dataset_id"`
	Location     string                 `json:"location"`
	Size         int64                  `json:"size"`
	Type         string                 `json:"type"`
	ChunkMethod  string                 `json:"chunk_method"`
	ParserConfig map[string]interface{} `json:"parser_config"`
	Run          string                 `json:"run"`
	CreatedBy    string                 `json:"created_by"`
}

// Chunk is a retrievable segment produced by parsing a document.
type Chunk struct {
	ID              string  `json:"id"`
	DatasetID       string  `json:"dataset_id"`
	DocumentID      string  `json:"document_id"`
	Content         string  `json:"content"`
	ChunkTokenCount int     `json:"chunk_token_count,omitempty"`
	Similarity      float64 `json:"similarity,omitempty"`
	CreateTime      int64   `json:"create_time,omitempty"`
	UpdateTime      int64   `json:"update_time,omitempty"`
}

// DocAgg aggregates retrieval hits per document.
type DocAgg struct {
	DocID   string `json:"doc_id"`
	DocName string `json:"doc_name"`
	Count   int    `json:"count"`
}

// RetrievalResult is the outcome of a retrieval query.
type RetrievalResult struct {
	Chunks  []Chunk  `json:"chunks"`
	DocAggs []DocAgg `json:"doc_aggs"`
	Total   int      `json:"total"`
}

// envelope is the {code, message, data} wrapper the service puts around
// business responses.
type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NormalizeName lower-cases and trims a dataset name for comparison. The
// server-side name filter is a fuzzy match, so exact resolution happens
// client-side.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
