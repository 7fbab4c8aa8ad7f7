package ragflow

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned by NewClient when no API key is configured.
	ErrMissingAPIKey = errors.New("ragflow: API key is required")

	// ErrUnauthorized maps HTTP 401 responses.
	ErrUnauthorized = errors.New("ragflow: authentication failed")

	// ErrNotFound maps HTTP 404 responses and empty lookups.
	ErrNotFound = errors.New("ragflow: resource not found")

	// ErrAmbiguousDataset is returned when a dataset name resolves to more
	// than one dataset.
	ErrAmbiguousDataset = errors.New("ragflow: dataset name is ambiguous")
)

// APIError is a non-zero business code or unexpected HTTP status returned by
// the service.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ragflow: API request failed: status %d, code %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("ragflow: API request failed: code %d: %s", e.Code, e.Message)
}
