package ragflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu42/ragingest/config"
	"github.com/wenqiu42/ragingest/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.APIConfig{
		Key:     "test-key",
		BaseURL: server.URL,
		Timeout: config.Duration(5 * time.Second),
	}, logger.NewTestLogger())
	require.NoError(t, err)
	return client, server
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.APIConfig{BaseURL: "http://localhost"}, logger.NewTestLogger())
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(nil, logger.NewTestLogger())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClient_SendsBearerAuth(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "data": []interface{}{}})
	}))

	_, err := client.ListDatasets(context.Background(), ListDatasetsOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "401 maps to ErrUnauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"code":109,"message":"invalid token"}`,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "404 maps to ErrNotFound",
			status:  http.StatusNotFound,
			body:    `{"code":102,"message":"no such dataset"}`,
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := client.ListDatasets(context.Background(), ListDatasetsOptions{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_NonZeroEnvelopeCode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":102,"message":"duplicate name"}`))
	}))

	_, err := client.CreateDataset(context.Background(), CreateDatasetRequest{Name: "kb"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 102, apiErr.Code)
	assert.Equal(t, "duplicate name", apiErr.Message)
}

func TestClient_InvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.ListDatasets(context.Background(), ListDatasetsOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON response")
}

func TestTime_UnmarshalRFC1123(t *testing.T) {
	var dataset Dataset
	payload := `{"id":"d1","name":"kb","create_date":"Wed, 28 May 2025 14:30:33 GMT","update_date":"Wed, 28 May 2025 14:30:33 GMT"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &dataset))

	assert.Equal(t, 2025, dataset.CreateDate.Year())
	assert.Equal(t, time.May, dataset.CreateDate.Month())
	assert.Equal(t, 28, dataset.CreateDate.Day())
}

func TestFindDatasetByName(t *testing.T) {
	tests := []struct {
		name     string
		datasets []Dataset
		lookup   string
		wantID   string
		wantErr  error
	}{
		{
			name:     "exactly one match",
			datasets: []Dataset{{ID: "d1", Name: "kb"}},
			lookup:   "kb",
			wantID:   "d1",
		},
		{
			name:     "zero matches",
			datasets: []Dataset{},
			lookup:   "kb",
			wantErr:  ErrNotFound,
		},
		{
			name: "fuzzy server hits are not exact matches",
			datasets: []Dataset{
				{ID: "d1", Name: "kb-staging"},
				{ID: "d2", Name: "kb-prod"},
			},
			lookup:  "kb",
			wantErr: ErrNotFound,
		},
		{
			name: "multiple exact matches are ambiguous",
			datasets: []Dataset{
				{ID: "d1", Name: "kb"},
				{ID: "d2", Name: "KB"},
			},
			lookup:  "kb",
			wantErr: ErrAmbiguousDataset,
		},
		{
			name: "exact match among fuzzy hits",
			datasets: []Dataset{
				{ID: "d1", Name: "kb-staging"},
				{ID: "d2", Name: "kb"},
			},
			lookup: "kb",
			wantID: "d2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.lookup, r.URL.Query().Get("name"))
				json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "data": tt.datasets})
			}))

			dataset, err := client.FindDatasetByName(context.Background(), tt.lookup)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, dataset.ID)
		})
	}
}

func TestUpdateDataset_SendsOnlySetFields(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"code":0}`))
	}))

	err := client.UpdateDataset(context.Background(), "d1", DatasetUpdate{
		Name:        "renamed",
		ChunkMethod: "manual",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/datasets/d1", gotPath)
	assert.Equal(t, "renamed", gotBody["name"])
	assert.Equal(t, "manual", gotBody["chunk_method"])
	assert.NotContains(t, gotBody, "embedding_model")
}

func TestDeleteDatasets_SendsIDs(t *testing.T) {
	var got map[string][]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"code":0}`))
	}))

	require.NoError(t, client.DeleteDatasets(context.Background(), []string{"d1", "d2"}))
	assert.Equal(t, []string{"d1", "d2"}, got["ids"])
}
