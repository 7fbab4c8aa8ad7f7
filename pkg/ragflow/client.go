package ragflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wenqiu42/ragingest/config"
	"github.com/wenqiu42/ragingest/pkg/logger"
)

// Client talks to a RagFlow-compatible document service over its v1 HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  logger.Logger
}

// NewClient creates a client from the API configuration.
func NewClient(cfg *config.APIConfig, log logger.Logger) (*Client, error) {
	if cfg == nil || cfg.Key == "" {
		return nil, ErrMissingAPIKey
	}

	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.Key,
		httpc:   &http.Client{Timeout: timeout},
		logger:  log.Named("ragflow"),
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do sends a JSON request and decodes the response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.endpoint(path)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	return c.decode(resp, path, out)
}

// decode handles the {code, message, data} envelope and status mapping.
func (c *Client) decode(resp *http.Response, path string, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("invalid JSON response from %s: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, env.Message)
		default:
			code := 0
			if env.Code != nil {
				code = *env.Code
			}
			return &APIError{Status: resp.StatusCode, Code: code, Message: env.Message}
		}
	}

	if env.Code != nil && *env.Code != 0 {
		return &APIError{Code: *env.Code, Message: env.Message}
	}

	if out == nil {
		return nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
