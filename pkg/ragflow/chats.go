package ragflow

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wenqiu42/ragingest/pkg/logger"
)

// ChatMessage is one turn of an OpenAI-style conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is a request against a chat assistant. Stream is set
// by the client method and ignored on input.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// ChatChoice is one generated answer.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// CompletionTokensDetails breaks down completion token usage.
type CompletionTokensDetails struct {
	AcceptedPredictionTokens int `json:"accepted_prediction_tokens"`
	ReasoningTokens          int `json:"reasoning_tokens"`
	RejectedPredictionTokens int `json:"rejected_prediction_tokens"`
}

// ChatCompletionUsage reports token usage for a completion.
type ChatCompletionUsage struct {
	CompletionTokens        int                     `json:"completion_tokens"`
	PromptTokens            int                     `json:"prompt_tokens,omitempty"`
	TotalTokens             int                     `json:"total_tokens,omitempty"`
	CompletionTokensDetails CompletionTokensDetails `json:"completion_tokens_details"`
}

// ChatCompletionResponse is a non-streaming completion.
type ChatCompletionResponse struct {
	ID      string              `json:"id"`
	Choices []ChatChoice        `json:"choices"`
	Created int64               `json:"created"`
	Model   string              `json:"model"`
	Object  string              `json:"object"`
	Usage   ChatCompletionUsage `json:"usage"`
}

// ChatChunkChoice is one delta of a streamed answer.
type ChatChunkChoice struct {
	Index        int         `json:"index"`
	Delta        ChatMessage `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatCompletionChunk is one streamed completion fragment.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Choices []ChatChunkChoice `json:"choices"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Object  string            `json:"object"`
}

func chatPath(chatID string) string {
	return "/api/v1/chats_openai/" + chatID + "/chat/completions"
}

func (c *Client) sendChat(ctx context.Context, chatID string, req ChatCompletionRequest) (*http.Response, error) {
	if req.Model == "" {
		req.Model = "model"
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(chatPath(chatID)), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request for %s failed: %w", chatID, err)
	}
	return resp, nil
}

// chatError maps error responses, which still use the code/message envelope
// even though successful chat responses are plain OpenAI-shaped JSON.
func chatError(status int, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, env.Message)
	}

	code := 0
	if env.Code != nil {
		code = *env.Code
	}
	message := env.Message
	if message == "" {
		message = string(raw)
	}
	return &APIError{Status: status, Code: code, Message: message}
}

// CreateChatCompletion asks a chat assistant and waits for the complete
// answer.
func (c *Client) CreateChatCompletion(ctx context.Context, chatID string, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	req.Stream = false
	resp, err := c.sendChat(ctx, chatID, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, chatError(resp.StatusCode, raw)
	}

	// Some gateways report business errors with HTTP 200 and the usual
	// envelope.
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Code != nil && *env.Code != 0 {
		return nil, &APIError{Code: *env.Code, Message: env.Message}
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("invalid chat response: %w", err)
	}
	return &completion, nil
}

// StreamChatCompletion asks a chat assistant and collects the streamed
// fragments. Each server-sent line carries a "data: " prefix; blank lines,
// the terminal [DONE] marker and undecodable lines are skipped.
func (c *Client) StreamChatCompletion(ctx context.Context, chatID string, req ChatCompletionRequest) ([]ChatCompletionChunk, error) {
	req.Stream = true
	resp, err := c.sendChat(ctx, chatID, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, chatError(resp.StatusCode, raw)
	}

	var chunks []ChatCompletionChunk
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat stream: %w", err)
	}

	c.logger.Debug("chat stream finished",
		logger.String("chatId", chatID),
		logger.Int("chunks", len(chunks)),
	)
	return chunks, nil
}
