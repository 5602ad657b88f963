// Package llm implements a chat-completions client for OpenAI-compatible
// APIs, with retry handling, multimodal message content, and optional web
// search augmentation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Prakash793/ReTrans/internal/chunk"
	"github.com/Prakash793/ReTrans/internal/logger"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 180 * time.Second

// DefaultMaxRetries is the default maximum number of attempts per call.
const DefaultMaxRetries = 3

// baseRetryDelay is the base delay between retries (exponential backoff).
const baseRetryDelay = 2 * time.Second

// maxRetryDelay caps the backoff delay.
const maxRetryDelay = 30 * time.Second

// ClientConfig holds configuration options for creating a Client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	client     *http.Client
}

// NewClient creates a Client with the given configuration, applying
// defaults for zero values.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		maxRetries: maxRetries,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ContentPart is one element of a multimodal message. Type is "text",
// "image_url", or "file"; exactly one payload field is set.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
	File     *FileData `json:"file,omitempty"`
}

// ImageURL carries an image reference, typically a base64 data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// FileData carries an inline document as base64 data.
type FileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

// TextPart creates a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart creates an image content part from base64 data and a MIME type.
func ImagePart(mimeType, base64Data string) ContentPart {
	return ContentPart{
		Type:     "image_url",
		ImageURL: &ImageURL{URL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)},
	}
}

// FilePart creates a file content part from base64 data and a MIME type.
func FilePart(filename, mimeType, base64Data string) ContentPart {
	return ContentPart{
		Type: "file",
		File: &FileData{
			Filename: filename,
			FileData: fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data),
		},
	}
}

// Message is a chat message. Content is either a string or []ContentPart.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// SystemMessage creates a system message with plain text content.
func SystemMessage(text string) Message {
	return Message{Role: "system", Content: text}
}

// UserMessage creates a user message with plain text content.
func UserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}

// UserParts creates a user message with multimodal content.
func UserParts(parts ...ContentPart) Message {
	return Message{Role: "user", Content: parts}
}

// WebSearchOptions enables server-side web search for the request. An empty
// object selects the provider's defaults.
type WebSearchOptions struct{}

// ChatRequest is the request body for the chat completions endpoint.
type ChatRequest struct {
	Model            string            `json:"model"`
	Messages         []Message         `json:"messages"`
	Temperature      float64           `json:"temperature"`
	WebSearchOptions *WebSearchOptions `json:"web_search_options,omitempty"`
}

// responseMessage is the assistant message in a completion choice. Content
// is always a string on the response side.
type responseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int             `json:"index"`
	Message      responseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// apiErrorBody is the error object embedded in API responses.
type apiErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ChatResponse is the response from the chat completions endpoint.
type ChatResponse struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []Choice      `json:"choices"`
	Usage   Usage         `json:"usage"`
	Error   *apiErrorBody `json:"error,omitempty"`
}

// Complete sends the request and returns the assistant message content.
// Transient failures (rate limits, server errors, network errors) are
// retried with exponential backoff up to the configured retry budget.
// Credential failures and invalid requests fail immediately.
func (c *Client) Complete(ctx context.Context, req *ChatRequest) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", chunk.NewError(chunk.ErrCancelled, "request cancelled", err)
		}

		content, retryable, err := c.doRequest(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !retryable {
			return "", err
		}

		logger.Warn("model call failed",
			logger.Int("attempt", attempt),
			logger.Int("maxRetries", c.maxRetries),
			logger.Err(err))

		if attempt < c.maxRetries {
			delay := backoffDelay(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", chunk.NewError(chunk.ErrCancelled, "request cancelled", ctx.Err())
			}
		}
	}

	return "", lastErr
}

// doRequest performs a single HTTP round trip. The second return value
// reports whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, req *ChatRequest) (string, bool, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", false, chunk.NewError(chunk.ErrAPIFailed, "failed to marshal request body", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, normalizeAPIURL(c.baseURL), bytes.NewReader(jsonBody))
	if err != nil {
		return "", false, chunk.NewError(chunk.ErrAPIFailed, "failed to create HTTP request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, chunk.NewError(chunk.ErrCancelled, "request cancelled", ctx.Err())
		}
		// Network-level failures are transient.
		return "", true, chunk.NewError(chunk.ErrAPIFailed, "API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, chunk.NewError(chunk.ErrAPIFailed, "failed to read API response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", isRetryableStatus(resp.StatusCode), httpStatusError(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", false, chunk.NewError(chunk.ErrAPIFailed, "failed to parse API response", err)
	}
	if chatResp.Error != nil {
		return "", false, chunk.NewErrorWithDetails(chunk.ErrAPIFailed, "API returned error", chatResp.Error.Message, nil)
	}
	if len(chatResp.Choices) == 0 {
		return "", false, chunk.NewError(chunk.ErrAPIFailed, "API returned no choices", nil)
	}

	return chatResp.Choices[0].Message.Content, false, nil
}

// isRetryableStatus reports whether a non-200 status is worth retrying.
// Rate limits and server errors are transient; auth and request errors
// are not.
func isRetryableStatus(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= 500
}

// httpStatusError maps an HTTP error status to the error taxonomy.
func httpStatusError(statusCode int, body []byte) error {
	var errResp struct {
		Error apiErrorBody `json:"error"`
	}
	details := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		details = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return chunk.NewErrorWithDetails(chunk.ErrAuthFailed, "API authentication failed",
			"invalid API key or unauthorized access", nil)
	case http.StatusTooManyRequests:
		return chunk.NewErrorWithDetails(chunk.ErrAPIFailed, "API rate limit exceeded", details, nil)
	case http.StatusBadRequest:
		return chunk.NewErrorWithDetails(chunk.ErrAPIFailed, "invalid API request", details, nil)
	default:
		return chunk.NewErrorWithDetails(chunk.ErrAPIFailed, "API request failed",
			fmt.Sprintf("status %d: %s", statusCode, details), nil)
	}
}

// normalizeAPIURL ensures the endpoint URL ends with /chat/completions.
func normalizeAPIURL(url string) string {
	if url == "" {
		return "https://api.openai.com/v1/chat/completions"
	}

	url = strings.TrimSuffix(url, "/")
	if strings.HasSuffix(url, "/chat/completions") {
		return url
	}
	return url + "/chat/completions"
}

// backoffDelay doubles the base delay per attempt, capped at maxRetryDelay.
func backoffDelay(attempt int) time.Duration {
	delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
