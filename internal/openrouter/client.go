// Package openrouter is the wire-level client for OpenRouter's
// chat-completions API: request construction, retry with backoff,
// non-streaming response extraction, and SSE stream decoding.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"

	refererHeader = "https://github.com/sevigo/code-council"
	titleHeader   = "Code Council"
)

// ClientConfig carries the immutable settings for a Client.
type ClientConfig struct {
	APIKey         string
	BaseURL        string // defaults to the public OpenRouter endpoint
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Client issues chat-completion requests. It is safe for concurrent use:
// all fields are read-only after construction.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	logger         *slog.Logger
	maxAttempts    int
	initialBackoff time.Duration
}

// NewClient builds a client with the given settings, filling in defaults
// for anything unset.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 2 * time.Second
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WebPlugin enables OpenRouter's web-search augmentation.
type WebPlugin struct {
	ID     string `json:"id"`
	Engine string `json:"engine,omitempty"`
}

// Reasoning asks the provider for extended thinking at the given effort.
type Reasoning struct {
	Effort string `json:"effort"`
}

// ProviderOptions tunes OpenRouter's provider routing.
type ProviderOptions struct {
	RequireParameters bool `json:"require_parameters"`
}

// ChatRequest is the chat-completions request body.
type ChatRequest struct {
	Model           string           `json:"model"`
	Messages        []Message        `json:"messages"`
	Stream          bool             `json:"stream,omitempty"`
	MaxOutputTokens int              `json:"max_output_tokens,omitempty"`
	Transforms      []string         `json:"transforms,omitempty"`
	Plugins         []WebPlugin      `json:"plugins,omitempty"`
	Provider        *ProviderOptions `json:"provider,omitempty"`
	Reasoning       *Reasoning       `json:"reasoning,omitempty"`
}

// Choice is one completion candidate.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token consumption for the call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// APIError is the error object OpenRouter embeds in a 200 body when the
// upstream provider failed.
type APIError struct {
	Message string `json:"message"`
}

// ChatResponse is the non-streaming chat-completions response body.
type ChatResponse struct {
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

// Complete issues a buffered chat-completion request through the backoff
// executor and parses the single JSON response body. Network-layer and
// HTTP failures come back as errors; content-shape problems are left for
// ExtractContent to diagnose.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false
	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var result ChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unexpected response format from API: %w", err)
	}
	return &result, nil
}

// CompleteStream issues a streaming chat-completion request and decodes
// the SSE body, writing each text fragment to out as it arrives. Only
// obtaining the response is retried; a stream that breaks mid-flight
// returns whatever was decoded plus an error.
func (c *Client) CompleteStream(ctx context.Context, req ChatRequest, out io.Writer) (string, error) {
	req.Stream = true
	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return DecodeStream(resp.Body, out, c.logger)
}

// post sends the request body through the backoff executor. On a non-200
// status the attempt yields an *HTTPError carrying any server-provided
// detail; the executor decides whether that status is worth retrying.
func (c *Client) post(ctx context.Context, req ChatRequest) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	op := func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("HTTP-Referer", refererHeader)
		httpReq.Header.Set("X-Title", titleHeader)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, &transportError{err: err}
		}
		if resp.StatusCode != http.StatusOK {
			detail := readErrorDetail(resp.Body)
			resp.Body.Close()
			return nil, &HTTPError{Status: resp.StatusCode, Detail: detail}
		}
		return resp, nil
	}

	return doWithBackoff(ctx, c.logger, "chat completion", c.maxAttempts, c.initialBackoff, op)
}

// readErrorDetail pulls the server's error message out of a failure body.
// Falls back to the raw body, capped, when it isn't the usual JSON shape.
func readErrorDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}
	var parsed struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	detail := string(body)
	if len(detail) > 500 {
		detail = detail[:500]
	}
	return detail
}

// ExtractContent pulls the review text out of a parsed response,
// converting each recognizable failure shape into a distinct
// "ERROR: ..."-prefixed diagnostic. It never returns an empty string.
func ExtractContent(result *ChatResponse) string {
	if len(result.Choices) == 0 {
		if result.Error != nil && result.Error.Message != "" {
			return "ERROR: API returned error: " + result.Error.Message
		}
		return "ERROR: No choices in API response. The model may have failed to generate a response."
	}

	choice := result.Choices[0]
	if choice.Message.Content != "" {
		return choice.Message.Content
	}

	if result.Error != nil && result.Error.Message != "" {
		return "ERROR: API returned error: " + result.Error.Message
	}
	switch choice.FinishReason {
	case "length":
		return fmt.Sprintf("ERROR: Response truncated (finish_reason=length, %d tokens). Model may have exhausted output budget on reasoning.",
			result.Usage.CompletionTokens)
	case "content_filter":
		return "ERROR: Content blocked by safety filter (finish_reason=content_filter)"
	}
	return "ERROR: Empty content in API response. The model returned no text."
}
