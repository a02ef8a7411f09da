// Package chat implements a thin client for the Anthropic messages API on
// top of OAuth credentials: blocking chat, SSE streaming chat, and a one-shot
// ask helper.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/KentLee86/claude-oauth/internal/config"
	"github.com/KentLee86/claude-oauth/internal/misc"
)

// API constants for the Anthropic messages endpoint. The beta flags and user
// agent match the reference CLI client; OAuth access tokens are only accepted
// with this combination.
const (
	APIBaseURL       = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
	anthropicBeta    = "oauth-2025-04-20,interleaved-thinking-2025-05-14"
	userAgent        = "claude-cli/2.1.2 (external, cli)"
)

// TokenSource supplies a currently valid access token, refreshing behind the
// scenes when needed.
type TokenSource interface {
	GetValidAccessToken(ctx context.Context) (string, error)
}

// Client sends chat requests to the Anthropic messages API.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a chat client drawing access tokens from ts.
func NewClient(ts TokenSource) *Client {
	return &Client{
		tokens:     ts,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    APIBaseURL,
	}
}

// buildRequestBody assembles the messages payload. The Claude Code system
// prefix always leads the system prompt; caller-supplied system text follows
// after a blank line.
func (c *Client) buildRequestBody(messages []Message, opts *Options, stream bool) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	model := opts.Model
	if model == "" {
		model = config.DefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}

	system := misc.ClaudeCodeInstructions
	if opts.System != "" {
		system = system + "\n\n" + opts.System
	}

	rawMessages, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("chat: failed to marshal messages: %w", err)
	}

	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "model", model)
	body, _ = sjson.SetBytes(body, "max_tokens", maxTokens)
	body, _ = sjson.SetBytes(body, "system", system)
	body, _ = sjson.SetRawBytes(body, "messages", rawMessages)
	if stream {
		body, _ = sjson.SetBytes(body, "stream", true)
	}
	return body, nil
}

// newAPIRequest builds the messages POST with the mandatory auth and
// versioning headers.
func (c *Client) newAPIRequest(ctx context.Context, body []byte) (*http.Request, error) {
	accessToken, err := c.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages?beta=true", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chat: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("anthropic-beta", anthropicBeta)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// Chat sends a blocking chat request and returns the completed response.
// Content is the text of the first content block, or empty when the response
// carries none.
func (c *Client) Chat(ctx context.Context, messages []Message, opts *Options) (*Response, error) {
	body, err := c.buildRequestBody(messages, opts, false)
	if err != nil {
		return nil, err
	}

	req, err := c.newAPIRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	reqID := requestID()
	log.WithField("request_id", reqID).WithField("model", gjson.GetBytes(body, "model").String()).Debug("sending chat request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: request failed: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("chat: close response body error: %v", errClose)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chat: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("request_id", reqID).WithField("status", resp.StatusCode).Debug("chat request failed")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	result := gjson.ParseBytes(respBody)
	return &Response{
		ID:         result.Get("id").String(),
		Content:    result.Get("content.0.text").String(),
		Model:      result.Get("model").String(),
		StopReason: result.Get("stop_reason").String(),
		Usage: Usage{
			InputTokens:  int(result.Get("usage.input_tokens").Int()),
			OutputTokens: int(result.Get("usage.output_tokens").Int()),
		},
	}, nil
}

// ChatStream sends a streaming chat request. A non-success status surfaces as
// *APIError before any chunk is produced; otherwise the returned Stream
// yields text chunks as they arrive and exposes the final response once the
// chunk channel closes.
func (c *Client) ChatStream(ctx context.Context, messages []Message, opts *Options) (*Stream, error) {
	body, err := c.buildRequestBody(messages, opts, true)
	if err != nil {
		return nil, err
	}

	req, err := c.newAPIRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	reqID := requestID()
	log.WithField("request_id", reqID).WithField("model", gjson.GetBytes(body, "model").String()).Debug("sending streaming chat request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("chat: close response body error: %v", errClose)
		}
		log.WithField("request_id", reqID).WithField("status", resp.StatusCode).Debug("streaming chat request failed")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	stream := newStream()
	go stream.consume(resp.Body, reqID)
	return stream, nil
}

// Ask sends a single user message and returns the response text.
func (c *Client) Ask(ctx context.Context, prompt string, opts *Options) (string, error) {
	resp, err := c.Chat(ctx, []Message{UserMessage(prompt)}, opts)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// requestID returns a short correlation ID for log lines.
func requestID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
