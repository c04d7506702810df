// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the remote LLM completion client used for
// low-confidence classification fallback. It speaks the Azure OpenAI
// chat completions wire format with key-based auth, bounded response
// reads, and exponential-backoff retry on transient failures.
package cloud

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/supportq/internal/logger"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRateLimited indicates an HTTP 429 that survived all retries.
	ErrRateLimited = errors.New("rate limited by completion endpoint")

	// ErrAuthFailed indicates an invalid or expired API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrServerError indicates a 5xx that survived all retries.
	ErrServerError = errors.New("completion endpoint server error")

	// ErrTimeout indicates the request deadline elapsed.
	ErrTimeout = errors.New("completion request timed out")

	// ErrEmptyResponse indicates a 200 with no choices.
	ErrEmptyResponse = errors.New("completion response contained no choices")

	// ErrNotConfigured indicates a client missing endpoint, deployment,
	// or API key.
	ErrNotConfigured = errors.New("completion client not configured")
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the per-request deadline.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry count for transient errors.
	DefaultMaxRetries = 3

	// DefaultAPIVersion targets the chat completions API.
	DefaultAPIVersion = "2024-02-15-preview"

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 1 * 1024 * 1024 // 1MB limit
)

// sharedTransport pools connections across all completion clients.
// SECURITY: TLS verification required for production.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one turn of a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Completion is the decoded useful part of a chat response.
type Completion struct {
	Content    string
	TokensUsed int
}

// =============================================================================
// CLIENT
// =============================================================================

// Client calls a remote chat completion deployment. Safe for concurrent
// use once constructed; the With* builders configure at setup time, not
// runtime.
type Client struct {
	endpoint   string
	apiKey     string
	apiVersion string
	deployment string

	maxTokens   int
	temperature float64
	maxRetries  int
	retryBase   time.Duration

	httpClient *http.Client
}

// NewClient creates a completion client for the given endpoint,
// deployment, and API key.
func NewClient(endpoint, deployment, apiKey string) *Client {
	return &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		apiKey:      apiKey,
		apiVersion:  DefaultAPIVersion,
		deployment:  deployment,
		maxTokens:   150,
		temperature: 0.3,
		maxRetries:  DefaultMaxRetries,
		retryBase:   time.Second,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: sharedTransport,
		},
	}
}

// WithAPIVersion overrides the API version query parameter.
func (c *Client) WithAPIVersion(v string) *Client {
	if v != "" {
		c.apiVersion = v
	}
	return c
}

// WithMaxTokens sets the completion token budget.
func (c *Client) WithMaxTokens(n int) *Client {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

// WithTemperature sets the sampling temperature.
func (c *Client) WithTemperature(t float64) *Client {
	if t >= 0 {
		c.temperature = t
	}
	return c
}

// WithMaxRetries sets the retry count for transient failures.
func (c *Client) WithMaxRetries(n int) *Client {
	if n >= 0 {
		c.maxRetries = n
	}
	return c
}

// WithTimeout sets the per-request deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient = &http.Client{Timeout: d, Transport: sharedTransport}
	}
	return c
}

// WithRetryBase overrides the backoff base interval. Tests shrink this
// to keep retry paths fast.
func (c *Client) WithRetryBase(d time.Duration) *Client {
	if d > 0 {
		c.retryBase = d
	}
	return c
}

// Configured reports whether the client has everything needed to send a
// request.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.apiKey != "" && c.deployment != ""
}

// completionsURL builds the deployment-scoped chat completions URL.
func (c *Client) completionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
}

// Complete sends a chat completion request, retrying transient failures
// with exponential backoff (1s, 2s, 4s, ...). The context bounds the
// whole retry loop, backoff waits included.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Messages:       messages,
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryBase * time.Duration(1<<(attempt-1))
			logger.Warn("retrying completion request",
				"attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		comp, err := c.doRequest(ctx, body)
		if err == nil {
			return comp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("completion failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*Completion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w (status %d)", ErrServerError, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, summarize(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("endpoint error %s: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Completion{
		Content:    parsed.Choices[0].Message.Content,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// isRetryable reports whether a failure is worth another attempt: rate
// limits, server errors, and timeouts. Auth and decode failures are
// permanent.
func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrTimeout)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func summarize(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
