// Package llm is the reasoning collaborator adapter: it turns rendered
// prompts into free-text completions over the OpenRouter chat API.
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

	"github.com/okian/haggle/internal/domain/prompt"
	"github.com/okian/haggle/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL     = "https://openrouter.ai/api/v1"
	defaultModel       = "anthropic/claude-sonnet-4"
	defaultTimeout     = 30 * time.Second
	defaultMaxTokens   = 300
	defaultTemperature = 0.7

	maxErrorBody = 4096
)

// Client produces a free-text completion for a rendered prompt.
type Client interface {
	// Complete sends the prompt and returns the raw completion text,
	// honoring ctx for cancellation. Failures wrap ErrDependency and are
	// never retried here; the turn engine makes client retries safe.
	Complete(ctx context.Context, msgs []prompt.Message) (string, error)
}

// OpenRouterClient implements Client against the OpenRouter
// chat-completions endpoint.
type OpenRouterClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewOpenRouterClient constructs a client with configuration options.
func NewOpenRouterClient(apiKey string, opts ...Option) *OpenRouterClient {
	c := &OpenRouterClient{
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		model:       defaultModel,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Client.
func (c *OpenRouterClient) Complete(ctx context.Context, msgs []prompt.Message) (string, error) {
	start := time.Now()
	metrics.RecordCollaboratorRequest()
	defer func() {
		metrics.RecordCollaboratorLatency(float64(time.Since(start).Milliseconds()))
	}()

	payload := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, len(msgs)),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	for i, m := range msgs {
		payload.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordCollaboratorError("transport")
		return "", fmt.Errorf("completion request: %v: %w", err, ErrDependency)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		switch res.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			metrics.RecordCollaboratorError("auth")
			return "", fmt.Errorf("completion status %d: %s: %w", res.StatusCode, strings.TrimSpace(string(detail)), ErrAuthorization)
		case http.StatusTooManyRequests:
			metrics.RecordCollaboratorError("rate_limit")
			return "", fmt.Errorf("completion status %d: %s: %w", res.StatusCode, strings.TrimSpace(string(detail)), ErrRateLimited)
		default:
			metrics.RecordCollaboratorError("status")
			return "", fmt.Errorf("completion status %d: %s: %w", res.StatusCode, strings.TrimSpace(string(detail)), ErrDependency)
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		metrics.RecordCollaboratorError("decode")
		return "", fmt.Errorf("decode completion response: %v: %w", err, ErrDependency)
	}
	if len(parsed.Choices) == 0 {
		metrics.RecordCollaboratorError("empty")
		return "", fmt.Errorf("completion response has no choices: %w", ErrDependency)
	}
	return parsed.Choices[0].Message.Content, nil
}
