package llm

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the OpenRouterClient.
type Option func(*OpenRouterClient)

// WithBaseURL overrides the API base URL. Used by tests to point at a
// local server.
func WithBaseURL(url string) Option {
	return func(c *OpenRouterClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(c *OpenRouterClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout bounds the whole completion round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenRouterClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(c *OpenRouterClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *OpenRouterClient) {
		if t >= 0 {
			c.temperature = t
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenRouterClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}
