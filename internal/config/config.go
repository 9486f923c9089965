// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment vars.
// - External errors must be wrapped via this package's error helpers.
package config

import "github.com/okian/haggle/internal/domain/model"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// OpenRouterAPIKey authenticates against the reasoning collaborator.
	// Required at startup; the placeholder values shipped in sample env
	// files are rejected.
	OpenRouterAPIKey string `koanf:"openrouter_api_key"`

	// OpenRouterBaseURL overrides the collaborator endpoint.
	OpenRouterBaseURL string `koanf:"openrouter_base_url"`

	// OpponentModel selects the completion model for the opponent.
	OpponentModel string `koanf:"opponent_model"`

	// OpponentTimeoutMS bounds one completion round trip.
	OpponentTimeoutMS int `koanf:"opponent_timeout_ms"`

	// OpponentMaxTokens caps the completion length.
	OpponentMaxTokens int `koanf:"opponent_max_tokens"`

	// OpponentTemperature sets the sampling temperature.
	OpponentTemperature float64 `koanf:"opponent_temperature"`

	// Alternation names the round-opening policy: human_opens or
	// opponent_opens.
	Alternation string `koanf:"alternation"`

	// LeaderboardPageSize is the fixed page size for leaderboard reads.
	LeaderboardPageSize int `koanf:"leaderboard_page_size"`

	// MaxPlayerNameLen caps the player display name.
	MaxPlayerNameLen int `koanf:"max_player_name_len"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8090",
		OpenRouterBaseURL:   "https://openrouter.ai/api/v1",
		OpponentModel:       "anthropic/claude-sonnet-4",
		OpponentTimeoutMS:   30_000,
		OpponentMaxTokens:   300,
		OpponentTemperature: 0.7,
		Alternation:         "human_opens",
		LeaderboardPageSize: 10,
		MaxPlayerNameLen:    model.MaxPlayerName,
	}
}
