package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Placeholder API keys shipped in sample env files. Starting up with
// one of these configured is always a mistake, so Validate rejects them
// outright.
var placeholderKeys = map[string]struct{}{
	"placeholder_replace_with_real_key": {},
	"test_key_replace_with_real_key":    {},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HAGGLE_CONFIG is set
//  3. env (prefix HAGGLE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HAGGLE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: HAGGLE_ADDR, HAGGLE_OPENROUTER_API_KEY, ...
	// Map env keys like HAGGLE_LOG_LEVEL -> log_level (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("HAGGLE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "haggle_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural config invariants. The API key is checked
// separately by ValidateAPIKey so tests can load config without
// credentials.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LeaderboardPageSize < 1:
		return fmt.Errorf("%w: leaderboard_page_size must be positive", ErrInvalidConfig)
	case c.OpponentTimeoutMS < 1:
		return fmt.Errorf("%w: opponent_timeout_ms must be positive", ErrInvalidConfig)
	case c.Alternation != "human_opens" && c.Alternation != "opponent_opens":
		return fmt.Errorf("%w: unknown alternation %q", ErrInvalidConfig, c.Alternation)
	}
	return nil
}

// ValidateAPIKey fails fast when the collaborator key is missing or one
// of the known placeholders.
func (c *Config) ValidateAPIKey() error {
	key := strings.TrimSpace(c.OpenRouterAPIKey)
	if key == "" {
		return fmt.Errorf("%w: openrouter_api_key is not configured", ErrInvalidConfig)
	}
	if _, ok := placeholderKeys[key]; ok {
		return fmt.Errorf("%w: openrouter_api_key is a placeholder value", ErrInvalidConfig)
	}
	return nil
}
