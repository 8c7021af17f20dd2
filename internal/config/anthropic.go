package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

// AnthropicConfig names the two capability tiers the orchestrator selects
// between: a cheap model for short early turns and a capable one otherwise.
type AnthropicConfig struct {
	APIKey      string `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	HaikuModel  string `env:"HAIKU_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	SonnetModel string `env:"SONNET_MODEL" envDefault:"claude-sonnet-4-5-20250929"`
	MaxTokens   int    `env:"COMPLETION_MAX_TOKENS" envDefault:"4096"`
}

func NewAnthropicConfig(ctx context.Context) *AnthropicConfig {
	c := &AnthropicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Anthropic config")
	}
	return c
}
