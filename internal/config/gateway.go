package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

// GatewayConfig points at the upstream capability provider. A single URL and
// key cover all integrations behind it (calendar, email, tasks, files, KB).
type GatewayConfig struct {
	URL    string `env:"GATEWAY_URL,required,notEmpty"`
	APIKey string `env:"GATEWAY_API_KEY"`
}

func NewGatewayConfig(ctx context.Context) *GatewayConfig {
	c := &GatewayConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gateway config")
	}
	return c
}
