package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/sazed/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SAZED_RUNTIME_PATH" envDefault:".sazed"`

	// Transport flags
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Hard ceiling on completion round-trips per user turn.
	MaxTurns int `env:"MAX_TURNS" envDefault:"5"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "sazed.db")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
