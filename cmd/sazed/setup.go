package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/providers/gateway"
	"github.com/sandevgo/sazed/internal/providers/kb"
	"github.com/sandevgo/sazed/internal/providers/llm"
	"github.com/sandevgo/sazed/internal/service/agent"
	"github.com/sandevgo/sazed/internal/service/memory"
	"github.com/sandevgo/sazed/internal/service/session"
	"github.com/sandevgo/sazed/internal/service/tools"
	"github.com/sandevgo/sazed/internal/storage/sqlite"
	httptransport "github.com/sandevgo/sazed/internal/transport/http"
	"github.com/sandevgo/sazed/internal/transport/telegram"
	"github.com/sandevgo/sazed/pkg/log"
	"github.com/sandevgo/sazed/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	appCfg := config.NewAppConfig(ctx)
	if err := initEnv(ctx, appCfg.RuntimePath); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}
	// .env may override runtime settings, re-read after loading it
	appCfg = config.NewAppConfig(ctx)

	anthropicCfg := config.NewAnthropicConfig(ctx)
	gatewayCfg := config.NewGatewayConfig(ctx)

	// Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessionsRepo := sqlite.NewSessionsRepo(db)
	messagesRepo := sqlite.NewMessagesRepo(db)
	memoryRepo := sqlite.NewMemoryRepo(db)

	// Providers
	provider := llm.NewAnthropic(anthropicCfg)
	gatewayClient := gateway.NewClient(gatewayCfg)
	kbClient := kb.NewClient(gatewayCfg)

	// Tools
	registry, err := tools.NewRegistry(tools.Catalog())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid tool catalogue")
	}

	memoryService := memory.NewService(memoryRepo)
	invoker := tools.NewInvoker(registry, gatewayClient, memoryService)

	// Agent
	ag := agent.New(
		agent.Config{
			MaxTurns:    appCfg.MaxTurns,
			HaikuModel:  anthropicCfg.HaikuModel,
			SonnetModel: anthropicCfg.SonnetModel,
			MaxTokens:   anthropicCfg.MaxTokens,
		},
		provider,
		sessionsRepo,
		messagesRepo,
		memoryService,
		invoker,
		registry.Schemas(),
	)

	processor := session.NewProcessor(
		provider,
		sessionsRepo,
		messagesRepo,
		memoryService,
		kbClient,
		anthropicCfg.HaikuModel,
	)

	// Transports
	if appCfg.EnableHTTP {
		serverCfg := config.NewServerConfig(ctx)
		handler := httptransport.NewHandler(ag, processor, memoryService, sessionsRepo, messagesRepo, registry)
		services = append(services, httptransport.NewServer(serverCfg, handler))
	}

	if appCfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, ag)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0o755); err != nil {
		return nil, err
	}
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
