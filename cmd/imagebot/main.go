package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nusduck/ImagebotCloudflare/internal/bot"
	"github.com/nusduck/ImagebotCloudflare/internal/config"
	"github.com/nusduck/ImagebotCloudflare/internal/imagegen"
	"github.com/nusduck/ImagebotCloudflare/internal/logging"
)

// Backend registry entries the bot requires at startup.
const (
	backendDeepseek = "deepseek"
	backendFlux     = "flux"
)

func main() {
	cfg := config.NewConfig()

	logger, sync, err := logging.New(cfg.LogDir, cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	defer sync()

	if cfg.TelegramBotToken == "" {
		logger.Fatalw("Missing TELEGRAM_BOT_API_TOKEN in .env")
	}

	backends, err := config.LoadBackends(cfg.APIConfigPath)
	if err != nil {
		logger.Fatalw("Failed to load backend registry", "path", cfg.APIConfigPath, "error", err)
	}
	deepseekCfg, err := backends.Get(backendDeepseek)
	if err != nil {
		logger.Fatalw("Prompt expander backend missing", "error", err)
	}
	fluxCfg, err := backends.Get(backendFlux)
	if err != nil {
		logger.Fatalw("FLUX backend missing", "error", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatalw("Failed to create Telegram bot", "error", err)
	}
	logger.Infow("Bot authorized", "username", api.Self.UserName)

	expander := imagegen.NewExpander(deepseekCfg, logger)
	gateway := imagegen.NewGatewayClient(imagegen.GatewayCredentials{
		AccountID: cfg.AccountID,
		GatewayID: cfg.GatewayID,
		Token:     cfg.CloudflareToken,
	})
	generator := imagegen.NewGenerator(expander, gateway, logger)
	flux := imagegen.NewFluxClient(fluxCfg, logger)

	b := bot.New(api, generator, flux, logger, bot.Options{
		PollTimeoutSeconds: cfg.PollTimeoutSeconds,
		RestartDelay:       time.Duration(cfg.RestartDelaySeconds) * time.Second,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b.Run(ctx)
}
