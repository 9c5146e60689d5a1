package config

import (
	"flag"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode        bool   `env:"DEBUG_MODE"`             // verbose logging
	TelegramBotToken string `env:"TELEGRAM_BOT_API_TOKEN"` // required at startup
	APIConfigPath    string `env:"API_CONFIG_PATH"`        // JSON registry of generation backends
	LogDir           string `env:"LOG_DIR"`                // directory for the rotated log file

	// Cloudflare AI Gateway identity. Required only at first use of the
	// structured-gateway client, not at startup.
	AccountID       string `env:"account_id"`
	GatewayID       string `env:"gateway_id"`
	CloudflareToken string `env:"cloudflare_token"`

	PollTimeoutSeconds  int `env:"POLL_TIMEOUT_SECONDS"`  // Telegram long-poll timeout
	RestartDelaySeconds int `env:"RESTART_DELAY_SECONDS"` // back-off before restarting the receive loop
}

// Defaults returns the configuration with preset values. They are
// overridden by .env, environment variables and CLI flags, in that order.
func Defaults() *Config {
	return &Config{
		DebugMode:           false,
		APIConfigPath:       "api_config.json",
		LogDir:              "logs",
		PollTimeoutSeconds:  60,
		RestartDelaySeconds: 10,
	}
}

// NewConfig loads the application configuration.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := Defaults()
	_ = env.Parse(cfg)

	flag.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "enable debug logging")
	flag.StringVar(&cfg.APIConfigPath, "api-config", cfg.APIConfigPath, "path to the backend registry JSON file")
	flag.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for the rotated log file")
	flag.IntVar(&cfg.PollTimeoutSeconds, "poll-timeout-seconds", cfg.PollTimeoutSeconds, "Telegram long-poll timeout in seconds")
	flag.IntVar(&cfg.RestartDelaySeconds, "restart-delay-seconds", cfg.RestartDelaySeconds, "delay before restarting the receive loop after a transport failure")
	flag.Parse()

	return cfg
}
