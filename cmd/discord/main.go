package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/osse101/PullBot_Go/internal/discord"
	"github.com/osse101/PullBot_Go/internal/logger"
)

type botConfig struct {
	Token       string        `env:"DISCORD_TOKEN,required"`
	AppID       string        `env:"DISCORD_APP_ID,required"`
	APIURL      string        `env:"API_URL" envDefault:"http://localhost:8080"`
	APIKey      string        `env:"API_KEY"`
	ConfirmWait time.Duration `env:"DISCORD_CONFIRM_WAIT" envDefault:"60s"`
	HealthPort  string        `env:"DISCORD_WEBHOOK_PORT" envDefault:"8082"`
	ForceUpdate bool          `env:"DISCORD_FORCE_COMMAND_UPDATE"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "pullbot-discord", "", cfg.Environment, false))

	if err := run(cfg); err != nil {
		slog.Error("Bot failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg botConfig) error {
	bot, err := discord.New(discord.Config{
		Token:       cfg.Token,
		AppID:       cfg.AppID,
		APIURL:      cfg.APIURL,
		APIKey:      cfg.APIKey,
		ConfirmWait: cfg.ConfirmWait,
	})
	if err != nil {
		return err
	}
	slog.Info("Configured API URL", "url", cfg.APIURL, "confirm_wait", cfg.ConfirmWait)

	healthServer := discord.NewHTTPServer(cfg.HealthPort, bot)
	healthServer.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Stop(ctx); err != nil {
			slog.Warn("Health server shutdown failed", "error", err)
		}
	}()

	if cfg.ForceUpdate {
		slog.Info("Force command update enabled via environment variable")
	}
	if err := bot.RegisterCommands(cfg.ForceUpdate); err != nil {
		// Commands registered by a previous run keep working
		slog.Error("Failed to register commands", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}

// loadConfig reads the bot settings from the environment
func loadConfig() (botConfig, error) {
	var cfg botConfig
	if err := env.Parse(&cfg); err != nil {
		return botConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.APIKey == "" {
		slog.Warn("API_KEY not set, discord bot requests may fail")
	}
	return cfg, nil
}
