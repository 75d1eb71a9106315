// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/edgard/wardenbot/internal/announce"
	"github.com/edgard/wardenbot/internal/bot"
	"github.com/edgard/wardenbot/internal/bot/handlers"
	"github.com/edgard/wardenbot/internal/bot/tasks"
	"github.com/edgard/wardenbot/internal/config"
	"github.com/edgard/wardenbot/internal/database"
	"github.com/edgard/wardenbot/internal/logger"
	"github.com/edgard/wardenbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// telegram transport, announcer, scheduler), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on function exit
	store := database.NewStore(db, log)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewEventsHandler(hDeps)),
	}
	if cfg.Telegram.Webhook.Enabled && cfg.Telegram.Webhook.SecretToken != "" {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Telegram.Webhook.SecretToken))
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetupCommands(ctx, tg, cmdHandlers); err != nil {
		// Command completion is a convenience, keep running without it.
		log.Warn("Failed to publish bot commands", "error", err)
	}

	var webhookServer *telegram.WebhookServer
	if cfg.Telegram.Webhook.Enabled {
		if err := telegram.RegisterWebhook(ctx, tg, &cfg.Telegram.Webhook, log); err != nil {
			log.Error("Failed to register webhook", "error", err)
			return 1
		}
		webhookServer = telegram.NewWebhookServer(&cfg.Telegram.Webhook, tg, log)
	}

	var announcer *announce.Announcer
	if cfg.Announcer.Enabled {
		announcer = announce.NewAnnouncer(tg, store, &cfg.Announcer, cfg.Telegram.BotInfo.ID, log)
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Platform: tg,
	}
	sched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))

	app := bot.NewBot(log, cfg, db, store, tg, announcer, sched, webhookServer)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
