// Package bot implements the core bot functionality, lifecycle management,
// and component orchestration for the WardenBot Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/wardenbot/internal/announce"
	"github.com/edgard/wardenbot/internal/config"
	"github.com/edgard/wardenbot/internal/database"
	"github.com/edgard/wardenbot/internal/telegram"
)

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger        *slog.Logger
	cfg           *config.Config
	db            *sqlx.DB
	store         database.Store
	tgBot         *tgbot.Bot
	announcer     *announce.Announcer
	scheduler     *Scheduler
	webhookServer *telegram.WebhookServer
}

// NewBot creates a new instance of the bot with all required dependencies.
// webhookServer may be nil when update delivery uses long polling, and
// announcer may be nil when the announcement loop is disabled.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	tgBot *tgbot.Bot,
	announcer *announce.Announcer,
	scheduler *Scheduler,
	webhookServer *telegram.WebhookServer,
) *Bot {
	return &Bot{
		logger:        logger.With("component", "bot_orchestrator"),
		cfg:           cfg,
		db:            db,
		store:         store,
		tgBot:         tgBot,
		announcer:     announcer,
		scheduler:     scheduler,
		webhookServer: webhookServer,
	}
}

// Run starts the bot and all its components, handling graceful shutdown on context cancellation.
// It returns an error if any component fails during startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	if b.cfg.Telegram.Webhook.Enabled {
		g.Go(func() error {
			b.logger.Info("Starting Telegram webhook listener...")
			b.tgBot.StartWebhook(gCtx)
			b.logger.Info("Telegram webhook listener stopped.")

			if gCtx.Err() == nil {
				return fmt.Errorf("telegram webhook listener stopped unexpectedly")
			}
			return nil
		})
		g.Go(func() error {
			return b.webhookServer.Run(gCtx)
		})
	} else {
		g.Go(func() error {
			b.logger.Info("Starting Telegram long-poll listener...")
			b.tgBot.Start(gCtx)
			b.logger.Info("Telegram long-poll listener stopped.")

			if gCtx.Err() == nil {
				b.logger.Warn("Telegram listener stopped unexpectedly without context cancellation.")
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if b.announcer != nil {
		g.Go(func() error {
			err := b.announcer.Run(gCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				b.logger.Error("Announcement loop stopped due to error", "error", err)
				return fmt.Errorf("announcement loop stopped: %w", err)
			}
			b.logger.Info("Announcement loop stopped.")
			return nil
		})
	}

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
