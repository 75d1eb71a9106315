// Package tasks implements cron-driven maintenance tasks for WardenBot:
// database upkeep and out-of-band registry auditing.
package tasks

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wardenbot/internal/config"
	"github.com/edgard/wardenbot/internal/database"
)

// PlatformAPI is the subset of the Telegram API used by scheduled tasks.
// *bot.Bot satisfies it.
type PlatformAPI interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Platform PlatformAPI
}
