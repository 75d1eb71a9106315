package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wardenbot/internal/announce"
)

// newRegistryAuditTask creates a task that verifies the bot is still a member
// of every registered chat and evicts entries the platform reports gone. The
// announcement loop already evicts on delivery failure; this audit is the
// backstop for chats that stop being announced (announcer disabled, long
// pass intervals).
func newRegistryAuditTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "registry_audit")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled registry audit task...")
		startTime := time.Now()

		chats, err := deps.Store.ListChats(ctx)
		if err != nil {
			return fmt.Errorf("registry audit failed to list chats: %w", err)
		}

		botID := int64(0)
		if deps.Config.Telegram.BotInfo != nil {
			botID = deps.Config.Telegram.BotInfo.ID
		}

		evicted := 0
		for _, chat := range chats {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			member, err := deps.Platform.GetChatMember(ctx, &bot.GetChatMemberParams{
				ChatID: chat.ChatID,
				UserID: botID,
			})
			switch {
			case err != nil && announce.IsPermanent(err):
				// fall through to eviction
			case err != nil:
				log.WarnContext(ctx, "Membership check failed, keeping chat", "chat_id", chat.ChatID, "error", err)
				continue
			case member.Type != models.ChatMemberTypeLeft && member.Type != models.ChatMemberTypeBanned:
				continue
			}

			log.InfoContext(ctx, "Evicting unreachable chat", "chat_id", chat.ChatID)
			if err := deps.Store.UnregisterChat(ctx, chat.ChatID); err != nil {
				log.ErrorContext(ctx, "Failed to unregister chat", "chat_id", chat.ChatID, "error", err)
				continue
			}
			evicted++
		}

		log.InfoContext(ctx, "Scheduled registry audit task completed",
			"checked", len(chats), "evicted", evicted, "duration", time.Since(startTime))
		return nil
	}
}
