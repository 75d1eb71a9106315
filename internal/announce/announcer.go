// Package announce implements the recurring announcement loop: for every
// registered chat it sends the configured announcement, pins it for a hold
// period, then unpins and deletes it. Chats that turn out to be unreachable
// are evicted from the registry, which is the sole feedback path keeping the
// registry consistent with reality.
package announce

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wardenbot/internal/config"
	"github.com/edgard/wardenbot/internal/database"
)

// API is the subset of the Telegram API the announcer needs.
// *bot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	PinChatMessage(ctx context.Context, params *bot.PinChatMessageParams) (bool, error)
	UnpinChatMessage(ctx context.Context, params *bot.UnpinChatMessageParams) (bool, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// Announcer runs the announcement loop for the lifetime of the process.
type Announcer struct {
	api    API
	store  database.Store
	cfg    *config.AnnouncerConfig
	botID  int64
	logger *slog.Logger

	// sleep is replaceable in tests; it must return early with the context
	// error on cancellation so shutdown stays deterministic.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAnnouncer creates an announcer reading chats from store and talking to
// the platform through api. botID is the bot's own user ID, used for
// membership checks.
func NewAnnouncer(api API, store database.Store, cfg *config.AnnouncerConfig, botID int64, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{
		api:    api,
		store:  store,
		cfg:    cfg,
		botID:  botID,
		logger: logger.With("component", "announcer"),
		sleep:  sleepCtx,
	}
}

// Run executes announcement passes until ctx is cancelled. It never returns
// any other error: per-chat failures are contained, one chat's failure never
// aborts the pass for the others.
func (a *Announcer) Run(ctx context.Context) error {
	a.logger.Info("Announcement loop started",
		"hold_duration", a.cfg.HoldDuration,
		"pass_interval", a.cfg.PassInterval)

	for {
		chats, err := a.store.ListChats(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.ErrorContext(ctx, "Failed to list registered chats", "error", err)
			if err := a.sleep(ctx, a.cfg.EmptyBackoff); err != nil {
				return err
			}
			continue
		}

		if len(chats) == 0 {
			a.logger.DebugContext(ctx, "No registered chats, backing off")
			if err := a.sleep(ctx, a.cfg.EmptyBackoff); err != nil {
				return err
			}
			continue
		}

		a.logger.InfoContext(ctx, "Starting announcement pass", "chats", len(chats))

		for _, chat := range chats {
			if err := a.announceChat(ctx, chat); err != nil {
				// Only context errors propagate out of announceChat.
				return err
			}
			if err := a.sleep(ctx, a.cfg.InterChatDelay); err != nil {
				return err
			}
		}

		a.logger.InfoContext(ctx, "Announcement pass finished", "chats", len(chats))

		if err := a.sleep(ctx, a.cfg.PassInterval); err != nil {
			return err
		}
	}
}

// announceChat runs one send→pin→hold→unpin→delete cycle for a single chat.
func (a *Announcer) announceChat(ctx context.Context, chat database.Chat) error {
	log := a.logger.With("chat_id", chat.ChatID)

	member, err := a.api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chat.ChatID,
		UserID: a.botID,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if IsPermanent(err) {
			log.InfoContext(ctx, "Chat unreachable, evicting from registry", "error", err)
			a.evict(ctx, chat.ChatID)
			return nil
		}
		log.WarnContext(ctx, "Membership check failed, skipping chat this pass", "error", err)
		return nil
	}
	if !isActiveMember(member) {
		log.InfoContext(ctx, "Bot is no longer a member, evicting from registry", "status", member.Type)
		a.evict(ctx, chat.ChatID)
		return nil
	}

	msg, err := a.send(ctx, chat.ChatID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if IsPermanent(err) {
			log.InfoContext(ctx, "Announcement delivery permanently failed, evicting", "error", err)
			a.evict(ctx, chat.ChatID)
			return nil
		}
		log.WarnContext(ctx, "Failed to send announcement, skipping chat this pass", "error", err)
		return nil
	}

	// Pinning is a courtesy, not a correctness requirement.
	if _, err := a.api.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:              chat.ChatID,
		MessageID:           msg.ID,
		DisableNotification: true,
	}); err != nil {
		log.WarnContext(ctx, "Failed to pin announcement", "message_id", msg.ID, "error", err)
	}

	if err := a.sleep(ctx, a.cfg.HoldDuration); err != nil {
		return err
	}

	// A chat admin may have unpinned or removed the message already.
	if _, err := a.api.UnpinChatMessage(ctx, &bot.UnpinChatMessageParams{
		ChatID:    chat.ChatID,
		MessageID: msg.ID,
	}); err != nil {
		log.WarnContext(ctx, "Failed to unpin announcement", "message_id", msg.ID, "error", err)
	}
	if _, err := a.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chat.ChatID,
		MessageID: msg.ID,
	}); err != nil {
		log.WarnContext(ctx, "Failed to delete announcement", "message_id", msg.ID, "error", err)
	}

	return nil
}

// send delivers the announcement, honoring one rate-limit retry: on a
// rate-limit signal it waits the platform-specified delay plus a safety
// margin and retries the same chat once.
func (a *Announcer) send(ctx context.Context, chatID int64) (*models.Message, error) {
	msg, err := a.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   a.cfg.Text,
	})
	if delay, ok := retryAfter(err); ok {
		wait := delay + a.cfg.RetryMargin
		a.logger.WarnContext(ctx, "Rate limited while sending announcement, waiting",
			"chat_id", chatID, "retry_after", delay, "wait", wait)
		if sleepErr := a.sleep(ctx, wait); sleepErr != nil {
			return nil, sleepErr
		}
		msg, err = a.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   a.cfg.Text,
		})
	}
	return msg, err
}

// evict removes the chat from the registry, logging but tolerating failure;
// the next pass will retry the eviction.
func (a *Announcer) evict(ctx context.Context, chatID int64) {
	if err := a.store.UnregisterChat(ctx, chatID); err != nil {
		a.logger.ErrorContext(ctx, "Failed to unregister chat", "chat_id", chatID, "error", err)
	}
}

// isActiveMember reports whether the bot's membership still allows posting.
func isActiveMember(member *models.ChatMember) bool {
	switch member.Type {
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
