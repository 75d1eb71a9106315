package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// EventsAPI is the subset of the Telegram API used by the events handler.
// *bot.Bot satisfies it.
type EventsAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// NewEventsHandler returns the default (catch-all) handler. It keeps the
// chat registry in sync with observed membership changes and welcomes new
// members.
func NewEventsHandler(deps HandlerDeps) bot.HandlerFunc {
	h := eventsHandler{deps: deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.run(ctx, b, update)
	}
}

type eventsHandler struct {
	deps HandlerDeps
}

func (h eventsHandler) run(ctx context.Context, api EventsAPI, update *models.Update) {
	switch {
	case update.MyChatMember != nil:
		h.handleMembershipChange(ctx, update.MyChatMember)
	case update.Message != nil:
		h.handleMessage(ctx, api, update.Message)
	}
}

// handleMembershipChange reacts to the bot's own membership status changing
// in a chat: joining registers the chat, leaving or being banned removes it.
func (h eventsHandler) handleMembershipChange(ctx context.Context, upd *models.ChatMemberUpdated) {
	log := h.deps.Logger.With("handler", "events", "chat_id", upd.Chat.ID)

	if !isGroupChat(upd.Chat) {
		return
	}

	switch upd.NewChatMember.Type {
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		log.InfoContext(ctx, "Bot removed from chat, unregistering")
		if err := h.deps.Store.UnregisterChat(ctx, upd.Chat.ID); err != nil {
			log.ErrorContext(ctx, "Failed to unregister chat", "error", err)
		}
	default:
		log.InfoContext(ctx, "Bot joined chat, registering", "title", upd.Chat.Title)
		if err := h.deps.Store.RegisterChat(ctx, upd.Chat.ID, upd.Chat.Title); err != nil {
			log.ErrorContext(ctx, "Failed to register chat", "error", err)
		}
	}
}

// handleMessage welcomes new members and keeps the registry entry fresh for
// any group chat the bot sees traffic in. Registration is an upsert, so
// observing an already-known chat only refreshes its title.
func (h eventsHandler) handleMessage(ctx context.Context, api EventsAPI, msg *models.Message) {
	log := h.deps.Logger.With("handler", "events", "chat_id", msg.Chat.ID)

	if !isGroupChat(msg.Chat) {
		return
	}

	botID := h.botID()

	if msg.LeftChatMember != nil && msg.LeftChatMember.ID == botID {
		log.InfoContext(ctx, "Bot left chat, unregistering")
		if err := h.deps.Store.UnregisterChat(ctx, msg.Chat.ID); err != nil {
			log.ErrorContext(ctx, "Failed to unregister chat", "error", err)
		}
		return
	}

	if len(msg.NewChatMembers) > 0 {
		h.handleNewMembers(ctx, api, log, msg, botID)
		return
	}

	if err := h.deps.Store.RegisterChat(ctx, msg.Chat.ID, msg.Chat.Title); err != nil {
		log.ErrorContext(ctx, "Failed to refresh chat registration", "error", err)
	}
}

func (h eventsHandler) handleNewMembers(ctx context.Context, api EventsAPI, log *slog.Logger, msg *models.Message, botID int64) {
	for _, user := range msg.NewChatMembers {
		if user.ID == botID {
			log.InfoContext(ctx, "Bot added to chat, registering", "title", msg.Chat.Title)
			if err := h.deps.Store.RegisterChat(ctx, msg.Chat.ID, msg.Chat.Title); err != nil {
				log.ErrorContext(ctx, "Failed to register chat", "error", err)
			}
			continue
		}

		welcome := fmt.Sprintf(h.deps.Config.Messages.Welcome, displayName(&user))
		if _, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: welcome}); err != nil {
			log.ErrorContext(ctx, "Failed to send welcome message", "user_id", user.ID, "error", err)
		}
	}
}

func (h eventsHandler) botID() int64 {
	if h.deps.Config.Telegram.BotInfo != nil {
		return h.deps.Config.Telegram.BotInfo.ID
	}
	return 0
}
