package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewRulesHandler returns a handler for the /rules command.
func NewRulesHandler(deps HandlerDeps) bot.HandlerFunc {
	return rulesHandler{deps}.Handle
}

type rulesHandler struct {
	deps HandlerDeps
}

func (h rulesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "rules")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Rules handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /rules command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   h.deps.Config.Messages.Rules,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send rules message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
