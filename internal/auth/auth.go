// Package auth implements the chat administrator permission gate used to
// authorize moderation commands.
package auth

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminAPI is the subset of the Telegram API needed to check admin status.
// *bot.Bot satisfies it.
type AdminAPI interface {
	GetChatAdministrators(ctx context.Context, params *bot.GetChatAdministratorsParams) ([]models.ChatMember, error)
}

// IsChatAdmin reports whether userID is an administrator (or the owner) of
// chatID. It re-queries the platform on every call; admin status is
// security-relevant, so no staleness from caching is accepted. Any query
// error fails closed and yields false.
func IsChatAdmin(ctx context.Context, api AdminAPI, log *slog.Logger, chatID, userID int64) bool {
	admins, err := api.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: chatID})
	if err != nil {
		log.WarnContext(ctx, "Failed to list chat administrators, denying",
			"chat_id", chatID, "user_id", userID, "error", err)
		return false
	}

	for _, member := range admins {
		if MemberUserID(&member) == userID {
			return true
		}
	}
	return false
}

// MemberUserID extracts the user ID from a ChatMember regardless of status.
// Returns 0 when the member carries no user (should not happen in practice).
func MemberUserID(member *models.ChatMember) int64 {
	switch {
	case member.Owner != nil && member.Owner.User != nil:
		return member.Owner.User.ID
	case member.Administrator != nil:
		return member.Administrator.User.ID
	case member.Member != nil && member.Member.User != nil:
		return member.Member.User.ID
	case member.Restricted != nil && member.Restricted.User != nil:
		return member.Restricted.User.ID
	case member.Left != nil && member.Left.User != nil:
		return member.Left.User.ID
	case member.Banned != nil && member.Banned.User != nil:
		return member.Banned.User.ID
	}
	return 0
}
