// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/wardenbot/internal/auth"
	"github.com/edgard/wardenbot/internal/config"
)

// ModerationAPI is the subset of the Telegram API used by moderation
// commands. *bot.Bot satisfies it.
type ModerationAPI interface {
	auth.AdminAPI
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	BanChatMember(ctx context.Context, params *bot.BanChatMemberParams) (bool, error)
	UnbanChatMember(ctx context.Context, params *bot.UnbanChatMemberParams) (bool, error)
	RestrictChatMember(ctx context.Context, params *bot.RestrictChatMemberParams) (bool, error)
	PromoteChatMember(ctx context.Context, params *bot.PromoteChatMemberParams) (bool, error)
}

// modAction describes one moderation command. All five commands share the
// same handler shape (reply check, permission gate, one platform action);
// only the action itself differs.
type modAction struct {
	// name is the verb used in usage and failure messages ("kick", "mute").
	name string
	// success formats the in-chat confirmation, receiving the target's name.
	success string
	// perform issues the platform call(s) against the target. args carries
	// any tokens following the command, currently only used by mute.
	perform func(ctx context.Context, api ModerationAPI, cfg *config.Config, chatID int64, target *models.User, args []string) error
}

// kickAction removes the target temporarily: ban followed by an immediate
// unban, so the user can rejoin. Optionally strips messaging rights first.
var kickAction = modAction{
	name:    "kick",
	success: "Kicked %s.",
	perform: func(ctx context.Context, api ModerationAPI, cfg *config.Config, chatID int64, target *models.User, _ []string) error {
		if cfg.Moderation.KickRestrictFirst {
			if _, err := api.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
				ChatID:      chatID,
				UserID:      target.ID,
				Permissions: &models.ChatPermissions{},
			}); err != nil {
				return err
			}
		}
		if _, err := api.BanChatMember(ctx, &bot.BanChatMemberParams{
			ChatID: chatID,
			UserID: target.ID,
		}); err != nil {
			return err
		}
		_, err := api.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
			ChatID:       chatID,
			UserID:       target.ID,
			OnlyIfBanned: true,
		})
		return err
	},
}

// banAction removes the target permanently.
var banAction = modAction{
	name:    "ban",
	success: "Banned %s.",
	perform: func(ctx context.Context, api ModerationAPI, _ *config.Config, chatID int64, target *models.User, _ []string) error {
		_, err := api.BanChatMember(ctx, &bot.BanChatMemberParams{
			ChatID: chatID,
			UserID: target.ID,
		})
		return err
	},
}

// muteAction strips the target's messaging rights. An optional duration
// argument (e.g. "30m") sets an expiry; without one the configured default
// applies, and zero means no expiry.
var muteAction = modAction{
	name:    "mute",
	success: "Muted %s.",
	perform: func(ctx context.Context, api ModerationAPI, cfg *config.Config, chatID int64, target *models.User, args []string) error {
		duration := cfg.Moderation.MuteDefaultDuration
		if len(args) > 0 {
			if d, err := time.ParseDuration(args[0]); err == nil && d > 0 {
				duration = d
			}
		}

		params := &bot.RestrictChatMemberParams{
			ChatID:      chatID,
			UserID:      target.ID,
			Permissions: &models.ChatPermissions{CanSendMessages: false},
		}
		if duration > 0 {
			params.UntilDate = int(time.Now().Add(duration).Unix())
		}

		_, err := api.RestrictChatMember(ctx, params)
		return err
	},
}

// promoteAction grants the fixed administrator capability bundle. The bundle
// never includes promoting further admins, so a promoted delegate cannot
// escalate privileges.
var promoteAction = modAction{
	name:    "promote",
	success: "Promoted %s to admin.",
	perform: func(ctx context.Context, api ModerationAPI, _ *config.Config, chatID int64, target *models.User, _ []string) error {
		_, err := api.PromoteChatMember(ctx, &bot.PromoteChatMemberParams{
			ChatID:             chatID,
			UserID:             target.ID,
			CanChangeInfo:      true,
			CanDeleteMessages:  true,
			CanInviteUsers:     true,
			CanRestrictMembers: true,
			CanPinMessages:     true,
			CanPromoteMembers:  false,
		})
		return err
	},
}

// demoteAction revokes every administrator capability.
var demoteAction = modAction{
	name:    "demote",
	success: "Demoted %s.",
	perform: func(ctx context.Context, api ModerationAPI, _ *config.Config, chatID int64, target *models.User, _ []string) error {
		_, err := api.PromoteChatMember(ctx, &bot.PromoteChatMemberParams{
			ChatID: chatID,
			UserID: target.ID,
		})
		return err
	},
}

// NewModerationHandler returns a handler for one moderation command.
func NewModerationHandler(deps HandlerDeps, action modAction) bot.HandlerFunc {
	h := moderationHandler{deps: deps, action: action}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.run(ctx, b, update)
	}
}

type moderationHandler struct {
	deps   HandlerDeps
	action modAction
}

// run executes the shared moderation command shape: require a reply target,
// require the invoker to be a chat admin, then issue the action and report
// the outcome in-chat. User errors and platform failures never mutate state
// beyond the single intended action.
func (h moderationHandler) run(ctx context.Context, api ModerationAPI, update *models.Update) {
	log := h.deps.Logger.With("handler", h.action.name)

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Moderation handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		h.reply(ctx, api, log, chatID, fmt.Sprintf(h.deps.Config.Messages.ReplyRequired, h.action.name))
		return
	}

	if !auth.IsChatAdmin(ctx, api, log, chatID, msg.From.ID) {
		log.InfoContext(ctx, "Non-admin attempted moderation command", "chat_id", chatID, "user_id", msg.From.ID)
		h.reply(ctx, api, log, chatID, h.deps.Config.Messages.NotAdmin)
		return
	}

	target := msg.ReplyToMessage.From
	args := strings.Fields(msg.Text)
	if len(args) > 0 {
		args = args[1:] // drop the command token itself
	}

	log.InfoContext(ctx, "Executing moderation action",
		"chat_id", chatID, "invoker_id", msg.From.ID, "target_id", target.ID)

	if err := h.action.perform(ctx, api, h.deps.Config, chatID, target, args); err != nil {
		log.ErrorContext(ctx, "Moderation action failed",
			"chat_id", chatID, "target_id", target.ID, "error", err)
		h.reply(ctx, api, log, chatID, fmt.Sprintf(h.deps.Config.Messages.ActionFailed, h.action.name, err))
		return
	}

	h.reply(ctx, api, log, chatID, fmt.Sprintf(h.action.success, displayName(target)))
}

func (h moderationHandler) reply(ctx context.Context, api ModerationAPI, log *slog.Logger, chatID int64, text string) {
	if _, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
	}
}
