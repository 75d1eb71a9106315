package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wardenbot/internal/config"
)

// fakeModAPI records every platform call in order so tests can assert on the
// exact mutation sequence.
type fakeModAPI struct {
	admins []models.ChatMember

	calls     []string
	sent      []string
	bans      []*bot.BanChatMemberParams
	unbans    []*bot.UnbanChatMemberParams
	restricts []*bot.RestrictChatMemberParams
	promotes  []*bot.PromoteChatMemberParams
}

func (f *fakeModAPI) GetChatAdministrators(_ context.Context, _ *bot.GetChatAdministratorsParams) ([]models.ChatMember, error) {
	f.calls = append(f.calls, "getAdmins")
	return f.admins, nil
}

func (f *fakeModAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.calls = append(f.calls, "send")
	f.sent = append(f.sent, params.Text)
	return &models.Message{ID: 1}, nil
}

func (f *fakeModAPI) BanChatMember(_ context.Context, params *bot.BanChatMemberParams) (bool, error) {
	f.calls = append(f.calls, "ban")
	f.bans = append(f.bans, params)
	return true, nil
}

func (f *fakeModAPI) UnbanChatMember(_ context.Context, params *bot.UnbanChatMemberParams) (bool, error) {
	f.calls = append(f.calls, "unban")
	f.unbans = append(f.unbans, params)
	return true, nil
}

func (f *fakeModAPI) RestrictChatMember(_ context.Context, params *bot.RestrictChatMemberParams) (bool, error) {
	f.calls = append(f.calls, "restrict")
	f.restricts = append(f.restricts, params)
	return true, nil
}

func (f *fakeModAPI) PromoteChatMember(_ context.Context, params *bot.PromoteChatMemberParams) (bool, error) {
	f.calls = append(f.calls, "promote")
	f.promotes = append(f.promotes, params)
	return true, nil
}

func (f *fakeModAPI) mutationCount() int {
	return len(f.bans) + len(f.unbans) + len(f.restricts) + len(f.promotes)
}

const (
	testChatID  = int64(100)
	adminUserID = int64(1)
	targetID    = int64(50)
)

func testDeps() HandlerDeps {
	cfg := &config.Config{}
	cfg.Messages = config.MessagesConfig{
		Welcome:       "Welcome, %s!",
		Rules:         "rules",
		Help:          "help",
		ReplyRequired: "Reply to a user's message to %s them.",
		NotAdmin:      "Only chat administrators can use this command.",
		ActionFailed:  "Failed to %s user: %s",
	}
	return HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
	}
}

func adminAPI() *fakeModAPI {
	return &fakeModAPI{admins: []models.ChatMember{{
		Type:          models.ChatMemberTypeAdministrator,
		Administrator: &models.ChatMemberAdministrator{User: models.User{ID: adminUserID}},
	}}}
}

func commandUpdate(fromID int64, text string, withReply bool) *models.Update {
	msg := &models.Message{
		ID:   10,
		Chat: models.Chat{ID: testChatID, Type: "supergroup"},
		From: &models.User{ID: fromID, FirstName: "Invoker"},
		Text: text,
	}
	if withReply {
		msg.ReplyToMessage = &models.Message{
			ID:   9,
			Chat: msg.Chat,
			From: &models.User{ID: targetID, FirstName: "Target", LastName: "User"},
		}
	}
	return &models.Update{ID: 1, Message: msg}
}

func TestModerationWithoutReplyMakesNoMutation(t *testing.T) {
	for _, action := range []modAction{kickAction, banAction, muteAction, promoteAction, demoteAction} {
		t.Run(action.name, func(t *testing.T) {
			api := adminAPI()
			h := moderationHandler{deps: testDeps(), action: action}

			h.run(context.Background(), api, commandUpdate(adminUserID, "/"+action.name, false))

			assert.Zero(t, api.mutationCount())
			require.Len(t, api.sent, 1)
			assert.Contains(t, api.sent[0], action.name)
		})
	}
}

func TestModerationByNonAdminMakesNoMutation(t *testing.T) {
	for _, action := range []modAction{kickAction, banAction, muteAction, promoteAction, demoteAction} {
		t.Run(action.name, func(t *testing.T) {
			api := adminAPI()
			h := moderationHandler{deps: testDeps(), action: action}

			h.run(context.Background(), api, commandUpdate(999, "/"+action.name, true))

			assert.Zero(t, api.mutationCount())
			require.Len(t, api.sent, 1)
			assert.Equal(t, "Only chat administrators can use this command.", api.sent[0])
		})
	}
}

func TestKickBansThenUnbans(t *testing.T) {
	api := adminAPI()
	h := moderationHandler{deps: testDeps(), action: kickAction}

	h.run(context.Background(), api, commandUpdate(adminUserID, "/kick", true))

	assert.Equal(t, []string{"getAdmins", "ban", "unban", "send"}, api.calls)
	require.Len(t, api.bans, 1)
	require.Len(t, api.unbans, 1)
	assert.Equal(t, testChatID, api.bans[0].ChatID)
	assert.Equal(t, targetID, api.bans[0].UserID)
	assert.Equal(t, targetID, api.unbans[0].UserID)
	assert.Equal(t, "Kicked Target User.", api.sent[0])
}

func TestKickRestrictFirst(t *testing.T) {
	deps := testDeps()
	deps.Config.Moderation.KickRestrictFirst = true
	api := adminAPI()
	h := moderationHandler{deps: deps, action: kickAction}

	h.run(context.Background(), api, commandUpdate(adminUserID, "/kick", true))

	assert.Equal(t, []string{"getAdmins", "restrict", "ban", "unban", "send"}, api.calls)
}

func TestBanIsPermanent(t *testing.T) {
	api := adminAPI()
	h := moderationHandler{deps: testDeps(), action: banAction}

	h.run(context.Background(), api, commandUpdate(adminUserID, "/ban", true))

	require.Len(t, api.bans, 1)
	assert.Empty(t, api.unbans)
	assert.Zero(t, api.bans[0].UntilDate)
}

func TestMuteStripsSendPermissionWithoutExpiry(t *testing.T) {
	api := adminAPI()
	h := moderationHandler{deps: testDeps(), action: muteAction}

	h.run(context.Background(), api, commandUpdate(adminUserID, "/mute", true))

	require.Len(t, api.restricts, 1)
	restrict := api.restricts[0]
	assert.Equal(t, targetID, restrict.UserID)
	require.NotNil(t, restrict.Permissions)
	assert.False(t, restrict.Permissions.CanSendMessages)
	assert.Zero(t, restrict.UntilDate, "mute without a duration must not expire")
}

func TestMuteWithExplicitDuration(t *testing.T) {
	api := adminAPI()
	h := moderationHandler{deps: testDeps(), action: muteAction}

	before := time.Now().Add(30 * time.Minute).Unix()
	h.run(context.Background(), api, commandUpdate(adminUserID, "/mute 30m", true))
	after := time.Now().Add(30 * time.Minute).Unix()

	require.Len(t, api.restricts, 1)
	until := int64(api.restricts[0].UntilDate)
	assert.GreaterOrEqual(t, until, before)
	assert.LessOrEqual(t, until, after)
}

func TestPromoteGrantsFixedBundleWithoutPromotePermission(t *testing.T) {
	api := adminAPI()
	h := moderationHandler{deps: testDeps(), action: promoteAction}

	h.run(context.Background(), api, commandUpdate(adminUserID, "/promote", true))

	require.Len(t, api.promotes, 1)
	p := api.promotes[0]
	assert.True(t, p.CanChangeInfo)
	assert.True(t, p.CanDeleteMessages)
	assert.True(t, p.CanInviteUsers)
	assert.True(t, p.CanRestrictMembers)
	assert.True(t, p.CanPinMessages)
	assert.False(t, p.CanPromoteMembers, "promoted delegates must not be able to promote further admins")
}

func TestDemoteRevokesAllCapabilities(t *testing.T) {
	api := adminAPI()
	h := moderationHandler{deps: testDeps(), action: demoteAction}

	h.run(context.Background(), api, commandUpdate(adminUserID, "/demote", true))

	require.Len(t, api.promotes, 1)
	p := api.promotes[0]
	assert.False(t, p.CanChangeInfo)
	assert.False(t, p.CanDeleteMessages)
	assert.False(t, p.CanInviteUsers)
	assert.False(t, p.CanRestrictMembers)
	assert.False(t, p.CanPinMessages)
	assert.False(t, p.CanPromoteMembers)
}
