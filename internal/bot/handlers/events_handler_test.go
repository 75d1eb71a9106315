package handlers

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wardenbot/internal/database"
)

const botUserID = int64(777)

// fakeStore is an in-memory chat registry for handler tests.
type fakeStore struct {
	chats map[int64]database.Chat
}

func newFakeStore() *fakeStore {
	return &fakeStore{chats: make(map[int64]database.Chat)}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) RegisterChat(_ context.Context, chatID int64, title string) error {
	f.chats[chatID] = database.Chat{ChatID: chatID, Title: title}
	return nil
}

func (f *fakeStore) UnregisterChat(_ context.Context, chatID int64) error {
	delete(f.chats, chatID)
	return nil
}

func (f *fakeStore) GetChat(_ context.Context, chatID int64) (*database.Chat, error) {
	if chat, ok := f.chats[chatID]; ok {
		return &chat, nil
	}
	return nil, nil
}

func (f *fakeStore) ListChats(context.Context) ([]database.Chat, error) {
	out := make([]database.Chat, 0, len(f.chats))
	for _, chat := range f.chats {
		out = append(out, chat)
	}
	return out, nil
}

func (f *fakeStore) RunMaintenance(context.Context) error { return nil }

type fakeEventsAPI struct {
	sent []string
}

func (f *fakeEventsAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params.Text)
	return &models.Message{ID: 1}, nil
}

func eventsDeps(store database.Store) HandlerDeps {
	deps := testDeps()
	deps.Store = store
	deps.Config.Telegram.BotInfo = &models.User{ID: botUserID, Username: "wardenbot"}
	return deps
}

func groupMessage(chatID int64, title string) *models.Message {
	return &models.Message{
		ID:   20,
		Chat: models.Chat{ID: chatID, Type: "supergroup", Title: title},
		From: &models.User{ID: 5},
		Text: "hello",
	}
}

func TestEventsBotAddedRegistersChat(t *testing.T) {
	store := newFakeStore()
	api := &fakeEventsAPI{}
	h := eventsHandler{deps: eventsDeps(store)}

	msg := groupMessage(100, "my group")
	msg.NewChatMembers = []models.User{{ID: botUserID, Username: "wardenbot"}}
	h.run(context.Background(), api, &models.Update{Message: msg})

	chat, err := store.GetChat(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, "my group", chat.Title)
	assert.Empty(t, api.sent, "the bot does not welcome itself")
}

func TestEventsNewMemberIsWelcomed(t *testing.T) {
	store := newFakeStore()
	api := &fakeEventsAPI{}
	h := eventsHandler{deps: eventsDeps(store)}

	msg := groupMessage(100, "my group")
	msg.NewChatMembers = []models.User{{ID: 42, FirstName: "Ada", LastName: "Lovelace"}}
	h.run(context.Background(), api, &models.Update{Message: msg})

	require.Len(t, api.sent, 1)
	assert.Equal(t, "Welcome, Ada Lovelace!", api.sent[0])
}

func TestEventsBotLeftUnregistersChat(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.RegisterChat(context.Background(), 100, "my group"))
	h := eventsHandler{deps: eventsDeps(store)}

	msg := groupMessage(100, "my group")
	msg.LeftChatMember = &models.User{ID: botUserID}
	h.run(context.Background(), &fakeEventsAPI{}, &models.Update{Message: msg})

	chat, err := store.GetChat(context.Background(), 100)
	require.NoError(t, err)
	assert.Nil(t, chat)
}

func TestEventsGroupMessageRefreshesRegistration(t *testing.T) {
	store := newFakeStore()
	h := eventsHandler{deps: eventsDeps(store)}

	h.run(context.Background(), &fakeEventsAPI{}, &models.Update{Message: groupMessage(100, "fresh title")})

	chat, err := store.GetChat(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, "fresh title", chat.Title)
}

func TestEventsPrivateChatIgnored(t *testing.T) {
	store := newFakeStore()
	h := eventsHandler{deps: eventsDeps(store)}

	msg := groupMessage(100, "")
	msg.Chat.Type = "private"
	h.run(context.Background(), &fakeEventsAPI{}, &models.Update{Message: msg})

	chats, err := store.ListChats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestEventsMembershipUpdateRegistersAndUnregisters(t *testing.T) {
	store := newFakeStore()
	h := eventsHandler{deps: eventsDeps(store)}

	joined := &models.ChatMemberUpdated{
		Chat: models.Chat{ID: 100, Type: "group", Title: "my group"},
		NewChatMember: models.ChatMember{
			Type:   models.ChatMemberTypeMember,
			Member: &models.ChatMemberMember{User: &models.User{ID: botUserID}},
		},
	}
	h.run(context.Background(), &fakeEventsAPI{}, &models.Update{MyChatMember: joined})

	chat, err := store.GetChat(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, chat)

	kicked := &models.ChatMemberUpdated{
		Chat: models.Chat{ID: 100, Type: "group"},
		NewChatMember: models.ChatMember{
			Type:   models.ChatMemberTypeBanned,
			Banned: &models.ChatMemberBanned{User: &models.User{ID: botUserID}},
		},
	}
	h.run(context.Background(), &fakeEventsAPI{}, &models.Update{MyChatMember: kicked})

	chat, err = store.GetChat(context.Background(), 100)
	require.NoError(t, err)
	assert.Nil(t, chat)
}
