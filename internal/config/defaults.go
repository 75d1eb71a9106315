package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath = "storage.db"

	DefaultWebhookListenAddr = ":8080"
	DefaultWebhookPath       = "/telegram/webhook"

	DefaultAnnouncerText           = "Reminder: read /rules and keep the chat friendly."
	DefaultAnnouncerHoldDuration   = 5 * time.Minute  // how long the announcement stays pinned
	DefaultAnnouncerInterChatDelay = 3 * time.Second  // spacing between chats within a pass
	DefaultAnnouncerPassInterval   = 30 * time.Minute // sleep between full passes
	DefaultAnnouncerEmptyBackoff   = time.Minute      // retry interval while the registry is empty
	DefaultAnnouncerRetryMargin    = 2 * time.Second  // added on top of platform retry-after
)

// Default user-facing messages.
var defaultMessages = MessagesConfig{
	Welcome: "Welcome, %s! Please read /rules before chatting.",
	Rules:   "Group Rules:\n1. Be respectful\n2. No spam\n3. Follow Telegram TOS",
	Help: "/help - Show this message\n" +
		"/rules - Show group rules\n" +
		"/kick - Kick the user you replied to\n" +
		"/ban - Ban the user you replied to\n" +
		"/mute - Mute the user you replied to (optional duration, e.g. /mute 30m)\n" +
		"/promote - Promote the user you replied to\n" +
		"/demote - Demote the user you replied to",
	ReplyRequired: "Reply to a user's message to %s them.",
	NotAdmin:      "Only chat administrators can use this command.",
	ActionFailed:  "Failed to %s user: %s",
}
