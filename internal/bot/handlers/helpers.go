package handlers

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// displayName returns the best human-readable name for a user:
// first plus last name, falling back to the username.
func displayName(user *models.User) string {
	if user == nil {
		return "unknown"
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = "@" + user.Username
	}
	return name
}

// isGroupChat reports whether the chat is a group or supergroup.
func isGroupChat(chat models.Chat) bool {
	return chat.Type == "group" || chat.Type == "supergroup"
}
