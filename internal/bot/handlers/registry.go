package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Description string
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "Show the command overview",
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "Show the command overview",
	}
	handlers["/rules"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "rules",
		Handler:     NewRulesHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: "Show the group rules",
	}

	moderation := map[string]modAction{
		"/kick":    kickAction,
		"/ban":     banAction,
		"/mute":    muteAction,
		"/promote": promoteAction,
		"/demote":  demoteAction,
	}
	descriptions := map[string]string{
		"/kick":    "Kick the replied-to user (admin only)",
		"/ban":     "Ban the replied-to user (admin only)",
		"/mute":    "Mute the replied-to user, optional duration (admin only)",
		"/promote": "Promote the replied-to user to admin (admin only)",
		"/demote":  "Demote the replied-to admin (admin only)",
	}
	for command, action := range moderation {
		handlers[command] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     action.name,
			Handler:     NewModerationHandler(deps, action),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Description: descriptions[command],
		}
	}

	return handlers
}
