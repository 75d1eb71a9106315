// Package config provides configuration loading, validation, and management
// for the WardenBot application. It handles reading from YAML files,
// environment variables, setting default values, and validating parameters.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration parameters for all components
// of the WardenBot system: logging, Telegram transport, database, the
// announcement loop, scheduled maintenance, and moderation behavior.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Announcer  AnnouncerConfig  `mapstructure:"announcer"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credential and the update delivery mode.
// BotInfo is populated at startup from GetMe and is not read from config.
type TelegramConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Webhook WebhookConfig `mapstructure:"webhook"`

	BotInfo *models.User `mapstructure:"-"`
}

// WebhookConfig configures push delivery of updates. When disabled the bot
// falls back to long polling.
type WebhookConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	PublicURL   string `mapstructure:"public_url" validate:"required_if=Enabled true,omitempty,url"`
	ListenAddr  string `mapstructure:"listen_addr"`
	Path        string `mapstructure:"path"`
	SecretToken string `mapstructure:"secret_token"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AnnouncerConfig controls the recurring announcement loop. All durations are
// deployment constants; observed deployments range from 60s to 480s for the
// hold and pass intervals.
type AnnouncerConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Text           string        `mapstructure:"text" validate:"required_if=Enabled true"`
	HoldDuration   time.Duration `mapstructure:"hold_duration" validate:"min=1s"`
	InterChatDelay time.Duration `mapstructure:"inter_chat_delay" validate:"min=0"`
	PassInterval   time.Duration `mapstructure:"pass_interval" validate:"min=1s"`
	EmptyBackoff   time.Duration `mapstructure:"empty_backoff" validate:"min=1s"`
	RetryMargin    time.Duration `mapstructure:"retry_margin" validate:"min=0"`
}

// SchedulerConfig configures cron-driven maintenance tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// ModerationConfig tunes moderation command behavior.
type ModerationConfig struct {
	// KickRestrictFirst additionally strips messaging rights before the
	// ban/unban pair that implements a kick.
	KickRestrictFirst bool `mapstructure:"kick_restrict_first"`
	// MuteDefaultDuration applies when /mute is invoked without an explicit
	// duration. Zero means the restriction has no expiry.
	MuteDefaultDuration time.Duration `mapstructure:"mute_default_duration" validate:"min=0"`
}

// MessagesConfig holds user-facing reply texts.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome" validate:"required"`
	Rules         string `mapstructure:"rules" validate:"required"`
	Help          string `mapstructure:"help" validate:"required"`
	ReplyRequired string `mapstructure:"reply_required" validate:"required"`
	NotAdmin      string `mapstructure:"not_admin" validate:"required"`
	ActionFailed  string `mapstructure:"action_failed" validate:"required"`
}
