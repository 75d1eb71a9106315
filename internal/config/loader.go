package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in order of precedence:
// BOT_* environment variables, the YAML file at path, and built-in defaults.
// The config file is optional; the Telegram token is not.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, everything can come from env.
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("telegram.webhook.enabled", false)
	v.SetDefault("telegram.webhook.listen_addr", DefaultWebhookListenAddr)
	v.SetDefault("telegram.webhook.path", DefaultWebhookPath)

	v.SetDefault("announcer.enabled", true)
	v.SetDefault("announcer.text", DefaultAnnouncerText)
	v.SetDefault("announcer.hold_duration", DefaultAnnouncerHoldDuration)
	v.SetDefault("announcer.inter_chat_delay", DefaultAnnouncerInterChatDelay)
	v.SetDefault("announcer.pass_interval", DefaultAnnouncerPassInterval)
	v.SetDefault("announcer.empty_backoff", DefaultAnnouncerEmptyBackoff)
	v.SetDefault("announcer.retry_margin", DefaultAnnouncerRetryMargin)

	v.SetDefault("moderation.kick_restrict_first", false)
	v.SetDefault("moderation.mute_default_duration", 0)

	v.SetDefault("messages.welcome", defaultMessages.Welcome)
	v.SetDefault("messages.rules", defaultMessages.Rules)
	v.SetDefault("messages.help", defaultMessages.Help)
	v.SetDefault("messages.reply_required", defaultMessages.ReplyRequired)
	v.SetDefault("messages.not_admin", defaultMessages.NotAdmin)
	v.SetDefault("messages.action_failed", defaultMessages.ActionFailed)
}
