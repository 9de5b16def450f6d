// Package config loads and validates curator configuration via Viper.
// Everything arrives through CURATOR_* environment variables; there are no
// flags beyond the optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all driver configuration loaded via Viper.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// LogConfig locates the record log and the poller cursor.
type LogConfig struct {
	Path       string `mapstructure:"path"`
	CursorPath string `mapstructure:"cursor_path"`
}

// TelegramConfig wires the messaging inbox source and publish sink.
type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	InboxChatID string `mapstructure:"inbox_chat_id"`
	ChannelID   string `mapstructure:"channel_id"`
}

// GitHubConfig wires the issue-tracker source.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
	Repo  string `mapstructure:"repo"` // owner/name
	Label string `mapstructure:"label"`
}

// OpenAIConfig defines how to contact the summarization API. Optional: the
// issues driver degrades to metadata-only enrichment without it.
type OpenAIConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// HTTPConfig bounds every external fetch.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Timeout converts the HTTP timeout config into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load builds a Config from the environment and an optional config file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.path", "tools.jsonl")
	v.SetDefault("log.cursor_path", "cursor.json")
	// Secrets default to empty so Viper registers the keys and AutomaticEnv
	// can fill them during Unmarshal; validation rejects the empty values.
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.inbox_chat_id", "")
	v.SetDefault("telegram.channel_id", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("github.label", "tool")
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("logging.development", false)
}

// ValidateIngest enforces the inbox poller's required variables.
func (c Config) ValidateIngest() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (CURATOR_TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.InboxChatID == "" {
		return fmt.Errorf("telegram.inbox_chat_id is required (CURATOR_TELEGRAM_INBOX_CHAT_ID)")
	}
	return c.validateCommon()
}

// ValidatePublish enforces the publisher's required variables.
func (c Config) ValidatePublish() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (CURATOR_TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChannelID == "" {
		return fmt.Errorf("telegram.channel_id is required (CURATOR_TELEGRAM_CHANNEL_ID)")
	}
	return c.validateCommon()
}

// ValidateIssues enforces the issue ingester's required variables.
func (c Config) ValidateIssues() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("github.token is required (CURATOR_GITHUB_TOKEN)")
	}
	if c.GitHub.Repo == "" {
		return fmt.Errorf("github.repo is required (CURATOR_GITHUB_REPO)")
	}
	if parts := strings.Split(c.GitHub.Repo, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("github.repo must be owner/name, got %q", c.GitHub.Repo)
	}
	return c.validateCommon()
}

func (c Config) validateCommon() error {
	if c.Log.Path == "" {
		return fmt.Errorf("log.path is required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}
