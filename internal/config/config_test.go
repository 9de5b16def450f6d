package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Path != "tools.jsonl" {
		t.Fatalf("expected default log path, got %q", cfg.Log.Path)
	}
	if cfg.Log.CursorPath != "cursor.json" {
		t.Fatalf("expected default cursor path, got %q", cfg.Log.CursorPath)
	}
	if cfg.GitHub.Label != "tool" {
		t.Fatalf("expected default intake label, got %q", cfg.GitHub.Label)
	}
	if got := cfg.HTTP.Timeout(); got != 10*time.Second {
		t.Fatalf("expected default timeout 10s, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
log:
  path: /var/lib/curator/tools.jsonl
  cursor_path: /var/lib/curator/cursor.json
telegram:
  bot_token: bot-token
  inbox_chat_id: "-100123"
  channel_id: "@toolchannel"
github:
  token: gh-token
  repo: usefultools/intake
  label: submission
http:
  timeout_seconds: 30
logging:
  development: true
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Path != "/var/lib/curator/tools.jsonl" {
		t.Fatalf("expected log path override, got %q", cfg.Log.Path)
	}
	if cfg.Telegram.InboxChatID != "-100123" || cfg.Telegram.ChannelID != "@toolchannel" {
		t.Fatalf("expected telegram overrides to apply: %+v", cfg.Telegram)
	}
	if cfg.GitHub.Repo != "usefultools/intake" || cfg.GitHub.Label != "submission" {
		t.Fatalf("expected github overrides to apply: %+v", cfg.GitHub)
	}
	if got := cfg.HTTP.Timeout(); got != 30*time.Second {
		t.Fatalf("expected timeout 30s, got %v", got)
	}
	if !cfg.Logging.Development {
		t.Fatalf("expected development logging")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CURATOR_TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("CURATOR_LOG_PATH", "env.jsonl")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Fatalf("expected env bot token, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Log.Path != "env.jsonl" {
		t.Fatalf("expected env log path, got %q", cfg.Log.Path)
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Log: LogConfig{Path: "tools.jsonl", CursorPath: "cursor.json"},
		Telegram: TelegramConfig{
			BotToken:    "bot-token",
			InboxChatID: "-100123",
			ChannelID:   "@toolchannel",
		},
		GitHub: GitHubConfig{Token: "gh-token", Repo: "owner/name", Label: "tool"},
		HTTP:   HTTPConfig{TimeoutSeconds: 10},
	}

	tests := []struct {
		name     string
		cfg      Config
		validate func(Config) error
		want     string
	}{
		{
			name: "ingest missing bot token",
			cfg: func() Config {
				c := base
				c.Telegram.BotToken = ""
				return c
			}(),
			validate: Config.ValidateIngest,
			want:     "telegram.bot_token",
		},
		{
			name: "ingest missing inbox chat",
			cfg: func() Config {
				c := base
				c.Telegram.InboxChatID = ""
				return c
			}(),
			validate: Config.ValidateIngest,
			want:     "telegram.inbox_chat_id",
		},
		{
			name: "publish missing channel",
			cfg: func() Config {
				c := base
				c.Telegram.ChannelID = ""
				return c
			}(),
			validate: Config.ValidatePublish,
			want:     "telegram.channel_id",
		},
		{
			name: "issues missing token",
			cfg: func() Config {
				c := base
				c.GitHub.Token = ""
				return c
			}(),
			validate: Config.ValidateIssues,
			want:     "github.token",
		},
		{
			name: "issues malformed repo",
			cfg: func() Config {
				c := base
				c.GitHub.Repo = "just-a-name"
				return c
			}(),
			validate: Config.ValidateIssues,
			want:     "owner/name",
		},
		{
			name: "missing log path",
			cfg: func() Config {
				c := base
				c.Log.Path = ""
				return c
			}(),
			validate: Config.ValidateIngest,
			want:     "log.path",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.HTTP.TimeoutSeconds = 0
				return c
			}(),
			validate: Config.ValidatePublish,
			want:     "http.timeout_seconds",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.validate(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidatePassesWithFullConfig(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Log: LogConfig{Path: "tools.jsonl", CursorPath: "cursor.json"},
		Telegram: TelegramConfig{
			BotToken:    "bot-token",
			InboxChatID: "-100123",
			ChannelID:   "@toolchannel",
		},
		GitHub: GitHubConfig{Token: "gh-token", Repo: "owner/name", Label: "tool"},
		HTTP:   HTTPConfig{TimeoutSeconds: 10},
	}

	if err := cfg.ValidateIngest(); err != nil {
		t.Fatalf("ValidateIngest() error = %v", err)
	}
	if err := cfg.ValidatePublish(); err != nil {
		t.Fatalf("ValidatePublish() error = %v", err)
	}
	if err := cfg.ValidateIssues(); err != nil {
		t.Fatalf("ValidateIssues() error = %v", err)
	}
}
