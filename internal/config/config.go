package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"KeywordWatcher/pkg/logger"
)

const (
	configPathEnv     = "KEYWORD_WATCHER_CONFIG"
	defaultConfigPath = "config.yaml"

	pushoverTokenEnv  = "PUSHOVER_APP_TOKEN"
	pushoverUserEnv   = "PUSHOVER_USER_KEY"
	redditClientIDEnv = "REDDIT_CLIENT_ID"
	redditSecretEnv   = "REDDIT_CLIENT_SECRET"
	redditAgentEnv    = "REDDIT_USER_AGENT"
	redditUserEnv     = "REDDIT_USERNAME"
	redditPassEnv     = "REDDIT_PASSWORD"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Storage       StorageConfig      `yaml:"storage"`
	Reddit        RedditConfig       `yaml:"reddit"`
	Notifications NotificationConfig `yaml:"notifications"`
	Watches       []WatchConfig      `yaml:"watches"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when watch cycles run.
type SchedulerConfig struct {
	IntervalMinutes int    `yaml:"intervalMinutes"`
	CronExpression  string `yaml:"cronExpression"`
	MaxConcurrent   int    `yaml:"maxConcurrent"`
}

// Interval resolves the configured minutes to a duration.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// StorageConfig selects the seen-set driver and its location.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// RedditConfig wires the Reddit client. Only userAgent is needed for the
// public endpoints; the four credential fields switch on script-app OAuth.
type RedditConfig struct {
	UserAgent    string `yaml:"userAgent"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Pushover PushoverConfig `yaml:"pushover"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// PushoverConfig wires the Pushover message API.
type PushoverConfig struct {
	AppToken string `yaml:"appToken"`
	UserKey  string `yaml:"userKey"`
}

// Configured reports whether both credentials are present.
func (p PushoverConfig) Configured() bool {
	return p.AppToken != "" && p.UserKey != ""
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Configured reports whether both credentials are present.
func (t TelegramConfig) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// WatchConfig describes a single watched source with its filter criteria.
type WatchConfig struct {
	Source   string   `yaml:"source"`
	Client   string   `yaml:"client"`
	Keywords []string `yaml:"keywords"`
	MinScore *int     `yaml:"minScore"`
}

// Load reads .env, YAML configuration (if present), and environment
// overrides, in that order. It never fails; callers run Validate before
// using the result.
func Load() Config {
	_ = godotenv.Load()

	warn := logger.New("config")
	cfg := defaultConfig()

	path := os.Getenv(configPathEnv)
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	if raw, err := os.ReadFile(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			warn.Printf("cannot read %s: %v (falling back to defaults)", path, err)
		}
	} else {
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			warn.Printf("cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	return cfg
}

// Validate reports configuration problems that make startup pointless.
func (c Config) Validate() error {
	if len(c.Watches) == 0 {
		return fmt.Errorf("no watches configured")
	}

	seen := map[string]struct{}{}
	for _, watch := range c.Watches {
		if strings.TrimSpace(watch.Source) == "" {
			return fmt.Errorf("watch with empty source")
		}
		if _, dup := seen[watch.Source]; dup {
			return fmt.Errorf("duplicate watch source %q", watch.Source)
		}
		seen[watch.Source] = struct{}{}
	}

	if !c.Notifications.Pushover.Configured() && !c.Notifications.Telegram.Configured() {
		return fmt.Errorf("no notification channel configured")
	}

	if c.Scheduler.CronExpression == "" && c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(pushoverTokenEnv); v != "" {
		c.Notifications.Pushover.AppToken = v
	}
	if v := os.Getenv(pushoverUserEnv); v != "" {
		c.Notifications.Pushover.UserKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(redditClientIDEnv); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv(redditSecretEnv); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv(redditAgentEnv); v != "" {
		c.Reddit.UserAgent = v
	}
	if v := os.Getenv(redditUserEnv); v != "" {
		c.Reddit.Username = v
	}
	if v := os.Getenv(redditPassEnv); v != "" {
		c.Reddit.Password = v
	}
}

// normalize lowercases keywords (the match predicate expects them that way)
// and fills each watch's default client.
func (c *Config) normalize() {
	for i := range c.Watches {
		if c.Watches[i].Client == "" {
			c.Watches[i].Client = "reddit"
		}
		for j, keyword := range c.Watches[i].Keywords {
			c.Watches[i].Keywords[j] = strings.ToLower(strings.TrimSpace(keyword))
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler.IntervalMinutes = override.Scheduler.IntervalMinutes
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.MaxConcurrent > 0 {
		base.Scheduler.MaxConcurrent = override.Scheduler.MaxConcurrent
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}

	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if override.Reddit.ClientID != "" {
		base.Reddit.ClientID = override.Reddit.ClientID
	}
	if override.Reddit.ClientSecret != "" {
		base.Reddit.ClientSecret = override.Reddit.ClientSecret
	}
	if override.Reddit.Username != "" {
		base.Reddit.Username = override.Reddit.Username
	}
	if override.Reddit.Password != "" {
		base.Reddit.Password = override.Reddit.Password
	}

	if override.Notifications.Pushover.AppToken != "" {
		base.Notifications.Pushover.AppToken = override.Notifications.Pushover.AppToken
	}
	if override.Notifications.Pushover.UserKey != "" {
		base.Notifications.Pushover.UserKey = override.Notifications.Pushover.UserKey
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Watches) > 0 {
		base.Watches = override.Watches
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 5,
			MaxConcurrent:   4,
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "processed_items.json",
		},
		Reddit: RedditConfig{
			UserAgent: "KeywordWatcher/1.0",
		},
	}
}
