package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "LISTING_SCANNER_CONFIG"
	databasePathEnv     = "LISTING_SCANNER_DB"
	debuggerURLEnv      = "BROWSER_DEBUGGER_URL"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	defaultPollInterval = 2 * time.Second
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Poll          PollConfig         `yaml:"poll"`
	Storage       StorageConfig      `yaml:"storage"`
	Server        ServerConfig       `yaml:"server"`
	Browser       BrowserConfig      `yaml:"browser"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PollConfig defines the fixed evaluation cadence. The interval is an
// explicit contract: one pass per tick, no overlap.
type PollConfig struct {
	IntervalSeconds int `yaml:"intervalSeconds"`
}

// Interval resolves the configured cadence, defaulting to 2s.
func (p PollConfig) Interval() time.Duration {
	if p.IntervalSeconds <= 0 {
		return defaultPollInterval
	}
	return time.Duration(p.IntervalSeconds) * time.Second
}

// StorageConfig describes the sqlite result store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig describes the local HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// BrowserConfig wires the DevTools connection to the observed browser.
type BrowserConfig struct {
	DebuggerURL    string `yaml:"debuggerUrl"`
	Headless       bool   `yaml:"headless"`
	PageURLPattern string `yaml:"pageUrlPattern"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(debuggerURLEnv); v != "" {
		c.Browser.DebuggerURL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Poll.IntervalSeconds > 0 {
		base.Poll.IntervalSeconds = override.Poll.IntervalSeconds
	}

	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Browser.DebuggerURL != "" {
		base.Browser.DebuggerURL = override.Browser.DebuggerURL
	}
	if override.Browser.Headless {
		base.Browser.Headless = true
	}
	if override.Browser.PageURLPattern != "" {
		base.Browser.PageURLPattern = override.Browser.PageURLPattern
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Poll:    PollConfig{IntervalSeconds: 2},
		Storage: StorageConfig{Path: "data/results.db"},
		Server:  ServerConfig{Addr: "127.0.0.1:8642"},
		Browser: BrowserConfig{
			PageURLPattern: "sellercentral",
		},
	}
}
