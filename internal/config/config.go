// Package config loads parkspace settings from a YAML file and the environment.
//
// Sources are tried in this order:
//  1. the path passed to Load (the --config flag);
//  2. the CONFIG_PATH environment variable;
//  3. ./parkspace.yaml in the working directory;
//  4. environment variables only.
//
// When a file is used, environment variables are applied on top of it.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultFile is looked up in the working directory when no path is given
const DefaultFile = "parkspace.yaml"

// Config is the root configuration
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// UpstreamConfig describes the status page and how to fetch it
type UpstreamConfig struct {
	URL       string        `yaml:"url" env:"PARKSPACE_URL" env-default:"https://apps.nutc.edu.tw/getParking/showParkingData.php"`
	Timeout   time.Duration `yaml:"timeout" env:"PARKSPACE_TIMEOUT" env-default:"30s"`
	UserAgent string        `yaml:"user_agent" env:"PARKSPACE_USER_AGENT"`
	// Markup is "regex" or "dom"
	Markup  string        `yaml:"markup" env:"PARKSPACE_MARKUP" env-default:"regex"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig controls the circuit breaker in front of the upstream.
// Zero values fall back to the env-default tags, so the switch is negative.
type BreakerConfig struct {
	Disabled bool          `yaml:"disabled" env:"PARKSPACE_BREAKER_DISABLED"`
	Failures uint32        `yaml:"failures" env:"PARKSPACE_BREAKER_FAILURES" env-default:"5"`
	OpenFor  time.Duration `yaml:"open_for" env:"PARKSPACE_BREAKER_OPEN_FOR" env-default:"60s"`
}

// RefreshConfig sets how often the snapshot is refreshed
type RefreshConfig struct {
	Interval        time.Duration `yaml:"interval" env:"PARKSPACE_REFRESH_INTERVAL" env-default:"60s"`
	CommuteInterval time.Duration `yaml:"commute_interval" env:"PARKSPACE_COMMUTE_INTERVAL" env-default:"30s"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Host string `yaml:"host" env:"PARKSPACE_HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PARKSPACE_HTTP_PORT" env-default:"8080"`
	// RateLimit is the number of requests per minute allowed from one client IP
	RateLimit int `yaml:"rate_limit" env:"PARKSPACE_RATE_LIMIT" env-default:"120"`
}

// Addr returns host:port
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// LogConfig selects log verbosity and format ("json" or "console")
type LogConfig struct {
	Level  string `yaml:"level" env:"PARKSPACE_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"PARKSPACE_LOG_FORMAT" env-default:"json"`
}

// NotifyConfig configures availability notifications
type NotifyConfig struct {
	Cooldown time.Duration `yaml:"cooldown" env:"PARKSPACE_NOTIFY_COOLDOWN" env-default:"10m"`
	// Limit is the number of lots named in one notification
	Limit int `yaml:"limit" env:"PARKSPACE_NOTIFY_LIMIT" env-default:"4"`
	// Channel is "twitter" or "telegram"
	Channel  string         `yaml:"channel" env:"PARKSPACE_NOTIFY_CHANNEL" env-default:"twitter"`
	Twitter  TwitterConfig  `yaml:"twitter"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// TwitterConfig holds OAuth1 credentials for posting notifications
type TwitterConfig struct {
	APIKey       string `yaml:"api_key" env:"TWITTER_API_KEY"`
	APISecret    string `yaml:"api_secret" env:"TWITTER_API_SECRET"`
	AccessToken  string `yaml:"access_token" env:"TWITTER_ACCESS_TOKEN"`
	AccessSecret string `yaml:"access_secret" env:"TWITTER_ACCESS_SECRET"`
}

// Complete reports whether all four credentials are set
func (t TwitterConfig) Complete() bool {
	return t.APIKey != "" && t.APISecret != "" && t.AccessToken != "" && t.AccessSecret != ""
}

// TelegramConfig holds the bot token and target chat for Telegram notifications
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

// Complete reports whether both values are set
func (t TelegramConfig) Complete() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MustLoad is Load that panics on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration from the first available source
func Load(path string) (*Config, error) {
	switch {
	case path != "":
		return loadFile(path)
	case os.Getenv("CONFIG_PATH") != "":
		return loadFile(os.Getenv("CONFIG_PATH"))
	}

	if _, err := os.Stat(DefaultFile); err == nil {
		return loadFile(DefaultFile)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be > 0")
	}
	switch c.Upstream.Markup {
	case "regex", "dom":
	default:
		return fmt.Errorf("upstream.markup must be 'regex' or 'dom', got %q", c.Upstream.Markup)
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s")
	}
	if c.Refresh.CommuteInterval < time.Second {
		return fmt.Errorf("refresh.commute_interval must be at least 1s")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must be >= 0")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console', got %q", c.Log.Format)
	}
	if c.Notify.Cooldown < 0 {
		return fmt.Errorf("notify.cooldown must be >= 0")
	}
	if c.Notify.Limit <= 0 {
		return fmt.Errorf("notify.limit must be > 0")
	}
	switch c.Notify.Channel {
	case "twitter", "telegram":
	default:
		return fmt.Errorf("notify.channel must be 'twitter' or 'telegram', got %q", c.Notify.Channel)
	}
	return nil
}
