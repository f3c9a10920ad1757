// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOwnerID      int64 = 8145485145
	DefaultAllowedGroup int64 = -1003296016362
	DefaultIFSCBaseURL        = "https://ifsc.razorpay.com"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token        string  `yaml:"token"`
	Mode         string  `yaml:"mode"`        // polling | webhook
	WebhookURL   string  `yaml:"webhook_url"` // public base URL Telegram posts to
	WebhookPath  string  `yaml:"webhook_path"`
	Workers      int     `yaml:"workers"` // update workers
	OwnerID      int64   `yaml:"owner_id"`
	AllowedChats []int64 `yaml:"allowed_chats"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type LookupConfig struct {
	IFSCBaseURL string        `yaml:"ifsc_base_url"`
	UPIBaseURL  string        `yaml:"upi_base_url"` // optional remote handle directory
	Timeout     time.Duration `yaml:"timeout"`
	HandlesFile string        `yaml:"handles_file"` // optional extra handles (yaml list)
}

type StorageConfig struct {
	UsersFile string `yaml:"users_file"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
}

type KeepAliveConfig struct {
	URL      string        `yaml:"url"`
	Interval time.Duration `yaml:"interval"`
}

type AdminConfig struct {
	APIKey    string        `yaml:"api_key"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	KeepAlive KeepAliveConfig `yaml:"keepalive"`
	Admin     AdminConfig     `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies .env and environment overrides,
// fills defaults and validates. A missing file is not an error: a deployment can be
// configured purely through the environment.
func LoadConfig(path string, dev bool) (*Config, error) {
	cfg, err := Load(path, dev)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is LoadConfig without validation, for offline tooling that never talks to Telegram.
func Load(path string, dev bool) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("OWNER_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("OWNER_ID: %w", err)
		}
		cfg.Bot.OwnerID = id
	}
	if v := os.Getenv("ALLOWED_GROUP"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return fmt.Errorf("ALLOWED_GROUP: %w", err)
			}
			cfg.Bot.AllowedChats = appendUnique(cfg.Bot.AllowedChats, id)
		}
	}
	if v := os.Getenv("RENDER_EXTERNAL_URL"); v != "" {
		cfg.Bot.WebhookURL = v
		if cfg.Bot.Mode == "" {
			cfg.Bot.Mode = "webhook"
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("USERS_FILE"); v != "" {
		cfg.Storage.UsersFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Bot.Mode = strings.ToLower(strings.TrimSpace(cfg.Bot.Mode))
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.WebhookPath == "" {
		cfg.Bot.WebhookPath = "/"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.OwnerID == 0 {
		cfg.Bot.OwnerID = DefaultOwnerID
	}
	if len(cfg.Bot.AllowedChats) == 0 {
		cfg.Bot.AllowedChats = []int64{DefaultAllowedGroup}
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 10000
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Lookup.IFSCBaseURL == "" {
		cfg.Lookup.IFSCBaseURL = DefaultIFSCBaseURL
	}
	cfg.Lookup.IFSCBaseURL = strings.TrimRight(cfg.Lookup.IFSCBaseURL, "/")
	cfg.Lookup.UPIBaseURL = strings.TrimRight(cfg.Lookup.UPIBaseURL, "/")
	if cfg.Lookup.Timeout <= 0 {
		cfg.Lookup.Timeout = 10 * time.Second
	}
	if cfg.Storage.UsersFile == "" {
		cfg.Storage.UsersFile = "authorized_users.json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.RateLimit.PerMinute <= 0 {
		cfg.RateLimit.PerMinute = 20
	}
	if cfg.KeepAlive.Interval <= 0 {
		cfg.KeepAlive.Interval = 10 * time.Minute
	}
	if cfg.KeepAlive.URL == "" {
		cfg.KeepAlive.URL = cfg.Bot.WebhookURL
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Admin.JWTSecret == "" {
		cfg.Admin.JWTSecret = cfg.Admin.APIKey
	}
}

// Validate reports the first configuration problem that prevents serving.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required (or BOT_TOKEN)")
	}
	switch c.Bot.Mode {
	case "polling":
	case "webhook":
		if c.Bot.WebhookURL == "" {
			return errors.New("bot.webhook_url is required in webhook mode (or RENDER_EXTERNAL_URL)")
		}
	default:
		return fmt.Errorf("bot.mode %q: must be polling or webhook", c.Bot.Mode)
	}
	if !strings.HasPrefix(c.Bot.WebhookPath, "/") {
		return errors.New("bot.webhook_path must start with /")
	}
	return nil
}

// WebhookEndpoint is the full URL registered with Telegram.
func (b BotConfig) WebhookEndpoint() string {
	base := strings.TrimRight(b.WebhookURL, "/")
	if b.WebhookPath == "/" || b.WebhookPath == "" {
		return base
	}
	return base + b.WebhookPath
}

func (c *Config) WebhookEndpoint() string { return c.Bot.WebhookEndpoint() }

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func appendUnique(ids []int64, id int64) []int64 {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
