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

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"` // websocket origins; empty allows all
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
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

// RelayConfig describes the single external workflow endpoint chat text is forwarded to.
// An empty WebhookURL is valid: every relay call then reports "not configured".
type RelayConfig struct {
	WebhookURL      string        `yaml:"webhook_url"`
	Timeout         time.Duration `yaml:"timeout"`
	FieldPriority   []string      `yaml:"field_priority"`
	ConcurrentLimit int           `yaml:"concurrent_limit"`
}

type ChatConfig struct {
	Workers         int           `yaml:"workers"`
	IdleTTL         time.Duration `yaml:"idle_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	RateLimit       int           `yaml:"rate_limit"` // submissions per window per user, 0 disables
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type JobsConfig struct {
	FilterMode        string        `yaml:"filter_mode"` // client|remote
	StatusRefreshCron string        `yaml:"status_refresh_cron"`
	ClosingWindow     time.Duration `yaml:"closing_window"`
	HotThreshold      int           `yaml:"hot_threshold"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type I18nConfig struct {
	Lang string `yaml:"lang"` // id|en
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Relay    RelayConfig    `yaml:"relay"`
	Chat     ChatConfig     `yaml:"chat"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Auth     AuthConfig     `yaml:"auth"`
	I18n     I18nConfig     `yaml:"i18n"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	FilterModeClient = "client"
	FilterModeRemote = "remote"
)

// DefaultFieldPriority is the order in which reply fields are looked up on a structured webhook response.
var DefaultFieldPriority = []string{"reply", "message", "output", "result"}

// LoadConfig reads the YAML file at path. A .env file, if present, is loaded
// first so that environment overrides can live next to the binary.
func LoadConfig(path string, dev bool) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// LoadClientConfig is LoadConfig for the terminal client, which only talks to
// the relay and so skips the server-side requirements.
func LoadClientConfig(path string, dev bool) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

func load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployments are allowed
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RELAY_WEBHOOK_URL"); v != "" {
		cfg.Relay.WebhookURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
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
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	cfg.Relay.WebhookURL = strings.TrimSpace(cfg.Relay.WebhookURL)
	if cfg.Relay.Timeout <= 0 {
		cfg.Relay.Timeout = 20 * time.Second
	}
	if len(cfg.Relay.FieldPriority) == 0 {
		cfg.Relay.FieldPriority = append([]string(nil), DefaultFieldPriority...)
	}
	if cfg.Relay.ConcurrentLimit <= 0 {
		cfg.Relay.ConcurrentLimit = 16
	}

	if cfg.Chat.Workers <= 0 {
		cfg.Chat.Workers = 8
	}
	if cfg.Chat.IdleTTL <= 0 {
		cfg.Chat.IdleTTL = 30 * time.Minute
	}
	if cfg.Chat.SweepInterval <= 0 {
		cfg.Chat.SweepInterval = time.Minute
	}
	if cfg.Chat.RateLimitWindow <= 0 {
		cfg.Chat.RateLimitWindow = time.Minute
	}

	if cfg.Jobs.FilterMode == "" {
		cfg.Jobs.FilterMode = FilterModeClient
	}
	if cfg.Jobs.StatusRefreshCron == "" {
		cfg.Jobs.StatusRefreshCron = "@every 1h"
	}
	if cfg.Jobs.ClosingWindow <= 0 {
		cfg.Jobs.ClosingWindow = 7 * 24 * time.Hour
	}
	if cfg.Jobs.HotThreshold <= 0 {
		cfg.Jobs.HotThreshold = 50
	}

	if cfg.I18n.Lang == "" {
		cfg.I18n.Lang = "id"
	}
}

// Validate performs minimal validation. The relay webhook is deliberately optional.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch c.Jobs.FilterMode {
	case FilterModeClient, FilterModeRemote:
	default:
		return fmt.Errorf("jobs.filter_mode must be %q or %q", FilterModeClient, FilterModeRemote)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
