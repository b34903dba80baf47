// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	OpenAIKey    string        `yaml:"openai_key"`
	GeminiKey    string        `yaml:"gemini_key"`
	DefaultModel string        `yaml:"default_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

type ScrapeConfig struct {
	ContextTerms  []string      `yaml:"context_terms"`  // appended to search queries
	IndustrySites []string      `yaml:"industry_sites"` // crawled for extra context
	RequestDelay  time.Duration `yaml:"request_delay"`
	MaxSnippets   int           `yaml:"max_snippets"`
	UserAgent     string        `yaml:"user_agent"`
}

type ImagesConfig struct {
	MaxCandidates int           `yaml:"max_candidates"`
	RequestDelay  time.Duration `yaml:"request_delay"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type BatchConfig struct {
	InterRowDelay  time.Duration `yaml:"inter_row_delay"`
	InterStepDelay time.Duration `yaml:"inter_step_delay"`
}

// PublishConfig carries the product knowledge woven into generated articles.
type PublishConfig struct {
	Company       string            `yaml:"company"`
	BaseURL       string            `yaml:"base_url"`
	Phone         string            `yaml:"phone"`
	InternalLinks map[string]string `yaml:"internal_links"` // anchor text -> url
	OutboundLinks map[string]string `yaml:"outbound_links"`
}

type AdminConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	Password     string        `yaml:"password"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Images   ImagesConfig   `yaml:"images"`
	Session  SessionConfig  `yaml:"session"`
	Batch    BatchConfig    `yaml:"batch"`
	Publish  PublishConfig  `yaml:"publish"`
	Admin    AdminConfig    `yaml:"admin"`
	Notify   NotifyConfig   `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" && !dev {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" && !dev {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		// generation steps can hold a request open for a while
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 90 * time.Second
	}
	if cfg.Scrape.RequestDelay <= 0 {
		cfg.Scrape.RequestDelay = 2 * time.Second
	}
	if cfg.Scrape.MaxSnippets <= 0 {
		cfg.Scrape.MaxSnippets = 10
	}
	if cfg.Scrape.UserAgent == "" {
		cfg.Scrape.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}
	if cfg.Images.MaxCandidates <= 0 {
		cfg.Images.MaxCandidates = 8
	}
	if cfg.Images.RequestDelay <= 0 {
		cfg.Images.RequestDelay = time.Second
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 2 * time.Hour
	}
	if cfg.Batch.InterRowDelay <= 0 {
		cfg.Batch.InterRowDelay = 2 * time.Second
	}
	if cfg.Batch.InterStepDelay <= 0 {
		cfg.Batch.InterStepDelay = 500 * time.Millisecond
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
}
