package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ListenAddr     string `mapstructure:"listen_addr"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	CacheTTLSeconds        int64         `mapstructure:"cache_ttl_seconds"`
	FetchTimeoutSeconds    int64         `mapstructure:"fetch_timeout_seconds"`
	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval_seconds"`
	CacheTTL               time.Duration `mapstructure:"-"`
	FetchTimeout           time.Duration `mapstructure:"-"`
	RefreshInterval        time.Duration `mapstructure:"-"`

	NewsRateLimit     int           `mapstructure:"news_rate_limit"`
	ChatRateLimit     int           `mapstructure:"chat_rate_limit"`
	RateWindowSeconds int64         `mapstructure:"rate_window_seconds"`
	RateWindow        time.Duration `mapstructure:"-"`

	ArticlesPerPage int `mapstructure:"articles_per_page"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "trendlens")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("cache_ttl_seconds", int64((5*time.Minute)/time.Second))
	v.SetDefault("fetch_timeout_seconds", 15)
	v.SetDefault("refresh_interval_seconds", int64((2*time.Minute)/time.Second))
	v.SetDefault("news_rate_limit", 60) // requests per window
	v.SetDefault("chat_rate_limit", 20)
	v.SetDefault("rate_window_seconds", 60)
	v.SetDefault("articles_per_page", 12)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/trendlens.db")
	v.SetDefault("openai_model", "gpt-4o")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_interval_seconds (must be positive seconds)")
	}
	if cfg.RateWindowSeconds <= 0 {
		return nil, fmt.Errorf("invalid rate_window_seconds (must be positive seconds)")
	}
	if cfg.NewsRateLimit <= 0 || cfg.ChatRateLimit <= 0 {
		return nil, fmt.Errorf("rate limits must be positive")
	}
	if cfg.ArticlesPerPage <= 0 {
		return nil, fmt.Errorf("invalid articles_per_page (must be positive)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	cfg.RefreshInterval = time.Duration(cfg.RefreshIntervalSeconds) * time.Second
	cfg.RateWindow = time.Duration(cfg.RateWindowSeconds) * time.Second

	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)

	return &cfg, nil
}

// Redacted returns a copy safe for logging: secrets are masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.OpenAIAPIKey != "" {
		out.OpenAIAPIKey = "***"
	}
	return out
}

// AssistantConfigured reports whether the text-generation provider key is present.
func (c *Config) AssistantConfigured() bool {
	return c != nil && c.OpenAIAPIKey != ""
}
