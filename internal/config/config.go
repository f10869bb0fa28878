package config

import "time"

// Config represents the complete application configuration, loaded from the
// config file, environment variables (SHELFLINE_ prefix), and flag overrides.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Market    MarketConfig    `mapstructure:"market"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Photos    PhotosConfig    `mapstructure:"photos"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// MarketConfig configures the marketplace API client and its OAuth flow.
//
// CallsPerSecond and Burst feed the local token bucket; AcquireTimeout bounds
// how long a caller blocks waiting for admission before the call fails with a
// rate limit error.
type MarketConfig struct {
	BaseURL      string   `mapstructure:"base_url"`
	AuthURL      string   `mapstructure:"auth_url"`
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURI  string   `mapstructure:"redirect_uri"`
	Scopes       []string `mapstructure:"scopes"`

	CallsPerSecond float64       `mapstructure:"calls_per_second"`
	Burst          float64       `mapstructure:"burst"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TrackerWindow  time.Duration `mapstructure:"tracker_window"`
}

// AssistantConfig configures the local LLM daemon and suggestion behavior.
type AssistantConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	PromptDir   string        `mapstructure:"prompt_dir"`
}

// LoggingConfig contains logging configuration.
// Valid levels: trace, debug, info, warn, error.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// PhotosConfig configures item photo storage and thumbnailing.
type PhotosConfig struct {
	Dir           string `mapstructure:"dir"`
	ThumbnailSize int    `mapstructure:"thumbnail_size"`
}
