// Package config provides centralized configuration management for Shelfline.
// Configuration is layered: built-in defaults, an optional config file
// (XDG config dir or the current directory), then SHELFLINE_* environment
// variables and flag-bound overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "SHELFLINE"

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// Defaults applies built-in defaults to the supplied viper instance.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", defaultStorePath())

	v.SetDefault("market.base_url", "https://api.ebay.com/sell/inventory/v1")
	v.SetDefault("market.auth_url", "https://auth.ebay.com/oauth2/authorize")
	v.SetDefault("market.token_url", "https://api.ebay.com/identity/v1/oauth2/token")
	v.SetDefault("market.redirect_uri", "http://localhost:8788/callback")
	v.SetDefault("market.scopes", []string{
		"https://api.ebay.com/oauth/api_scope/sell.inventory",
		"https://api.ebay.com/oauth/api_scope/sell.account",
	})
	v.SetDefault("market.calls_per_second", 5.0)
	v.SetDefault("market.burst", 10.0)
	v.SetDefault("market.acquire_timeout", 10*time.Second)
	v.SetDefault("market.request_timeout", 30*time.Second)
	v.SetDefault("market.tracker_window", time.Hour)

	v.SetDefault("assistant.base_url", "http://localhost:11434")
	v.SetDefault("assistant.model", "llama3.1")
	v.SetDefault("assistant.timeout", 60*time.Second)
	v.SetDefault("assistant.temperature", 0.3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("photos.thumbnail_size", 256)
}

// Load reads configuration from the global viper instance, which the CLI
// initializes with file discovery and env bindings. Safe to call repeatedly.
func Load() (*Config, error) {
	return decode(viper.GetViper())
}

// LoadFrom decodes configuration from a specific viper instance. Used by
// tests that build an isolated instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	return decode(v)
}

// Get returns the last loaded configuration, or nil before the first Load.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// InitViper wires defaults, file discovery, and environment bindings into the
// supplied viper instance. cfgFile, when non-empty, pins the config file.
func InitViper(v *viper.Viper, cfgFile string, configDirs ...string) {
	Defaults(v)

	if strings.TrimSpace(cfgFile) != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		for _, dir := range configDirs {
			if strings.TrimSpace(dir) != "" {
				v.AddConfigPath(dir)
			}
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	configMu.Lock()
	appConfig = cfg
	configMu.Unlock()

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Market.CallsPerSecond <= 0 {
		return fmt.Errorf("market.calls_per_second must be positive, got %v", cfg.Market.CallsPerSecond)
	}
	if cfg.Market.Burst <= 0 {
		return fmt.Errorf("market.burst must be positive, got %v", cfg.Market.Burst)
	}
	if cfg.Market.TrackerWindow <= 0 {
		return fmt.Errorf("market.tracker_window must be positive, got %v", cfg.Market.TrackerWindow)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	return nil
}

func defaultStorePath() string {
	return filepath.Join("data", "shelfline.db")
}
