package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	Defaults(v)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	require.Equal(t, 8787, cfg.Server.Port)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, 5.0, cfg.Market.CallsPerSecond)
	require.Equal(t, 10.0, cfg.Market.Burst)
	require.Equal(t, 10*time.Second, cfg.Market.AcquireTimeout)
	require.Equal(t, time.Hour, cfg.Market.TrackerWindow)
	require.Equal(t, "http://localhost:11434", cfg.Assistant.BaseURL)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsNonPositiveRate(t *testing.T) {
	v := viper.New()
	Defaults(v)
	v.Set("market.calls_per_second", 0)

	_, err := LoadFrom(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "calls_per_second")
}

func TestLoadParsesDurationStrings(t *testing.T) {
	v := viper.New()
	Defaults(v)
	v.Set("market.acquire_timeout", "2s")
	v.Set("market.tracker_window", "30m")

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Market.AcquireTimeout)
	require.Equal(t, 30*time.Minute, cfg.Market.TrackerWindow)
}
