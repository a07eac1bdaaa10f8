// Package config loads the tracksearch configuration from toml files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/llehouerou/tracksearch/internal/logger"
)

const appName = "tracksearch"

const (
	DefaultMaxHits         = 1000
	DefaultBatchSize       = 500
	DefaultShuffleTimeout  = time.Second
	DefaultRefreshInterval = 7 * 24 * time.Hour
)

type Config struct {
	IndexDir       string   `koanf:"index_dir"`       // bleve index root (default: XDG data dir)
	StateDB        string   `koanf:"state_db"`        // sqlite state file (default: XDG data dir)
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music library

	MaxHits         int    `koanf:"max_hits"`
	BatchSize       int    `koanf:"batch_size"`
	ShuffleTimeout  string `koanf:"shuffle_timeout"`  // e.g. "1s"
	RefreshInterval string `koanf:"refresh_interval"` // e.g. "168h", "0" disables expiry

	// Desktop notification when a rebuild completes (default: true)
	Notifications *bool `koanf:"notifications"`

	Log LogConfig `koanf:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "console" or "json"
}

func Load() (*Config, error) {
	return loadFrom(getConfigPaths())
}

func loadFrom(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.IndexDir = expandPath(cfg.IndexDir)
	cfg.StateDB = expandPath(cfg.StateDB)

	// Expand ~ in library_sources
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/tracksearch/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetIndexDir returns the index root, defaulting to the XDG data dir.
func (c *Config) GetIndexDir() string {
	if c.IndexDir != "" {
		return c.IndexDir
	}
	return filepath.Join(xdg.DataHome, appName, "index")
}

// GetStateDB returns the state database path. Empty means the state
// package picks its XDG default.
func (c *Config) GetStateDB() string {
	return c.StateDB
}

func (c *Config) GetMaxHits() int {
	if c.MaxHits <= 0 {
		return DefaultMaxHits
	}
	return c.MaxHits
}

func (c *Config) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

func (c *Config) GetShuffleTimeout() time.Duration {
	d, err := time.ParseDuration(c.ShuffleTimeout)
	if err != nil || d <= 0 {
		return DefaultShuffleTimeout
	}
	return d
}

// GetRefreshInterval returns how long indexed data stays fresh. Zero
// disables expiry.
func (c *Config) GetRefreshInterval() time.Duration {
	if c.RefreshInterval == "" {
		return DefaultRefreshInterval
	}
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d < 0 {
		return DefaultRefreshInterval
	}
	return d
}

// NotificationsEnabled returns true unless notifications were turned off.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// GetLoggerConfig returns the logger configuration with defaults applied.
func (c *Config) GetLoggerConfig() logger.Config {
	cfg := logger.NewConfig()
	if lvl, err := zapcore.ParseLevel(c.Log.Level); err == nil && c.Log.Level != "" {
		cfg.Level = lvl
	}
	if c.Log.Format == "json" || c.Log.Format == "console" {
		cfg.Format = c.Log.Format
	}
	return cfg
}
