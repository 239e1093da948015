// Package config loads the Engine Config (C12): a small on-disk,
// viper-managed settings file with hot-reload via fsnotify.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the Engine Config's field set, per SPEC_FULL.md §3.
type Config struct {
	ResampleCacheDir string `mapstructure:"resample_cache_dir"`
	LogLevel         string `mapstructure:"log_level"`
	ListenAddr       string `mapstructure:"listen_addr"`
	DefaultDeviceID  string `mapstructure:"default_device_id"`
	DefaultExclusive bool   `mapstructure:"default_exclusive"`
	EQPreset         string `mapstructure:"eq_preset"`

	v  *viper.Viper
	mu sync.RWMutex
}

// Get returns the process-wide Config singleton, loading it on first use.
func Get() *Config {
	once.Do(func() {
		instance = &Config{v: viper.New()}
		if err := instance.load(); err != nil {
			fmt.Printf("config: %v\n", err)
		}
	})
	return instance
}

func (c *Config) load() error {
	c.v.SetConfigName("config")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(c.getUserConfigDir())
	c.v.AddConfigPath(".")

	c.setDefaults()

	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := c.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := c.v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	c.v.WatchConfig()
	c.v.OnConfigChange(func(e fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.v.Unmarshal(c); err != nil {
			fmt.Printf("config: failed to reload: %v\n", err)
		}
	})

	return nil
}

func (c *Config) setDefaults() {
	c.v.SetDefault("resample_cache_dir", filepath.Join(c.getDataDir(), "resample_cache"))
	c.v.SetDefault("log_level", "info")
	c.v.SetDefault("listen_addr", "127.0.0.1:5555")
	c.v.SetDefault("default_device_id", "")
	c.v.SetDefault("default_exclusive", false)
	c.v.SetDefault("eq_preset", "flat")
}

func (c *Config) getUserConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "audioengine")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "audioengine")
}

func (c *Config) getDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "audioengine")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "audioengine")
}

func (c *Config) createDefaultConfig() error {
	configDir := c.getUserConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")
	return c.v.SafeWriteConfigAs(configPath)
}

// Reload re-reads the config file from disk.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v.ReadInConfig()
}

// Snapshot returns a copy of the current field values, safe to read
// without further locking.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Config{
		ResampleCacheDir: c.ResampleCacheDir,
		LogLevel:         c.LogLevel,
		ListenAddr:       c.ListenAddr,
		DefaultDeviceID:  c.DefaultDeviceID,
		DefaultExclusive: c.DefaultExclusive,
		EQPreset:         c.EQPreset,
	}
}
