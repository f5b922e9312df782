package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database    DatabaseConfig
	Definitions DefinitionsConfig
	Engine      EngineConfig
	Bridge      BridgeConfig
	Log         LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// DefinitionsConfig locates display, column, list, group and skin files.
type DefinitionsConfig struct {
	Dir string
}

// EngineConfig holds render settings.
type EngineConfig struct {
	Tick           string `mapstructure:"tick"`
	DefaultDisplay string `mapstructure:"default_display"`
	PageText       string `mapstructure:"page_text"`
}

// BridgeConfig holds the websocket listener settings.
type BridgeConfig struct {
	Addr      string
	WriteWait time.Duration `mapstructure:"write_wait"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level   string
	Journal bool
}

func defaultDataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "rostertab")
}

func configPath() string {
	if p := os.Getenv("ROSTERTAB_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "rostertab", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix ROSTERTAB_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(defaultDataDir(), "rostertab.db"))
	v.SetDefault("definitions.dir", filepath.Join(os.Getenv("HOME"), ".config", "rostertab", "definitions"))
	v.SetDefault("engine.tick", "TICK")
	v.SetDefault("engine.default_display", "default")
	v.SetDefault("engine.page_text", "&7{current_page}&8/&7{max_page}")
	v.SetDefault("bridge.addr", "127.0.0.1:8765")
	v.SetDefault("bridge.write_wait", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.journal", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ROSTERTAB_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "rostertab"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ROSTERTAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) (string, error) {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("definitions.dir", cfg.Definitions.Dir)
	v.Set("engine.tick", cfg.Engine.Tick)
	v.Set("engine.default_display", cfg.Engine.DefaultDisplay)
	v.Set("engine.page_text", cfg.Engine.PageText)
	v.Set("bridge.addr", cfg.Bridge.Addr)
	v.Set("bridge.write_wait", cfg.Bridge.WriteWait.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.journal", cfg.Log.Journal)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
