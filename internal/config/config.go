package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config is the top-level xpeak configuration.
type Config struct {
	DBPath   string `mapstructure:"db_path"`
	UserID   string `mapstructure:"user_id"`
	UserName string `mapstructure:"user_name"`
	Timezone string `mapstructure:"timezone"`
	Habits   Habits `mapstructure:"habits"`
	AI       AI     `mapstructure:"ai"`
	Server   Server `mapstructure:"server"`
	Log      Log    `mapstructure:"log"`
}

type Habits struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// AI configures the Gemini assistant. An empty APIKey disables it.
type AI struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies XPEAK_* environment overrides and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", DBPath())
	v.SetDefault("user_id", DefaultUserID)
	v.SetDefault("user_name", "")
	v.SetDefault("timezone", "")
	v.SetDefault("habits.sweep_interval", DefaultSweepInterval)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", DefaultAI.Model)
	v.SetDefault("ai.requests_per_minute", DefaultAI.RequestsPerMinute)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("log.level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// A missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}
	if cfg.Habits.SweepInterval <= 0 {
		cfg.Habits.SweepInterval = DefaultSweepInterval
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured time zone. Empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DBPath returns the full path to the default SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
