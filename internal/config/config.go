package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the test defaults. Command-line flags override individual
// fields after loading.
type Config struct {
	DownloadBytes int64         `mapstructure:"download_bytes"`
	UploadBytes   int64         `mapstructure:"upload_bytes"`
	Connections   int           `mapstructure:"connections"`
	Count         int           `mapstructure:"count"`
	PingCount     int           `mapstructure:"ping_count"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LimitBytes    int           `mapstructure:"limit_bytes"`
	HistoryPath   string        `mapstructure:"history_path"`
}

// Load reads the config file at path, or the default location when path is
// empty (a missing default file is fine). VELO_* environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("download_bytes", int64(128*1024*1024))
	v.SetDefault("upload_bytes", int64(40*1024*1024))
	v.SetDefault("connections", 1)
	v.SetDefault("count", 1)
	v.SetDefault("ping_count", 3)
	v.SetDefault("timeout", "10s")
	v.SetDefault("limit_bytes", 0)
	v.SetDefault("history_path", defaultHistoryPath())

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("VELO")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DownloadBytes <= 0 || c.UploadBytes <= 0 {
		return fmt.Errorf("byte counts must be positive")
	}
	if c.Connections < 1 {
		return fmt.Errorf("connections must be at least 1, got %d", c.Connections)
	}
	if c.Count < 1 || c.PingCount < 1 {
		return fmt.Errorf("test counts must be at least 1")
	}
	if c.LimitBytes < 0 {
		return fmt.Errorf("limit_bytes must not be negative")
	}
	return nil
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "velo")
}

func defaultHistoryPath() string {
	return filepath.Join(defaultConfigDir(), "history.db")
}
