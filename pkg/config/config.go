package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	BackendBaseURL        string `mapstructure:"BACKEND_BASE_URL"`
	BackendToken          string `mapstructure:"BACKEND_TOKEN"`
	BackendTimeoutSeconds int    `mapstructure:"BACKEND_TIMEOUT_SECONDS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	ViewStateTTLMinutes int    `mapstructure:"VIEW_STATE_TTL_MINUTES"`
	DisplayTimezone     string `mapstructure:"DISPLAY_TIMEZONE"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit env file path. A missing file is not an error.
func LoadFrom(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	_ = v.ReadInConfig()

	// Every key needs a default, otherwise AutomaticEnv values are invisible to Unmarshal.
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TOKEN", "")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 0)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("VIEW_STATE_TTL_MINUTES", 30)
	v.SetDefault("DISPLAY_TIMEZONE", "Local")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.ViewStateTTLMinutes <= 0 {
		return nil, fmt.Errorf("VIEW_STATE_TTL_MINUTES must be positive, got %d", cfg.ViewStateTTLMinutes)
	}
	if cfg.BackendTimeoutSeconds < 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must not be negative, got %d", cfg.BackendTimeoutSeconds)
	}
	return &cfg, nil
}

// BackendTimeout is zero when no timeout is configured.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

func (c *Config) ViewStateTTL() time.Duration {
	return time.Duration(c.ViewStateTTLMinutes) * time.Minute
}

// Location resolves DISPLAY_TIMEZONE, used for chart labels.
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.DisplayTimezone)
}
