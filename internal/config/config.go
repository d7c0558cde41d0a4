// Package config provides Viper-based configuration for techfeed.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEndpoint is the technology section of the public content API.
const DefaultEndpoint = "https://content.guardianapis.com/search?section=technology&format=json" +
	"&show-fields=headline,thumbnail&show-tags=contributor&order-by=newest&api-key=test"

// Configuration validation errors.
var (
	ErrEmptyEndpoint      = errors.New("feed.endpoint is required")
	ErrInvalidFormat      = errors.New("feed.format must be 'json' or 'rss'")
	ErrInvalidTimeout     = errors.New("feed timeouts must be positive")
	ErrInvalidInterval    = errors.New("feed.refresh_interval must be non-negative")
	ErrInvalidRefreshRate = errors.New("server.refresh_rate and server.refresh_burst must be positive")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("logging.format must be 'json' or 'text'")
)

// Config represents the complete techfeed configuration.
type Config struct {
	Feed    FeedConfig    `mapstructure:"feed"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FeedConfig controls where and how the feed is loaded.
type FeedConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	Format            string        `mapstructure:"format"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	CheckConnectivity bool          `mapstructure:"check_connectivity"`
	ProbeTimeout      time.Duration `mapstructure:"probe_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address      string  `mapstructure:"address"`
	RefreshRate  float64 `mapstructure:"refresh_rate"`
	RefreshBurst int     `mapstructure:"refresh_burst"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and TECHFEED_* environment variables.
// A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("techfeed")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/techfeed")
	}

	v.SetEnvPrefix("TECHFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.endpoint", DefaultEndpoint)
	v.SetDefault("feed.format", "json")
	v.SetDefault("feed.connect_timeout", 15*time.Second)
	v.SetDefault("feed.read_timeout", 10*time.Second)
	v.SetDefault("feed.refresh_interval", 5*time.Minute)
	v.SetDefault("feed.check_connectivity", true)
	v.SetDefault("feed.probe_timeout", 3*time.Second)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.refresh_rate", 0.2)
	v.SetDefault("server.refresh_burst", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Feed.Endpoint) == "" {
		return ErrEmptyEndpoint
	}
	switch strings.ToLower(c.Feed.Format) {
	case "json", "rss":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Feed.Format)
	}
	if c.Feed.ConnectTimeout <= 0 || c.Feed.ReadTimeout <= 0 || c.Feed.ProbeTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Feed.RefreshInterval < 0 {
		return ErrInvalidInterval
	}
	if c.Server.RefreshRate <= 0 || c.Server.RefreshBurst <= 0 {
		return ErrInvalidRefreshRate
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}
