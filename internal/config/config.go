// Package config loads drugguard CLI settings from an optional YAML file and
// DRUGGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
	"github.com/Joeboy77/drug-guard-fe/logger"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "DRUGGUARD"
	configName = "drugguard"
)

// Config holds all settings of the CLI.
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	RetryMax  int           `mapstructure:"retry_max"`
	TokenDir  string        `mapstructure:"token_dir"`
	Log       LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultTokenDir is $HOME/.drugguard, or .drugguard when there is no home.
func DefaultTokenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drugguard"
	}

	return filepath.Join(home, ".drugguard")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", drugguard.DefaultBaseURL)
	v.SetDefault("timeout", drugguard.DefaultTimeout)
	v.SetDefault("user_agent", "drugguard-cli")
	v.SetDefault("retry_max", 0)
	v.SetDefault("token_dir", DefaultTokenDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatText)
}

// Load reads configuration. An explicit path must exist; with an empty path
// drugguard.yaml is looked up in the working directory and the default token
// directory, and it is fine for none to exist. Environment variables win
// over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultTokenDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the settings can build a working client.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base_url: missing host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative, got %d", c.RetryMax)
	}
	if c.TokenDir == "" {
		return errors.New("token_dir is required")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	return nil
}

// ClientConfig returns the API client settings.
func (c *Config) ClientConfig() drugguard.ClientConfig {
	cc := drugguard.DefaultConfig()
	cc.Timeout = c.Timeout
	cc.UserAgent = c.UserAgent
	cc.RetryMax = c.RetryMax

	return cc
}

// LoggerOptions returns the logger settings. Call only on a validated Config.
func (c *Config) LoggerOptions() logger.Options {
	level, _ := logger.ParseLevel(c.Log.Level)
	return logger.Options{Level: level, Format: c.Log.Format}
}
