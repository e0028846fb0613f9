// Package config loads catalystiv configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CATALYSTIV"

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`
	Screener ScreenerConfig `mapstructure:"screener" yaml:"screener" json:"screener"`
	Research ResearchConfig `mapstructure:"research" yaml:"research" json:"research"`
	NIH      NIHConfig      `mapstructure:"nih"      yaml:"nih"      json:"nih"`

	file string // config file that was read, empty when none
}

// File returns the path of the config file that was read, if any.
func (c *Config) File() string {
	return c.file
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host              string   `mapstructure:"host"                yaml:"host"                json:"host"`
	Port              int      `mapstructure:"port"                yaml:"port"                json:"port"`
	CORSOrigins       []string `mapstructure:"cors_origins"        yaml:"cors_origins"        json:"cors_origins"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec" json:"request_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// ScreenerConfig seeds request defaults for catalyst screening at the API
// and CLI boundary.
type ScreenerConfig struct {
	DaysBefore           int     `mapstructure:"days_before"             yaml:"days_before"             json:"days_before"`
	DaysAfter            int     `mapstructure:"days_after"              yaml:"days_after"              json:"days_after"`
	MaxStrikeDistancePct float64 `mapstructure:"max_strike_distance_pct" yaml:"max_strike_distance_pct" json:"max_strike_distance_pct"`
	PostCatalystMinDays  int     `mapstructure:"post_catalyst_min_days"  yaml:"post_catalyst_min_days"  json:"post_catalyst_min_days"`
	PostCatalystMaxDays  int     `mapstructure:"post_catalyst_max_days"  yaml:"post_catalyst_max_days"  json:"post_catalyst_max_days"`
}

// ResearchConfig holds research aggregation settings.
type ResearchConfig struct {
	ConcurrentBuilds int `mapstructure:"concurrent_builds" yaml:"concurrent_builds" json:"concurrent_builds"`
}

// NIHConfig holds ClinicalTrials.gov provider settings.
type NIHConfig struct {
	BaseURL            string `mapstructure:"base_url"             yaml:"base_url"             json:"base_url"`
	TimeoutSec         int    `mapstructure:"timeout_sec"          yaml:"timeout_sec"          json:"timeout_sec"`
	DefaultLimit       int    `mapstructure:"default_limit"        yaml:"default_limit"        json:"default_limit"`
	BreakerFailures    int    `mapstructure:"breaker_failures"     yaml:"breaker_failures"     json:"breaker_failures"`
	BreakerCooldownSec int    `mapstructure:"breaker_cooldown_sec" yaml:"breaker_cooldown_sec" json:"breaker_cooldown_sec"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.catalystiv/config.yaml
//  3. /etc/catalystiv/config.yaml
//
// Environment variables override file values, e.g. CATALYSTIV_API_PORT.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".catalystiv"))
	v.AddConfigPath("/etc/catalystiv")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.file = v.ConfigFileUsed()
	return &cfg, nil
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.request_timeout_sec", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("screener.days_before", 7)
	v.SetDefault("screener.days_after", 3)
	v.SetDefault("screener.max_strike_distance_pct", 10.0)
	v.SetDefault("screener.post_catalyst_min_days", 1)
	v.SetDefault("screener.post_catalyst_max_days", 14)

	v.SetDefault("research.concurrent_builds", 4)

	v.SetDefault("nih.base_url", "https://clinicaltrials.gov/api/v2/studies")
	v.SetDefault("nih.timeout_sec", 30)
	v.SetDefault("nih.default_limit", 100)
	v.SetDefault("nih.breaker_failures", 5)
	v.SetDefault("nih.breaker_cooldown_sec", 60)
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.API.Port <= 0 || c.API.Port > 65535 {
		problems = append(problems, fmt.Sprintf("api.port %d out of range", c.API.Port))
	}
	if c.API.RequestTimeoutSec <= 0 {
		problems = append(problems, "api.request_timeout_sec must be positive")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}
	if c.Screener.DaysBefore < 0 || c.Screener.DaysAfter < 0 {
		problems = append(problems, "screener day windows must not be negative")
	}
	if c.Screener.MaxStrikeDistancePct <= 0 {
		problems = append(problems, "screener.max_strike_distance_pct must be positive")
	}
	if c.Screener.PostCatalystMinDays > c.Screener.PostCatalystMaxDays {
		problems = append(problems, "screener.post_catalyst_min_days exceeds post_catalyst_max_days")
	}
	if c.Research.ConcurrentBuilds <= 0 {
		problems = append(problems, "research.concurrent_builds must be positive")
	}
	if c.NIH.BaseURL == "" {
		problems = append(problems, "nih.base_url is required")
	}
	if c.NIH.TimeoutSec <= 0 || c.NIH.DefaultLimit <= 0 || c.NIH.BreakerFailures <= 0 || c.NIH.BreakerCooldownSec <= 0 {
		problems = append(problems, "nih timeout, default_limit and breaker settings must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
