package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

// EnvPrefix is put in front of every environment variable, e.g. DONATIO_LOG_LEVEL.
const EnvPrefix = "DONATIO_"

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	RefundsProRata = "pro-rata"
	RefundsPooled  = "pooled"
)

// Config is everything a process needs to build an engine around the core.
type Config struct {
	VotingPeriodMinutes uint32   `mapstructure:"voting_period_minutes" env:"VOTING_PERIOD_MINUTES"`
	GovernanceEnabled   bool     `mapstructure:"governance_enabled" env:"GOVERNANCE_ENABLED"`
	Admins              []string `mapstructure:"admins" env:"ADMINS" envSeparator:","`
	Creators            []string `mapstructure:"creators" env:"CREATORS" envSeparator:","`
	Factory             string   `mapstructure:"factory" env:"FACTORY"`
	Asset               string   `mapstructure:"asset" env:"ASSET"`

	Refunds RefundsConfig `mapstructure:"refunds" envPrefix:"REFUNDS_"`
	State   StateConfig   `mapstructure:"state" envPrefix:"STATE_"`
	Redis   RedisConfig   `mapstructure:"redis" envPrefix:"REDIS_"`
	Log     LogConfig     `mapstructure:"log" envPrefix:"LOG_"`
}

type RefundsConfig struct {
	Policy string `mapstructure:"policy" env:"POLICY"`
	Pool   string `mapstructure:"pool" env:"POOL"`
}

// StateConfig picks the persistence backend. DSN is a file path for file and sqlite.
type StateConfig struct {
	Backend string `mapstructure:"backend" env:"BACKEND"`
	DSN     string `mapstructure:"dsn" env:"DSN"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url" env:"URL"`
	Key    string `mapstructure:"key" env:"KEY"`
	Stream string `mapstructure:"stream" env:"STREAM"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL"`
	Format string `mapstructure:"format" env:"FORMAT"`
}

// VotingPeriod as a duration.
func (c *Config) VotingPeriod() time.Duration {
	return time.Duration(c.VotingPeriodMinutes) * time.Minute
}

// Load reads the config file (path, or donatio.{yaml,toml,json} in the working
// directory when path is empty), then applies DONATIO_* variables on top. .env files
// are loaded first so they count as environment; variables already set win.
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("donatio")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("voting_period_minutes", 5)
	v.SetDefault("governance_enabled", true)
	v.SetDefault("asset", string(sdk.AssetDonatio))
	v.SetDefault("refunds.policy", RefundsProRata)
	v.SetDefault("state.backend", BackendMemory)
	v.SetDefault("redis.key", "donatio:state")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func (c *Config) normalize() {
	c.Refunds.Policy = strings.ToLower(strings.TrimSpace(c.Refunds.Policy))
	c.State.Backend = strings.ToLower(strings.TrimSpace(c.State.Backend))
	if c.State.DSN == "" {
		switch c.State.Backend {
		case BackendFile:
			c.State.DSN = "state.json"
		case BackendSQLite:
			c.State.DSN = "donatio.db"
		}
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.VotingPeriodMinutes == 0 {
		return fmt.Errorf("voting_period_minutes must be at least 1")
	}
	for _, a := range append(append([]string{}, c.Admins...), c.Creators...) {
		if !sdk.Address(a).Normalize().IsValid() {
			return fmt.Errorf("invalid address %q", a)
		}
	}
	if c.Factory != "" && !sdk.Address(c.Factory).Normalize().IsValid() {
		return fmt.Errorf("invalid factory address %q", c.Factory)
	}
	switch c.Refunds.Policy {
	case RefundsProRata:
	case RefundsPooled:
		if !sdk.Address(c.Refunds.Pool).IsValid() {
			return fmt.Errorf("refunds.pool must be a valid address for the pooled policy")
		}
	default:
		return fmt.Errorf("unknown refund policy %q", c.Refunds.Policy)
	}
	switch c.State.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.State.Backend)
	}
	return nil
}
