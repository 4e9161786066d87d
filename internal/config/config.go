// Package config defines the data structures related to configuration and
// includes functions for loading and interpreting the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/costs"
	"github.com/iwvelando/uva-calculator/pkg/datetime"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"github.com/spf13/viper"
)

// Cache backends accepted in exchangeRate.cache.backend.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendSQLite = "sqlite"
)

// Configuration holds all configuration for uva-calculator.
type Configuration struct {
	Logging       LoggingConfig        `yaml:"logging,omitempty"`
	Output        OutputConfig         `yaml:"output,omitempty"`
	ExchangeRate  ExchangeRateConfig   `yaml:"exchangeRate,omitempty"`
	UVA           UVAConfig            `yaml:"uva,omitempty"`
	Jurisdictions []costs.Jurisdiction `yaml:"jurisdictions,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, json
}

// ExchangeRateConfig controls where the official rate comes from.
type ExchangeRateConfig struct {
	Fallback        float64       `yaml:"fallback,omitempty"`
	PrimaryURL      string        `yaml:"primaryURL,omitempty"`
	PrimaryVariable int           `yaml:"primaryVariable,omitempty"`
	SecondaryURL    string        `yaml:"secondaryURL,omitempty"`
	LookbackDays    int           `yaml:"lookbackDays,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
	RefreshSchedule string        `yaml:"refreshSchedule,omitempty"`
	Cache           CacheConfig   `yaml:"cache,omitempty"`
	Band            BandConfig    `yaml:"band,omitempty"`
}

// CacheConfig selects and configures the official rate cache.
type CacheConfig struct {
	Backend      string        `yaml:"backend,omitempty"` // memory, redis, sqlite
	TTL          time.Duration `yaml:"ttl,omitempty"`
	RedisAddress string        `yaml:"redisAddress,omitempty"`
	RedisKey     string        `yaml:"redisKey,omitempty"`
	SQLitePath   string        `yaml:"sqlitePath,omitempty"`
}

// BandConfig anchors the exchange rate band.
type BandConfig struct {
	Anchor      string  `yaml:"anchor,omitempty"` // YYYY-MM-DD
	BaseFloor   float64 `yaml:"baseFloor,omitempty"`
	BaseCeiling float64 `yaml:"baseCeiling,omitempty"`
}

// UVAConfig drives the illustrative UVA-indexed payment projection.
type UVAConfig struct {
	MonthlyInflationPercent float64 `yaml:"monthlyInflationPercent,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("UVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("exchangeRate.fallback", constants.DefaultOfficialRate)
	v.SetDefault("exchangeRate.primaryURL", constants.DefaultPrimaryURL)
	v.SetDefault("exchangeRate.primaryVariable", constants.DefaultPrimaryVariable)
	v.SetDefault("exchangeRate.secondaryURL", constants.DefaultSecondaryURL)
	v.SetDefault("exchangeRate.lookbackDays", constants.DefaultRateLookbackDays)
	v.SetDefault("exchangeRate.timeout", constants.DefaultFetchTimeout)
	v.SetDefault("exchangeRate.refreshSchedule", constants.DefaultRefreshSchedule)
	v.SetDefault("exchangeRate.cache.backend", CacheBackendMemory)
	v.SetDefault("exchangeRate.cache.ttl", constants.DefaultRateCacheTTL)
	v.SetDefault("exchangeRate.cache.redisKey", constants.DefaultRedisKey)
	v.SetDefault("exchangeRate.band.anchor", constants.DefaultBandAnchor)
	v.SetDefault("exchangeRate.band.baseFloor", constants.DefaultBandFloor)
	v.SetDefault("exchangeRate.band.baseCeiling", constants.DefaultBandCeiling)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// DefaultConfiguration returns the configuration used when no file is given.
func DefaultConfiguration() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in configuration defaults: %v", err))
	}
	return conf
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate rejects settings that cannot be wired.
func (c *Configuration) Validate() error {
	switch c.ExchangeRate.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.ExchangeRate.Cache.RedisAddress == "" {
			return fmt.Errorf("exchangeRate.cache.redisAddress is required for the redis backend")
		}
	case CacheBackendSQLite:
		if c.ExchangeRate.Cache.SQLitePath == "" {
			return fmt.Errorf("exchangeRate.cache.sqlitePath is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown exchangeRate.cache.backend %q (expected %s, %s or %s)",
			c.ExchangeRate.Cache.Backend, CacheBackendMemory, CacheBackendRedis, CacheBackendSQLite)
	}

	if c.ExchangeRate.Fallback <= 0 {
		return fmt.Errorf("exchangeRate.fallback must be positive, got %v", c.ExchangeRate.Fallback)
	}
	if _, err := c.Band(); err != nil {
		return err
	}
	if _, err := c.Schedule(); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.ExchangeRate.Cache.TTL > constants.DefaultRateCacheTTL {
		warnings = append(warnings, fmt.Sprintf("exchange rate cache TTL %s is longer than %s; quotes may be stale",
			c.ExchangeRate.Cache.TTL, constants.DefaultRateCacheTTL))
	}
	if c.ExchangeRate.Fallback < constants.MinSimulatedRate || c.ExchangeRate.Fallback > constants.MaxSimulatedRate {
		warnings = append(warnings, fmt.Sprintf("fallback rate %.2f is outside the simulated range [%.0f, %.0f]",
			c.ExchangeRate.Fallback, constants.MinSimulatedRate, constants.MaxSimulatedRate))
	}
	if len(c.Jurisdictions) == 0 {
		warnings = append(warnings, "no jurisdictions configured, using built-in cost schedule")
	}
	return warnings
}

// Band converts the band settings into an exchange.BandConfig.
func (c *Configuration) Band() (exchange.BandConfig, error) {
	anchor, err := datetime.ParseDate(c.ExchangeRate.Band.Anchor)
	if err != nil {
		return exchange.BandConfig{}, fmt.Errorf("invalid exchangeRate.band.anchor %q: %w", c.ExchangeRate.Band.Anchor, err)
	}
	if c.ExchangeRate.Band.BaseFloor <= 0 || c.ExchangeRate.Band.BaseCeiling <= 0 {
		return exchange.BandConfig{}, fmt.Errorf("exchangeRate.band base values must be positive")
	}
	if c.ExchangeRate.Band.BaseFloor > c.ExchangeRate.Band.BaseCeiling {
		return exchange.BandConfig{}, fmt.Errorf("exchangeRate.band.baseFloor %.2f exceeds baseCeiling %.2f",
			c.ExchangeRate.Band.BaseFloor, c.ExchangeRate.Band.BaseCeiling)
	}
	return exchange.BandConfig{
		Anchor:      anchor,
		BaseFloor:   c.ExchangeRate.Band.BaseFloor,
		BaseCeiling: c.ExchangeRate.Band.BaseCeiling,
	}, nil
}

// Schedule builds the closing cost schedule, falling back to the built-in
// jurisdictions when none are configured.
func (c *Configuration) Schedule() (*costs.Schedule, error) {
	if len(c.Jurisdictions) == 0 {
		return costs.DefaultSchedule(), nil
	}
	schedule, err := costs.NewSchedule(c.Jurisdictions)
	if err != nil {
		return nil, fmt.Errorf("invalid jurisdictions: %w", err)
	}
	return schedule, nil
}
