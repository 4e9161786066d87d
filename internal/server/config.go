package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iwvelando/uva-calculator/internal/config"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server. Calculation settings
// live in the calculator configuration referenced by CalculatorConfig.
type Config struct {
	Address           string               `yaml:"address"`
	MaxBodySize       string               `yaml:"maxBodySize"`
	ReadHeaderTimeout time.Duration        `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration        `yaml:"shutdownTimeout"`
	CalculatorConfig  string               `yaml:"calculatorConfig"`
	Logging           config.LoggingConfig `yaml:"logging"`
	bodySizeBytes     int64
}

func defaultConfig() *Config {
	return &Config{
		Address:           constants.DefaultServerAddress,
		MaxBodySize:       humanize.IBytes(uint64(constants.DefaultMaxBodySizeBytes)),
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		ShutdownTimeout:   constants.DefaultShutdownTimeout,
		CalculatorConfig:  constants.DefaultConfigFile,
		bodySizeBytes:     constants.DefaultMaxBodySizeBytes,
	}
}

// LoadConfig loads the server configuration from YAML. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.CalculatorConfig == "" {
		c.CalculatorConfig = constants.DefaultConfigFile
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	size, err := parseBodySize(c.MaxBodySize)
	if err != nil {
		return err
	}
	c.bodySizeBytes = size
	c.MaxBodySize = humanize.IBytes(uint64(size))
	return nil
}

// parseBodySize reads sizes such as "512", "64KiB" or "1MB". A calculation
// request is a handful of fields, so limits above 1 MiB are rejected.
func parseBodySize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	size, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid maxBodySize %q: %w", value, err)
	}
	if size == 0 {
		return 0, fmt.Errorf("maxBodySize %q must be positive", value)
	}
	if size > uint64(constants.MaxBodySizeLimitBytes) {
		return 0, fmt.Errorf("maxBodySize %q exceeds the %s limit", value,
			humanize.IBytes(uint64(constants.MaxBodySizeLimitBytes)))
	}
	return int64(size), nil
}
