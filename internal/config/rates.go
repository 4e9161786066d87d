package config

import (
	"fmt"
	"io"
	"net/http"

	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewRateCache opens the configured cache backend. The returned closer
// releases backend resources.
func (c *Configuration) NewRateCache() (exchange.Cache, io.Closer, error) {
	cacheConfig := c.ExchangeRate.Cache
	switch cacheConfig.Backend {
	case CacheBackendRedis:
		cache := exchange.NewRedisCache(cacheConfig.RedisAddress, cacheConfig.RedisKey, cacheConfig.TTL)
		return cache, cache, nil
	case CacheBackendSQLite:
		cache, err := exchange.OpenSQLiteCache(cacheConfig.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite rate cache: %w", err)
		}
		return cache, cache, nil
	default:
		return exchange.NewMemoryCache(), nopCloser{}, nil
	}
}

// RateSources returns the primary and secondary sources in priority order.
func (c *Configuration) RateSources() []exchange.Source {
	client := &http.Client{Timeout: c.ExchangeRate.Timeout}
	return []exchange.Source{
		&exchange.BCRASource{
			Client:       client,
			BaseURL:      c.ExchangeRate.PrimaryURL,
			Variable:     c.ExchangeRate.PrimaryVariable,
			LookbackDays: c.ExchangeRate.LookbackDays,
		},
		&exchange.DolarAPISource{
			Client:  client,
			BaseURL: c.ExchangeRate.SecondaryURL,
		},
	}
}

// NewRateProvider wires the cache and sources into a Provider. With offline
// set no network source is consulted, so only the cache and the fallback apply.
func (c *Configuration) NewRateProvider(logger *zap.Logger, offline bool) (*exchange.Provider, io.Closer, error) {
	cache, closer, err := c.NewRateCache()
	if err != nil {
		return nil, nil, err
	}

	var sources []exchange.Source
	if !offline {
		sources = c.RateSources()
	}

	provider := exchange.NewProvider(logger, exchange.ProviderOptions{
		Cache:    cache,
		Sources:  sources,
		Fallback: c.ExchangeRate.Fallback,
		TTL:      c.ExchangeRate.Cache.TTL,
	})
	return provider, closer, nil
}
