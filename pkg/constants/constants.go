// Package constants provides shared constants for the uva-calculator application.
package constants

import "time"

// DateLayout is the format expected in config files for calendar dates.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Loan policy bounds
const (
	// MinTermYears is the shortest loan term accepted by the validator
	MinTermYears = 5

	// MaxTermYears is the longest loan term accepted by the validator
	MaxTermYears = 35

	// MinRatePercent is the lowest nominal annual rate accepted by the validator
	MinRatePercent = 4.5

	// MaxRatePercent is the highest nominal annual rate accepted by the validator
	MaxRatePercent = 11.0

	// MinPropertyValueUSD is the lowest property value the UI offers
	MinPropertyValueUSD = 10000.0

	// MaxPropertyValueUSD is the highest property value the UI offers
	MaxPropertyValueUSD = 300000.0
)

// Closing cost policy bounds
const (
	// MinCostPercent is the lowest percentage a user may select for a cost category
	MinCostPercent = 0.0

	// MaxCostPercent is the highest percentage a user may select for a cost category
	MaxCostPercent = 10.0
)

// Exchange rate defaults
const (
	// DefaultOfficialRate is used when neither the cache nor any source yields a rate
	DefaultOfficialRate = 1300.0

	// MinSimulatedRate is the lowest simulated ARS/USD rate the UI allows
	MinSimulatedRate = 800.0

	// MaxSimulatedRate is the highest simulated ARS/USD rate the UI allows
	MaxSimulatedRate = 2000.0

	// DefaultBandAnchor is the date the exchange rate band started drifting
	DefaultBandAnchor = "2025-04-01"

	// DefaultBandFloor is the band floor at the anchor date
	DefaultBandFloor = 1000.0

	// DefaultBandCeiling is the band ceiling at the anchor date
	DefaultBandCeiling = 1400.0

	// BandFloorMonthlyFactor is applied once per elapsed month to the floor
	BandFloorMonthlyFactor = 0.99

	// BandCeilingMonthlyFactor is applied once per elapsed month to the ceiling
	BandCeilingMonthlyFactor = 1.01

	// DefaultRateCacheTTL is how long a fetched official rate stays valid
	DefaultRateCacheTTL = time.Hour

	// DefaultRateLookbackDays is the window requested from the primary source
	DefaultRateLookbackDays = 7

	// DefaultFetchTimeout bounds each individual source request
	DefaultFetchTimeout = 5 * time.Second

	// DefaultRefreshSchedule is the cron spec used by the server to refresh the official rate
	DefaultRefreshSchedule = "@every 1h"
)

// Rate source defaults
const (
	// DefaultPrimaryURL is the base URL of the government statistics API
	DefaultPrimaryURL = "https://api.bcra.gob.ar"

	// DefaultPrimaryVariable is the series id of the official wholesale USD quote
	DefaultPrimaryVariable = 5

	// DefaultSecondaryURL is the base URL of the commercial fallback API
	DefaultSecondaryURL = "https://dolarapi.com"

	// DefaultRedisKey is the key used to cache the official rate in redis
	DefaultRedisKey = "uva-calculator:official-rate"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KiB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// MaxBodySizeLimitBytes caps any configured request body size (1 MiB)
	MaxBodySizeLimitBytes int64 = 1024 * 1024

	// DefaultReadHeaderTimeout bounds how long a client may take to send headers
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM
	DefaultShutdownTimeout = 10 * time.Second
)
