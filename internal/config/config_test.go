package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/costs"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Error("LoadConfiguration() expected error but got none")
	}
}

func TestDefaultConfiguration(t *testing.T) {
	conf := DefaultConfiguration()

	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Output.Format = %q, expected %q", conf.Output.Format, constants.OutputFormatPretty)
	}
	if conf.ExchangeRate.Fallback != constants.DefaultOfficialRate {
		t.Errorf("Fallback = %v, expected %v", conf.ExchangeRate.Fallback, constants.DefaultOfficialRate)
	}
	if conf.ExchangeRate.Cache.Backend != CacheBackendMemory {
		t.Errorf("Cache.Backend = %q, expected memory", conf.ExchangeRate.Cache.Backend)
	}
	if conf.ExchangeRate.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, expected 1h", conf.ExchangeRate.Cache.TTL)
	}

	band, err := conf.Band()
	if err != nil {
		t.Fatalf("Band() error = %v", err)
	}
	if band.Anchor.Format(constants.DateLayout) != "2025-04-01" || band.BaseFloor != 1000 || band.BaseCeiling != 1400 {
		t.Errorf("unexpected band %+v", band)
	}

	schedule, err := conf.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if _, ok := schedule.Lookup("CABA"); !ok {
		t.Error("expected built-in schedule to contain CABA")
	}
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: console
output:
  format: json
exchangeRate:
  fallback: 1250
  timeout: 2s
  cache:
    backend: sqlite
    ttl: 30m
    sqlitePath: /tmp/rates.db
  band:
    anchor: "2025-05-01"
    baseFloor: 950
    baseCeiling: 1450
uva:
  monthlyInflationPercent: 2.5
jurisdictions:
  - code: TEST
    name: Test Province
    costs:
      escritura: {min: 1, max: 3, selected: 2}
      inmobiliaria: {min: 2, max: 4, selected: 3}
      firmas: {min: 0.5, max: 1, selected: 0.5}
      sellos: {min: 0, max: 2, selected: 1}
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("unexpected logging %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatJSON {
		t.Errorf("Output.Format = %q, expected json", conf.Output.Format)
	}
	if conf.ExchangeRate.Fallback != 1250 {
		t.Errorf("Fallback = %v, expected 1250", conf.ExchangeRate.Fallback)
	}
	if conf.ExchangeRate.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, expected 2s", conf.ExchangeRate.Timeout)
	}
	if conf.ExchangeRate.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, expected 30m", conf.ExchangeRate.Cache.TTL)
	}
	if conf.ExchangeRate.PrimaryURL != constants.DefaultPrimaryURL {
		t.Errorf("PrimaryURL = %q, expected default", conf.ExchangeRate.PrimaryURL)
	}
	if conf.UVA.MonthlyInflationPercent != 2.5 {
		t.Errorf("MonthlyInflationPercent = %v, expected 2.5", conf.UVA.MonthlyInflationPercent)
	}

	schedule, err := conf.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if codes := schedule.Codes(); len(codes) != 1 || codes[0] != "TEST" {
		t.Fatalf("unexpected codes %v", codes)
	}
	selected, _ := schedule.Selected("TEST")
	if selected[costs.Inmobiliaria] != 3 {
		t.Errorf("inmobiliaria selected = %v, expected 3", selected[costs.Inmobiliaria])
	}

	band, _ := conf.Band()
	if band.BaseFloor != 950 || band.Anchor.Format(constants.DateLayout) != "2025-05-01" {
		t.Errorf("unexpected band %+v", band)
	}
}

func TestLoadConfigurationFromReaderRejectsInvalid(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{
			name:        "Unknown cache backend",
			yaml:        "exchangeRate:\n  cache:\n    backend: memcached\n",
			errContains: "unknown exchangeRate.cache.backend",
		},
		{
			name:        "Redis without address",
			yaml:        "exchangeRate:\n  cache:\n    backend: redis\n",
			errContains: "redisAddress",
		},
		{
			name:        "SQLite without path",
			yaml:        "exchangeRate:\n  cache:\n    backend: sqlite\n",
			errContains: "sqlitePath",
		},
		{
			name:        "Bad anchor",
			yaml:        "exchangeRate:\n  band:\n    anchor: April 2025\n",
			errContains: "anchor",
		},
		{
			name:        "Floor above ceiling",
			yaml:        "exchangeRate:\n  band:\n    baseFloor: 2000\n    baseCeiling: 1000\n",
			errContains: "exceeds baseCeiling",
		},
		{
			name:        "Negative fallback",
			yaml:        "exchangeRate:\n  fallback: -5\n",
			errContains: "fallback must be positive",
		},
		{
			name: "Selected outside jurisdiction range",
			yaml: `jurisdictions:
  - code: BAD
    costs:
      escritura: {min: 1, max: 2, selected: 5}
      inmobiliaria: {min: 1, max: 2, selected: 1}
      firmas: {min: 1, max: 2, selected: 1}
      sellos: {min: 1, max: 2, selected: 1}
`,
			errContains: "invalid jurisdictions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigurationFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := DefaultConfiguration()
	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "built-in cost schedule") {
		t.Errorf("unexpected default warnings %v", warnings)
	}

	conf.ExchangeRate.Cache.TTL = 3 * time.Hour
	conf.ExchangeRate.Fallback = 500
	if warnings := conf.ValidateConfiguration(); len(warnings) != 3 {
		t.Errorf("expected 3 warnings, got %v", warnings)
	}
}

func TestNewRateProviderOffline(t *testing.T) {
	conf := DefaultConfiguration()
	conf.ExchangeRate.Fallback = 1275

	provider, closer, err := conf.NewRateProvider(zap.NewNop(), true)
	if err != nil {
		t.Fatalf("NewRateProvider() error = %v", err)
	}
	defer closer.Close()

	q := provider.OfficialRate(context.Background())
	if q.Value != 1275 {
		t.Errorf("expected offline provider to use fallback, got %+v", q)
	}
}

func TestNewRateCacheSQLite(t *testing.T) {
	conf := DefaultConfiguration()
	conf.ExchangeRate.Cache.Backend = CacheBackendSQLite
	conf.ExchangeRate.Cache.SQLitePath = filepath.Join(t.TempDir(), "rates.db")

	cache, closer, err := conf.NewRateCache()
	if err != nil {
		t.Fatalf("NewRateCache() error = %v", err)
	}
	defer closer.Close()

	if _, ok, err := cache.Load(context.Background()); ok || err != nil {
		t.Errorf("expected empty sqlite cache, ok=%v err=%v", ok, err)
	}
}

func TestRateSourcesOrder(t *testing.T) {
	sources := DefaultConfiguration().RateSources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name() != "bcra" || sources[1].Name() != "dolarapi" {
		t.Errorf("unexpected source order %s, %s", sources[0].Name(), sources[1].Name())
	}
}
