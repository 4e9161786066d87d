package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/internal/config"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"github.com/iwvelando/uva-calculator/pkg/output"
	"github.com/iwvelando/uva-calculator/pkg/scenario"
	"github.com/iwvelando/uva-calculator/pkg/testutil"
	"go.uber.org/zap"
)

// loadTestConfig loads the shared fixture and points the cache at a
// per-test SQLite file.
func loadTestConfig(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.ExchangeRate.Cache.SQLitePath = filepath.Join(t.TempDir(), "rates.db")
	return conf
}

func bcraServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if !strings.HasPrefix(r.URL.Path, "/estadisticas/v3.0/monetarias/5") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"results":[{"idVariable":5,"detalle":[
			{"fecha":"2025-06-12","valor":1301},
			{"fecha":"2025-06-11","valor":1298.5}
		]}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func referenceInputs() calculator.Inputs {
	return calculator.Inputs{
		PropertyValueUSD: 155000,
		PrincipalARS:     70000000,
		RatePercent:      8.5,
		TermYears:        20,
		Jurisdiction:     "CABA",
	}
}

// TestEndToEndWithPrimarySource runs the same pipeline as the command line
// tool against a stubbed government series.
func TestEndToEndWithPrimarySource(t *testing.T) {
	logger := zap.NewNop()
	var hits int32
	srv := bcraServer(t, &hits)

	conf := loadTestConfig(t)
	conf.ExchangeRate.PrimaryURL = srv.URL

	provider, closer, err := conf.NewRateProvider(logger, false)
	if err != nil {
		t.Fatalf("NewRateProvider() error = %v", err)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quote := provider.OfficialRate(ctx)
	if quote.Value != 1301 || quote.Source != "bcra" || quote.Date != "2025-06-12" || quote.Cached {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	// The second lookup is served from the SQLite cache.
	again := provider.OfficialRate(ctx)
	if !again.Cached || again.Value != 1301 {
		t.Fatalf("expected cached quote, got %+v", again)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected 1 request to the primary source, got %d", got)
	}

	calc, err := calculator.FromConfiguration(logger, conf)
	if err != nil {
		t.Fatalf("FromConfiguration() error = %v", err)
	}
	calc.Now = func() time.Time { return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC) }

	result := calc.Recompute(referenceInputs(), exchange.StateFromQuote(quote))
	if !result.Validation.Valid {
		t.Fatalf("expected valid result, got %+v", result.Validation)
	}
	if !testutil.WithinCents(result.MonthlyPayment, 607476.26) {
		t.Errorf("MonthlyPayment = %v, expected 607476.26", result.MonthlyPayment)
	}
	if !testutil.WithinCents(result.CostsUSD.Total, 11237.5) {
		t.Errorf("CostsUSD.Total = %v, expected 11237.5", result.CostsUSD.Total)
	}
	if !testutil.WithinCents(result.ShortfallARS, 146274987.5) {
		t.Errorf("ShortfallARS = %v, expected 146274987.5", result.ShortfallARS)
	}

	floor := testutil.FindScenario(result, scenario.Floor)
	if floor == nil || floor.Rate != 980 {
		t.Fatalf("unexpected floor scenario: %+v", floor)
	}
	ceiling := testutil.FindScenario(result, scenario.Ceiling)
	if ceiling == nil || ceiling.Rate != 1428 {
		t.Fatalf("unexpected ceiling scenario: %+v", ceiling)
	}
	if result.UVA.MonthlyPercent != 2 {
		t.Errorf("UVA.MonthlyPercent = %v, expected 2 from config", result.UVA.MonthlyPercent)
	}

	var buf bytes.Buffer
	output.PrettyFormat(&buf, result)
	if !strings.Contains(buf.String(), "Official rate:  ARS 1,301.00 (source bcra)") {
		t.Errorf("unexpected pretty output:\n%s", buf.String())
	}
}

// TestEndToEndSecondarySource checks that a failing primary series falls
// through to the commercial quote.
func TestEndToEndSecondarySource(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer primary.Close()
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"moneda":"USD","casa":"oficial","compra":1260,"venta":1310,"fechaActualizacion":"2025-06-12T14:05:00.000Z"}`))
	}))
	defer secondary.Close()

	conf := loadTestConfig(t)
	conf.ExchangeRate.PrimaryURL = primary.URL
	conf.ExchangeRate.SecondaryURL = secondary.URL

	provider, closer, err := conf.NewRateProvider(zap.NewNop(), false)
	if err != nil {
		t.Fatalf("NewRateProvider() error = %v", err)
	}
	defer func() { _ = closer.Close() }()

	quote := provider.OfficialRate(context.Background())
	if quote.Value != 1310 || quote.Source != "dolarapi" || quote.Date != "2025-06-12" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

// TestEndToEndFallback checks that the configured fallback applies when
// nothing is reachable, and that it is not cached.
func TestEndToEndFallback(t *testing.T) {
	conf := loadTestConfig(t)

	provider, closer, err := conf.NewRateProvider(zap.NewNop(), true)
	if err != nil {
		t.Fatalf("NewRateProvider() error = %v", err)
	}
	defer func() { _ = closer.Close() }()

	quote := provider.OfficialRate(context.Background())
	if quote.Value != 1250 || quote.Source != exchange.FallbackSource {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if again := provider.OfficialRate(context.Background()); again.Cached {
		t.Fatal("fallback rate must not be cached")
	}

	calc, err := calculator.FromConfiguration(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("FromConfiguration() error = %v", err)
	}
	in := referenceInputs()
	in.Jurisdiction = "test"
	result := calc.Recompute(in, exchange.StateFromQuote(quote))

	// 4% of 155,000 USD under the fixture's test jurisdiction.
	if !testutil.WithinCents(result.CostsUSD.Total, 6200) {
		t.Errorf("CostsUSD.Total = %v, expected 6200", result.CostsUSD.Total)
	}
	if result.RateSource != exchange.FallbackSource {
		t.Errorf("RateSource = %q, expected fallback", result.RateSource)
	}
}
