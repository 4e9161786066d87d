package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Quote is one official rate observation.
type Quote struct {
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	Date      string    `json:"date,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
	Cached    bool      `json:"cached"`
}

// Source fetches the current official rate from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Quote, error)
}

// ErrNoQuote is returned when a source responds without a usable positive value.
var ErrNoQuote = errors.New("no usable quote in response")

// BCRASource reads the official wholesale series from the central bank
// statistics API, asking for a short lookback window and keeping the most
// recent positive observation.
type BCRASource struct {
	Client       *http.Client
	BaseURL      string
	Variable     int
	LookbackDays int
	Now          func() time.Time
}

type bcraResponse struct {
	Results []bcraResult `json:"results"`
}

type bcraResult struct {
	Fecha   string            `json:"fecha"`
	Valor   decimal.Decimal   `json:"valor"`
	Detalle []bcraObservation `json:"detalle"`
}

type bcraObservation struct {
	Fecha string          `json:"fecha"`
	Valor decimal.Decimal `json:"valor"`
}

// Name identifies the source in logs and cache entries.
func (s *BCRASource) Name() string {
	return "bcra"
}

// Fetch requests the lookback window and returns the latest positive value.
func (s *BCRASource) Fetch(ctx context.Context) (Quote, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	lookback := s.LookbackDays
	if lookback <= 0 {
		lookback = constants.DefaultRateLookbackDays
	}
	variable := s.Variable
	if variable <= 0 {
		variable = constants.DefaultPrimaryVariable
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultPrimaryURL
	}

	until := now()
	since := until.AddDate(0, 0, -lookback)
	url := fmt.Sprintf("%s/estadisticas/v3.0/monetarias/%d?desde=%s&hasta=%s",
		strings.TrimRight(baseURL, "/"), variable,
		since.Format(constants.DateLayout), until.Format(constants.DateLayout))

	var payload bcraResponse
	if err := getJSON(ctx, s.Client, url, &payload); err != nil {
		return Quote{}, fmt.Errorf("bcra: %w", err)
	}

	var best bcraObservation
	for _, result := range payload.Results {
		observations := result.Detalle
		if len(observations) == 0 && result.Fecha != "" {
			observations = []bcraObservation{{Fecha: result.Fecha, Valor: result.Valor}}
		}
		for _, obs := range observations {
			if !obs.Valor.IsPositive() {
				continue
			}
			// ISO dates compare correctly as strings.
			if best.Fecha == "" || obs.Fecha > best.Fecha {
				best = obs
			}
		}
	}
	if best.Fecha == "" {
		return Quote{}, fmt.Errorf("bcra: %w", ErrNoQuote)
	}

	return Quote{
		Value:     best.Valor.InexactFloat64(),
		Source:    s.Name(),
		Date:      best.Fecha,
		FetchedAt: now(),
	}, nil
}

// DolarAPISource reads the official "sell" quote from the commercial
// dolarapi service.
type DolarAPISource struct {
	Client  *http.Client
	BaseURL string
	Now     func() time.Time
}

type dolarAPIResponse struct {
	Venta              decimal.Decimal `json:"venta"`
	FechaActualizacion string          `json:"fechaActualizacion"`
}

// Name identifies the source in logs and cache entries.
func (s *DolarAPISource) Name() string {
	return "dolarapi"
}

// Fetch returns the current sell quote.
func (s *DolarAPISource) Fetch(ctx context.Context) (Quote, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultSecondaryURL
	}

	var payload dolarAPIResponse
	if err := getJSON(ctx, s.Client, strings.TrimRight(baseURL, "/")+"/v1/dolares/oficial", &payload); err != nil {
		return Quote{}, fmt.Errorf("dolarapi: %w", err)
	}
	if !payload.Venta.IsPositive() {
		return Quote{}, fmt.Errorf("dolarapi: %w", ErrNoQuote)
	}

	date := payload.FechaActualizacion
	if len(date) >= len(constants.DateLayout) {
		date = date[:len(constants.DateLayout)]
	}

	return Quote{
		Value:     payload.Venta.InexactFloat64(),
		Source:    s.Name(),
		Date:      date,
		FetchedAt: now(),
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
