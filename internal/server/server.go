// Package server exposes the calculator as a JSON API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/costs"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"go.uber.org/zap"
)

// Options wires the handler to its collaborators.
type Options struct {
	Calculator  *calculator.Calculator
	Provider    *exchange.Provider
	Rates       exchange.State
	MaxBodySize int64
	Version     string
}

// Handler serves the calculator API. The rate state and the cost schedule are
// shared between requests and guarded by mu.
type Handler struct {
	logger      *zap.Logger
	calc        *calculator.Calculator
	provider    *exchange.Provider
	maxBodySize int64
	version     string
	router      chi.Router

	mu    sync.RWMutex
	rates exchange.State
}

// NewHandler constructs the HTTP handler for the calculator API.
func NewHandler(logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	calc := opts.Calculator
	if calc == nil {
		calc = calculator.New(logger, nil)
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	rates := opts.Rates
	if rates.Official <= 0 {
		rates = exchange.NewState(constants.DefaultOfficialRate)
		rates.Source = exchange.FallbackSource
	}

	h := &Handler{
		logger:      logger,
		calc:        calc,
		provider:    opts.Provider,
		maxBodySize: maxBodySize,
		version:     version,
		rates:       rates,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)

		r.Get("/rate", h.handleGetRate)
		r.Put("/rate/simulated", h.handleSetSimulated)
		r.Delete("/rate/simulated", h.handleResetSimulated)
		if h.provider != nil {
			r.Post("/rate/refresh", h.handleRefreshRate)
		}

		r.Get("/jurisdictions", h.handleListJurisdictions)
		r.Put("/jurisdictions/{code}/{category}", h.handleSetSelected)

		r.Get("/version", h.handleVersion)
	})
	h.router = r

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// UpdateOfficial publishes a refreshed official quote to later requests.
func (h *Handler) UpdateOfficial(q exchange.Quote) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rates.UpdateOfficial(q)
}

// Rates returns a copy of the current rate state.
func (h *Handler) Rates() exchange.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rates
}

type calculateRequest struct {
	calculator.Inputs
	// Fields carries raw form strings and takes precedence over the typed inputs.
	Fields        map[string]string `json:"fields,omitempty"`
	SimulatedRate *float64          `json:"simulatedRate,omitempty"`
}

type rateResponse struct {
	exchange.State
	Simulating bool          `json:"simulating"`
	Band       exchange.Band `json:"band"`
}

type simulatedRequest struct {
	Rate *float64 `json:"rate"`
}

type selectedRequest struct {
	Selected *float64 `json:"selected"`
}

type selectedResponse struct {
	Code     string         `json:"code"`
	Category costs.Category `json:"category"`
	Selected float64        `json:"selected"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	var req calculateRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	inputs := req.Inputs
	inputs.Overrides = inputs.Overrides.Clamped()
	if len(req.Fields) > 0 {
		parsed, err := calculator.ParseInputs(req.Fields)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		inputs = parsed
	}

	h.mu.RLock()
	rates := h.rates
	if req.SimulatedRate != nil {
		rates.SetSimulatedRate(exchange.ClampSimulatedRate(*req.SimulatedRate))
	}
	result := h.calc.Recompute(inputs, rates)
	h.mu.RUnlock()

	h.logger.Debug("calculation served",
		zap.String("op", op),
		zap.Bool("computable", result.Computable),
		zap.Bool("valid", result.Validation.Valid),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetRate(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.rateSnapshot())
}

func (h *Handler) handleSetSimulated(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetSimulated"

	var req simulatedRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	if req.Rate == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing rate", op)
		return
	}

	h.mu.Lock()
	h.rates.SetSimulatedRate(exchange.ClampSimulatedRate(*req.Rate))
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, h.rateSnapshot())
}

func (h *Handler) handleResetSimulated(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.rates.ResetSimulated()
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, h.rateSnapshot())
}

func (h *Handler) handleRefreshRate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRefreshRate"

	q, ok := h.provider.Refresh(r.Context())
	if !ok {
		h.respondErrorWithOp(w, http.StatusBadGateway, "no rate source is available", op)
		return
	}
	h.UpdateOfficial(q)

	h.writeJSON(w, http.StatusOK, h.rateSnapshot())
}

func (h *Handler) handleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	jurisdictions := h.calc.Schedule.Jurisdictions()
	h.mu.RUnlock()

	h.writeJSON(w, http.StatusOK, jurisdictions)
}

func (h *Handler) handleSetSelected(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetSelected"

	category, err := costs.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var req selectedRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	if req.Selected == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing selected percentage", op)
		return
	}

	code := strings.ToUpper(chi.URLParam(r, "code"))
	h.mu.Lock()
	stored, err := h.calc.Schedule.SetSelected(code, category, *req.Selected)
	h.mu.Unlock()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, selectedResponse{Code: code, Category: category, Selected: stored})
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *Handler) rateSnapshot() rateResponse {
	rates := h.Rates()
	return rateResponse{
		State:      rates,
		Simulating: rates.IsSimulating(),
		Band:       h.calc.Band.At(h.now()),
	}
}

func (h *Handler) now() time.Time {
	if h.calc.Now != nil {
		return h.calc.Now()
	}
	return time.Now()
}

// decodeBody reads a size-limited JSON body into dst. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *Handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
