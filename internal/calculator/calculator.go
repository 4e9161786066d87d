// Package calculator ties the amortization, closing cost, exchange rate and
// scenario engines together into one recomputation over the current inputs.
package calculator

import (
	"fmt"
	"time"

	"github.com/iwvelando/uva-calculator/internal/config"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/costs"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"github.com/iwvelando/uva-calculator/pkg/loans"
	"github.com/iwvelando/uva-calculator/pkg/scenario"
	"github.com/iwvelando/uva-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Inputs are the user-editable loan and property fields.
type Inputs struct {
	PropertyValueUSD float64         `json:"propertyValueUSD"`
	PrincipalARS     float64         `json:"principalARS"`
	RatePercent      float64         `json:"ratePercent"`
	TermYears        int             `json:"termYears"`
	Jurisdiction     string          `json:"jurisdiction"`
	Overrides        costs.Overrides `json:"overrides,omitempty"`
	IncludeSchedule  bool            `json:"includeSchedule,omitempty"`
}

// Params converts the inputs to validator parameters.
func (in Inputs) Params() validation.Params {
	return validation.Params{
		PropertyValueUSD: in.PropertyValueUSD,
		PrincipalARS:     in.PrincipalARS,
		TermYears:        in.TermYears,
		RatePercent:      in.RatePercent,
	}
}

// Result is a full snapshot of every derived figure. It is rebuilt from
// scratch on each Recompute.
type Result struct {
	Inputs                Inputs              `json:"inputs"`
	Validation            validation.Result   `json:"validation"`
	Warning               string              `json:"warning,omitempty"`
	Computable            bool                `json:"computable"`
	MonthlyPayment        float64             `json:"monthlyPayment"`
	TotalInterestARS      float64             `json:"totalInterestARS"`
	UVA                   loans.UVAProjection `json:"uva"`
	Schedule              []loans.Payment     `json:"schedule,omitempty"`
	CostsUSD              costs.Breakdown     `json:"costsUSD"`
	CostsARS              costs.Breakdown     `json:"costsARS"`
	TotalOperationCostARS float64             `json:"totalOperationCostARS"`
	ShortfallARS          float64             `json:"shortfallARS"`
	Band                  exchange.Band       `json:"band"`
	Scenarios             *scenario.Set       `json:"scenarios,omitempty"`
	Simulated             *scenario.Scenario  `json:"simulated,omitempty"`
	OfficialRate          float64             `json:"officialRate"`
	SimulatedRate         float64             `json:"simulatedRate"`
	RateSource            string              `json:"rateSource,omitempty"`
}

// Calculator holds the long-lived settings a recomputation reads.
type Calculator struct {
	Schedule          *costs.Schedule
	Band              exchange.BandConfig
	Now               func() time.Time
	UVAMonthlyPercent float64
	Logger            *zap.Logger
}

// New creates a calculator with the default band and the wall clock.
func New(logger *zap.Logger, schedule *costs.Schedule) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == nil {
		schedule = costs.DefaultSchedule()
	}
	return &Calculator{
		Schedule: schedule,
		Band:     exchange.DefaultBandConfig(),
		Now:      time.Now,
		Logger:   logger,
	}
}

// FromConfiguration creates a calculator from the loaded configuration.
func FromConfiguration(logger *zap.Logger, conf *config.Configuration) (*Calculator, error) {
	schedule, err := conf.Schedule()
	if err != nil {
		return nil, fmt.Errorf("failed to build closing cost schedule: %w", err)
	}
	band, err := conf.Band()
	if err != nil {
		return nil, fmt.Errorf("failed to build exchange rate band: %w", err)
	}

	c := New(logger, schedule)
	c.Band = band
	c.UVAMonthlyPercent = conf.UVA.MonthlyInflationPercent
	return c, nil
}

// Recompute derives every output from the inputs and the rate state. The
// main figures use the official rate; a simulated rate that differs from it
// adds one more scenario.
func (c *Calculator) Recompute(in Inputs, rates exchange.State) Result {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	params := in.Params()
	result := Result{
		Inputs:        in,
		Validation:    validation.Validate(params, rates.Official),
		Warning:       validation.ValidatePropertyValue(in.PropertyValueUSD),
		OfficialRate:  rates.Official,
		SimulatedRate: rates.Simulated,
		RateSource:    rates.Source,
		Band:          c.Band.At(now()),
	}
	if !validation.CanCompute(params) {
		logger.Debug("inputs are incomplete, skipping computation",
			zap.String("op", "calculator.Recompute"),
		)
		return result
	}
	result.Computable = true

	result.MonthlyPayment = loans.CalculateMonthlyPayment(in.PrincipalARS, in.RatePercent, in.TermYears)
	termMonths := in.TermYears * constants.MonthsPerYear
	if result.MonthlyPayment > 0 {
		result.TotalInterestARS = result.MonthlyPayment*float64(termMonths) - in.PrincipalARS
	}
	result.UVA = loans.ProjectUVAPayments(result.MonthlyPayment, c.UVAMonthlyPercent, termMonths)
	// The schedule is sized by the term, so only validated terms get one.
	if in.IncludeSchedule && result.Validation.Valid {
		result.Schedule = loans.NewScheduleGenerator(logger).GenerateSchedule(in.PrincipalARS, in.RatePercent, in.TermYears)
	}

	result.CostsUSD = costs.ComputeClosingCosts(c.Schedule, in.PropertyValueUSD, in.Jurisdiction, in.Overrides)
	if !result.CostsUSD.Known() {
		logger.Warn("unknown jurisdiction, closing costs are zero",
			zap.String("op", "calculator.Recompute"),
			zap.String("jurisdiction", in.Jurisdiction),
		)
	}

	scenarioInput := scenario.Input{
		Schedule:         c.Schedule,
		PropertyValueUSD: in.PropertyValueUSD,
		Jurisdiction:     in.Jurisdiction,
		PrincipalARS:     in.PrincipalARS,
		Overrides:        in.Overrides,
	}
	set := scenario.ComputeScenarios(scenarioInput, rates.Official, result.Band)
	result.Scenarios = &set
	result.CostsARS = set.Official.Costs
	result.TotalOperationCostARS = set.Official.TotalCostARS
	result.ShortfallARS = set.Official.ShortfallARS

	if rates.IsSimulating() && rates.Simulated > 0 {
		simulated := scenario.ComputeAt(scenarioInput, scenario.Simulated, rates.Simulated, rates.Official)
		result.Simulated = &simulated
	}

	logger.Debug("recomputed result",
		zap.String("op", "calculator.Recompute"),
		zap.Float64("monthlyPayment", result.MonthlyPayment),
		zap.Float64("shortfallARS", result.ShortfallARS),
		zap.Bool("valid", result.Validation.Valid),
	)
	return result
}
