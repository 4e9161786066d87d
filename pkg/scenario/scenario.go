// Package scenario derives the floor/official/ceiling exchange rate scenarios
// from a property value, a loan principal and the closing cost schedule.
package scenario

import (
	"github.com/iwvelando/uva-calculator/pkg/costs"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"github.com/iwvelando/uva-calculator/pkg/mathutil"
)

// Kind names a scenario.
type Kind string

const (
	// Floor uses the lower edge of the exchange rate band.
	Floor Kind = "floor"
	// Official uses the official rate and is the baseline for deltas.
	Official Kind = "official"
	// Ceiling uses the upper edge of the exchange rate band.
	Ceiling Kind = "ceiling"
	// Simulated uses a user-chosen what-if rate.
	Simulated Kind = "simulated"
)

// Classification describes a delta against the official scenario.
type Classification string

const (
	// Favorable means less cash is needed than in the official scenario.
	Favorable Classification = "favorable"
	// Unfavorable means more cash is needed than in the official scenario.
	Unfavorable Classification = "unfavorable"
	// Unchanged means the same cash is needed, within a cent.
	Unchanged Classification = "unchanged"
)

// Scenario is the outcome of the purchase at one exchange rate.
type Scenario struct {
	Kind               Kind            `json:"kind"`
	Rate               float64         `json:"rate"`
	TotalCostARS       float64         `json:"totalCostARS"`
	TotalCostUSD       float64         `json:"totalCostUSD"`
	LoanEquivalentUSD  float64         `json:"loanEquivalentUSD"`
	ShortfallARS       float64         `json:"shortfallARS"`
	ShortfallUSD       float64         `json:"shortfallUSD"`
	DeltaVsOfficialARS float64         `json:"deltaVsOfficialARS"`
	DeltaVsOfficialUSD float64         `json:"deltaVsOfficialUSD"`
	Costs              costs.Breakdown `json:"costs"`
}

// Classification classifies the ARS delta: negative is favorable.
func (s Scenario) Classification() Classification {
	switch {
	case mathutil.IsZero(s.DeltaVsOfficialARS):
		return Unchanged
	case s.DeltaVsOfficialARS < 0:
		return Favorable
	default:
		return Unfavorable
	}
}

// Set holds the three band scenarios.
type Set struct {
	Floor    Scenario `json:"floor"`
	Official Scenario `json:"official"`
	Ceiling  Scenario `json:"ceiling"`
}

// All returns the scenarios in floor, official, ceiling order.
func (s Set) All() []Scenario {
	return []Scenario{s.Floor, s.Official, s.Ceiling}
}

// Input carries everything a scenario needs besides the rate.
type Input struct {
	Schedule         *costs.Schedule
	PropertyValueUSD float64
	Jurisdiction     string
	PrincipalARS     float64
	Overrides        costs.Overrides
}

// ComputeScenarios evaluates the purchase at the band floor, the official
// rate and the band ceiling. Deltas are relative to the official scenario,
// whose own delta is exactly zero.
func ComputeScenarios(in Input, officialRate float64, band exchange.Band) Set {
	official := evaluate(in, Official, officialRate)
	return Set{
		Floor:    withDelta(evaluate(in, Floor, band.Floor), official),
		Official: official,
		Ceiling:  withDelta(evaluate(in, Ceiling, band.Ceiling), official),
	}
}

// ComputeAt evaluates the purchase at an arbitrary rate against the official
// baseline.
func ComputeAt(in Input, kind Kind, rate, officialRate float64) Scenario {
	official := evaluate(in, Official, officialRate)
	if kind == Official {
		return official
	}
	return withDelta(evaluate(in, kind, rate), official)
}

func evaluate(in Input, kind Kind, rate float64) Scenario {
	s := Scenario{Kind: kind, Rate: rate}
	s.Costs = costs.ComputeClosingCostsAtRate(in.Schedule, in.PropertyValueUSD, in.Jurisdiction, rate, in.Overrides)
	s.TotalCostARS = in.PropertyValueUSD*rate + s.Costs.Total
	s.ShortfallARS = s.TotalCostARS - in.PrincipalARS
	if rate > 0 {
		s.TotalCostUSD = s.TotalCostARS / rate
		s.LoanEquivalentUSD = in.PrincipalARS / rate
		// Each scenario frames its own shortfall at its own rate.
		s.ShortfallUSD = s.ShortfallARS / rate
	}
	return s
}

func withDelta(s, official Scenario) Scenario {
	s.DeltaVsOfficialARS = s.ShortfallARS - official.ShortfallARS
	s.DeltaVsOfficialUSD = s.ShortfallUSD - official.ShortfallUSD
	return s
}
