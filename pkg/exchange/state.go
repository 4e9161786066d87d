// Package exchange supplies the official ARS/USD rate, the simulated rate used
// for what-if exploration, and the time-based floor/ceiling band.
package exchange

import (
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/mathutil"
)

// State is the live exchange rate state owned by the caller. Official comes
// from the Provider; Simulated starts equal to Official and is never persisted.
type State struct {
	Official  float64   `json:"official"`
	Simulated float64   `json:"simulated"`
	Source    string    `json:"source"`
	Date      string    `json:"date,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// NewState creates a state whose simulated rate equals the official one.
func NewState(official float64) State {
	return State{Official: official, Simulated: official}
}

// StateFromQuote creates a state from a provider quote.
func StateFromQuote(q Quote) State {
	s := NewState(q.Value)
	s.Source = q.Source
	s.Date = q.Date
	s.FetchedAt = q.FetchedAt
	return s
}

// SetSimulatedRate stores a new simulated rate without touching Official.
func (s *State) SetSimulatedRate(rate float64) {
	s.Simulated = rate
}

// ResetSimulated makes the simulated rate track the official one again.
func (s *State) ResetSimulated() {
	s.Simulated = s.Official
}

// IsSimulating reports whether the simulated rate differs from the official one.
func (s State) IsSimulating() bool {
	return s.Simulated != s.Official
}

// UpdateOfficial replaces the official quote. An untouched simulated rate
// follows the new official value; an explored one is left alone.
func (s *State) UpdateOfficial(q Quote) {
	following := !s.IsSimulating()
	s.Official = q.Value
	s.Source = q.Source
	s.Date = q.Date
	s.FetchedAt = q.FetchedAt
	if following {
		s.Simulated = q.Value
	}
}

// ClampSimulatedRate bounds a user-entered simulated rate to [800, 2000].
func ClampSimulatedRate(rate float64) float64 {
	return mathutil.Clamp(rate, constants.MinSimulatedRate, constants.MaxSimulatedRate)
}
