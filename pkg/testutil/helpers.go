// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/mathutil"
	"github.com/iwvelando/uva-calculator/pkg/scenario"
)

// FindScenario finds a scenario by kind in a result, including the simulated one.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(result calculator.Result, kind scenario.Kind) *scenario.Scenario {
	if result.Simulated != nil && result.Simulated.Kind == kind {
		return result.Simulated
	}
	if result.Scenarios == nil {
		return nil
	}
	all := result.Scenarios.All()
	for i := range all {
		if all[i].Kind == kind {
			return &all[i]
		}
	}
	return nil
}

// WithinCents reports whether two amounts agree to the cent.
func WithinCents(got, want float64) bool {
	return mathutil.WithinTolerance(got, want, constants.CurrencyTolerance)
}
