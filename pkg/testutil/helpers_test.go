package testutil

import (
	"testing"

	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/pkg/scenario"
)

func TestFindScenario(t *testing.T) {
	set := scenario.Set{
		Floor:    scenario.Scenario{Kind: scenario.Floor, Rate: 980},
		Official: scenario.Scenario{Kind: scenario.Official, Rate: 1301},
		Ceiling:  scenario.Scenario{Kind: scenario.Ceiling, Rate: 1428},
	}
	simulated := scenario.Scenario{Kind: scenario.Simulated, Rate: 1500}

	tests := []struct {
		name         string
		result       calculator.Result
		kind         scenario.Kind
		expectFound  bool
		expectedRate float64
	}{
		{"Find floor", calculator.Result{Scenarios: &set}, scenario.Floor, true, 980},
		{"Find ceiling", calculator.Result{Scenarios: &set}, scenario.Ceiling, true, 1428},
		{"Find simulated", calculator.Result{Scenarios: &set, Simulated: &simulated}, scenario.Simulated, true, 1500},
		{"Simulated missing", calculator.Result{Scenarios: &set}, scenario.Simulated, false, 0},
		{"No scenarios", calculator.Result{}, scenario.Official, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := FindScenario(tt.result, tt.kind)
			if !tt.expectFound {
				if found != nil {
					t.Errorf("expected no scenario, got %+v", *found)
				}
				return
			}
			if found == nil {
				t.Fatal("expected scenario, got nil")
			}
			if found.Rate != tt.expectedRate {
				t.Errorf("Rate = %v, expected %v", found.Rate, tt.expectedRate)
			}
		})
	}
}

func TestWithinCents(t *testing.T) {
	if !WithinCents(100.004, 100) {
		t.Error("expected sub-cent difference to match")
	}
	if WithinCents(100.02, 100) {
		t.Error("expected two cent difference not to match")
	}
}
