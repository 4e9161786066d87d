// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/costs"
	"github.com/iwvelando/uva-calculator/pkg/format"
	"github.com/iwvelando/uva-calculator/pkg/loans"
	"github.com/iwvelando/uva-calculator/pkg/scenario"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, result calculator.Result) {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "--- UVA mortgage calculation ---\n")
	source := result.RateSource
	if source == "" {
		source = "unknown"
	}
	_, _ = p.Fprintf(w, "Official rate:  ARS %.2f (source %s)\n", result.OfficialRate, source)
	if result.SimulatedRate != result.OfficialRate && result.SimulatedRate > 0 {
		_, _ = p.Fprintf(w, "Simulated rate: ARS %.2f\n", result.SimulatedRate)
	}
	_, _ = p.Fprintf(w, "Band:           ARS %.0f - %.0f (%d months since anchor)\n",
		result.Band.Floor, result.Band.Ceiling, result.Band.MonthsElapsed)
	fmt.Fprintf(w, "\n")

	if result.Validation.Valid {
		fmt.Fprintf(w, "Validation: valid\n")
	} else {
		fmt.Fprintf(w, "Validation: %s\n", result.Validation.Reason)
	}
	if result.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", result.Warning)
	}

	if !result.Computable {
		fmt.Fprintf(w, "Enter a positive property value, loan amount, rate and term to see results.\n")
		return
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Monthly payment: %s\n", format.Pesos(result.MonthlyPayment))
	fmt.Fprintf(w, "Total interest:  %s\n", format.Pesos(result.TotalInterestARS))
	if uva := result.UVA; uva.MonthlyPercent != 0 && uva.Months > 0 {
		_, _ = p.Fprintf(w, "UVA projection at %.2f%%/month over %d months: first ARS %.2f, last ARS %.2f, average ARS %.2f\n",
			uva.MonthlyPercent, uva.Months, uva.FirstPayment, uva.LastPayment, uva.AveragePayment)
	}

	fmt.Fprintf(w, "\nClosing costs (%s)\n", strings.ToUpper(result.Inputs.Jurisdiction))
	if !result.CostsUSD.Known() {
		fmt.Fprintf(w, "Unknown jurisdiction, no closing costs applied\n")
	}
	fmt.Fprintf(w, "Item         | USD            | ARS\n")
	fmt.Fprintf(w, "____         | ___            | ___\n")
	for _, category := range costs.Categories {
		_, _ = p.Fprintf(w, "%-12s | $%-13.2f | %.2f\n", category, result.CostsUSD.Item(category), result.CostsARS.Item(category))
	}
	_, _ = p.Fprintf(w, "%-12s | $%-13.2f | %.2f\n", "total", result.CostsUSD.Total, result.CostsARS.Total)

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Total operation cost: %s\n", format.Pesos(result.TotalOperationCostARS))
	fmt.Fprintf(w, "Shortfall:            %s\n", format.Pesos(result.ShortfallARS))

	if result.Scenarios != nil {
		writeScenarios(w, p, result)
	}
	if len(result.Schedule) > 0 {
		writeSchedule(w, p, result.Schedule)
	}
}

func writeScenarios(w io.Writer, p *message.Printer, result calculator.Result) {
	fmt.Fprintf(w, "\nScenario  | Rate     | Shortfall ARS      | Shortfall USD | Delta ARS          | Outcome\n")
	fmt.Fprintf(w, "________  | ____     | _____________      | _____________ | _________          | _______\n")
	scenarios := result.Scenarios.All()
	if result.Simulated != nil {
		scenarios = append(scenarios, *result.Simulated)
	}
	for _, s := range scenarios {
		writeScenario(w, p, s)
	}
}

func writeScenario(w io.Writer, p *message.Printer, s scenario.Scenario) {
	outcome := string(s.Classification())
	if s.Kind == scenario.Official {
		outcome = "baseline"
	}
	_, _ = p.Fprintf(w, "%-9s | %-8.0f | %-18.2f | %-13.2f | %-18.2f | %s\n",
		s.Kind, s.Rate, s.ShortfallARS, s.ShortfallUSD, s.DeltaVsOfficialARS, outcome)
}

// writeSchedule summarizes the amortization schedule one row per loan year.
func writeSchedule(w io.Writer, p *message.Printer, schedule []loans.Payment) {
	fmt.Fprintf(w, "\nYear | Paid ARS           | Interest ARS       | Principal ARS      | Remaining ARS\n")
	fmt.Fprintf(w, "____ | ________           | ____________       | _____________      | _____________\n")
	var paid, interest, principal float64
	for i, payment := range schedule {
		paid += payment.Payment
		interest += payment.Interest
		principal += payment.Principal
		if payment.Month%constants.MonthsPerYear == 0 || i == len(schedule)-1 {
			year := (payment.Month + constants.MonthsPerYear - 1) / constants.MonthsPerYear
			_, _ = p.Fprintf(w, "%-4d | %-18.2f | %-18.2f | %-18.2f | %.2f\n",
				year, paid, interest, principal, payment.RemainingPrincipal)
			paid, interest, principal = 0, 0, 0
		}
	}
}

// JSONFormat writes the result as indented JSON.
func JSONFormat(w io.Writer, result calculator.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
