// Package loans provides the fixed-payment amortization engine.
package loans

import (
	"math"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// UVAProjection summarizes a flat payment indexed by a constant monthly UVA
// growth factor.
type UVAProjection struct {
	MonthlyPercent float64 `json:"monthlyPercent"`
	Months         int     `json:"months"`
	FirstPayment   float64 `json:"firstPayment"`
	LastPayment    float64 `json:"lastPayment"`
	AveragePayment float64 `json:"averagePayment"`
}

// MonthlyRate converts a nominal annual percentage to a periodic monthly rate.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula. A return value of 0 means there is no result
// yet for the given inputs, never a free loan.
func CalculateMonthlyPayment(principal, annualRatePercent float64, termYears int) float64 {
	if principal <= 0 || annualRatePercent <= 0 || termYears <= 0 {
		return 0
	}

	termMonths := float64(termYears * constants.MonthsPerYear)
	periodicInterestRate := MonthlyRate(annualRatePercent)
	if periodicInterestRate == 0 {
		// A positive rate small enough to underflow is treated as zero
		// interest: simply divide the principal by term.
		return principal / termMonths
	}

	power := math.Pow(1.00+periodicInterestRate, termMonths)
	denominator := power - 1.00
	if denominator == 0 || !mathutil.IsFinite(denominator) {
		return 0
	}

	payment := principal * periodicInterestRate * power / denominator
	if !mathutil.IsFinite(payment) {
		return 0
	}
	return payment
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRatePercent float64) float64 {
	return remainingPrincipal * MonthlyRate(annualRatePercent)
}

// ScheduleGenerator builds month-by-month amortization schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan. It
// returns nil when the inputs do not produce a payment.
func (g *ScheduleGenerator) GenerateSchedule(principal, annualRatePercent float64, termYears int) []Payment {
	monthlyPayment := CalculateMonthlyPayment(principal, annualRatePercent, termYears)
	if monthlyPayment == 0 {
		g.logger.Debug("no payment for loan parameters, skipping schedule",
			zap.String("op", "loans.GenerateSchedule"),
			zap.Float64("principal", principal),
			zap.Float64("rate", annualRatePercent),
			zap.Int("termYears", termYears),
		)
		return nil
	}

	termMonths := termYears * constants.MonthsPerYear
	schedule := make([]Payment, 0, termMonths)
	remaining := principal
	for month := 1; month <= termMonths; month++ {
		var current Payment
		current.Month = month
		current.Payment = monthlyPayment
		current.Interest = CalculateInterestPayment(remaining, annualRatePercent)
		current.Principal = monthlyPayment - current.Interest

		if month == termMonths || mathutil.Round(remaining-current.Principal) <= 0 {
			// We will get machine error otherwise so just set to 0.
			current.Principal = remaining
			current.Payment = current.Principal + current.Interest
			current.RemainingPrincipal = 0.00
			schedule = append(schedule, current)
			break
		}

		current.RemainingPrincipal = remaining - current.Principal
		remaining = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Int("payments", len(schedule)),
		zap.Float64("monthlyPayment", monthlyPayment),
	)
	return schedule
}

// ProjectUVAPayments indexes a flat payment by a constant monthly UVA growth
// percentage over the given number of months.
func ProjectUVAPayments(payment, monthlyPercent float64, months int) UVAProjection {
	projection := UVAProjection{MonthlyPercent: monthlyPercent, Months: months}
	if payment <= 0 || months <= 0 || monthlyPercent <= -constants.PercentageMultiplier {
		return projection
	}

	factor := 1 + monthlyPercent/constants.PercentageMultiplier
	projection.FirstPayment = payment
	projection.LastPayment = payment * math.Pow(factor, float64(months-1))

	if monthlyPercent == 0 {
		projection.AveragePayment = payment
		return projection
	}

	// Geometric series sum of payment * factor^k for k in [0, months).
	sum := payment * (math.Pow(factor, float64(months)) - 1) / (factor - 1)
	projection.AveragePayment = sum / float64(months)
	return projection
}
