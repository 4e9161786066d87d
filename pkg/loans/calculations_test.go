package loans

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

// annuity is the closed-form reference used to check CalculateMonthlyPayment.
func annuity(principal, annualRatePercent float64, termYears int) float64 {
	r := annualRatePercent / 100 / 12
	n := float64(termYears * 12)
	return principal * r * math.Pow(1+r, n) / (math.Pow(1+r, n) - 1)
}

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name              string
		principal         float64
		annualRatePercent float64
		termYears         int
		expectedRange     []float64 // [min, max] expected range
	}{
		{
			name:              "Reference UVA loan",
			principal:         70000000,
			annualRatePercent: 8.5,
			termYears:         20,
			expectedRange:     []float64{607000, 608000}, // Around 607,474
		},
		{
			name:              "Lowest policy rate longest term",
			principal:         50000000,
			annualRatePercent: 4.5,
			termYears:         35,
			expectedRange:     []float64{236000, 237000},
		},
		{
			name:              "Highest policy rate shortest term",
			principal:         10000000,
			annualRatePercent: 11,
			termYears:         5,
			expectedRange:     []float64{217000, 218000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualRatePercent, tt.termYears)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}

			expected := annuity(tt.principal, tt.annualRatePercent, tt.termYears)
			if math.Abs(result-expected)/expected > 1e-6 {
				t.Errorf("CalculateMonthlyPayment() = %.6f, closed form %.6f", result, expected)
			}
		})
	}
}

func TestCalculateMonthlyPaymentDegenerateInputs(t *testing.T) {
	tests := []struct {
		name              string
		principal         float64
		annualRatePercent float64
		termYears         int
	}{
		{"Zero principal", 0, 8.5, 20},
		{"Negative principal", -1000, 8.5, 20},
		{"Zero rate", 70000000, 0, 20},
		{"Negative rate", 70000000, -1, 20},
		{"Zero term", 70000000, 8.5, 0},
		{"Negative term", 70000000, 8.5, -5},
		{"All zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualRatePercent, tt.termYears)
			if result != 0 {
				t.Errorf("CalculateMonthlyPayment() = %v, expected 0", result)
			}
		})
	}
}

func TestCalculateMonthlyPaymentUnderflowingRate(t *testing.T) {
	// The monthly rate underflows to exactly zero, which must fall back to a
	// straight-line split rather than dividing by zero.
	result := CalculateMonthlyPayment(12000000, math.SmallestNonzeroFloat64, 10)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		t.Fatalf("CalculateMonthlyPayment() = %v, expected a finite value", result)
	}
	if math.Abs(result-100000) > 1e-6 {
		t.Errorf("CalculateMonthlyPayment() = %v, expected 100000", result)
	}
}

func TestCalculateMonthlyPaymentStableAcrossPolicyRange(t *testing.T) {
	for years := 5; years <= 35; years++ {
		for rate := 4.5; rate <= 11.0; rate += 0.5 {
			result := CalculateMonthlyPayment(70000000, rate, years)
			if math.IsNaN(result) || math.IsInf(result, 0) || result <= 0 {
				t.Fatalf("CalculateMonthlyPayment(70000000, %v, %d) = %v", rate, years, result)
			}
			// A fixed payment always covers at least the straight-line principal.
			if result < 70000000/float64(years*12) {
				t.Fatalf("payment %v below straight-line share for rate %v term %d", result, rate, years)
			}
		}
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualRatePercent  float64
		expected           float64
	}{
		{
			name:               "Reference loan first month",
			remainingPrincipal: 70000000,
			annualRatePercent:  8.5,
			expected:           495833.33, // 70000000 * 0.085 / 12
		},
		{
			name:               "Lowest policy rate",
			remainingPrincipal: 12000000,
			annualRatePercent:  4.5,
			expected:           45000.0,
		},
		{
			name:               "Zero interest",
			remainingPrincipal: 10000,
			annualRatePercent:  0.0,
			expected:           0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remainingPrincipal, tt.annualRatePercent)

			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateInterestPayment() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestGenerateSchedule(t *testing.T) {
	generator := NewScheduleGenerator(zap.NewNop())

	schedule := generator.GenerateSchedule(70000000, 8.5, 20)
	if len(schedule) != 240 {
		t.Fatalf("expected 240 payments, got %d", len(schedule))
	}

	if schedule[0].Month != 1 {
		t.Errorf("expected first month to be 1, got %d", schedule[0].Month)
	}

	totalPrincipal := 0.0
	for _, payment := range schedule {
		totalPrincipal += payment.Principal
	}
	if math.Abs(totalPrincipal-70000000) > 1 {
		t.Errorf("principal portions sum to %.2f, expected 70000000", totalPrincipal)
	}

	last := schedule[len(schedule)-1]
	if last.RemainingPrincipal != 0 {
		t.Errorf("expected final remaining principal 0, got %.2f", last.RemainingPrincipal)
	}

	for i := 1; i < len(schedule)-1; i++ {
		if schedule[i].Interest >= schedule[i-1].Interest {
			t.Fatalf("interest should decrease month over month, month %d: %.2f >= %.2f",
				schedule[i].Month, schedule[i].Interest, schedule[i-1].Interest)
		}
	}
}

func TestGenerateScheduleNoPayment(t *testing.T) {
	generator := NewScheduleGenerator(nil)
	if schedule := generator.GenerateSchedule(0, 8.5, 20); schedule != nil {
		t.Errorf("expected nil schedule for zero principal, got %d payments", len(schedule))
	}
}

func TestProjectUVAPayments(t *testing.T) {
	tests := []struct {
		name            string
		payment         float64
		monthlyPercent  float64
		months          int
		expectedAverage float64
		expectedLast    float64
	}{
		{
			name:            "No indexation",
			payment:         1000,
			monthlyPercent:  0,
			months:          12,
			expectedAverage: 1000,
			expectedLast:    1000,
		},
		{
			name:            "Two months at ten percent",
			payment:         1000,
			monthlyPercent:  10,
			months:          2,
			expectedAverage: 1050, // (1000 + 1100) / 2
			expectedLast:    1100,
		},
		{
			name:            "Zero payment",
			payment:         0,
			monthlyPercent:  2,
			months:          12,
			expectedAverage: 0,
			expectedLast:    0,
		},
		{
			name:            "Zero months",
			payment:         1000,
			monthlyPercent:  2,
			months:          0,
			expectedAverage: 0,
			expectedLast:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projection := ProjectUVAPayments(tt.payment, tt.monthlyPercent, tt.months)
			if math.Abs(projection.AveragePayment-tt.expectedAverage) > 1e-6 {
				t.Errorf("AveragePayment = %v, expected %v", projection.AveragePayment, tt.expectedAverage)
			}
			if math.Abs(projection.LastPayment-tt.expectedLast) > 1e-6 {
				t.Errorf("LastPayment = %v, expected %v", projection.LastPayment, tt.expectedLast)
			}
		})
	}
}
