package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "$0.00"},
		{999.999, "$1,000.00"},
		{11237.5, "$11,237.50"},
		{300000, "$300,000.00"},
		{-1234.56, "-$1,234.56"},
	}

	for _, tt := range tests {
		if got := Currency(tt.input); got != tt.expected {
			t.Errorf("Currency(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestPesos(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{146274987.5, "ARS 146,274,987.50"},
		{-92912750, "ARS -92,912,750.00"},
		{1301, "ARS 1,301.00"},
	}

	for _, tt := range tests {
		if got := Pesos(tt.input); got != tt.expected {
			t.Errorf("Pesos(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
