package costs

import "github.com/iwvelando/uva-calculator/pkg/mathutil"

// Breakdown holds the four closing cost line items and their sum. The
// currency depends on the function that produced it.
type Breakdown struct {
	Escritura    float64 `json:"escritura"`
	Inmobiliaria float64 `json:"inmobiliaria"`
	Firmas       float64 `json:"firmas"`
	Sellos       float64 `json:"sellos"`
	Total        float64 `json:"total"`
	known        bool
}

// Known reports whether the breakdown came from a known jurisdiction.
func (b Breakdown) Known() bool {
	return b.known
}

// Item returns the amount for one category.
func (b Breakdown) Item(category Category) float64 {
	switch category {
	case Escritura:
		return b.Escritura
	case Inmobiliaria:
		return b.Inmobiliaria
	case Firmas:
		return b.Firmas
	case Sellos:
		return b.Sellos
	}
	return 0
}

// ComputeClosingCosts itemizes closing costs in USD. Unknown jurisdictions
// yield an empty breakdown.
func ComputeClosingCosts(schedule *Schedule, propertyValueUSD float64, code string, overrides Overrides) Breakdown {
	return compute(schedule, propertyValueUSD, code, overrides)
}

// ComputeClosingCostsAtRate itemizes closing costs in ARS, converting the
// property value with the given exchange rate before applying percentages.
func ComputeClosingCostsAtRate(schedule *Schedule, propertyValueUSD float64, code string, rate float64, overrides Overrides) Breakdown {
	return compute(schedule, propertyValueUSD*rate, code, overrides)
}

func compute(schedule *Schedule, base float64, code string, overrides Overrides) Breakdown {
	if schedule == nil {
		return Breakdown{}
	}
	selected, ok := schedule.Selected(code)
	if !ok {
		return Breakdown{}
	}

	pct := func(category Category) float64 {
		if override, ok := overrides[category]; ok {
			return override
		}
		return selected[category]
	}

	b := Breakdown{
		Escritura:    mathutil.ApplyPercentage(base, pct(Escritura)),
		Inmobiliaria: mathutil.ApplyPercentage(base, pct(Inmobiliaria)),
		Firmas:       mathutil.ApplyPercentage(base, pct(Firmas)),
		Sellos:       mathutil.ApplyPercentage(base, pct(Sellos)),
		known:        true,
	}
	b.Total = b.Escritura + b.Inmobiliaria + b.Firmas + b.Sellos
	return b
}
