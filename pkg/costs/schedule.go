// Package costs holds the per-jurisdiction closing cost schedule and the
// engine that turns it into itemized closing costs.
package costs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/mathutil"
)

// Category is one of the four closing cost line items.
type Category string

const (
	// Escritura is the deed and notary fee.
	Escritura Category = "escritura"
	// Inmobiliaria is the real estate agency commission.
	Inmobiliaria Category = "inmobiliaria"
	// Firmas is the signing fee.
	Firmas Category = "firmas"
	// Sellos is the stamp tax.
	Sellos Category = "sellos"
)

// Categories lists every cost category in display order.
var Categories = []Category{Escritura, Inmobiliaria, Firmas, Sellos}

// ParseCategory maps a case-insensitive name to a Category.
func ParseCategory(name string) (Category, error) {
	candidate := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, category := range Categories {
		if category == candidate {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown cost category %q", name)
}

// Range is the allowed band for a category and the percentage currently in use.
type Range struct {
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Selected float64 `json:"selected" yaml:"selected"`
}

// Jurisdiction is the closing cost schedule for one province or city.
type Jurisdiction struct {
	Code  string             `json:"code" yaml:"code"`
	Name  string             `json:"name" yaml:"name"`
	Costs map[Category]Range `json:"costs" yaml:"costs"`
}

// Overrides replaces the selected percentage for individual categories.
type Overrides map[Category]float64

// Clamped returns a copy with every percentage clamped to the UI bounds.
func (o Overrides) Clamped() Overrides {
	if o == nil {
		return nil
	}
	clamped := make(Overrides, len(o))
	for category, pct := range o {
		clamped[category] = ClampPercentage(pct)
	}
	return clamped
}

// Schedule is the set of known jurisdictions. Selected percentages are the
// only mutable part and change through SetSelected.
type Schedule struct {
	jurisdictions map[string]*Jurisdiction
}

// NewSchedule validates the jurisdictions and builds a Schedule from them.
func NewSchedule(jurisdictions []Jurisdiction) (*Schedule, error) {
	schedule := &Schedule{jurisdictions: make(map[string]*Jurisdiction, len(jurisdictions))}
	for _, j := range jurisdictions {
		code := strings.ToUpper(strings.TrimSpace(j.Code))
		if code == "" {
			return nil, fmt.Errorf("jurisdiction %q has no code", j.Name)
		}
		if _, exists := schedule.jurisdictions[code]; exists {
			return nil, fmt.Errorf("duplicate jurisdiction %s", code)
		}

		entry := &Jurisdiction{Code: code, Name: j.Name, Costs: make(map[Category]Range, len(Categories))}
		for _, category := range Categories {
			r, ok := j.Costs[category]
			if !ok {
				return nil, fmt.Errorf("jurisdiction %s is missing category %s", code, category)
			}
			if r.Min > r.Max {
				return nil, fmt.Errorf("jurisdiction %s category %s: min %.2f exceeds max %.2f", code, category, r.Min, r.Max)
			}
			if r.Selected < r.Min || r.Selected > r.Max {
				return nil, fmt.Errorf("jurisdiction %s category %s: selected %.2f outside [%.2f, %.2f]",
					code, category, r.Selected, r.Min, r.Max)
			}
			entry.Costs[category] = r
		}
		schedule.jurisdictions[code] = entry
	}
	return schedule, nil
}

// DefaultSchedule returns the built-in schedule for the supported jurisdictions.
func DefaultSchedule() *Schedule {
	schedule, err := NewSchedule(DefaultJurisdictions())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in cost schedule: %v", err))
	}
	return schedule
}

// DefaultJurisdictions returns a fresh copy of the built-in jurisdictions.
func DefaultJurisdictions() []Jurisdiction {
	return []Jurisdiction{
		{
			Code: "CABA",
			Name: "Ciudad Autónoma de Buenos Aires",
			Costs: map[Category]Range{
				Escritura:    {Min: 1.5, Max: 3.0, Selected: 2.25},
				Inmobiliaria: {Min: 2.0, Max: 4.0, Selected: 3.0},
				Firmas:       {Min: 0.5, Max: 1.0, Selected: 0.75},
				Sellos:       {Min: 0.0, Max: 2.5, Selected: 1.25},
			},
		},
		{
			Code: "BSAS",
			Name: "Provincia de Buenos Aires",
			Costs: map[Category]Range{
				Escritura:    {Min: 1.5, Max: 2.5, Selected: 2.0},
				Inmobiliaria: {Min: 2.0, Max: 4.0, Selected: 3.0},
				Firmas:       {Min: 0.5, Max: 1.0, Selected: 0.75},
				Sellos:       {Min: 0.0, Max: 3.6, Selected: 1.8},
			},
		},
		{
			Code: "CORDOBA",
			Name: "Córdoba",
			Costs: map[Category]Range{
				Escritura:    {Min: 1.5, Max: 2.5, Selected: 2.0},
				Inmobiliaria: {Min: 3.0, Max: 5.0, Selected: 4.0},
				Firmas:       {Min: 0.5, Max: 1.0, Selected: 0.75},
				Sellos:       {Min: 0.0, Max: 2.0, Selected: 1.0},
			},
		},
		{
			Code: "SANTA_FE",
			Name: "Santa Fe",
			Costs: map[Category]Range{
				Escritura:    {Min: 1.5, Max: 2.5, Selected: 2.0},
				Inmobiliaria: {Min: 3.0, Max: 4.0, Selected: 3.5},
				Firmas:       {Min: 0.5, Max: 1.0, Selected: 0.75},
				Sellos:       {Min: 0.0, Max: 2.5, Selected: 1.2},
			},
		},
		{
			Code: "MENDOZA",
			Name: "Mendoza",
			Costs: map[Category]Range{
				Escritura:    {Min: 1.5, Max: 2.5, Selected: 2.0},
				Inmobiliaria: {Min: 3.0, Max: 4.0, Selected: 3.0},
				Firmas:       {Min: 0.5, Max: 1.0, Selected: 0.75},
				Sellos:       {Min: 0.0, Max: 2.0, Selected: 1.0},
			},
		},
	}
}

// Codes returns the jurisdiction codes in sorted order.
func (s *Schedule) Codes() []string {
	codes := make([]string, 0, len(s.jurisdictions))
	for code := range s.jurisdictions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns a copy of the jurisdiction with the given code.
func (s *Schedule) Lookup(code string) (Jurisdiction, bool) {
	j, ok := s.jurisdictions[normalizeCode(code)]
	if !ok {
		return Jurisdiction{}, false
	}
	copied := Jurisdiction{Code: j.Code, Name: j.Name, Costs: make(map[Category]Range, len(j.Costs))}
	for category, r := range j.Costs {
		copied.Costs[category] = r
	}
	return copied, true
}

// Jurisdictions returns copies of every jurisdiction ordered by code.
func (s *Schedule) Jurisdictions() []Jurisdiction {
	codes := s.Codes()
	out := make([]Jurisdiction, 0, len(codes))
	for _, code := range codes {
		j, _ := s.Lookup(code)
		out = append(out, j)
	}
	return out
}

// Selected returns the selected percentages for a jurisdiction.
func (s *Schedule) Selected(code string) (map[Category]float64, bool) {
	j, ok := s.jurisdictions[normalizeCode(code)]
	if !ok {
		return nil, false
	}
	selected := make(map[Category]float64, len(j.Costs))
	for category, r := range j.Costs {
		selected[category] = r.Selected
	}
	return selected, true
}

// SetSelected stores a user-chosen percentage for one category. The value is
// clamped to the UI bound [0, 10] only; it may fall outside the
// jurisdiction's own [min, max]. The stored value is returned.
func (s *Schedule) SetSelected(code string, category Category, pct float64) (float64, error) {
	j, ok := s.jurisdictions[normalizeCode(code)]
	if !ok {
		return 0, fmt.Errorf("unknown jurisdiction %q", code)
	}
	r, ok := j.Costs[category]
	if !ok {
		return 0, fmt.Errorf("unknown cost category %q", category)
	}
	r.Selected = ClampPercentage(pct)
	j.Costs[category] = r
	return r.Selected, nil
}

// ClampPercentage bounds a user-entered cost percentage to [0, 10].
func ClampPercentage(pct float64) float64 {
	return mathutil.Clamp(pct, constants.MinCostPercent, constants.MaxCostPercent)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
