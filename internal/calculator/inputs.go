package calculator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/uva-calculator/pkg/costs"
	"github.com/shopspring/decimal"
)

// Raw field names accepted by ParseInputs.
const (
	FieldPropertyValue  = "propertyValue"
	FieldPrincipal      = "principal"
	FieldTerm           = "term"
	FieldRate           = "rate"
	FieldJurisdiction   = "jurisdiction"
	FieldSchedule       = "schedule"
	FieldOverridePrefix = "override."
)

// ParseInputs converts raw form fields into Inputs. Blank fields stay zero so
// a partially filled form still parses; malformed numbers are errors.
func ParseInputs(fields map[string]string) (Inputs, error) {
	var in Inputs
	var err error

	if in.PropertyValueUSD, err = parseAmount(fields, FieldPropertyValue); err != nil {
		return Inputs{}, err
	}
	if in.PrincipalARS, err = parseAmount(fields, FieldPrincipal); err != nil {
		return Inputs{}, err
	}
	if in.RatePercent, err = parseAmount(fields, FieldRate); err != nil {
		return Inputs{}, err
	}
	if in.TermYears, err = parseYears(fields, FieldTerm); err != nil {
		return Inputs{}, err
	}
	in.Jurisdiction = strings.ToUpper(strings.TrimSpace(fields[FieldJurisdiction]))
	if raw := strings.TrimSpace(fields[FieldSchedule]); raw != "" {
		if in.IncludeSchedule, err = strconv.ParseBool(raw); err != nil {
			return Inputs{}, fmt.Errorf("invalid %s %q: %w", FieldSchedule, raw, err)
		}
	}

	for key, raw := range fields {
		if !strings.HasPrefix(key, FieldOverridePrefix) {
			continue
		}
		category, err := costs.ParseCategory(strings.TrimPrefix(key, FieldOverridePrefix))
		if err != nil {
			return Inputs{}, err
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		pct, err := parseDecimal(key, raw)
		if err != nil {
			return Inputs{}, err
		}
		if in.Overrides == nil {
			in.Overrides = make(costs.Overrides)
		}
		in.Overrides[category] = costs.ClampPercentage(pct.InexactFloat64())
	}

	return in, nil
}

func parseAmount(fields map[string]string, key string) (float64, error) {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return 0, nil
	}
	d, err := parseDecimal(key, raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func parseYears(fields map[string]string, key string) (int, error) {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return 0, nil
	}
	d, err := parseDecimal(key, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("invalid %s %q: must be a whole number of years", key, raw)
	}
	return int(d.IntPart()), nil
}

// parseDecimal accepts plain decimals and underscore or space digit grouping.
func parseDecimal(key, raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("_", "", " ", "").Replace(strings.TrimSpace(raw))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
