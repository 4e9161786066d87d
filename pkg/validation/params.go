package validation

import (
	"fmt"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/format"
)

// rateTolerance absorbs float noise at the rate policy edges.
const rateTolerance = 1e-9

// Reason explains why a set of loan parameters was rejected.
type Reason string

const (
	// ReasonPropertyValue means the property value is missing or not positive.
	ReasonPropertyValue Reason = "property value invalid"
	// ReasonLoanAmount means the loan principal is missing or not positive.
	ReasonLoanAmount Reason = "loan amount invalid"
	// ReasonLoanExceedsValue means the principal is above the peso value of the property.
	ReasonLoanExceedsValue Reason = "loan exceeds maximum value"
	// ReasonTerm means the term is outside [5, 35] years.
	ReasonTerm Reason = "term invalid"
	// ReasonRate means the rate is outside [4.5, 11] percent.
	ReasonRate Reason = "rate invalid"
)

// Params are the raw numeric loan inputs.
type Params struct {
	PropertyValueUSD float64
	PrincipalARS     float64
	TermYears        int
	RatePercent      float64
}

// Result is the outcome of Validate. Reason is empty when Valid.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason,omitempty"`
}

func invalid(reason Reason) Result {
	return Result{Valid: false, Reason: reason}
}

// Validate applies the business ranges in order; the first failing rule wins.
func Validate(params Params, officialRate float64) Result {
	if params.PropertyValueUSD <= 0 {
		return invalid(ReasonPropertyValue)
	}
	if params.PrincipalARS <= 0 {
		return invalid(ReasonLoanAmount)
	}
	if params.PrincipalARS > params.PropertyValueUSD*officialRate {
		return invalid(ReasonLoanExceedsValue)
	}
	if params.TermYears < constants.MinTermYears || params.TermYears > constants.MaxTermYears {
		return invalid(ReasonTerm)
	}
	if params.RatePercent < constants.MinRatePercent-rateTolerance || params.RatePercent > constants.MaxRatePercent+rateTolerance {
		return invalid(ReasonRate)
	}
	return Result{Valid: true}
}

// CanCompute is the loose gate used while the user is still typing: every
// input only needs to be positive.
func CanCompute(params Params) bool {
	return params.PropertyValueUSD > 0 &&
		params.PrincipalARS > 0 &&
		params.RatePercent > 0 &&
		params.TermYears > 0
}

// ValidatePropertyValue returns a warning when the property value falls
// outside the range the calculator is tuned for. It never blocks computation.
func ValidatePropertyValue(propertyValueUSD float64) string {
	if propertyValueUSD < constants.MinPropertyValueUSD || propertyValueUSD > constants.MaxPropertyValueUSD {
		return fmt.Sprintf("property value %s is outside the supported range [%s, %s]",
			format.Currency(propertyValueUSD), format.Currency(constants.MinPropertyValueUSD), format.Currency(constants.MaxPropertyValueUSD))
	}
	return ""
}
