package positions

import "fmt"

// ValidationError is a fatal input error. It names the offending leg and
// field so the caller can surface it directly. LegIndex is -1 for errors
// that are not tied to a particular leg.
type ValidationError struct {
	LegIndex int
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.LegIndex < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("leg %d: invalid %s: %s", e.LegIndex, e.Field, e.Message)
}

// ValidateLeg checks a single leg's construction invariants.
func ValidateLeg(index int, leg Leg) error {
	if leg.Quantity == 0 {
		return &ValidationError{LegIndex: index, Field: "quantity", Message: "must be nonzero"}
	}
	if leg.Strike <= 0 {
		return &ValidationError{LegIndex: index, Field: "strike", Message: fmt.Sprintf("must be positive, got %v", leg.Strike)}
	}
	if leg.Kind != Call && leg.Kind != Put {
		return &ValidationError{LegIndex: index, Field: "kind", Message: fmt.Sprintf("must be %q or %q, got %q", Call, Put, leg.Kind)}
	}
	if leg.Style != "" && leg.Style != American && leg.Style != European {
		return &ValidationError{LegIndex: index, Field: "style", Message: fmt.Sprintf("must be %q or %q, got %q", American, European, leg.Style)}
	}
	if leg.ManualIV < 0 {
		return &ValidationError{LegIndex: index, Field: "manual_iv", Message: "must not be negative"}
	}
	if leg.ManualPrice < 0 {
		return &ValidationError{LegIndex: index, Field: "manual_price", Message: "must not be negative"}
	}
	if leg.DividendYield < 0 {
		return &ValidationError{LegIndex: index, Field: "dividend_yield", Message: "must not be negative"}
	}
	return nil
}

// ValidateLegs checks every leg and requires at least one.
func ValidateLegs(legs []Leg) error {
	if len(legs) == 0 {
		return &ValidationError{LegIndex: -1, Field: "positions", Message: "at least one leg is required"}
	}
	for i, leg := range legs {
		if err := ValidateLeg(i, leg); err != nil {
			return err
		}
	}
	return nil
}
