package positions

import "math"

// IntrinsicValue returns the per-share exercise value of an option at the
// given underlying price. It does not depend on volatility, rates or style.
func IntrinsicValue(kind OptionKind, underlying, strike float64) float64 {
	if kind == Call {
		return math.Max(0, underlying-strike)
	}
	return math.Max(0, strike-underlying)
}

// LegPayoff returns the leg's expiration value in dollars at the given
// underlying price, scaled by signed quantity and contract multiplier.
func LegPayoff(leg Leg, underlying float64) float64 {
	return float64(leg.Quantity) * ContractMultiplier * IntrinsicValue(leg.Kind, underlying, leg.Strike)
}

// PortfolioPayoff returns the total P/L at expiration for the given legs at
// one underlying price. Credit is the net premium received when the position
// was opened (negative for a net debit).
func PortfolioPayoff(legs []Leg, underlying, credit float64) float64 {
	total := credit
	for _, leg := range legs {
		total += LegPayoff(leg, underlying)
	}
	return total
}
