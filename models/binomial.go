package models

import (
	"fmt"
	"math"
)

// LatticeSteps is the fixed CRR step count for American pricing. Pinned so a
// given input always produces the same price; test fixtures depend on it.
const LatticeSteps = 150

// PriceAmerican values an American option on a Cox-Ross-Rubinstein binomial
// lattice with early exercise checked at every node. The dividend yield is
// folded into the risk-neutral up probability. T at or below zero
// short-circuits to intrinsic value before the lattice is built.
func PriceAmerican(isCall bool, S, K, T, r, q, sigma float64) (float64, error) {
	if err := validateInputs(S, K, sigma); err != nil {
		return 0, err
	}
	if T <= 0 {
		return intrinsic(isCall, S, K), nil
	}
	if sigma == 0 {
		return 0, fmt.Errorf("volatility must be positive for time-valued pricing")
	}

	dt := T / LatticeSteps
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp((r-q)*dt) - d) / (u - d)
	discount := math.Exp(-r * dt)

	// Single flat array reused across induction steps; node i at step n holds
	// the value for i down-moves.
	values := make([]float64, LatticeSteps+1)
	for i := 0; i <= LatticeSteps; i++ {
		sT := S * math.Pow(u, float64(LatticeSteps-i)) * math.Pow(d, float64(i))
		values[i] = intrinsic(isCall, sT, K)
	}

	for step := LatticeSteps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			sNode := S * math.Pow(u, float64(step-i)) * math.Pow(d, float64(i))
			hold := discount * (p*values[i] + (1-p)*values[i+1])
			values[i] = math.Max(hold, intrinsic(isCall, sNode, K))
		}
	}

	return values[0], nil
}
