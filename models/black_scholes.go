package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func normCDF(x float64) float64 { return stdNormal.CDF(x) }
func normPDF(x float64) float64 { return stdNormal.Prob(x) }

func intrinsic(isCall bool, S, K float64) float64 {
	if isCall {
		return math.Max(0, S-K)
	}
	return math.Max(0, K-S)
}

func validateInputs(S, K, sigma float64) error {
	if S <= 0 {
		return fmt.Errorf("spot must be positive, got %v", S)
	}
	if K <= 0 {
		return fmt.Errorf("strike must be positive, got %v", K)
	}
	if sigma < 0 {
		return fmt.Errorf("volatility must not be negative, got %v", sigma)
	}
	return nil
}

func d1d2(S, K, T, r, q, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// PriceEuropean returns the Black-Scholes value of a European option with a
// continuous dividend yield q. T is the time to expiration in years. A zero
// or negative T short-circuits to intrinsic value.
func PriceEuropean(isCall bool, S, K, T, r, q, sigma float64) (float64, error) {
	if err := validateInputs(S, K, sigma); err != nil {
		return 0, err
	}
	if T <= 0 {
		return intrinsic(isCall, S, K), nil
	}
	if sigma == 0 {
		return 0, fmt.Errorf("volatility must be positive for time-valued pricing")
	}

	d1, d2 := d1d2(S, K, T, r, q, sigma)
	if isCall {
		return S*math.Exp(-q*T)*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2), nil
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*math.Exp(-q*T)*normCDF(-d1), nil
}

// Price dispatches on exercise style: closed form for European, lattice for
// American.
func Price(isCall, american bool, S, K, T, r, q, sigma float64) (float64, error) {
	if american {
		return PriceAmerican(isCall, S, K, T, r, q, sigma)
	}
	return PriceEuropean(isCall, S, K, T, r, q, sigma)
}
