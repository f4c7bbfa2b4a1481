package models

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TerminalDistribution returns the risk-neutral lognormal distribution of the
// underlying price at horizon T years, given spot S, rate r, dividend yield q
// and volatility sigma.
func TerminalDistribution(S, r, q, sigma, T float64) distuv.LogNormal {
	return distuv.LogNormal{
		Mu:    math.Log(S) + (r-q-0.5*sigma*sigma)*T,
		Sigma: sigma * math.Sqrt(T),
	}
}
