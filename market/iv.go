package market

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/optviz/optviz/models"
)

const (
	ivMaxIterations = 100
	ivEpsilon       = 1e-8
	ivFloor         = 0.0001
)

// ImpliedVolFromPrice inverts the European pricing formula with
// Newton-Raphson to recover the implied volatility that reproduces
// targetPrice. Returns NaN when the iteration fails to converge, e.g. for
// quotes below intrinsic value.
func ImpliedVolFromPrice(isCall bool, targetPrice, S, K, T, r, q float64) float64 {
	sigma := 0.5 // initial guess
	for i := 0; i < ivMaxIterations; i++ {
		price, err := models.PriceEuropean(isCall, S, K, T, r, q, sigma)
		if err != nil {
			return math.NaN()
		}
		diff := price - targetPrice
		if math.Abs(diff) < ivEpsilon {
			return sigma
		}

		greeks, err := models.AnalyticGreeks(isCall, S, K, T, r, q, sigma)
		if err != nil {
			return math.NaN()
		}
		vega := greeks.Vega * 100 // back to per-unit-vol for the Newton step
		if vega == 0 {
			return math.NaN()
		}

		sigma -= diff / vega
		if sigma <= 0 {
			sigma = ivFloor
		}
	}
	return math.NaN()
}

// IVRankFromHistory approximates an IV rank in [0,100] from daily closes when
// the provider has no rank: the current IV is ranked against a rolling
// realized-volatility band computed over the history. The window is in
// trading days. Reports false when the history is too short or flat.
func IVRankFromHistory(closes []float64, currentIV float64, window int) (float64, bool) {
	if window <= 1 || len(closes) < window+2 || currentIV <= 0 {
		return 0, false
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, false
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for start := 0; start+window <= len(returns); start++ {
		vol := annualizedStdDev(returns[start : start+window])
		lo = math.Min(lo, vol)
		hi = math.Max(hi, vol)
	}
	if hi <= lo {
		return 0, false
	}

	rank := (currentIV - lo) / (hi - lo) * 100
	return math.Max(0, math.Min(100, rank)), true
}

func annualizedStdDev(returns []float64) float64 {
	return stat.StdDev(returns, nil) * math.Sqrt(252)
}
