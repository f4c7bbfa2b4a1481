package models

import "math"

// Greeks holds per-share option sensitivities. Theta is expressed per
// calendar day, vega per one volatility point, rho per one percentage point
// of rate.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// Scale returns the Greeks multiplied by k, used for quantity and contract
// multiplier scaling.
func (g Greeks) Scale(k float64) Greeks {
	return Greeks{
		Delta: g.Delta * k,
		Gamma: g.Gamma * k,
		Theta: g.Theta * k,
		Vega:  g.Vega * k,
		Rho:   g.Rho * k,
	}
}

// Add returns the element-wise sum of two Greeks.
func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Theta: g.Theta + o.Theta,
		Vega:  g.Vega + o.Vega,
		Rho:   g.Rho + o.Rho,
	}
}

// Finite-difference bump sizes. The spot bump is relative so the method
// scales from penny stocks to index-level strikes; vol and rate bumps match
// the per-point reporting units.
const (
	spotBumpFraction = 0.01
	volBump          = 0.01
	rateBump         = 0.01
	dayInYears       = 1.0 / 365.0
)

// AnalyticGreeks returns closed-form Black-Scholes sensitivities for a
// European option with continuous dividend yield q. At or past expiration all
// Greeks are zero.
func AnalyticGreeks(isCall bool, S, K, T, r, q, sigma float64) (Greeks, error) {
	if err := validateInputs(S, K, sigma); err != nil {
		return Greeks{}, err
	}
	if T <= 0 || sigma == 0 {
		return Greeks{}, nil
	}

	d1, d2 := d1d2(S, K, T, r, q, sigma)
	sqrtT := math.Sqrt(T)
	qDisc := math.Exp(-q * T)
	rDisc := math.Exp(-r * T)

	var g Greeks
	if isCall {
		g.Delta = qDisc * normCDF(d1)
		g.Theta = (-(S*qDisc*normPDF(d1)*sigma)/(2*sqrtT) - r*K*rDisc*normCDF(d2) + q*S*qDisc*normCDF(d1)) / 365
		g.Rho = K * T * rDisc * normCDF(d2) / 100
	} else {
		g.Delta = -qDisc * normCDF(-d1)
		g.Theta = (-(S*qDisc*normPDF(d1)*sigma)/(2*sqrtT) + r*K*rDisc*normCDF(-d2) - q*S*qDisc*normCDF(-d1)) / 365
		g.Rho = -K * T * rDisc * normCDF(-d2) / 100
	}
	g.Gamma = qDisc * normPDF(d1) / (S * sigma * sqrtT)
	g.Vega = S * qDisc * normPDF(d1) * sqrtT / 100
	return g, nil
}

// FiniteDifferenceGreeks derives sensitivities by bumping and repricing.
// This is the only route for the lattice model and serves as a uniform
// fallback for any style.
func FiniteDifferenceGreeks(isCall, american bool, S, K, T, r, q, sigma float64) (Greeks, error) {
	if err := validateInputs(S, K, sigma); err != nil {
		return Greeks{}, err
	}
	if T <= 0 || sigma == 0 {
		return Greeks{}, nil
	}

	price := func(S, T, r, sigma float64) (float64, error) {
		return Price(isCall, american, S, K, T, r, q, sigma)
	}

	base, err := price(S, T, r, sigma)
	if err != nil {
		return Greeks{}, err
	}

	dS := S * spotBumpFraction
	up, err := price(S+dS, T, r, sigma)
	if err != nil {
		return Greeks{}, err
	}
	down, err := price(S-dS, T, r, sigma)
	if err != nil {
		return Greeks{}, err
	}

	var g Greeks
	g.Delta = (up - down) / (2 * dS)
	g.Gamma = (up - 2*base + down) / (dS * dS)

	// Theta: value one calendar day ahead minus today. Inside the final day
	// the position simply decays to intrinsic.
	if T > dayInYears {
		tomorrow, err := price(S, T-dayInYears, r, sigma)
		if err != nil {
			return Greeks{}, err
		}
		g.Theta = tomorrow - base
	} else {
		g.Theta = intrinsic(isCall, S, K) - base
	}

	// One-sided from below when the vol is too small for a full central bump.
	volLo := sigma - volBump
	if volLo <= 0 {
		volLo = sigma / 2
	}
	volUp, err := price(S, T, r, sigma+volBump)
	if err != nil {
		return Greeks{}, err
	}
	volDown, err := price(S, T, r, volLo)
	if err != nil {
		return Greeks{}, err
	}
	g.Vega = (volUp - volDown) / (sigma + volBump - volLo) * volBump

	rateUp, err := price(S, T, r+rateBump, sigma)
	if err != nil {
		return Greeks{}, err
	}
	rateDown, err := price(S, T, r-rateBump, sigma)
	if err != nil {
		return Greeks{}, err
	}
	g.Rho = (rateUp - rateDown) / 2

	return g, nil
}

// ComputeGreeks picks the analytic path for European options and
// bump-and-reprice for American ones.
func ComputeGreeks(isCall, american bool, S, K, T, r, q, sigma float64) (Greeks, error) {
	if american {
		return FiniteDifferenceGreeks(isCall, true, S, K, T, r, q, sigma)
	}
	return AnalyticGreeks(isCall, S, K, T, r, q, sigma)
}
