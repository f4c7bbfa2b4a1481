// Package probability post-processes a payoff curve into summary statistics:
// breakeven prices, bounded or unbounded profit/loss extremes, probability of
// profit under a lognormal terminal-price distribution, and risk/reward.
package probability

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/optviz/optviz/curve"
	"github.com/optviz/optviz/positions"
)

// slopeEpsilon separates a genuinely sloped boundary segment from float noise
// on a flat one.
const slopeEpsilon = 1e-6

// Metrics summarizes a payoff curve. MaxProfit/MaxLoss hold the grid extremes;
// when the matching Unbounded flag is set the true value has no finite bound
// and the number must not be read as one.
type Metrics struct {
	ProbabilityOfProfit float64   `json:"probability_of_profit"` // percent, [0,100]
	MaxProfit           float64   `json:"max_profit"`
	MaxLoss             float64   `json:"max_loss"`
	MaxProfitUnbounded  bool      `json:"max_profit_unbounded"`
	MaxLossUnbounded    bool      `json:"max_loss_unbounded"`
	BreakevenPoints     []float64 `json:"breakeven_points"`
	RiskReward          *float64  `json:"risk_reward_ratio,omitempty"`
}

// Analyze derives summary statistics from an ascending price curve. dist is
// the risk-neutral terminal-price distribution; pass nil when no market
// snapshot exists, in which case the probability of profit is reported as
// zero and everything else is still computed.
func Analyze(samples []curve.PriceSample, legs []positions.Leg, credit float64, dist *distuv.LogNormal) Metrics {
	if len(samples) < 2 {
		return Metrics{}
	}

	m := Metrics{
		BreakevenPoints: Breakevens(samples),
		MaxProfit:       math.Inf(-1),
		MaxLoss:         math.Inf(1),
	}

	for _, s := range samples {
		m.MaxProfit = math.Max(m.MaxProfit, s.Payoff)
		m.MaxLoss = math.Min(m.MaxLoss, s.Payoff)
	}

	m.MaxProfitUnbounded, m.MaxLossUnbounded = boundaryBehaviour(samples)
	if dist != nil {
		mid := samples[len(samples)/2].UnderlyingPrice
		m.ProbabilityOfProfit = profitProbability(legs, credit, m.BreakevenPoints, dist, mid)
	}

	if !m.MaxProfitUnbounded && !m.MaxLossUnbounded && m.MaxLoss < 0 {
		ratio := m.MaxProfit / math.Abs(m.MaxLoss)
		m.RiskReward = &ratio
	}

	return m
}

// Breakevens finds every zero crossing of the payoff column by linear
// interpolation between adjacent samples, returned in ascending price order.
func Breakevens(samples []curve.PriceSample) []float64 {
	var points []float64
	for i := 0; i < len(samples)-1; i++ {
		p1, p2 := samples[i], samples[i+1]
		crossesDown := p1.Payoff >= 0 && p2.Payoff < 0
		crossesUp := p1.Payoff < 0 && p2.Payoff >= 0
		if !crossesDown && !crossesUp {
			continue
		}
		x := p1.UnderlyingPrice + (p2.UnderlyingPrice-p1.UnderlyingPrice)*(-p1.Payoff/(p2.Payoff-p1.Payoff))
		points = append(points, x)
	}
	sort.Float64s(points)
	return points
}

// boundaryBehaviour inspects the outermost grid segments. A curve still
// rising into a boundary has no finite max profit there; one still falling
// has no finite max loss. Flat edges are bounded.
func boundaryBehaviour(samples []curve.PriceSample) (profitUnbounded, lossUnbounded bool) {
	n := len(samples)

	// Right edge: payoff trend as the price grows without bound.
	switch {
	case samples[n-1].Payoff > samples[n-2].Payoff+slopeEpsilon:
		profitUnbounded = true
	case samples[n-1].Payoff < samples[n-2].Payoff-slopeEpsilon:
		lossUnbounded = true
	}

	// Left edge: payoff trend as the price falls toward zero.
	switch {
	case samples[0].Payoff > samples[1].Payoff+slopeEpsilon:
		profitUnbounded = true
	case samples[0].Payoff < samples[1].Payoff-slopeEpsilon:
		lossUnbounded = true
	}

	return profitUnbounded, lossUnbounded
}

// profitProbability integrates the terminal-price distribution over every
// price zone where the payoff is positive. Zones are delimited by the
// breakeven points; the payoff sign inside a zone is read at a
// representative interior price. Zero-width zones contribute nothing.
func profitProbability(legs []positions.Leg, credit float64, breakevens []float64, dist *distuv.LogNormal, gridMid float64) float64 {
	if len(breakevens) == 0 {
		// Payoff never changes sign across the window; the whole distribution
		// goes to one side.
		if positions.PortfolioPayoff(legs, gridMid, credit) > 0 {
			return 100
		}
		return 0
	}

	bounds := append([]float64{0}, breakevens...)
	bounds = append(bounds, math.Inf(1))

	prob := 0.0
	for i := 0; i < len(bounds)-1; i++ {
		lo, hi := bounds[i], bounds[i+1]
		if hi-lo <= 0 {
			continue
		}
		if positions.PortfolioPayoff(legs, zoneRepresentative(lo, hi), credit) <= 0 {
			continue
		}
		if math.IsInf(hi, 1) {
			prob += 1 - dist.CDF(lo)
		} else {
			prob += dist.CDF(hi) - dist.CDF(lo)
		}
	}

	return math.Max(0, math.Min(100, prob*100))
}

func zoneRepresentative(lo, hi float64) float64 {
	if math.IsInf(hi, 1) {
		return lo*1.5 + 1
	}
	return (lo + hi) / 2
}
