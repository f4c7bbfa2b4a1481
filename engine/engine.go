// Package engine ties the pricing, volatility, curve and probability pieces
// into the single entry point the API layer calls. Every request is a
// self-contained computation over immutable inputs; the engine holds no
// state between requests beyond its logger.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/optviz/optviz/curve"
	"github.com/optviz/optviz/market"
	"github.com/optviz/optviz/models"
	"github.com/optviz/optviz/portfolio"
	"github.com/optviz/optviz/positions"
	"github.com/optviz/optviz/probability"
	"github.com/optviz/optviz/volatility"
)

// Options tunes one calculation request.
type Options struct {
	Curve curve.Options
	// Now pins the valuation date; zero means time.Now(). Tests pin it so
	// time-to-expiration is reproducible.
	Now time.Time
}

// Result is the full calculation response.
type Result struct {
	Curve               []curve.PriceSample     `json:"curve"`
	Breakdown           *portfolio.Breakdown    `json:"breakdown,omitempty"` // nil without market data
	Metrics             probability.Metrics     `json:"probability_metrics"`
	ResolvedLegs        []positions.ResolvedLeg `json:"resolved_legs"`
	Market              *market.Context         `json:"market_data,omitempty"`
	ElapsedMicroseconds int64                   `json:"elapsed_us"`
}

// Engine prices portfolios. Safe for concurrent use.
type Engine struct {
	log zerolog.Logger
}

// New returns an engine logging through log.
func New(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// NewQuiet returns an engine with logging disabled.
func NewQuiet() *Engine {
	return &Engine{log: zerolog.Nop()}
}

// ResolveIV exposes per-leg volatility resolution so callers can report
// which tier supplied each leg's IV.
func (e *Engine) ResolveIV(leg positions.Leg, mkt *market.Context) (float64, positions.IVSource, bool) {
	return volatility.Resolve(leg, mkt)
}

// PricePortfolio validates the legs, resolves volatilities, evaluates the
// price curve, aggregates Greeks and derives probability metrics. With a nil
// market snapshot it still produces the full expiration payoff curve and
// breakeven analysis; theoretical pricing and Greeks are strictly additive.
func (e *Engine) PricePortfolio(ctx context.Context, legs []positions.Leg, credit float64, mkt *market.Context, opts Options) (*Result, error) {
	started := time.Now()

	if err := positions.ValidateLegs(legs); err != nil {
		return nil, err
	}
	if err := mkt.Validate(); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	resolved := volatility.ResolveLegs(legs, mkt)

	samples, err := curve.Generate(ctx, resolved, mkt, credit, now, opts.Curve)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Curve:        samples,
		ResolvedLegs: resolved,
		Market:       mkt,
	}

	if mkt != nil {
		breakdown, err := portfolio.Aggregate(resolved, mkt, now)
		if err != nil {
			return nil, err
		}
		result.Breakdown = breakdown
	}

	result.Metrics = probability.Analyze(samples, legs, credit, terminalDistribution(resolved, mkt, now))
	result.ElapsedMicroseconds = time.Since(started).Microseconds()

	e.log.Debug().
		Int("legs", len(legs)).
		Int("grid_points", len(samples)).
		Bool("market_data", mkt != nil).
		Int64("elapsed_us", result.ElapsedMicroseconds).
		Msg("priced portfolio")

	return result, nil
}

// terminalDistribution builds the risk-neutral lognormal distribution used
// for probability of profit: spot and rate from the snapshot, volatility as
// the mean of the resolved leg IVs, horizon to the nearest leg expiration.
// Returns nil when no distribution can be parameterized.
func terminalDistribution(legs []positions.ResolvedLeg, mkt *market.Context, now time.Time) *distuv.LogNormal {
	if mkt == nil {
		return nil
	}

	sum, count := 0.0, 0
	horizon := math.Inf(1)
	yield := 0.0
	for _, leg := range legs {
		if leg.IV > 0 {
			sum += leg.IV
			count++
		}
		if leg.HasExpiration() {
			if T := leg.YearsToExpiration(now); T < horizon {
				horizon = T
				yield = leg.DividendYield
			}
		}
	}
	if count == 0 || math.IsInf(horizon, 1) || horizon <= 0 {
		return nil
	}

	dist := models.TerminalDistribution(mkt.SpotPrice, mkt.RiskFreeRate, yield, sum/float64(count), horizon)
	return &dist
}
