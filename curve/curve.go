// Package curve evaluates a position across a sampled grid of underlying
// prices: the expiration payoff always, plus theoretical value, per-sample
// Greeks and time-decay anchors when a market snapshot is available.
package curve

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/optviz/optviz/market"
	"github.com/optviz/optviz/models"
	"github.com/optviz/optviz/portfolio"
	"github.com/optviz/optviz/positions"
)

const (
	// DefaultGridPoints is the fixed sample count across the price window.
	DefaultGridPoints = 121
	// DefaultRangeMargin pads the strike/spot envelope outward on both sides.
	DefaultRangeMargin = 0.5
	// DefaultGreeksEvery computes per-sample Greeks only every Nth sample;
	// they are for chart shading, not summary statistics, and the lattice
	// makes them the most expensive field.
	DefaultGreeksEvery = 5
	// dateAnchorCount is the number of days-ahead anchors (including day 0)
	// supplied for client-side time-decay interpolation.
	dateAnchorCount = 5
)

// Options tunes curve generation.
type Options struct {
	GridPoints  int     // default DefaultGridPoints
	RangeMargin float64 // default DefaultRangeMargin
	SkipGreeks  bool    // drop per-sample Greeks entirely
	GreeksEvery int     // default DefaultGreeksEvery
	DateAnchors bool    // also value the position at fixed days-ahead anchors
}

func (o Options) withDefaults() Options {
	if o.GridPoints < 2 {
		o.GridPoints = DefaultGridPoints
	}
	if o.RangeMargin <= 0 {
		o.RangeMargin = DefaultRangeMargin
	}
	if o.GreeksEvery <= 0 {
		o.GreeksEvery = DefaultGreeksEvery
	}
	return o
}

// PriceSample is one grid point of the evaluated curve.
type PriceSample struct {
	UnderlyingPrice  float64         `json:"price"`
	Payoff           float64         `json:"pl"` // at expiration, dollars
	TheoreticalValue *float64        `json:"theoretical_pl,omitempty"`
	ValueByDaysAhead map[int]float64 `json:"pl_by_days_ahead,omitempty"`
	Greeks           *models.Greeks  `json:"greeks,omitempty"`
}

// Bounds derives the price window from the legs' strikes and, when a
// snapshot is present, the spot price, padded outward by margin.
func Bounds(legs []positions.Leg, mkt *market.Context, margin float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, leg := range legs {
		lo = math.Min(lo, leg.Strike)
		hi = math.Max(hi, leg.Strike)
	}
	if mkt != nil {
		lo = math.Min(lo, mkt.SpotPrice)
		hi = math.Max(hi, mkt.SpotPrice)
	}
	return lo * (1 - margin), hi * (1 + margin)
}

// DateAnchors returns the deterministic days-ahead values used for the
// time-decay curve: five anchors evenly spread from today to the nearest leg
// expiration, duplicates removed. Clients interpolate linearly between them.
func DateAnchors(legs []positions.Leg, now time.Time) []int {
	dte := math.MaxInt32
	for _, leg := range legs {
		if leg.HasExpiration() {
			if d := leg.DaysToExpiration(now); d < dte {
				dte = d
			}
		}
	}
	if dte == math.MaxInt32 || dte <= 0 {
		return []int{0}
	}

	anchors := make([]int, 0, dateAnchorCount)
	seen := map[int]bool{}
	for i := 0; i < dateAnchorCount; i++ {
		d := int(math.Round(float64(i) * float64(dte) / float64(dateAnchorCount-1)))
		if !seen[d] {
			seen[d] = true
			anchors = append(anchors, d)
		}
	}
	sort.Ints(anchors)
	return anchors
}

// Generate evaluates the position across the price grid. The payoff column
// is always produced; theoretical values and Greeks require a market
// snapshot and resolved IVs. Grid points are evaluated in parallel and the
// context is honored between evaluations.
func Generate(ctx context.Context, legs []positions.ResolvedLeg, mkt *market.Context, credit float64, now time.Time, opts Options) ([]PriceSample, error) {
	opts = opts.withDefaults()

	raw := make([]positions.Leg, len(legs))
	for i, leg := range legs {
		raw[i] = leg.Leg
	}

	lo, hi := Bounds(raw, mkt, opts.RangeMargin)
	prices := make([]float64, opts.GridPoints)
	floats.Span(prices, lo, hi)

	theoretical := mkt != nil && anyResolved(legs)
	var anchors []int
	if theoretical && opts.DateAnchors {
		anchors = DateAnchors(raw, now)
	}

	samples := make([]PriceSample, len(prices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, price := range prices {
		i, price := i, price
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sample := PriceSample{
				UnderlyingPrice: price,
				Payoff:          positions.PortfolioPayoff(raw, price, credit),
			}

			if theoretical {
				value, err := portfolio.ValueAt(legs, mkt, price, now)
				if err != nil {
					return err
				}
				pl := value + credit
				sample.TheoreticalValue = &pl

				if !opts.SkipGreeks && i%opts.GreeksEvery == 0 {
					greeks, err := portfolio.GreeksAt(legs, mkt, price, now)
					if err != nil {
						return err
					}
					sample.Greeks = &greeks
				}

				if len(anchors) > 0 {
					sample.ValueByDaysAhead = make(map[int]float64, len(anchors))
					for _, days := range anchors {
						asOf := now.AddDate(0, 0, days)
						v, err := portfolio.ValueAt(legs, mkt, price, asOf)
						if err != nil {
							return err
						}
						sample.ValueByDaysAhead[days] = v + credit
					}
				}
			}

			samples[i] = sample
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

func anyResolved(legs []positions.ResolvedLeg) bool {
	for _, leg := range legs {
		if leg.IV > 0 {
			return true
		}
	}
	return false
}
