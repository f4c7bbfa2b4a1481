// Package volatility selects the implied volatility for each leg. Tiers are
// tried strictly in order and the first hit wins: a manual override beats the
// per-strike market table, which beats the single portfolio-wide fallback.
// Missing market data is a documented quality degradation, never an error.
package volatility

import (
	"github.com/optviz/optviz/market"
	"github.com/optviz/optviz/positions"
)

type tier struct {
	source positions.IVSource
	lookup func(positions.Leg, *market.Context) (float64, bool)
}

var tiers = []tier{
	{positions.IVSourceManual, manualIV},
	{positions.IVSourcePerStrike, perStrikeIV},
	{positions.IVSourceFallback, fallbackIV},
}

func manualIV(leg positions.Leg, _ *market.Context) (float64, bool) {
	if leg.ManualIV > 0 {
		return leg.ManualIV, true
	}
	return 0, false
}

func perStrikeIV(leg positions.Leg, ctx *market.Context) (float64, bool) {
	return ctx.StrikeIVFor(leg)
}

func fallbackIV(_ positions.Leg, ctx *market.Context) (float64, bool) {
	if ctx == nil || ctx.FallbackIV <= 0 {
		return 0, false
	}
	return ctx.FallbackIV, true
}

// Resolve returns the implied volatility for a leg and the tier that supplied
// it. ok is false only when no tier can produce a value, i.e. no manual
// override and no market context; callers then skip theoretical pricing for
// the leg.
func Resolve(leg positions.Leg, ctx *market.Context) (iv float64, source positions.IVSource, ok bool) {
	for _, t := range tiers {
		if v, hit := t.lookup(leg, ctx); hit {
			return v, t.source, true
		}
	}
	return 0, "", false
}

// ResolveLegs resolves every leg against one snapshot. Legs that resolve to
// no IV are carried with a zero IV and empty source.
func ResolveLegs(legs []positions.Leg, ctx *market.Context) []positions.ResolvedLeg {
	resolved := make([]positions.ResolvedLeg, len(legs))
	for i, leg := range legs {
		iv, source, _ := Resolve(leg, ctx)
		resolved[i] = positions.ResolvedLeg{Leg: leg, IV: iv, Source: source}
	}
	return resolved
}
