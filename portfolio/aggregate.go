// Package portfolio sums per-leg values and sensitivities into
// portfolio-level figures. Legs arrive already IV-resolved; everything here
// is already scaled by signed quantity and contract multiplier, so portfolio
// totals are plain sums.
package portfolio

import (
	"time"

	"github.com/optviz/optviz/market"
	"github.com/optviz/optviz/models"
	"github.com/optviz/optviz/positions"
)

// LegAnalysis is the per-leg breakdown at the current spot price.
// TheoreticalValue and IntrinsicValue are per share; Greeks are scaled by
// quantity and multiplier.
type LegAnalysis struct {
	Leg              positions.ResolvedLeg `json:"leg"`
	Greeks           models.Greeks         `json:"greeks"`
	TheoreticalValue float64               `json:"theoretical_value"`
	IntrinsicValue   float64               `json:"intrinsic_value"`
}

// Breakdown is the aggregated view of a position at the current spot price.
type Breakdown struct {
	Legs            []LegAnalysis `json:"legs"`
	PortfolioValue  float64       `json:"portfolio_value"` // dollars, scaled
	PortfolioGreeks models.Greeks `json:"portfolio_greeks"`
}

// Aggregate prices every leg at the snapshot's spot price and sums scaled
// values and Greeks. Legs without an expiration are carried at intrinsic
// value with zero Greeks.
func Aggregate(legs []positions.ResolvedLeg, mkt *market.Context, now time.Time) (*Breakdown, error) {
	out := &Breakdown{Legs: make([]LegAnalysis, 0, len(legs))}

	for _, leg := range legs {
		analysis, err := analyzeLeg(leg, mkt, now)
		if err != nil {
			return nil, err
		}
		out.Legs = append(out.Legs, analysis)
		out.PortfolioValue += float64(leg.Quantity) * positions.ContractMultiplier * analysis.TheoreticalValue
		out.PortfolioGreeks = out.PortfolioGreeks.Add(analysis.Greeks)
	}

	return out, nil
}

func analyzeLeg(leg positions.ResolvedLeg, mkt *market.Context, now time.Time) (LegAnalysis, error) {
	spot := mkt.SpotPrice
	analysis := LegAnalysis{
		Leg:            leg,
		IntrinsicValue: positions.IntrinsicValue(leg.Kind, spot, leg.Strike),
	}

	if !leg.HasExpiration() || leg.IV <= 0 {
		analysis.TheoreticalValue = analysis.IntrinsicValue
		if leg.ManualPrice > 0 {
			analysis.TheoreticalValue = leg.ManualPrice
		}
		return analysis, nil
	}

	T := leg.YearsToExpiration(now)
	american := leg.EffectiveStyle() == positions.American

	value, err := models.Price(leg.IsCall(), american, spot, leg.Strike, T, mkt.RiskFreeRate, leg.DividendYield, leg.IV)
	if err != nil {
		return LegAnalysis{}, err
	}
	analysis.TheoreticalValue = value
	if leg.ManualPrice > 0 {
		analysis.TheoreticalValue = leg.ManualPrice
	}

	greeks, err := models.ComputeGreeks(leg.IsCall(), american, spot, leg.Strike, T, mkt.RiskFreeRate, leg.DividendYield, leg.IV)
	if err != nil {
		return LegAnalysis{}, err
	}
	analysis.Greeks = greeks.Scale(float64(leg.Quantity) * positions.ContractMultiplier)

	return analysis, nil
}

// ValueAt returns the scaled theoretical value of the whole position with the
// underlying moved to price, holding the snapshot's rate and each leg's
// resolved IV fixed. asOf shifts the valuation date for time-decay curves.
func ValueAt(legs []positions.ResolvedLeg, mkt *market.Context, price float64, asOf time.Time) (float64, error) {
	total := 0.0
	for _, leg := range legs {
		value, err := legValueAt(leg, mkt, price, asOf)
		if err != nil {
			return 0, err
		}
		total += float64(leg.Quantity) * positions.ContractMultiplier * value
	}
	return total, nil
}

// GreeksAt returns the scaled portfolio Greeks with the underlying moved to
// price.
func GreeksAt(legs []positions.ResolvedLeg, mkt *market.Context, price float64, asOf time.Time) (models.Greeks, error) {
	var total models.Greeks
	for _, leg := range legs {
		if !leg.HasExpiration() || leg.IV <= 0 {
			continue
		}
		T := leg.YearsToExpiration(asOf)
		american := leg.EffectiveStyle() == positions.American
		greeks, err := models.ComputeGreeks(leg.IsCall(), american, price, leg.Strike, T, mkt.RiskFreeRate, leg.DividendYield, leg.IV)
		if err != nil {
			return models.Greeks{}, err
		}
		total = total.Add(greeks.Scale(float64(leg.Quantity) * positions.ContractMultiplier))
	}
	return total, nil
}

func legValueAt(leg positions.ResolvedLeg, mkt *market.Context, price float64, asOf time.Time) (float64, error) {
	if !leg.HasExpiration() || leg.IV <= 0 {
		return positions.IntrinsicValue(leg.Kind, price, leg.Strike), nil
	}
	T := leg.YearsToExpiration(asOf)
	american := leg.EffectiveStyle() == positions.American
	return models.Price(leg.IsCall(), american, price, leg.Strike, T, mkt.RiskFreeRate, leg.DividendYield, leg.IV)
}
