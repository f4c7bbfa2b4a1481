package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/optviz/optviz/market"
	"github.com/optviz/optviz/models"
	"github.com/optviz/optviz/positions"
)

var aggNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func resolved(qty int, strike float64, kind positions.OptionKind, iv float64) positions.ResolvedLeg {
	return positions.ResolvedLeg{
		Leg: positions.Leg{
			Quantity:   qty,
			Strike:     strike,
			Kind:       kind,
			Style:      positions.European,
			Expiration: aggNow.AddDate(0, 0, 30),
		},
		IV:     iv,
		Source: positions.IVSourceFallback,
	}
}

func TestAggregate_SumsLegValuesAndGreeks(t *testing.T) {
	legs := []positions.ResolvedLeg{
		resolved(-2, 240, positions.Put, 0.25),
		resolved(-2, 240, positions.Call, 0.25),
	}
	mkt := &market.Context{SpotPrice: 240, FallbackIV: 0.25, RiskFreeRate: 0.04}

	breakdown, err := Aggregate(legs, mkt, aggNow)
	if err != nil {
		t.Fatalf("aggregate err: %v", err)
	}
	if len(breakdown.Legs) != 2 {
		t.Fatalf("want 2 leg analyses, got %d", len(breakdown.Legs))
	}

	var value float64
	var greeks models.Greeks
	for _, leg := range breakdown.Legs {
		value += float64(leg.Leg.Quantity) * positions.ContractMultiplier * leg.TheoreticalValue
		greeks = greeks.Add(leg.Greeks)
	}
	if math.Abs(value-breakdown.PortfolioValue) > 1e-9 {
		t.Fatalf("portfolio value is not the sum of legs: %v vs %v", breakdown.PortfolioValue, value)
	}
	if math.Abs(greeks.Delta-breakdown.PortfolioGreeks.Delta) > 1e-9 {
		t.Fatalf("portfolio delta is not the sum of legs")
	}

	// A short position carries negative value and, at the money, the
	// straddle's deltas nearly cancel while short gamma stays negative.
	if breakdown.PortfolioValue >= 0 {
		t.Fatalf("short straddle value should be negative: %v", breakdown.PortfolioValue)
	}
	if breakdown.PortfolioGreeks.Gamma >= 0 {
		t.Fatalf("short straddle gamma should be negative: %v", breakdown.PortfolioGreeks.Gamma)
	}
}

func TestAggregate_ManualPriceOverride(t *testing.T) {
	leg := resolved(1, 100, positions.Call, 0.3)
	leg.ManualPrice = 7.77
	mkt := &market.Context{SpotPrice: 100, FallbackIV: 0.3, RiskFreeRate: 0.04}

	breakdown, err := Aggregate([]positions.ResolvedLeg{leg}, mkt, aggNow)
	if err != nil {
		t.Fatalf("aggregate err: %v", err)
	}
	if breakdown.Legs[0].TheoreticalValue != 7.77 {
		t.Fatalf("manual price should override the model: %v", breakdown.Legs[0].TheoreticalValue)
	}
	if breakdown.PortfolioValue != 777 {
		t.Fatalf("scaled value mismatch: %v", breakdown.PortfolioValue)
	}
	// Greeks still come from the model, not the override.
	if breakdown.Legs[0].Greeks.Delta == 0 {
		t.Fatal("greeks should still be computed under a price override")
	}
}

func TestAggregate_NoExpirationUsesIntrinsic(t *testing.T) {
	leg := positions.ResolvedLeg{
		Leg: positions.Leg{Quantity: 1, Strike: 90, Kind: positions.Call},
		IV:  0.3, Source: positions.IVSourceFallback,
	}
	mkt := &market.Context{SpotPrice: 100, FallbackIV: 0.3, RiskFreeRate: 0.04}

	breakdown, err := Aggregate([]positions.ResolvedLeg{leg}, mkt, aggNow)
	if err != nil {
		t.Fatalf("aggregate err: %v", err)
	}
	if breakdown.Legs[0].TheoreticalValue != 10 {
		t.Fatalf("expected intrinsic value 10, got %v", breakdown.Legs[0].TheoreticalValue)
	}
	if breakdown.Legs[0].Greeks != (models.Greeks{}) {
		t.Fatalf("no-expiration legs carry zero greeks: %+v", breakdown.Legs[0].Greeks)
	}
}

func TestValueAt_DecaysToPayoffAtExpiration(t *testing.T) {
	legs := []positions.ResolvedLeg{resolved(1, 100, positions.Call, 0.3)}
	mkt := &market.Context{SpotPrice: 100, FallbackIV: 0.3, RiskFreeRate: 0.04}

	before, err := ValueAt(legs, mkt, 110, aggNow)
	if err != nil {
		t.Fatalf("value err: %v", err)
	}
	atExpiry, err := ValueAt(legs, mkt, 110, aggNow.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("value err: %v", err)
	}
	if atExpiry != 1000 {
		t.Fatalf("expiration value should equal intrinsic: %v", atExpiry)
	}
	if before <= atExpiry {
		t.Fatalf("time value missing: before=%v atExpiry=%v", before, atExpiry)
	}
}

func TestGreeksAt_ShortQuantityFlipsSign(t *testing.T) {
	long := []positions.ResolvedLeg{resolved(1, 100, positions.Call, 0.3)}
	short := []positions.ResolvedLeg{resolved(-1, 100, positions.Call, 0.3)}
	mkt := &market.Context{SpotPrice: 100, FallbackIV: 0.3, RiskFreeRate: 0.04}

	lg, err := GreeksAt(long, mkt, 100, aggNow)
	if err != nil {
		t.Fatalf("greeks err: %v", err)
	}
	sg, err := GreeksAt(short, mkt, 100, aggNow)
	if err != nil {
		t.Fatalf("greeks err: %v", err)
	}
	if math.Abs(lg.Delta+sg.Delta) > 1e-9 {
		t.Fatalf("short greeks should mirror long: %v vs %v", lg.Delta, sg.Delta)
	}
	if lg.Delta <= 0 {
		t.Fatalf("long call delta should be positive: %v", lg.Delta)
	}
}
