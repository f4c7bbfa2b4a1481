package positions

import (
	"errors"
	"testing"
	"time"
)

func TestValidateLegs(t *testing.T) {
	exp := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	good := Leg{Quantity: -2, Strike: 240, Kind: Put, Expiration: exp}

	if err := ValidateLegs([]Leg{good}); err != nil {
		t.Fatalf("valid leg rejected: %v", err)
	}

	cases := []struct {
		name  string
		leg   Leg
		field string
	}{
		{"zero quantity", Leg{Quantity: 0, Strike: 240, Kind: Put}, "quantity"},
		{"zero strike", Leg{Quantity: 1, Strike: 0, Kind: Call}, "strike"},
		{"negative strike", Leg{Quantity: 1, Strike: -10, Kind: Call}, "strike"},
		{"bad kind", Leg{Quantity: 1, Strike: 100, Kind: "straddle"}, "kind"},
		{"bad style", Leg{Quantity: 1, Strike: 100, Kind: Call, Style: "bermudan"}, "style"},
		{"negative manual iv", Leg{Quantity: 1, Strike: 100, Kind: Call, ManualIV: -0.2}, "manual_iv"},
		{"negative manual price", Leg{Quantity: 1, Strike: 100, Kind: Call, ManualPrice: -1}, "manual_price"},
		{"negative dividend yield", Leg{Quantity: 1, Strike: 100, Kind: Call, DividendYield: -0.01}, "dividend_yield"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLegs([]Leg{tc.leg})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field || verr.LegIndex != 0 {
				t.Fatalf("wrong error: %+v", verr)
			}
		})
	}

	var verr *ValidationError
	if err := ValidateLegs(nil); !errors.As(err, &verr) || verr.LegIndex != -1 {
		t.Fatalf("empty position should fail without a leg index: %v", err)
	}
}

func TestEffectiveStyleDefaultsAmerican(t *testing.T) {
	if (Leg{}).EffectiveStyle() != American {
		t.Fatal("empty style must default to american")
	}
	if (Leg{Style: European}).EffectiveStyle() != European {
		t.Fatal("explicit european must stick")
	}
}

func TestIntrinsicValue(t *testing.T) {
	cases := []struct {
		kind       OptionKind
		underlying float64
		strike     float64
		want       float64
	}{
		{Call, 110, 100, 10},
		{Call, 90, 100, 0},
		{Put, 90, 100, 10},
		{Put, 110, 100, 0},
		{Call, 100, 100, 0},
	}
	for _, tc := range cases {
		if got := IntrinsicValue(tc.kind, tc.underlying, tc.strike); got != tc.want {
			t.Fatalf("%s S=%v K=%v: got=%v want=%v", tc.kind, tc.underlying, tc.strike, got, tc.want)
		}
	}
}

func TestPortfolioPayoff_ShortStraddle(t *testing.T) {
	legs := []Leg{
		{Quantity: -2, Strike: 240, Kind: Put},
		{Quantity: -2, Strike: 240, Kind: Call},
	}
	credit := 1750.0

	cases := []struct {
		price float64
		want  float64
	}{
		{240, 1750},    // max profit at the strike
		{231.25, 0},    // lower breakeven
		{248.75, 0},    // upper breakeven
		{220, -2250},   // 1750 - 2*100*20
		{260, -2250},
	}
	for _, tc := range cases {
		if got := PortfolioPayoff(legs, tc.price, credit); got != tc.want {
			t.Fatalf("payoff at %v: got=%v want=%v", tc.price, got, tc.want)
		}
	}
}

func TestTimeToExpiration(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	leg := Leg{Quantity: 1, Strike: 100, Kind: Call, Expiration: now.AddDate(0, 0, 73)}

	if got := leg.YearsToExpiration(now); got != 0.2 {
		t.Fatalf("years: got=%v", got)
	}
	if got := leg.DaysToExpiration(now); got != 73 {
		t.Fatalf("days: got=%v", got)
	}
	if (Leg{}).HasExpiration() {
		t.Fatal("zero time is no expiration")
	}
}
