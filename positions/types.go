package positions

import "time"

// ContractMultiplier is the number of shares controlled by one standard
// equity option contract.
const ContractMultiplier = 100

type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

type ExerciseStyle string

const (
	American ExerciseStyle = "american"
	European ExerciseStyle = "european"
)

// IVSource records which tier of the volatility resolver supplied a leg's
// implied volatility.
type IVSource string

const (
	IVSourceManual    IVSource = "manual"
	IVSourcePerStrike IVSource = "per-strike"
	IVSourceFallback  IVSource = "fallback"
)

// Leg is a single option position within a multi-leg strategy.
// Quantity is signed: positive for long, negative for short.
type Leg struct {
	Quantity      int           `json:"quantity"`
	Strike        float64       `json:"strike"`
	Kind          OptionKind    `json:"kind"`
	Style         ExerciseStyle `json:"style,omitempty"` // empty means American
	Expiration    time.Time     `json:"expiration,omitempty"`
	ManualPrice   float64       `json:"manual_price,omitempty"` // per-share price override, 0 = unset
	ManualIV      float64       `json:"manual_iv,omitempty"`    // IV override, 0 = unset
	DividendYield float64       `json:"dividend_yield,omitempty"`
}

// EffectiveStyle returns the exercise style with the American default applied.
func (l Leg) EffectiveStyle() ExerciseStyle {
	if l.Style == European {
		return European
	}
	return American
}

// IsCall reports whether the leg is a call.
func (l Leg) IsCall() bool { return l.Kind == Call }

// HasExpiration reports whether an expiration date was supplied. Legs without
// one are skipped by time-dependent analytics and priced at intrinsic value.
func (l Leg) HasExpiration() bool { return !l.Expiration.IsZero() }

// YearsToExpiration returns the time to expiration in years as of now.
// Negative values mean the leg has already expired.
func (l Leg) YearsToExpiration(now time.Time) float64 {
	return l.Expiration.Sub(now).Hours() / 24 / 365
}

// DaysToExpiration returns the whole calendar days remaining as of now.
func (l Leg) DaysToExpiration(now time.Time) int {
	return int(l.Expiration.Sub(now).Hours() / 24)
}

// ResolvedLeg is a leg paired with the implied volatility chosen for it and
// the tier that supplied it.
type ResolvedLeg struct {
	Leg    `json:"leg"`
	IV     float64  `json:"iv"`
	Source IVSource `json:"iv_source"`
}
