// Package market defines the immutable market-data snapshot the analytics
// engine consumes. Fetching, authentication and caching live in the external
// collaborator that produces these values; the engine never retries or
// refreshes them.
package market

import (
	"time"

	"github.com/optviz/optviz/positions"
)

const expirationKeyLayout = "2006-01-02"

// StrikeKey identifies one option contract in a per-strike IV table.
type StrikeKey struct {
	Strike     float64
	Expiration string // YYYY-MM-DD
	Kind       positions.OptionKind
}

// StrikeIV is one sparse per-strike entry: the market implied volatility and,
// when the provider supplies them, its quoted Greeks.
type StrikeIV struct {
	ImpliedVolatility float64 `json:"implied_volatility"`
	Delta             float64 `json:"delta,omitempty"`
	Gamma             float64 `json:"gamma,omitempty"`
	Theta             float64 `json:"theta,omitempty"`
	Vega              float64 `json:"vega,omitempty"`
}

// Context is one market snapshot. It is treated as immutable for the life of
// a calculation request.
type Context struct {
	Symbol       string                 `json:"symbol"`
	SpotPrice    float64                `json:"spot_price"`
	FallbackIV   float64                `json:"fallback_iv"` // single ATM estimate
	RiskFreeRate float64                `json:"risk_free_rate"`
	PerStrikeIV  map[StrikeKey]StrikeIV `json:"-"` // sparse, may be nil
	IVRank       *float64               `json:"iv_rank,omitempty"` // [0,100]
	AsOf         time.Time              `json:"as_of"`
}

// Key builds the table key for a leg.
func Key(leg positions.Leg) StrikeKey {
	return StrikeKey{
		Strike:     leg.Strike,
		Expiration: leg.Expiration.Format(expirationKeyLayout),
		Kind:       leg.Kind,
	}
}

// StrikeIVFor looks up the per-strike implied volatility for a leg. A missing
// table, missing entry or non-positive IV reports false; callers fall through
// to the next volatility tier.
func (c *Context) StrikeIVFor(leg positions.Leg) (float64, bool) {
	if c == nil || len(c.PerStrikeIV) == 0 || !leg.HasExpiration() {
		return 0, false
	}
	entry, ok := c.PerStrikeIV[Key(leg)]
	if !ok || entry.ImpliedVolatility <= 0 {
		return 0, false
	}
	return entry.ImpliedVolatility, true
}

// Validate checks the snapshot invariants the engine depends on.
func (c *Context) Validate() error {
	if c == nil {
		return nil
	}
	if c.SpotPrice <= 0 {
		return &positions.ValidationError{LegIndex: -1, Field: "spot_price", Message: "must be positive"}
	}
	if c.FallbackIV <= 0 {
		return &positions.ValidationError{LegIndex: -1, Field: "fallback_iv", Message: "must be positive"}
	}
	if c.IVRank != nil && (*c.IVRank < 0 || *c.IVRank > 100) {
		return &positions.ValidationError{LegIndex: -1, Field: "iv_rank", Message: "must be in [0,100]"}
	}
	return nil
}
