package probability

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"github.com/optviz/optviz/positions"
)

const (
	// NumSimulations is the pinned path count for the Monte Carlo estimate.
	NumSimulations = 10000
	mcBatchSize    = 500
	mcWorkers      = 8
)

var rngPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(uint64(rand.Int63())))
	},
}

// MonteCarloPOP estimates the probability of profit by simulating lognormal
// terminal prices under the risk-neutral drift and counting profitable
// outcomes. It is a cross-check for the closed-form integral in Analyze, not
// part of the interactive response path. Returns a percentage in [0,100].
func MonteCarloPOP(ctx context.Context, legs []positions.Leg, credit, spot, rate, yield, sigma, horizonYears float64) (float64, error) {
	if spot <= 0 || sigma <= 0 || horizonYears <= 0 {
		payoff := positions.PortfolioPayoff(legs, spot, credit)
		if payoff > 0 {
			return 100, nil
		}
		return 0, nil
	}

	drift := (rate - yield - 0.5*sigma*sigma) * horizonYears
	diffusion := sigma * math.Sqrt(horizonYears)

	var profitable int64
	var wg sync.WaitGroup
	batches := make(chan int, NumSimulations/mcBatchSize)
	for i := 0; i < NumSimulations/mcBatchSize; i++ {
		batches <- mcBatchSize
	}
	close(batches)

	for w := 0; w < mcWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rngPool.Get().(*rand.Rand)
			defer rngPool.Put(rng)

			for n := range batches {
				if ctx.Err() != nil {
					return
				}
				count := int64(0)
				for i := 0; i < n; i++ {
					terminal := spot * math.Exp(drift+diffusion*rng.NormFloat64())
					if positions.PortfolioPayoff(legs, terminal, credit) > 0 {
						count++
					}
				}
				atomic.AddInt64(&profitable, count)
			}
		}()
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return float64(profitable) / NumSimulations * 100, nil
}
