package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"student-loan-sim/domain"
)

// ProgressFunc receives the number of completed paths. Calls are serialised.
type ProgressFunc func(done, total int)

// MonteCarlo runs paths on a pool of workers. The output for a given seed
// does not depend on Workers.
type MonteCarlo struct {
	Workers int
}

func NewMonteCarlo(workers int) *MonteCarlo {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &MonteCarlo{Workers: workers}
}

// Run simulates count paths for params. Paths are split into chunks of
// PathsPerChunk and chunk k draws from NewRandomSource(seed, k). ctx is
// checked between paths; a cancelled run returns no result.
func (m *MonteCarlo) Run(
	ctx context.Context,
	params domain.SimulationParameters,
	count int,
	seed uint64,
	progress ProgressFunc,
) (domain.AggregateResult, error) {
	if err := ValidateParameters(params); err != nil {
		return domain.AggregateResult{}, err
	}
	if err := validateSimulationCount(count); err != nil {
		return domain.AggregateResult{}, err
	}

	repayments := make([]float64, count)
	investments := make([]float64, count)

	chunks := (count + PathsPerChunk - 1) / PathsPerChunk
	workers := min(max(m.Workers, 1), chunks)

	var next atomic.Int64
	var done int
	var progressMu sync.Mutex
	report := func(n int) {
		if progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		done += n
		progress(done, count)
	}

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				k := int(next.Add(1) - 1)
				if k >= chunks {
					return nil
				}
				start := k * PathsPerChunk
				end := min(start+PathsPerChunk, count)
				rnd := NewRandomSource(seed, uint64(k))
				for i := start; i < end; i++ {
					if err := ctx.Err(); err != nil {
						return err
					}
					outcome := SimulatePath(params, rnd)
					repayments[i] = outcome.TotalRepayments
					investments[i] = outcome.FinalInvestment
				}
				report(end - start)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return domain.AggregateResult{}, fmt.Errorf("monte carlo run cancelled: %w", err)
	}

	return Summarize(repayments, investments), nil
}
