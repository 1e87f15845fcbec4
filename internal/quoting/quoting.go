// Package quoting fans out concurrent get_quote calls across a matched
// pair set, bounded by a worker pool (§4.3).
package quoting

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

const perCallDeadline = 2 * time.Second

// FanOut issues GetQuote on both venue adapters for every pair,
// bounded by workers concurrent calls. A failed or timed-out call
// yields a nil quote for that side; the pair is still returned so
// downstream can decide whether to skip it for the tick.
func FanOut(ctx context.Context, pairs []types.MatchedPair, a, b venue.Adapter, workers int, log *zap.Logger) []types.PairQuotes {
	if workers <= 0 {
		workers = 20
	}

	jobs := make(chan int, len(pairs))
	out := make([]types.PairQuotes, len(pairs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = quotePair(ctx, pairs[i], a, b, log)
			}
		}()
	}

	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

func quotePair(ctx context.Context, pair types.MatchedPair, a, b venue.Adapter, log *zap.Logger) types.PairQuotes {
	pq := types.PairQuotes{Pair: pair}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, perCallDeadline)
		defer cancel()
		q, err := a.GetQuote(cctx, pair.A.PlatformID)
		if err != nil {
			if log != nil {
				log.Debug("quote failed", zap.String("venue", "A"), zap.String("pair", pair.Key()), zap.Error(err))
			}
			return
		}
		pq.A = q
	}()

	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, perCallDeadline)
		defer cancel()
		q, err := b.GetQuote(cctx, pair.B.PlatformID)
		if err != nil {
			if log != nil {
				log.Debug("quote failed", zap.String("venue", "B"), zap.String("pair", pair.Key()), zap.Error(err))
			}
			return
		}
		pq.B = q
	}()

	wg.Wait()
	return pq
}
