// Package orchestrator owns the two-speed loop: a slow match-set
// refresh and a fast quote/opportunity/execution tick, sharing the
// matched-pair set via atomic snapshot swap (§4.6).
package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/EMMoasis/BothMarkets/internal/cooldown"
	"github.com/EMMoasis/BothMarkets/internal/executor"
	"github.com/EMMoasis/BothMarkets/internal/match"
	"github.com/EMMoasis/BothMarkets/internal/metrics"
	"github.com/EMMoasis/BothMarkets/internal/opportunity"
	"github.com/EMMoasis/BothMarkets/internal/quoting"
	"github.com/EMMoasis/BothMarkets/internal/store"
	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

// Config carries the loop periods and knobs the orchestrator itself
// consumes; per-trade sizing lives in executor.Config.
type Config struct {
	MarketRefresh   time.Duration
	PricePoll       time.Duration
	FetchWorkers    int
	MinSpreadCents  decimal.Decimal
	MatchCrypto     bool
	RefreshMaxFails int
	RefreshBackoff  time.Duration
}

// Orchestrator runs the slow refresh and fast tick loops until ctx is
// canceled, at which point it lets any in-flight execution finish
// through a terminal state before returning.
type Orchestrator struct {
	a, b venue.Adapter
	cfg  Config
	exec *executor.Executor
	cool *cooldown.Table
	st   *store.Store
	sw   *store.StreamWriter
	m    *metrics.Metrics
	log  *zap.Logger

	pairs atomic.Pointer[[]types.MatchedPair]
}

func New(a, b venue.Adapter, exec *executor.Executor, cool *cooldown.Table, st *store.Store, sw *store.StreamWriter, m *metrics.Metrics, cfg Config, log *zap.Logger) *Orchestrator {
	o := &Orchestrator{a: a, b: b, cfg: cfg, exec: exec, cool: cool, st: st, sw: sw, m: m, log: log}
	empty := []types.MatchedPair{}
	o.pairs.Store(&empty)
	return o
}

// Run blocks until ctx is canceled.
func (o *Orchestrator) Run(ctx context.Context) {
	go o.slowRefreshLoop(ctx)
	o.fastTickLoop(ctx)
}

func (o *Orchestrator) slowRefreshLoop(ctx context.Context) {
	o.refreshOnce(ctx)

	ticker := time.NewTicker(o.cfg.MarketRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.refreshOnce(ctx)
		}
	}
}

func (o *Orchestrator) refreshOnce(ctx context.Context) {
	var consecutiveFailures int
	for consecutiveFailures < o.cfg.RefreshMaxFails {
		aMarkets, err := o.a.ListMarkets(ctx)
		if err != nil {
			consecutiveFailures++
			o.logRefreshFailure(err, consecutiveFailures)
			if isRateLimited(err) {
				time.Sleep(o.cfg.RefreshBackoff)
			}
			continue
		}
		bMarkets, err := o.b.ListMarkets(ctx)
		if err != nil {
			consecutiveFailures++
			o.logRefreshFailure(err, consecutiveFailures)
			if isRateLimited(err) {
				time.Sleep(o.cfg.RefreshBackoff)
			}
			continue
		}

		result := match.Match(aMarkets, bMarkets, match.Options{MatchCrypto: o.cfg.MatchCrypto})
		pairs := result.Pairs
		o.pairs.Store(&pairs)
		if o.m != nil {
			o.m.ActivePairs.Set(float64(len(pairs)))
		}
		if o.log != nil {
			o.log.Info("refresh complete", zap.Int("pairs", len(pairs)), zap.Int("rejections", len(result.Rejections)))
		}
		return
	}

	if o.m != nil {
		o.m.RefreshFailures.Inc()
	}
	if o.log != nil {
		o.log.Warn("refresh aborted after repeated failures, keeping previous pair set", zap.Int("attempts", consecutiveFailures))
	}
}

func (o *Orchestrator) logRefreshFailure(err error, attempt int) {
	if o.log != nil {
		o.log.Warn("refresh attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
}

func isRateLimited(err error) bool {
	var rl *venue.RateLimitError
	return errors.As(err, &rl)
}

// fastTickLoop runs the quote/opportunity/execution tick. Ticks never
// overlap: if a tick overruns its period, the next tick starts
// immediately after the overrun one finishes rather than being
// dropped, and the overrun is logged as backpressure.
func (o *Orchestrator) fastTickLoop(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.PricePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			o.tick(ctx)
			if elapsed := time.Since(start); elapsed > o.cfg.PricePoll {
				if o.m != nil {
					o.m.TickOverruns.Inc()
				}
				if o.log != nil {
					o.log.Warn("tick overran its period", zap.Duration("elapsed", elapsed), zap.Duration("period", o.cfg.PricePoll))
				}
			}
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context) {
	o.cool.Tick()

	pairsPtr := o.pairs.Load()
	pairs := *pairsPtr
	if len(pairs) == 0 {
		return
	}

	quotes := quoting.FanOut(ctx, pairs, o.a, o.b, o.cfg.FetchWorkers, o.log)

	now := time.Now().UTC()
	var allOpps []types.Opportunity

	for _, pq := range quotes {
		opps := opportunity.Find(pq, o.cfg.MinSpreadCents, now)
		for _, opp := range opps {
			allOpps = append(allOpps, opp)
			if o.m != nil {
				o.m.OpportunitiesSeen.WithLabelValues(string(opp.Strategy), string(opp.Tier)).Inc()
			}

			executed := false
			if o.exec != nil && !o.cool.Active(opp.Pair) {
				trade := o.exec.Execute(ctx, opp, pq)
				executed = true
				if o.m != nil {
					o.m.TradesTerminal.WithLabelValues(string(trade.Status)).Inc()
				}
				if trade.Status == types.StatusPartialStuck && o.log != nil {
					o.log.Error("partial_stuck trade requires manual attention", zap.String("pair", opp.Pair.Key()), zap.String("trade_id", trade.ID))
				}
				if o.st != nil {
					if err := o.st.PutTrade(ctx, trade); err != nil && o.log != nil {
						o.log.Warn("persist trade failed", zap.Error(err))
					}
				}
			}

			if o.st != nil {
				if err := o.st.PutOpportunity(ctx, opp, executed); err != nil && o.log != nil {
					o.log.Warn("persist opportunity failed", zap.Error(err))
				}
			}
		}
	}

	if o.sw != nil {
		if err := o.sw.WriteTick(now, allOpps); err != nil && o.log != nil {
			o.log.Warn("stream write failed", zap.Error(err))
		}
	}
}
